package key

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func rawXref() []byte {
	raw := make([]byte, XrefLen)
	for i := 0; i < ShortLen; i++ {
		raw[ModelLen+flagLen+i] = byte(i + 1)
	}
	return raw
}

func TestDecodePadding(t *testing.T) {
	raw := bytes.Repeat([]byte{0xff}, ModelLen)
	enc := Encode(raw)
	for _, text := range []string{enc, enc + "=", enc + "=="} {
		got, err := Decode(text)
		if err != nil {
			t.Errorf("decode %q unexpected error: %v", text, err)
			continue
		}
		if !bytes.Equal(got, raw) {
			t.Errorf("decode %q got %x want %x", text, got, raw)
		}
	}
}

func TestToShort(t *testing.T) {
	long := make([]byte, LongLen)
	copy(long, []byte{0xde, 0xad, 0xbe, 0xef})
	for i := 0; i < ShortLen; i++ {
		long[flagLen+i] = byte(i + 1)
	}
	short, err := ToShort(Encode(long))
	if err != nil {
		t.Fatalf("to short error: %v", err)
	}
	if want := Encode(long[flagLen:]); short != want {
		t.Errorf("to short got %s want %s", short, want)
	}
	// repeated encode decode cycles must not drift
	raw, err := Decode(short)
	if err != nil {
		t.Fatalf("decode short error: %v", err)
	}
	if again := Encode(raw); again != short {
		t.Errorf("round trip drift got %s want %s", again, short)
	}
	if _, err = ToShort(Encode(long[:ShortLen])); errors.Cause(err) != ErrMalformedKey {
		t.Errorf("short input got %v want malformed key", err)
	}
}

func TestDecodeXref(t *testing.T) {
	raw := rawXref()
	x, err := DecodeXref(Encode(raw))
	if err != nil {
		t.Fatalf("decode xref error: %v", err)
	}
	if want := URNPrefix + "AAAAAAAAAAAAAAAAAAAAAA"; x.Model != want {
		t.Errorf("model got %s want %s", x.Model, want)
	}
	short, err := ToShort(x.Key)
	if err != nil {
		t.Fatalf("to short error: %v", err)
	}
	id, err := Decode(short)
	if err != nil {
		t.Fatalf("decode short error: %v", err)
	}
	if !bytes.Equal(id, raw[ModelLen+flagLen:]) {
		t.Errorf("element id got %x want %x", id, raw[ModelLen+flagLen:])
	}
	if _, err = DecodeXref(Encode(raw[:XrefLen-1])); errors.Cause(err) != ErrMalformedXref {
		t.Errorf("short input got %v want malformed xref", err)
	}
	if _, err = DecodeXref("%%%"); errors.Cause(err) != ErrMalformedXref {
		t.Errorf("bad text got %v want malformed xref", err)
	}
}

func TestMakeXref(t *testing.T) {
	raw := rawXref()
	x, err := DecodeXref(Encode(raw))
	if err != nil {
		t.Fatalf("decode xref error: %v", err)
	}
	back, err := MakeXref(x.Model, x.Key)
	if err != nil {
		t.Fatalf("make xref error: %v", err)
	}
	if want := Encode(raw); back != want {
		t.Errorf("make xref got %s want %s", back, want)
	}
	short, _ := ToShort(x.Key)
	if _, err = MakeXref(x.Model, short); errors.Cause(err) != ErrMalformedKey {
		t.Errorf("short key got %v want malformed key", err)
	}
	if _, err = MakeXref(URNPrefix+"AAAA", x.Key); errors.Cause(err) != ErrMalformedKey {
		t.Errorf("bad model got %v want malformed key", err)
	}
}

func TestSplitXrefs(t *testing.T) {
	one := rawXref()
	two := rawXref()
	two[0] = 0x07
	blob := make([]byte, 0, 2*XrefLen+5)
	blob = append(blob, one...)
	blob = append(blob, two...)
	// partially filled trailing record is dropped, not an error
	blob = append(blob, 1, 2, 3, 4, 5)
	models, keys, err := SplitXrefs(Encode(blob))
	if err != nil {
		t.Fatalf("split error: %v", err)
	}
	if len(models) != 2 || len(keys) != 2 {
		t.Fatalf("got %d models %d keys want 2 each", len(models), len(keys))
	}
	if models[0] != ModelURN(one[:ModelLen]) || models[1] != ModelURN(two[:ModelLen]) {
		t.Errorf("unexpected models %v", models)
	}
	if keys[0] != Encode(one[ModelLen:]) || keys[1] != Encode(two[ModelLen:]) {
		t.Errorf("unexpected keys %v", keys)
	}
	models, keys, err = SplitXrefs("")
	if err != nil || len(models) != 0 || len(keys) != 0 {
		t.Errorf("empty blob got %v %v %v want two empty slices", models, keys, err)
	}
}
