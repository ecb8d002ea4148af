// Package key implements the identifier codec for the twin store wire format.
//
// All identifiers cross the wire as websafe base64 text without padding. The
// underlying binary layouts have fixed widths: a model id is 16 bytes, a short
// element key 20 bytes, a long element key 24 bytes (4 flag bytes followed by
// the short key) and a cross-model reference 40 bytes (model id followed by a
// long key). The flag bytes are opaque here, they are stripped but never
// interpreted.
package key

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// Byte widths of the wire layouts.
const (
	ModelLen = 16
	ShortLen = 20
	LongLen  = 24
	XrefLen  = ModelLen + LongLen
	flagLen  = LongLen - ShortLen
)

// URNPrefix is prepended to an encoded model id to form the model URN.
const URNPrefix = "urn:adsk.dtm:"

var (
	// ErrMalformedKey reports an element key or model id of the wrong width.
	ErrMalformedKey = errors.New("malformed key")
	// ErrMalformedXref reports a cross-model reference shorter than 40 bytes.
	ErrMalformedXref = errors.New("malformed xref")
)

// Encode returns the websafe base64 text for raw without padding.
func Encode(raw []byte) string { return base64.RawURLEncoding.EncodeToString(raw) }

// Decode returns the raw bytes for websafe base64 text, with or without padding.
func Decode(text string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(text, "="))
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedKey, "decode %q: %v", text, err)
	}
	return raw, nil
}

// ModelURN returns the model URN for a raw 16 byte model id.
func ModelURN(raw []byte) string { return URNPrefix + Encode(raw) }

// ModelID returns the raw 16 byte model id for a model URN or plain encoded id.
func ModelID(urn string) ([]byte, error) {
	raw, err := Decode(strings.TrimPrefix(urn, URNPrefix))
	if err != nil {
		return nil, err
	}
	if len(raw) != ModelLen {
		return nil, errors.Wrapf(ErrMalformedKey, "model id %q has %d bytes", urn, len(raw))
	}
	return raw, nil
}

// ToShort strips the flag bytes from long key text and returns short key text.
// The element lookup api only accepts short keys, while queries and xrefs
// carry long keys.
func ToShort(long string) (string, error) {
	raw, err := Decode(long)
	if err != nil {
		return "", err
	}
	if len(raw) < LongLen {
		return "", errors.Wrapf(ErrMalformedKey, "long key %q has %d bytes", long, len(raw))
	}
	return Encode(raw[flagLen:]), nil
}

// Xref is a decoded cross-model reference pointing to the element identified
// by long key text Key inside the model identified by URN Model.
type Xref struct {
	Model string
	Key   string
}

// DecodeXref splits encoded xref text into its model URN and long key text.
// Xrefs arrive embedded in bulk store data, a malformed entry must not abort
// the batch, so callers are expected to check for ErrMalformedXref and drop
// the offending entry.
func DecodeXref(text string) (Xref, error) {
	raw, err := Decode(text)
	if err != nil {
		return Xref{}, errors.Wrapf(ErrMalformedXref, "xref %q: %v", text, err)
	}
	if len(raw) < XrefLen {
		return Xref{}, errors.Wrapf(ErrMalformedXref, "xref %q has %d bytes", text, len(raw))
	}
	return Xref{Model: ModelURN(raw[:ModelLen]), Key: Encode(raw[ModelLen:])}, nil
}

// MakeXref composes encoded xref text from a model URN and long key text.
// Both parts must decode to their exact wire width, composing a xref from a
// short key would silently produce a 36 byte blob no reader accepts.
func MakeXref(modelURN, longKey string) (string, error) {
	mid, err := ModelID(modelURN)
	if err != nil {
		return "", err
	}
	raw, err := Decode(longKey)
	if err != nil {
		return "", err
	}
	if len(raw) != LongLen {
		return "", errors.Wrapf(ErrMalformedKey, "long key %q has %d bytes", longKey, len(raw))
	}
	buf := make([]byte, 0, XrefLen)
	buf = append(buf, mid...)
	buf = append(buf, raw...)
	return Encode(buf), nil
}

// SplitXrefs decodes a back-to-back concatenation of 40 byte xref records and
// returns parallel slices of model URNs and long key texts. A trailing chunk
// shorter than 40 bytes marks a partially filled record the producer left out
// and is dropped without error.
func SplitXrefs(blob string) ([]string, []string, error) {
	raw, err := Decode(blob)
	if err != nil {
		return nil, nil, err
	}
	n := len(raw) / XrefLen
	models := make([]string, 0, n)
	keys := make([]string, 0, n)
	for len(raw) >= XrefLen {
		models = append(models, ModelURN(raw[:ModelLen]))
		keys = append(keys, Encode(raw[ModelLen:XrefLen]))
		raw = raw[XrefLen:]
	}
	return models, keys, nil
}
