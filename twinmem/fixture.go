package twinmem

import (
	"bytes"

	"github.com/mb0/dtm/key"
	"github.com/mb0/dtm/twin"
)

// Demo fixture models, an asset model with references into a room model.
var (
	ModelAssets = key.ModelURN(bytes.Repeat([]byte{0xa0}, key.ModelLen))
	ModelRooms  = key.ModelURN(bytes.Repeat([]byte{0xb0}, key.ModelLen))
)

// RoomRef is the fixture property holding the asset to room reference.
const RoomRef = twin.FamXref + ":r"

// Fixture returns a store with a handful of assets referring to rooms,
// including two assets sharing a room and one asset without any reference.
func Fixture() *Store {
	s := &Store{}
	rooms := []string{"Lobby", "Kitchen", "Archive"}
	for i, name := range rooms {
		s.AddElement(ModelRooms, twin.Element{Key: ShortKey(byte(i + 1)), Props: map[string][]string{
			twin.PropName:     {name},
			twin.PropCategory: {"Rooms"},
		}})
	}
	assets := []struct {
		name string
		room byte
	}{
		{"Pump", 1},
		{"Fan", 2},
		{"Boiler", 2},
		{"Spare Part", 0},
	}
	for i, a := range assets {
		props := map[string][]string{
			twin.PropName:     {a.name},
			twin.PropCategory: {"Equipment"},
		}
		if a.room > 0 {
			props[RoomRef] = []string{RoomXref(a.room)}
		}
		s.AddElement(ModelAssets, twin.Element{Key: ShortKey(byte(0x40 + i)), Props: props})
	}
	s.AddAttr(ModelAssets, twin.Attr{ID: "z:7Q", Category: "Common", Name: "Serial Number", DType: 20})
	s.AddAttr(ModelAssets, twin.Attr{ID: "z:8a", Category: "Common", Name: "Install Date", DType: 3})
	s.AddAttr(ModelAssets, twin.Attr{ID: RoomRef, Category: "Refs", Name: "Room", DType: 11})
	s.AddAttr(ModelRooms, twin.Attr{ID: "z:2b", Category: "Common", Name: "Area", DType: 2})
	return s
}

// RoomXref returns the encoded xref text pointing at fixture room n with zero
// flag bytes.
func RoomXref(n byte) string { return RoomXrefFlags(n, 0) }

// RoomXrefFlags returns the encoded xref text pointing at fixture room n with
// all four flag bytes set to f.
func RoomXrefFlags(n, f byte) string {
	raw := make([]byte, 0, key.XrefLen)
	raw = append(raw, bytes.Repeat([]byte{0xb0}, key.ModelLen)...)
	raw = append(raw, f, f, f, f)
	raw = append(raw, shortRaw(n)...)
	return key.Encode(raw)
}

func shortRaw(n byte) []byte {
	raw := make([]byte, key.ShortLen)
	raw[key.ShortLen-1] = n
	return raw
}

// ShortKey returns the short key text of fixture element n, shared by the
// room and asset key spaces.
func ShortKey(n byte) string { return key.Encode(shortRaw(n)) }
