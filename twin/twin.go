// Package twin provides the domain types and store capabilities shared by all
// client packages.
//
// A twin consists of independently versioned models. Each model holds elements
// identified by compact binary keys and an attribute catalog describing the
// qualified properties those elements carry. Elements may point into other
// models through cross-model references, see the key package for the wire
// layouts.
package twin

import "strings"

// Property families qualify a property id as family:property.
const (
	FamStd  = "n" // built in properties
	FamUser = "z" // user defined properties
	FamXref = "x" // cross model references
	FamRef  = "l" // same model references
	FamTag  = "t" // tags
)

// Well known qualified property ids.
const (
	PropName     = FamStd + ":n"
	PropCategory = FamStd + ":c"
)

// Override returns the user override variant of a qualified property id.
// Override values always win over the unprefixed property of the same name.
func Override(id string) string {
	fam, prop := split(id)
	if strings.HasPrefix(prop, "!") {
		return id
	}
	return fam + ":!" + prop
}

// IsOverride reports whether id names a user override property.
func IsOverride(id string) bool {
	_, prop := split(id)
	return strings.HasPrefix(prop, "!")
}

// Fallback returns the unprefixed variant of a qualified property id.
func Fallback(id string) string {
	fam, prop := split(id)
	return fam + ":" + strings.TrimPrefix(prop, "!")
}

func split(id string) (fam, prop string) {
	if idx := strings.IndexByte(id, ':'); idx >= 0 {
		return id[:idx], id[idx+1:]
	}
	return "", id
}

// Element is one store row: a short element key and its qualified properties.
// Properties can be multi valued, the first value is authoritative.
type Element struct {
	Key   string              `json:"k"`
	Props map[string][]string `json:"props,omitempty"`
}

// First returns the first value of the first present property id, checking the
// override variant before the standard variant of each id in turn. It returns
// the empty string if no candidate is present.
func (e *Element) First(ids ...string) string {
	for _, id := range ids {
		for _, qid := range [2]string{Override(id), Fallback(id)} {
			if vs := e.Props[qid]; len(vs) > 0 && vs[0] != "" {
				return vs[0]
			}
		}
	}
	return ""
}

// Name returns the element display name.
func (e *Element) Name() string { return e.First(PropName) }

// Category returns the element category.
func (e *Element) Category() string { return e.First(PropCategory) }

// Attr is one row of a model's attribute catalog.
type Attr struct {
	ID       string `json:"id"`
	Category string `json:"category,omitempty"`
	Name     string `json:"name"`
	DType    int    `json:"dataType,omitempty"`
}

// Elements is the batched element lookup capability of a store. The lookup
// accepts short keys only and is best effort, keys without a matching row are
// left out of the result.
type Elements interface {
	ElementsByKey(model string, keys []string) ([]Element, error)
}

// Schemas is the attribute catalog capability of a store. It returns the full
// catalog of a model in one call.
type Schemas interface {
	SchemaOf(model string) ([]Attr, error)
}

// Store combines the element and schema capabilities of a twin store.
type Store interface {
	Elements
	Schemas
}
