// Package sch caches per model attribute schemas for the life of the process
// and resolves qualified property ids to display names.
package sch

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/mb0/dtm/twin"
)

// Schema is a loaded attribute catalog with a derived lookup index.
type Schema struct {
	Model string
	Attrs []twin.Attr
	index map[string]twin.Attr
}

func newSchema(model string, atts []twin.Attr) *Schema {
	s := &Schema{Model: model, Attrs: atts, index: make(map[string]twin.Attr, len(atts))}
	for _, a := range atts {
		s.index[a.ID] = a
	}
	return s
}

// Attr returns the catalog row for a qualified property id. Override ids
// without an own row resolve through their standard variant.
func (s *Schema) Attr(id string) (twin.Attr, bool) {
	a, ok := s.index[id]
	if !ok && twin.IsOverride(id) {
		a, ok = s.index[twin.Fallback(id)]
	}
	return a, ok
}

// DisplayName returns the display name for a qualified property id, or the id
// itself when the catalog does not know it.
func (s *Schema) DisplayName(id string) string {
	if s != nil {
		if a, ok := s.Attr(id); ok && a.Name != "" {
			return a.Name
		}
	}
	return id
}

// Cache memoizes model schemas loaded through an injected loader. Successful
// loads are kept for the life of the process, failed loads are not cached so
// a later call retries. Concurrent loads of the same model collapse to one
// loader call, loads of different models proceed independently.
//
// A cache is constructed once by the caller and passed around by reference.
type Cache struct {
	ldr  twin.Schemas
	fl   singleflight.Group
	mu   sync.RWMutex
	smap map[string]*Schema
}

// New returns a new cache using the given schema loader.
func New(ldr twin.Schemas) *Cache {
	return &Cache{ldr: ldr, smap: make(map[string]*Schema)}
}

// Load returns the schema of a model, fetching the catalog at most once no
// matter how many callers arrive while the fetch is in flight.
func (c *Cache) Load(model string) (*Schema, error) {
	c.mu.RLock()
	s := c.smap[model]
	c.mu.RUnlock()
	if s != nil {
		return s, nil
	}
	v, err, _ := c.fl.Do(model, func() (interface{}, error) {
		// a finished flight may have stored the schema after our check
		c.mu.RLock()
		s := c.smap[model]
		c.mu.RUnlock()
		if s != nil {
			return s, nil
		}
		atts, err := c.ldr.SchemaOf(model)
		if err != nil {
			return nil, errors.Wrapf(err, "load schema of %s", model)
		}
		s = newSchema(model, atts)
		c.mu.Lock()
		c.smap[model] = s
		c.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Schema), nil
}

// DisplayName returns the display name for a qualified property id of a
// model. It never fails, on a load error or an unknown id the id itself is
// returned as fallback.
func (c *Cache) DisplayName(model, id string) string {
	s, err := c.Load(model)
	if err != nil {
		return id
	}
	return s.DisplayName(id)
}
