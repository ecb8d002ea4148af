// Package twinmem provides an in-memory twin store used by tests, fixtures
// and the repl.
package twinmem

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/mb0/dtm/twin"
)

// Store holds elements and attribute catalogs per model.
type Store struct {
	sync.RWMutex
	elems map[string]map[string]twin.Element
	attrs map[string][]twin.Attr
}

var _ twin.Store = (*Store)(nil)

// AddElement adds an element to a model, replacing any element with the same
// short key.
func (s *Store) AddElement(model string, el twin.Element) {
	s.Lock()
	defer s.Unlock()
	if s.elems == nil {
		s.elems = make(map[string]map[string]twin.Element)
	}
	m := s.elems[model]
	if m == nil {
		m = make(map[string]twin.Element)
		s.elems[model] = m
	}
	m[el.Key] = el
}

// AddAttr appends a row to a model's attribute catalog.
func (s *Store) AddAttr(model string, att twin.Attr) {
	s.Lock()
	defer s.Unlock()
	if s.attrs == nil {
		s.attrs = make(map[string][]twin.Attr)
	}
	s.attrs[model] = append(s.attrs[model], att)
}

// ElementsByKey returns the elements of a model matching the given short
// keys. Keys without a matching element are left out. An unknown model is an
// error so callers can exercise per model fetch failures.
func (s *Store) ElementsByKey(model string, keys []string) ([]twin.Element, error) {
	s.RLock()
	defer s.RUnlock()
	m := s.elems[model]
	if m == nil {
		return nil, errors.Errorf("no model %s", model)
	}
	res := make([]twin.Element, 0, len(keys))
	for _, k := range keys {
		if el, ok := m[k]; ok {
			res = append(res, el)
		}
	}
	return res, nil
}

// SchemaOf returns the full attribute catalog of a model.
func (s *Store) SchemaOf(model string) ([]twin.Attr, error) {
	s.RLock()
	defer s.RUnlock()
	atts, ok := s.attrs[model]
	if !ok {
		return nil, errors.Errorf("no model %s", model)
	}
	res := make([]twin.Attr, len(atts))
	copy(res, atts)
	return res, nil
}
