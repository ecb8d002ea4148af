// Package ref resolves cross model references found on store elements into
// named target elements, batching element lookups by target model.
package ref

import (
	"github.com/pkg/errors"

	"github.com/mb0/dtm/key"
	"github.com/mb0/dtm/twin"
)

// Rule lists the qualified property ids to try when extracting the reference
// field of an element, in priority order. The first present property wins and
// override variants win over the standard variant of each id. An element
// matching no id simply carries no reference.
type Rule []string

// Entry is a resolved reference target.
type Entry struct {
	Name string
	Type string
}

// Result holds the outcome of one resolution pass. Entries maps source
// element keys to their resolved targets. Failed maps target model URNs to
// the fetch error that left all references into that model unresolved.
type Result struct {
	Entries map[string]Entry
	Failed  map[string]error
}

// Resolved returns the target entry for a source element key.
func (r *Result) Resolved(srcKey string) (Entry, bool) {
	ent, ok := r.Entries[srcKey]
	return ent, ok
}

// target collects the source element keys sharing one reference target, so
// every source is satisfied from a single fetched row.
type target struct {
	short string
	srcs  []string
}

// Resolve extracts one cross model reference per element according to rule,
// groups the targets by model and issues one batched lookup per distinct
// target model against store. Malformed references are dropped without
// failing the pass, as are references whose target row is missing from the
// fetch result. A failed fetch leaves all references into that model
// unresolved and is recorded in Result.Failed.
//
// The join between references and fetched rows is done on short keys. A
// decoded reference yields a long key whose flag bytes vary between
// references to the same element, while the lookup returns short keyed rows,
// so references differing only in flags resolve to the same target.
func Resolve(elems []twin.Element, rule Rule, store twin.Elements) *Result {
	res := &Result{Entries: make(map[string]Entry), Failed: make(map[string]error)}
	models := make([]string, 0, 8)
	group := make(map[string][]*target)
	index := make(map[string]*target)
	for i := range elems {
		el := &elems[i]
		raw := el.First(rule...)
		if raw == "" {
			continue
		}
		x, err := key.DecodeXref(raw)
		if err != nil {
			continue
		}
		short, err := key.ToShort(x.Key)
		if err != nil {
			continue
		}
		tgt := index[x.Model+" "+short]
		if tgt == nil {
			tgt = &target{short: short}
			index[x.Model+" "+short] = tgt
			if _, ok := group[x.Model]; !ok {
				models = append(models, x.Model)
			}
			group[x.Model] = append(group[x.Model], tgt)
		}
		tgt.srcs = append(tgt.srcs, el.Key)
	}
	for _, model := range models {
		tgts := group[model]
		keys := make([]string, 0, len(tgts))
		for _, tgt := range tgts {
			keys = append(keys, tgt.short)
		}
		rows, err := store.ElementsByKey(model, keys)
		if err != nil {
			res.Failed[model] = errors.Wrapf(err, "fetch elements of %s", model)
			continue
		}
		byShort := make(map[string]*twin.Element, len(rows))
		for i := range rows {
			byShort[rows[i].Key] = &rows[i]
		}
		for _, tgt := range tgts {
			row := byShort[tgt.short]
			if row == nil {
				continue
			}
			ent := Entry{Name: row.Name(), Type: row.Category()}
			for _, src := range tgt.srcs {
				res.Entries[src] = ent
			}
		}
	}
	return res
}
