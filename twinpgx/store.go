// Package twinpgx provides a twin store mirrored in a postgresql database
// using the pgx client package, for offline dashboards and integration tests.
package twinpgx

import (
	"encoding/json"

	"github.com/jackc/pgx"
	"github.com/pkg/errors"

	"github.com/mb0/dtm/twin"
)

// Store reads elements and attribute catalogs from a mirror database.
type Store struct {
	DB *pgx.ConnPool
}

var _ twin.Store = (*Store)(nil)

// New returns a store reading from the given connection pool.
func New(db *pgx.ConnPool) *Store { return &Store{DB: db} }

// ElementsByKey returns the mirrored elements of a model matching the given
// short keys. Keys without a row are left out.
func (s *Store) ElementsByKey(model string, keys []string) ([]twin.Element, error) {
	rows, err := s.DB.Query(`select key, props from element
		where model = $1 and key = any($2)`, model, keys)
	if err != nil {
		return nil, errors.Wrapf(err, "query elements of %s", model)
	}
	defer rows.Close()
	res := make([]twin.Element, 0, len(keys))
	for rows.Next() {
		var el twin.Element
		var raw []byte
		err = rows.Scan(&el.Key, &raw)
		if err != nil {
			return nil, errors.Wrap(err, "scan element")
		}
		if len(raw) > 0 {
			err = json.Unmarshal(raw, &el.Props)
			if err != nil {
				return nil, errors.Wrapf(err, "props of element %s", el.Key)
			}
		}
		res = append(res, el)
	}
	return res, rows.Err()
}

// SchemaOf returns the mirrored attribute catalog of a model.
func (s *Store) SchemaOf(model string) ([]twin.Attr, error) {
	rows, err := s.DB.Query(`select id, category, name, dtype from attr
		where model = $1 order by id`, model)
	if err != nil {
		return nil, errors.Wrapf(err, "query attrs of %s", model)
	}
	defer rows.Close()
	var res []twin.Attr
	for rows.Next() {
		var a twin.Attr
		err = rows.Scan(&a.ID, &a.Category, &a.Name, &a.DType)
		if err != nil {
			return nil, errors.Wrap(err, "scan attr")
		}
		res = append(res, a)
	}
	return res, rows.Err()
}
