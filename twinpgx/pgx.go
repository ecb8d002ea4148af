package twinpgx

import (
	"encoding/json"

	"github.com/jackc/pgx"
	"github.com/pkg/errors"

	"github.com/mb0/dtm/twin"
)

type DB interface {
	Begin() (*pgx.Tx, error)
}

type C interface {
	Query(string, ...interface{}) (*pgx.Rows, error)
	QueryRow(string, ...interface{}) *pgx.Row
	Exec(string, ...interface{}) (pgx.CommandTag, error)
}

// Open parses the dsn and returns a checked connection pool.
func Open(dsn string, logger pgx.Logger) (*pgx.ConnPool, error) {
	conf, err := pgx.ParseDSN(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parsing postgres dsn")
	}
	if logger != nil {
		conf.Logger = logger
		conf.LogLevel = pgx.LogLevelWarn
	}
	db, err := pgx.NewConnPool(pgx.ConnPoolConfig{ConnConfig: conf})
	if err != nil {
		return nil, errors.Wrap(err, "creating pgx connection pool")
	}
	_, err = db.Exec("SELECT 1")
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "opening first pgx connection")
	}
	return db, nil
}

// WithTx runs f inside a transaction that is rolled back on error.
func WithTx(db DB, f func(C) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	err = f(tx)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Migrate creates the mirror tables if they do not exist.
func Migrate(db DB) error {
	return WithTx(db, func(c C) error {
		_, err := c.Exec(`create table if not exists element (
			model text not null,
			key   text not null,
			props jsonb,
			primary key (model, key)
		)`)
		if err != nil {
			return err
		}
		_, err = c.Exec(`create table if not exists attr (
			model    text not null,
			id       text not null,
			category text not null default '',
			name     text not null,
			dtype    int not null default 0,
			primary key (model, id)
		)`)
		return err
	})
}

// Mirror writes the elements and attribute catalog of one model, replacing
// existing rows with the same keys.
func Mirror(db DB, model string, els []twin.Element, atts []twin.Attr) error {
	return WithTx(db, func(c C) error {
		for _, el := range els {
			raw, err := json.Marshal(el.Props)
			if err != nil {
				return errors.Wrapf(err, "props of element %s", el.Key)
			}
			_, err = c.Exec(`insert into element (model, key, props) values ($1, $2, $3)
				on conflict (model, key) do update set props = excluded.props`,
				model, el.Key, raw)
			if err != nil {
				return errors.Wrapf(err, "insert element %s", el.Key)
			}
		}
		for _, a := range atts {
			_, err := c.Exec(`insert into attr (model, id, category, name, dtype)
				values ($1, $2, $3, $4, $5)
				on conflict (model, id) do update set
					category = excluded.category,
					name = excluded.name,
					dtype = excluded.dtype`,
				model, a.ID, a.Category, a.Name, a.DType)
			if err != nil {
				return errors.Wrapf(err, "insert attr %s", a.ID)
			}
		}
		return nil
	})
}
