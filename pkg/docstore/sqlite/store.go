// Package sqlite stores documents in a SQLite database using the pure Go
// modernc driver. Each record is a row keyed by collection and key, with the
// attributes held in a JSON text column.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
)

const (
	driverName        = "sqlite"
	DefaultCollection = "users"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	doc_key    TEXT NOT NULL,
	attributes TEXT NOT NULL,
	PRIMARY KEY (collection, doc_key)
)`

type Store struct {
	db         *sql.DB
	collection string
}

// NewStore opens the database at path, which may be ":memory:", and creates
// the documents table if needed.
func NewStore(ctx context.Context, path, collection string) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, docstore.NewErrUnavailable("open sqlite", err)
	}
	// one connection serializes writers and keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}
	return &Store{db: db, collection: collection}, nil
}

func (s *Store) Upsert(ctx context.Context, doc models.Document) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stored, _, err := s.load(ctx, tx, doc.Key)
		if err != nil {
			return err
		}
		return s.save(ctx, tx, doc.Key, stored.Set(doc.Attributes))
	})
}

func (s *Store) Update(ctx context.Context, key string, attributes models.Attributes) (matched bool, err error) {
	if !attributes.HasUpdates() {
		return false, nil
	}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		stored, found, err := s.load(ctx, tx, key)
		if err != nil || !found {
			return err
		}
		matched = true
		return s.save(ctx, tx, key, stored.Merge(attributes))
	})
	return matched && err == nil, err
}

func (s *Store) FindOne(ctx context.Context, key string) (models.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT attributes FROM documents WHERE collection = ? AND doc_key = ?`, s.collection, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, docstore.NewErrNotFound(key)
	}
	if err != nil {
		return models.Document{}, err
	}
	attributes, err := decode(raw)
	if err != nil {
		return models.Document{}, err
	}
	return models.NewDocument(key, attributes), nil
}

func (s *Store) FindAll(ctx context.Context) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc_key, attributes FROM documents WHERE collection = ? ORDER BY doc_key`, s.collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]models.Document, 0)
	for rows.Next() {
		var key, raw string
		if err = rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		attributes, err := decode(raw)
		if err != nil {
			return nil, err
		}
		res = append(res, models.NewDocument(key, attributes))
	}
	return res, rows.Err()
}

func (s *Store) DeleteOne(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND doc_key = ?`, s.collection, key)
	return err
}

func (s *Store) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ?`, s.collection)
	return err
}

func (s *Store) Available() bool {
	return true
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) load(ctx context.Context, tx *sql.Tx, key string) (models.Attributes, bool, error) {
	var raw string
	err := tx.QueryRowContext(ctx,
		`SELECT attributes FROM documents WHERE collection = ? AND doc_key = ?`, s.collection, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Attributes{}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	attributes, err := decode(raw)
	return attributes, err == nil, err
}

func (s *Store) save(ctx context.Context, tx *sql.Tx, key string, attributes models.Attributes) error {
	data, err := json.Marshal(attributes)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (collection, doc_key, attributes) VALUES (?, ?, ?)
		 ON CONFLICT (collection, doc_key) DO UPDATE SET attributes = excluded.attributes`,
		s.collection, key, string(data))
	return err
}

func decode(raw string) (models.Attributes, error) {
	var attributes models.Attributes
	if err := json.Unmarshal([]byte(raw), &attributes); err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}
	if attributes == nil {
		attributes = models.Attributes{}
	}
	return attributes, nil
}

// compile-time interface check
var _ docstore.Store = (*Store)(nil)
