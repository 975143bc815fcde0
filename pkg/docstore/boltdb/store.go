// Package boltdb stores documents in a single bbolt file, one bucket per
// collection, with each record encoded as a JSON object.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
)

const DefaultCollection = "users"

type Option func(s *Store)

func WithCollection(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.collection = []byte(name)
		}
	}
}

func WithOpenTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.openTimeout = timeout
	}
}

type Store struct {
	path        string
	collection  []byte
	openTimeout time.Duration
	database    *bolt.DB
}

// NewStore opens, or creates, the database at path and makes sure the
// collection bucket exists.
func NewStore(path string, options ...Option) (*Store, error) {
	store := &Store{
		path:       path,
		collection: []byte(DefaultCollection),
	}
	for _, opt := range options {
		opt(store)
	}

	db, err := GetDatabase(path, store.openTimeout)
	if err != nil {
		return nil, docstore.NewErrUnavailable("open boltdb", err)
	}
	store.database = db

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := bucket(tx, store.collection, true)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create collection bucket at startup: %w", err)
	}
	return store, nil
}

func (s *Store) Upsert(_ context.Context, doc models.Document) error {
	return s.database.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, s.collection, true)
		if err != nil {
			return err
		}
		stored, err := decode(b.Get([]byte(doc.Key)))
		if err != nil {
			return err
		}
		return put(b, doc.Key, stored.Set(doc.Attributes))
	})
}

func (s *Store) Update(_ context.Context, key string, attributes models.Attributes) (matched bool, err error) {
	if !attributes.HasUpdates() {
		return false, nil
	}
	err = s.database.Update(func(tx *bolt.Tx) error {
		b, err := bucket(tx, s.collection, true)
		if err != nil {
			return err
		}
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		stored, err := decode(data)
		if err != nil {
			return err
		}
		matched = true
		return put(b, key, stored.Merge(attributes))
	})
	return matched && err == nil, err
}

func (s *Store) FindOne(_ context.Context, key string) (doc models.Document, err error) {
	err = s.database.View(func(tx *bolt.Tx) error {
		b, _ := bucket(tx, s.collection, false)
		if b == nil {
			return docstore.NewErrNotFound(key)
		}
		data := b.Get([]byte(key))
		if data == nil {
			return docstore.NewErrNotFound(key)
		}
		attributes, err := decode(data)
		if err != nil {
			return err
		}
		doc = models.NewDocument(key, attributes)
		return nil
	})
	return doc, err
}

// FindAll returns the documents in key order, which is bbolt's cursor order.
func (s *Store) FindAll(_ context.Context) ([]models.Document, error) {
	res := make([]models.Document, 0)
	err := s.database.View(func(tx *bolt.Tx) error {
		b, _ := bucket(tx, s.collection, false)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			attributes, err := decode(v)
			if err != nil {
				return err
			}
			res = append(res, models.NewDocument(string(k), attributes))
			return nil
		})
	})
	return res, err
}

func (s *Store) DeleteOne(_ context.Context, key string) error {
	return s.database.Update(func(tx *bolt.Tx) error {
		b, _ := bucket(tx, s.collection, false)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) DeleteAll(_ context.Context) error {
	return s.database.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(s.collection) != nil {
			if err := tx.DeleteBucket(s.collection); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(s.collection)
		return err
	})
}

func (s *Store) Available() bool {
	return true
}

func (s *Store) Close(_ context.Context) error {
	return s.database.Close()
}

func put(b *bolt.Bucket, key string, attributes models.Attributes) error {
	data, err := json.Marshal(attributes)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

func decode(data []byte) (models.Attributes, error) {
	if data == nil {
		return models.Attributes{}, nil
	}
	var attributes models.Attributes
	if err := json.Unmarshal(data, &attributes); err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}
	return attributes, nil
}

// compile-time interface check
var _ docstore.Store = (*Store)(nil)
