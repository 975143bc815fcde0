// Package noop provides a store for instances running with the database
// disabled. Every operation reports the store as unavailable.
package noop

import (
	"context"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
)

type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Upsert(context.Context, models.Document) error {
	return docstore.ErrUnavailable
}

func (s *Store) Update(context.Context, string, models.Attributes) (bool, error) {
	return false, docstore.ErrUnavailable
}

func (s *Store) FindOne(context.Context, string) (models.Document, error) {
	return models.Document{}, docstore.ErrUnavailable
}

func (s *Store) FindAll(context.Context) ([]models.Document, error) {
	return nil, docstore.ErrUnavailable
}

func (s *Store) DeleteOne(context.Context, string) error {
	return docstore.ErrUnavailable
}

func (s *Store) DeleteAll(context.Context) error {
	return docstore.ErrUnavailable
}

func (s *Store) Available() bool {
	return false
}

func (s *Store) Close(context.Context) error {
	return nil
}

// compile-time interface check
var _ docstore.Store = (*Store)(nil)
