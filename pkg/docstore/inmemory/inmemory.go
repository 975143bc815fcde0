package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
)

// Store keeps documents in a map. Writes to the same key are serialized by
// the store lock, so last write wins in call-completion order.
type Store struct {
	mtx       sync.RWMutex
	documents map[string]models.Attributes
}

func NewStore() *Store {
	return &Store{
		documents: make(map[string]models.Attributes),
	}
}

func (s *Store) Upsert(_ context.Context, doc models.Document) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.documents[doc.Key] = s.documents[doc.Key].Set(doc.Attributes)
	return nil
}

func (s *Store) Update(_ context.Context, key string, attributes models.Attributes) (bool, error) {
	if !attributes.HasUpdates() {
		return false, nil
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	stored, ok := s.documents[key]
	if !ok {
		return false, nil
	}
	s.documents[key] = stored.Merge(attributes)
	return true, nil
}

func (s *Store) FindOne(_ context.Context, key string) (models.Document, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	stored, ok := s.documents[key]
	if !ok {
		return models.Document{}, docstore.NewErrNotFound(key)
	}
	return models.NewDocument(key, stored), nil
}

func (s *Store) FindAll(_ context.Context) ([]models.Document, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	res := make([]models.Document, 0, len(s.documents))
	for key, stored := range s.documents {
		res = append(res, models.NewDocument(key, stored))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Key < res[j].Key })
	return res, nil
}

func (s *Store) DeleteOne(_ context.Context, key string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.documents, key)
	return nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.documents = make(map[string]models.Attributes)
	return nil
}

func (s *Store) Available() bool {
	return true
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

// compile-time interface check
var _ docstore.Store = (*Store)(nil)
