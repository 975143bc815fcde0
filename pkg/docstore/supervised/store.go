// Package supervised keeps a Connector usable across outages. Connection
// attempts run in the background; while the backend is down every call
// returns docstore.ErrUnavailable without touching the network.
package supervised

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/lib/backoff"
	"github.com/dsx-project/dsx/pkg/lib/supervisor"
	"github.com/dsx-project/dsx/pkg/models"
)

const DefaultRetryInterval = 5 * time.Second

type Params struct {
	Name          string
	Backend       docstore.Connector
	RetryInterval time.Duration
	Clock         clock.Clock
}

type Store struct {
	backend    docstore.Connector
	supervisor *supervisor.Supervisor
}

func NewStore(params Params) *Store {
	if params.RetryInterval == 0 {
		params.RetryInterval = DefaultRetryInterval
	}
	if params.Name == "" {
		params.Name = "DocumentStore"
	}
	return &Store{
		backend: params.Backend,
		supervisor: supervisor.New(supervisor.Params{
			Name:    params.Name,
			Connect: params.Backend.Connect,
			Backoff: backoff.NewFixed(params.RetryInterval),
			Clock:   params.Clock,
		}),
	}
}

// Start begins connecting in the background and returns immediately.
func (s *Store) Start(ctx context.Context) {
	s.supervisor.Start(ctx)
}

func (s *Store) Upsert(ctx context.Context, doc models.Document) error {
	return s.call(func() error { return s.backend.Upsert(ctx, doc) })
}

func (s *Store) Update(ctx context.Context, key string, attributes models.Attributes) (matched bool, err error) {
	err = s.call(func() error {
		matched, err = s.backend.Update(ctx, key, attributes)
		return err
	})
	return matched, err
}

func (s *Store) FindOne(ctx context.Context, key string) (doc models.Document, err error) {
	err = s.call(func() error {
		doc, err = s.backend.FindOne(ctx, key)
		return err
	})
	return doc, err
}

func (s *Store) FindAll(ctx context.Context) (docs []models.Document, err error) {
	err = s.call(func() error {
		docs, err = s.backend.FindAll(ctx)
		return err
	})
	return docs, err
}

func (s *Store) DeleteOne(ctx context.Context, key string) error {
	return s.call(func() error { return s.backend.DeleteOne(ctx, key) })
}

func (s *Store) DeleteAll(ctx context.Context) error {
	return s.call(func() error { return s.backend.DeleteAll(ctx) })
}

func (s *Store) Available() bool {
	return s.supervisor.Available()
}

// Close stops reconnecting and closes the backend.
func (s *Store) Close(ctx context.Context) error {
	s.supervisor.Stop()
	return s.backend.Close(ctx)
}

func (s *Store) call(fn func() error) error {
	if !s.supervisor.Available() {
		return docstore.ErrUnavailable
	}
	err := fn()
	if docstore.IsUnavailable(err) {
		s.supervisor.MarkUnavailable(err)
	}
	return err
}

// compile-time interface check
var _ docstore.Store = (*Store)(nil)
