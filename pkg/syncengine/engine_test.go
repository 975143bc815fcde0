//go:build unit || !integration

package syncengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/docstore/inmemory"
	"github.com/dsx-project/dsx/pkg/docstore/noop"
	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/pubsub"
	"github.com/dsx-project/dsx/pkg/syncengine/test"
)

type EngineTestSuite struct {
	suite.Suite
	ctx         context.Context
	store       *inmemory.Store
	broadcaster *test.RecordingBroadcaster
	published   *pubsub.InMemorySubscriber[models.ChangeRecord]
	engine      *Engine
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.store = inmemory.NewStore()
	s.broadcaster = test.NewRecordingBroadcaster("c1", "c2", "c3")
	s.published = pubsub.NewInMemorySubscriber[models.ChangeRecord]()
	s.engine = s.newEngine(s.store)
}

func (s *EngineTestSuite) newEngine(store docstore.Store) *Engine {
	engine, err := NewEngine(Params{
		InstanceID:  "instance-a",
		Store:       store,
		Broadcaster: s.broadcaster,
		Publisher:   pubsub.PublisherFunc[models.ChangeRecord](s.published.Handle),
	})
	s.Require().NoError(err)
	return engine
}

func (s *EngineTestSuite) TestApiCreateBroadcastsToAllAndPublishes() {
	err := s.engine.Handle(s.ctx, models.Intent{
		Op:         models.OpCreate,
		Key:        "u1",
		Attributes: models.Attributes{"name": "ada"},
		Origin:     models.OriginAPI,
	})
	s.Require().NoError(err)

	doc, err := s.store.FindOne(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("ada", doc.Attributes["name"])

	expected := models.ChangeRecord{
		Kind:       models.ChangeCreated,
		Key:        "u1",
		Attributes: models.Attributes{"name": "ada"},
		Origin:     "instance-a",
	}
	s.Len(s.broadcaster.Deliveries(), 3)
	for _, id := range []string{"c1", "c2", "c3"} {
		s.Equal([]models.ChangeRecord{expected}, s.broadcaster.For(id))
	}
	s.Equal([]models.ChangeRecord{expected}, s.published.Events())
}

func (s *EngineTestSuite) TestLocalEventSkipsOriginator() {
	err := s.engine.Handle(s.ctx, models.Intent{
		Op:           models.OpCreate,
		Key:          "u1",
		Attributes:   models.Attributes{"name": "ada"},
		Origin:       models.OriginLocalEvent,
		ConnectionID: "c2",
	})
	s.Require().NoError(err)

	s.Empty(s.broadcaster.For("c2"))
	s.Len(s.broadcaster.For("c1"), 1)
	s.Len(s.broadcaster.For("c3"), 1)
	s.Len(s.published.Events(), 1)
}

func (s *EngineTestSuite) TestBusChangeBroadcastsToAllWithoutRepublishing() {
	err := s.engine.HandleChange(s.ctx, models.ChangeRecord{
		Kind:       models.ChangeCreated,
		Key:        "u1",
		Attributes: models.Attributes{"name": "ada"},
		Origin:     "instance-b",
	})
	s.Require().NoError(err)

	s.Len(s.broadcaster.Deliveries(), 3)
	s.Equal("instance-b", s.broadcaster.For("c1")[0].Origin)
	s.Empty(s.published.Events())

	_, err = s.store.FindOne(s.ctx, "u1")
	s.NoError(err)
}

func (s *EngineTestSuite) TestOwnBusChangeDiscarded() {
	err := s.engine.HandleChange(s.ctx, models.ChangeRecord{
		Kind:   models.ChangeDeleted,
		Key:    "u1",
		Origin: "instance-a",
	})
	s.Require().NoError(err)
	s.Empty(s.broadcaster.Deliveries())
	s.Empty(s.published.Events())
}

func (s *EngineTestSuite) TestBusIntentOnHandleRejected() {
	err := s.engine.Handle(s.ctx, models.Intent{Op: models.OpDelete, Key: "u1", Origin: models.OriginBusEvent})
	s.True(models.IsErrMalformedIntent(err))
}

func (s *EngineTestSuite) TestUpdateMergesAndAnnouncesPartial() {
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument("u1", models.Attributes{"name": "ada", "team": "core"})))

	err := s.engine.Handle(s.ctx, models.Intent{
		Op:         models.OpUpdate,
		Key:        "u1",
		Attributes: models.Attributes{"team": "infra", "name": nil},
		Origin:     models.OriginAPI,
	})
	s.Require().NoError(err)

	doc, err := s.store.FindOne(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(models.Attributes{"name": "ada", "team": "infra"}, doc.Attributes)

	change := s.broadcaster.For("c1")[0]
	s.Equal(models.ChangeUpdated, change.Kind)
	s.Equal(models.Attributes{"team": "infra", "name": nil}, change.Attributes)
}

func (s *EngineTestSuite) TestUpdateOfMissingKeyIsNotAnnounced() {
	for _, origin := range []models.Origin{models.OriginAPI, models.OriginLocalEvent} {
		err := s.engine.Handle(s.ctx, models.Intent{
			Op:           models.OpUpdate,
			Key:          "ghost",
			Attributes:   models.Attributes{"age": 1},
			Origin:       origin,
			ConnectionID: "c1",
		})
		s.Require().NoError(err)
	}
	err := s.engine.HandleChange(s.ctx, models.ChangeRecord{
		Kind:       models.ChangeUpdated,
		Key:        "ghost",
		Attributes: models.Attributes{"age": 2},
		Origin:     "instance-b",
	})
	s.Require().NoError(err)

	s.Empty(s.broadcaster.Deliveries())
	s.Empty(s.published.Events())
	_, err = s.store.FindOne(s.ctx, "ghost")
	s.True(docstore.IsNotFound(err))
}

func (s *EngineTestSuite) TestUpdateWithOnlyNullsIsNotAnnounced() {
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument("u1", models.Attributes{"name": "ada"})))

	err := s.engine.Handle(s.ctx, models.Intent{
		Op:         models.OpUpdate,
		Key:        "u1",
		Attributes: models.Attributes{"name": nil},
		Origin:     models.OriginAPI,
	})
	s.Require().NoError(err)
	s.Empty(s.broadcaster.Deliveries())
	s.Empty(s.published.Events())
}

func (s *EngineTestSuite) TestDeleteAndDeleteAll() {
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument("u1", nil)))
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument("u2", nil)))

	s.Require().NoError(s.engine.Handle(s.ctx, models.Intent{Op: models.OpDelete, Key: "u1", Origin: models.OriginAPI}))
	s.Require().NoError(s.engine.Handle(s.ctx, models.Intent{Op: models.OpDeleteAll, Origin: models.OriginAPI}))

	all, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)

	changes := s.broadcaster.For("c1")
	s.Require().Len(changes, 2)
	s.Equal(models.ChangeRecord{Kind: models.ChangeDeleted, Key: "u1", Origin: "instance-a"}, changes[0])
	s.Equal(models.ChangeRecord{Kind: models.ChangeAllDeleted, Origin: "instance-a"}, changes[1])
}

func (s *EngineTestSuite) TestMalformedIntentNeverReachesStore() {
	err := s.engine.Handle(s.ctx, models.Intent{
		Op:         models.OpCreate,
		Attributes: models.Attributes{"name": "anonymous"},
		Origin:     models.OriginAPI,
	})
	s.True(models.IsErrMalformedIntent(err))

	all, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)
	s.Empty(s.broadcaster.Deliveries())
	s.Empty(s.published.Events())
}

func (s *EngineTestSuite) TestUnavailableStoreDropsIntent() {
	engine := s.newEngine(noop.NewStore())

	err := engine.Handle(s.ctx, models.Intent{Op: models.OpCreate, Key: "a1", Origin: models.OriginAPI})
	s.True(docstore.IsUnavailable(err))
	s.Empty(s.broadcaster.Deliveries())
	s.Empty(s.published.Events())

	err = engine.HandleChange(s.ctx, models.ChangeRecord{Kind: models.ChangeCreated, Key: "a1", Origin: "instance-b"})
	s.True(docstore.IsUnavailable(err))
	s.Empty(s.broadcaster.Deliveries())
}

func (s *EngineTestSuite) TestPublishFailureDoesNotFailIntent() {
	engine, err := NewEngine(Params{
		InstanceID:  "instance-a",
		Store:       s.store,
		Broadcaster: s.broadcaster,
		Publisher: pubsub.PublisherFunc[models.ChangeRecord](func(context.Context, models.ChangeRecord) error {
			return pubsub.ErrUnavailable
		}),
	})
	s.Require().NoError(err)

	s.NoError(engine.Handle(s.ctx, models.Intent{Op: models.OpCreate, Key: "u1", Origin: models.OriginAPI}))
	s.Len(s.broadcaster.Deliveries(), 3)
}

func (s *EngineTestSuite) TestNewEngineValidatesParams() {
	_, err := NewEngine(Params{Store: s.store, Broadcaster: s.broadcaster})
	s.Error(err)
	_, err = NewEngine(Params{InstanceID: "x", Broadcaster: s.broadcaster})
	s.Error(err)

	engine, err := NewEngine(Params{InstanceID: "x", Store: s.store, Broadcaster: s.broadcaster})
	s.Require().NoError(err)
	s.NoError(engine.Handle(s.ctx, models.Intent{Op: models.OpCreate, Key: "u1", Origin: models.OriginAPI}))
}
