//go:build unit || !integration

package syncengine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/docstore/inmemory"
	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/pubsub"
	"github.com/dsx-project/dsx/pkg/syncengine/test"
)

// instance is one engine with its own connections, joined to a shared bus
// and a shared store.
type instance struct {
	engine      *Engine
	broadcaster *test.RecordingBroadcaster
	bus         *pubsub.InMemoryPubSub[models.ChangeRecord]
	published   int
}

type ClusterTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *inmemory.Store
	instances []*instance
}

func TestClusterTestSuite(t *testing.T) {
	suite.Run(t, new(ClusterTestSuite))
}

func (s *ClusterTestSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.store = inmemory.NewStore()
	s.instances = nil
}

func (s *ClusterTestSuite) join(bus *pubsub.InMemoryPubSub[models.ChangeRecord], connections ...string) *instance {
	inst := &instance{
		broadcaster: test.NewRecordingBroadcaster(connections...),
		bus:         bus,
	}
	publisher := pubsub.PublisherFunc[models.ChangeRecord](func(ctx context.Context, c models.ChangeRecord) error {
		inst.published++
		return bus.Publish(ctx, c)
	})
	engine, err := NewEngine(Params{
		InstanceID:  fmt.Sprintf("instance-%d", len(s.instances)),
		Store:       s.store,
		Broadcaster: inst.broadcaster,
		Publisher:   publisher,
	})
	s.Require().NoError(err)
	inst.engine = engine
	s.Require().NoError(bus.Subscribe(s.ctx, pubsub.SubscriberFunc[models.ChangeRecord](engine.HandleChange)))
	s.instances = append(s.instances, inst)
	return inst
}

func (s *ClusterTestSuite) TestChangeReachesPeerConnectionsOnce() {
	network := pubsub.NewInMemoryNetwork[models.ChangeRecord]()
	a := s.join(network.Join(), "a1", "a2")
	b := s.join(network.Join(), "b1")
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument("u1", nil)))

	err := a.engine.Handle(s.ctx, models.Intent{
		Op:           models.OpUpdate,
		Key:          "u1",
		Attributes:   models.Attributes{"connected": true},
		Origin:       models.OriginLocalEvent,
		ConnectionID: "a1",
	})
	s.Require().NoError(err)

	s.Empty(a.broadcaster.For("a1"))
	s.Len(a.broadcaster.For("a2"), 1)
	s.Len(b.broadcaster.For("b1"), 1)
	s.Equal(1, a.published)
	s.Zero(b.published, "bus changes must not be relayed again")
}

func (s *ClusterTestSuite) TestEchoingBusDoesNotLoop() {
	// a bus without publisher exclusion hands every message back to its sender
	a := s.join(pubsub.NewInMemoryPubSub[models.ChangeRecord](), "a1")

	s.Require().NoError(a.engine.Handle(s.ctx, models.Intent{Op: models.OpCreate, Key: "u1", Origin: models.OriginAPI}))

	s.Len(a.broadcaster.For("a1"), 1)
	s.Equal(1, a.published)
}
