package node

import (
	"context"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	pkgerrors "github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/docstore/boltdb"
	"github.com/dsx-project/dsx/pkg/docstore/inmemory"
	"github.com/dsx-project/dsx/pkg/docstore/mongo"
	"github.com/dsx-project/dsx/pkg/docstore/noop"
	"github.com/dsx-project/dsx/pkg/docstore/sqlite"
	"github.com/dsx-project/dsx/pkg/docstore/supervised"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/nats"
	"github.com/dsx-project/dsx/pkg/pubsub"
	natspubsub "github.com/dsx-project/dsx/pkg/pubsub/nats"
	redispubsub "github.com/dsx-project/dsx/pkg/pubsub/redis"
)

const embeddedBusHost = "127.0.0.1"

// NewStore builds the document store selected by cfg.Store.Type. Stores
// that connect over the network are supervised and keep reconnecting in the
// background, so only file and configuration errors surface here.
func NewStore(ctx context.Context, cfg types.Config, clk clock.Clock) (docstore.Store, error) {
	switch cfg.Store.Type {
	case types.StoreMongo:
		store := supervised.NewStore(supervised.Params{
			Name: "MongoStore",
			Backend: mongo.NewStore(mongo.Params{
				URI:              cfg.Store.URI,
				Database:         cfg.Store.Database,
				Collection:       cfg.Resource.Collection,
				OperationTimeout: cfg.Store.OperationTimeout.AsTimeDuration(),
			}),
			RetryInterval: cfg.Store.RetryInterval.AsTimeDuration(),
			Clock:         clk,
		})
		store.Start(ctx)
		return store, nil
	case types.StoreBoltDB:
		store, err := boltdb.NewStore(cfg.StorePath(),
			boltdb.WithCollection(cfg.Resource.Collection),
			boltdb.WithOpenTimeout(cfg.Store.OperationTimeout.AsTimeDuration()))
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to open boltdb store at %s", cfg.StorePath())
		}
		return store, nil
	case types.StoreSQLite:
		store, err := sqlite.NewStore(ctx, cfg.StorePath(), cfg.Resource.Collection)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "failed to open sqlite store at %s", cfg.StorePath())
		}
		return store, nil
	case types.StoreInMemory:
		return inmemory.NewStore(), nil
	case types.StoreDisabled:
		return noop.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

// Bus is the inter-instance change bus together with the transport it owns.
type Bus struct {
	pubsub.PubSub[models.ChangeRecord]
	Type types.BusType
	// Address is where peers reach the bus, empty when disabled.
	Address string

	redisClient *goredis.Client
	natsClient  *nats.ClientManager
	natsServer  *nats.ServerManager
}

// Available reports whether changes are currently relayed to peers.
func (b *Bus) Available() bool {
	return pubsub.Available(b.PubSub)
}

// Close unsubscribes and then releases the transport, inner first.
func (b *Bus) Close(ctx context.Context) error {
	err := b.PubSub.Close(ctx)
	if b.redisClient != nil {
		if closeErr := b.redisClient.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if b.natsClient != nil {
		b.natsClient.Stop()
	}
	if b.natsServer != nil {
		b.natsServer.Stop()
	}
	return err
}

// NewBus builds the change bus selected by cfg.Bus.Type. Remote transports
// start disconnected and reconnect on their own, so the instance keeps
// serving local connections while peers are unreachable.
func NewBus(ctx context.Context, cfg types.Config, instanceID string, clk clock.Clock) (*Bus, error) {
	switch cfg.Bus.Type {
	case types.BusRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.Bus.Address})
		ps, err := redispubsub.NewPubSub[models.ChangeRecord](redispubsub.PubSubParams{
			Client:        client,
			Channel:       cfg.BusTopic(),
			RetryInterval: cfg.Bus.RetryInterval.AsTimeDuration(),
			Clock:         clk,
		})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		ps.Start(ctx)
		return &Bus{PubSub: ps, Type: cfg.Bus.Type, Address: cfg.Bus.Address, redisClient: client}, nil
	case types.BusNATS:
		return newNATSBus(ctx, cfg, instanceID, cfg.Bus.Address, nil)
	case types.BusEmbedded:
		server, err := nats.NewServerManager(ctx, nats.ServerManagerParams{
			Host:       embeddedBusHost,
			Port:       cfg.Bus.EmbeddedPort,
			ServerName: instanceID,
		})
		if err != nil {
			return nil, err
		}
		servers := server.ClientURL()
		if extra := strings.TrimSpace(cfg.Bus.Address); extra != "" {
			servers = servers + "," + extra
		}
		bus, err := newNATSBus(ctx, cfg, instanceID, servers, server)
		if err != nil {
			server.Stop()
			return nil, err
		}
		bus.Address = server.ClientURL()
		return bus, nil
	case types.BusDisabled:
		return &Bus{PubSub: pubsub.NewNoopPubSub[models.ChangeRecord](), Type: cfg.Bus.Type}, nil
	default:
		return nil, fmt.Errorf("unknown bus type %q", cfg.Bus.Type)
	}
}

func newNATSBus(
	ctx context.Context, cfg types.Config, instanceID, servers string, server *nats.ServerManager) (*Bus, error) {
	client, err := nats.NewClientManager(ctx, nats.ClientParams{
		Servers:       servers,
		Name:          instanceID,
		ReconnectWait: cfg.Bus.RetryInterval.AsTimeDuration(),
	})
	if err != nil {
		return nil, err
	}
	ps, err := natspubsub.NewPubSub[models.ChangeRecord](natspubsub.PubSubParams{
		Conn:    client.Client,
		Subject: cfg.BusTopic(),
	})
	if err != nil {
		client.Stop()
		return nil, err
	}
	return &Bus{
		PubSub:     ps,
		Type:       cfg.Bus.Type,
		Address:    servers,
		natsClient: client,
		natsServer: server,
	}, nil
}
