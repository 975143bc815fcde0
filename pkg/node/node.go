package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/imdario/mergo"
	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/presence"
	"github.com/dsx-project/dsx/pkg/publicapi"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
	"github.com/dsx-project/dsx/pkg/publicapi/endpoint/agent"
	"github.com/dsx-project/dsx/pkg/publicapi/endpoint/documents"
	"github.com/dsx-project/dsx/pkg/pubsub"
	"github.com/dsx-project/dsx/pkg/realtime"
	"github.com/dsx-project/dsx/pkg/syncengine"
	"github.com/dsx-project/dsx/pkg/system"
	"github.com/dsx-project/dsx/pkg/version"
)

const instanceIDLength = 6

// Node configuration
type NodeConfig struct {
	Config types.Config
	// APIServerConfig is merged over publicapi.DefaultConfig.
	APIServerConfig publicapi.Config
	// CleanupManager, when set, stops the node on cleanup.
	CleanupManager *system.CleanupManager
	// Clock drives the reconnect backoff of remote stores and buses.
	Clock clock.Clock
}

// Node is one instance of the sync service: a document store, a change bus
// to its peers, the websocket hub and the REST API in front of them.
type Node struct {
	// Visible for testing
	ID        string
	Config    types.Config
	APIServer *publicapi.Server
	Store     docstore.Store
	Bus       *Bus
	Engine    *syncengine.Engine
	Presence  *presence.Tracker
	Hub       *realtime.Hub
	Realtime  *realtime.Handler

	publisher *pubsub.AsyncPublisher[models.ChangeRecord]
	cancel    context.CancelFunc

	stopOnce sync.Once
	stopErr  error
}

//nolint:funlen // wiring of every component lives here
func NewNode(ctx context.Context, config NodeConfig) (*Node, error) {
	var err error
	cfg := config.Config
	if cfg.Instance.ID == "" {
		cfg.Instance.ID = uuid.NewString()[:instanceIDLength]
	}
	if config.Clock == nil {
		config.Clock = clock.New()
	}
	if err = mergo.Merge(&config.APIServerConfig, publicapi.DefaultConfig()); err != nil {
		return nil, err
	}
	if cfg.API.LogLevel != "" {
		config.APIServerConfig.LogLevel = cfg.API.LogLevel
	}
	if cfg.API.RequestTimeout > 0 {
		config.APIServerConfig.RequestHandlerTimeout = cfg.API.RequestTimeout.AsTimeDuration()
	}

	ctx = logger.ContextWithInstanceIDLogger(ctx, cfg.Instance.ID)
	ctx, cancel := context.WithCancel(ctx)
	n := &Node{
		ID:     cfg.Instance.ID,
		Config: cfg,
		cancel: cancel,
	}
	defer func() {
		if err != nil {
			_ = n.release(context.WithoutCancel(ctx))
		}
	}()

	n.Store, err = NewStore(ctx, cfg, config.Clock)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create document store")
	}
	n.Bus, err = NewBus(ctx, cfg, n.ID, config.Clock)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create change bus")
	}
	n.publisher = pubsub.NewAsyncPublisher(pubsub.AsyncPublisherParams[models.ChangeRecord]{
		Delegate:  n.Bus,
		QueueSize: cfg.Bus.QueueSize,
		Name:      string(cfg.Bus.Type),
	})

	events := models.NewEventNames(cfg.Resource.Model)
	n.Hub = realtime.NewHub(events)
	n.Engine, err = syncengine.NewEngine(syncengine.Params{
		InstanceID:  n.ID,
		Store:       n.Store,
		Broadcaster: n.Hub,
		Publisher:   n.publisher,
	})
	if err != nil {
		return nil, err
	}
	err = n.Bus.Subscribe(ctx, pubsub.SubscriberFunc[models.ChangeRecord](n.Engine.HandleChange))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to subscribe to change bus")
	}
	n.Presence, err = presence.NewTracker(presence.TrackerParams{
		Store:  n.Store,
		Engine: n.Engine,
	})
	if err != nil {
		return nil, err
	}
	n.Realtime = realtime.NewHandler(realtime.HandlerParams{
		InstanceID:   n.ID,
		Events:       events,
		Hub:          n.Hub,
		Engine:       n.Engine,
		Presence:     n.Presence,
		SendBuffer:   cfg.Realtime.SendBuffer,
		PingInterval: cfg.Realtime.PingInterval.AsTimeDuration(),
	})

	serverVersion := version.Get()
	n.APIServer, err = publicapi.NewAPIServer(publicapi.ServerParams{
		Router:  echo.New(),
		Address: cfg.API.Host,
		Port:    cfg.API.Port,
		HostID:  n.ID,
		Config:  config.APIServerConfig,
		Headers: map[string]string{
			apimodels.HTTPHeaderDSXGitVersion: serverVersion.GitVersion,
			apimodels.HTTPHeaderDSXGitCommit:  serverVersion.GitCommit,
			apimodels.HTTPHeaderDSXBuildDate:  serverVersion.BuildDate.UTC().String(),
			apimodels.HTTPHeaderDSXBuildOS:    serverVersion.GOOS,
			apimodels.HTTPHeaderDSXArch:       serverVersion.GOARCH,
			apimodels.HTTPHeaderInstanceID:    n.ID,
		},
	})
	if err != nil {
		return nil, err
	}
	n.APIServer.Router.GET(cfg.Realtime.Path, echo.WrapHandler(n.Realtime))

	_, err = documents.NewEndpoint(documents.EndpointParams{
		Router:        n.APIServer.Router,
		RoutingPrefix: cfg.Resource.RoutingPrefix,
		Engine:        n.Engine,
		Store:         n.Store,
	})
	if err != nil {
		return nil, err
	}
	agent.NewEndpoint(agent.EndpointParams{
		Router:               n.APIServer.Router,
		InstanceInfoProvider: n,
	})

	if config.CleanupManager != nil {
		config.CleanupManager.RegisterCallbackWithContext(n.Stop)
	}
	return n, nil
}

// Start serves the API and the websocket endpoint. It returns once the
// listener is bound.
func (n *Node) Start(ctx context.Context) error {
	ctx = logger.ContextWithInstanceIDLogger(ctx, n.ID)
	if err := n.APIServer.ListenAndServe(ctx); err != nil {
		return err
	}
	log.Ctx(ctx).Info().
		Str("URL", n.APIServer.GetURI().String()).
		Str("Store", string(n.Config.Store.Type)).
		Bool("StoreAvailable", n.Store.Available()).
		Str("Bus", string(n.Bus.Type)).
		Str("BusAddress", n.Bus.Address).
		Str("Version", version.Get().GitVersion).
		Msgf("instance %s serving %s under %s", n.ID, n.Config.Resource.Model, n.Config.Resource.RoutingPrefix)
	return nil
}

// Stop shuts the node down. New requests are refused first, then open
// connections are closed and their disconnects recorded, queued changes are
// flushed to the bus, and finally the bus and the store are released.
// Calling Stop more than once returns the first result.
func (n *Node) Stop(ctx context.Context) error {
	n.stopOnce.Do(func() {
		var errs *multierror.Error
		if n.APIServer != nil {
			errs = multierror.Append(errs, n.APIServer.Shutdown(ctx))
		}
		if n.Hub != nil {
			n.Hub.CloseAll()
		}
		if n.Realtime != nil {
			n.Realtime.Wait()
		}
		errs = multierror.Append(errs, n.release(ctx))
		n.stopErr = errs.ErrorOrNil()
		log.Ctx(logger.ContextWithInstanceIDLogger(ctx, n.ID)).Debug().Msgf("instance %s stopped", n.ID)
	})
	return n.stopErr
}

// release closes the publisher, bus and store, whichever were built.
func (n *Node) release(ctx context.Context) error {
	var errs *multierror.Error
	if n.publisher != nil {
		errs = multierror.Append(errs, n.publisher.Close(ctx))
	}
	if n.Bus != nil {
		errs = multierror.Append(errs, n.Bus.Close(ctx))
	}
	if n.Store != nil {
		errs = multierror.Append(errs, n.Store.Close(ctx))
	}
	n.cancel()
	return errs.ErrorOrNil()
}

// InstanceInfo reports the identity and health of this instance.
func (n *Node) InstanceInfo(ctx context.Context) apimodels.GetInstanceResponse {
	return apimodels.GetInstanceResponse{
		InstanceID:     n.ID,
		Model:          n.Config.Resource.Model,
		RoutingPrefix:  n.Config.Resource.RoutingPrefix,
		StoreType:      string(n.Config.Store.Type),
		StoreAvailable: n.Store.Available(),
		BusType:        string(n.Bus.Type),
		BusAvailable:   n.Bus.Available(),
		Connections:    n.Hub.Count(),
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{ID: %s, Store: %s, Bus: %s}", n.ID, n.Config.Store.Type, n.Bus.Type)
}

// compile-time interface assertions
var _ agent.InstanceInfoProvider = (*Node)(nil)
