package nats

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const DefaultReconnectWait = 5 * time.Second

type ClientParams struct {
	// Servers is a comma separated list of server URLs.
	Servers string
	// Name identifies the connection on the server, usually the instance ID.
	Name          string
	ReconnectWait time.Duration
}

type ClientManager struct {
	Client *nats.Conn
}

// NewClientManager connects to the servers. The connection never echoes
// messages back to its own subscriptions, and keeps reconnecting in the
// background for as long as the process runs.
func NewClientManager(ctx context.Context, params ClientParams, options ...nats.Option) (*ClientManager, error) {
	if params.ReconnectWait == 0 {
		params.ReconnectWait = DefaultReconnectWait
	}
	logger := log.Ctx(ctx).With().Str("Component", transportClientComponent).Logger()
	opts := []nats.Option{
		nats.Name(params.Name),
		nats.NoEcho(),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(params.ReconnectWait),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("disconnected from NATS, relaying to peers paused")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Msgf("reconnected to NATS at %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			ev := logger.Error().Err(err)
			if sub != nil {
				ev = ev.Str("Subject", sub.Subject)
			}
			ev.Msg("NATS async error")
		}),
	}
	nc, err := nats.Connect(params.Servers, append(opts, options...)...)
	if err != nil {
		return nil, interceptConnectionError(err, params.Servers)
	}
	return &ClientManager{
		Client: nc,
	}, nil
}

// Stop stops the NATS client
func (cm *ClientManager) Stop() {
	cm.Client.Close()
}
