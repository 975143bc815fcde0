package nats

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/models"
)

const ReadyForConnectionsTimeout = 5 * time.Second

type ServerManagerParams struct {
	Host string
	// Port to listen on. -1 picks a random free port.
	Port              int
	ServerName        string
	ConnectionTimeout time.Duration
}

// ServerManager runs an in-process NATS server so that a single instance,
// or a small fleet pointing at it, needs no external broker.
type ServerManager struct {
	Server *server.Server
}

// NewServerManager is a helper function to create a NATS server with a given options
func NewServerManager(ctx context.Context, params ServerManagerParams) (*ServerManager, error) {
	if params.Port > 0 && !portAvailable(params.Host, params.Port) {
		return nil, NewConfigurationError("bus port %d is already in use", params.Port).
			WithHint("stop the other process using this port, or set a different port in Bus.Address")
	}

	opts := &server.Options{
		Host:       params.Host,
		Port:       params.Port,
		ServerName: params.ServerName,
		NoSigs:     true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, models.WrapBaseError(err, "failed to create embedded NATS server").
			WithComponent(transportServerComponent).
			WithCode(models.ConfigurationError)
	}
	ns.SetLoggerV2(newServerLogger(*log.Ctx(ctx), opts.ServerName), false, false, false)
	go ns.Start()

	if params.ConnectionTimeout == 0 {
		params.ConnectionTimeout = ReadyForConnectionsTimeout
	}
	if !ns.ReadyForConnections(params.ConnectionTimeout) {
		ns.Shutdown()
		return nil, NewConfigurationError("embedded NATS not ready for connection within %s", params.ConnectionTimeout)
	}
	log.Ctx(ctx).Debug().Msgf("NATS server %s listening on %s", ns.ID(), ns.ClientURL())
	return &ServerManager{
		Server: ns,
	}, nil
}

// ClientURL is the URL clients use to reach the server.
func (sm *ServerManager) ClientURL() string {
	return sm.Server.ClientURL()
}

// Stop stops the NATS server
func (sm *ServerManager) Stop() {
	sm.Server.Shutdown()
	sm.Server.WaitForShutdown()
}

func portAvailable(host string, port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}
