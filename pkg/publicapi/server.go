package publicapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	echomiddelware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/publicapi/middleware"
)

type Config struct {
	// These are TCP connection deadlines and not HTTP timeouts. They don't control the time it takes for our handlers
	// to complete. Deadlines operate on the connection, so our server will fail to return a result only after
	// the handlers try to access connection properties
	ReadHeaderTimeout time.Duration // the amount of time allowed to read request headers
	ReadTimeout       time.Duration // the maximum duration for reading the entire request, including the body
	WriteTimeout      time.Duration // the maximum duration before timing out writes of the response

	// RequestHandlerTimeout is the maximum duration for handlers to complete.
	// Websocket connections are exempt.
	RequestHandlerTimeout time.Duration

	// MaxBytesToReadInBody limits request bodies, e.g. "1M".
	MaxBytesToReadInBody string

	// LogLevel is the level request lines are logged at.
	LogLevel string
}

func DefaultConfig() Config {
	return Config{
		ReadHeaderTimeout:     10 * time.Second,
		ReadTimeout:           20 * time.Second,
		WriteTimeout:          20 * time.Second,
		RequestHandlerTimeout: 30 * time.Second,
		MaxBytesToReadInBody:  "1M",
		LogLevel:              "debug",
	}
}

type ServerParams struct {
	Router  *echo.Echo
	Address string
	Port    int
	HostID  string
	Config  Config
	Headers map[string]string
}

// Server configures the public REST API of an instance. Endpoints register
// their routes on Router before ListenAndServe is called.
type Server struct {
	Router  *echo.Echo
	Address string
	Port    int

	hostID     string
	config     Config
	httpServer http.Server
	listener   net.Listener
}

func NewAPIServer(params ServerParams) (*Server, error) {
	if params.Router == nil {
		return nil, errors.New("api server requires a router")
	}
	server := &Server{
		Router:  params.Router,
		Address: params.Address,
		Port:    params.Port,
		hostID:  params.HostID,
		config:  params.Config,
	}

	requestLogger := *zerolog.Ctx(logger.ContextWithInstanceIDLogger(context.Background(), params.HostID))
	logLevel, err := zerolog.ParseLevel(params.Config.LogLevel)
	if err != nil || params.Config.LogLevel == "" {
		logLevel = zerolog.DebugLevel
	}

	server.Router.HideBanner = true
	server.Router.HidePort = true
	server.Router.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	server.Router.Use(
		echomiddelware.Recover(),
		echomiddelware.RequestID(),
		middleware.ContextLogger(requestLogger),
		middleware.RequestLogger(requestLogger, logLevel),
		middleware.SetCrossOrigin(),
		middleware.SetHeaders(params.Headers),
	)
	if params.Config.MaxBytesToReadInBody != "" {
		server.Router.Use(echomiddelware.BodyLimit(params.Config.MaxBytesToReadInBody))
	}
	if params.Config.RequestHandlerTimeout > 0 {
		server.Router.Use(echomiddelware.ContextTimeoutWithConfig(echomiddelware.ContextTimeoutConfig{
			Skipper: middleware.WebsocketSkipper,
			Timeout: params.Config.RequestHandlerTimeout,
		}))
	}

	server.httpServer = http.Server{
		Handler:           server.Router,
		ReadHeaderTimeout: params.Config.ReadHeaderTimeout,
		ReadTimeout:       params.Config.ReadTimeout,
		WriteTimeout:      params.Config.WriteTimeout,
	}
	return server, nil
}

// GetURI returns the HTTP URI that the server is listening on.
func (s *Server) GetURI() *url.URL {
	host := s.Address
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return &url.URL{Scheme: "http", Host: net.JoinHostPort(host, fmt.Sprint(s.Port))}
}

// ListenAndServe binds the listener and serves in the background until
// Shutdown is called. A port of 0 picks a free port, reported by Port
// afterwards.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", net.JoinHostPort(s.Address, fmt.Sprint(s.Port)))
	if err != nil {
		return fmt.Errorf("api server failed to listen on %s:%d: %w", s.Address, s.Port, err)
	}
	s.listener = listener
	if addr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.Port = addr.Port
	}
	s.httpServer.Addr = listener.Addr().String()

	log.Ctx(ctx).Debug().Msgf("API server listening for host %s on %s...", s.hostID, s.httpServer.Addr)

	go func() {
		err := s.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			log.Ctx(ctx).Debug().Msgf("API server closed for host %s on %s.", s.hostID, s.httpServer.Addr)
		} else if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("API server can't run. Cannot serve client requests!")
		}
	}()
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones. Hijacked
// websocket connections are not tracked here and must be closed by their
// owner.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
