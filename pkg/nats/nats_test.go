//go:build unit || !integration

package nats

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/models"
)

type NATSSuite struct {
	suite.Suite
	ctx    context.Context
	server *ServerManager
}

func TestNATSSuite(t *testing.T) {
	suite.Run(t, new(NATSSuite))
}

func (s *NATSSuite) SetupTest() {
	s.ctx = context.Background()
	var err error
	s.server, err = NewServerManager(s.ctx, ServerManagerParams{Host: "127.0.0.1", Port: -1, ServerName: "a1b2c3"})
	s.Require().NoError(err)
	s.T().Cleanup(s.server.Stop)
}

func (s *NATSSuite) TestClientsExchangeMessagesWithoutEcho() {
	a, err := NewClientManager(s.ctx, ClientParams{Servers: s.server.ClientURL(), Name: "a"})
	s.Require().NoError(err)
	defer a.Stop()
	b, err := NewClientManager(s.ctx, ClientParams{Servers: s.server.ClientURL(), Name: "b"})
	s.Require().NoError(err)
	defer b.Stop()

	fromA, err := a.Client.SubscribeSync("user")
	s.Require().NoError(err)
	fromB, err := b.Client.SubscribeSync("user")
	s.Require().NoError(err)
	s.Require().NoError(a.Client.Flush())
	s.Require().NoError(b.Client.Flush())

	s.Require().NoError(a.Client.Publish("user", []byte("hello")))
	s.Require().NoError(a.Client.Flush())

	msg, err := fromB.NextMsg(time.Second)
	s.Require().NoError(err)
	s.Equal("hello", string(msg.Data))

	_, err = fromA.NextMsg(100 * time.Millisecond)
	s.Error(err, "a connection must not receive its own messages")
}

func (s *NATSSuite) TestPortInUse() {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	_, err = NewServerManager(s.ctx, ServerManagerParams{Host: "127.0.0.1", Port: port})
	var baseErr *models.BaseError
	s.Require().True(errors.As(err, &baseErr))
	s.Equal(models.ConfigurationError, baseErr.Code())
	s.Contains(baseErr.Error(), strconv.Itoa(port))
	s.NotEmpty(baseErr.Hint())
}

func (s *NATSSuite) TestServerLoggerNeverFatal() {
	buf := &bytes.Buffer{}
	l := newServerLogger(zerolog.New(buf), "a1b2c3")
	l.Fatalf("lost %s", "jetstream")

	s.Contains(buf.String(), `"level":"error"`)
	s.Contains(buf.String(), `"Server":"a1b2c3"`)
	s.Contains(buf.String(), `"message":"lost jetstream"`)
}
