//go:build unit || !integration

package node

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/config/types"
	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/client"
	"github.com/dsx-project/dsx/pkg/realtime"
	"github.com/dsx-project/dsx/pkg/system"
)

const frameTimeout = 5 * time.Second

type NodeTestSuite struct {
	suite.Suite
	ctx    context.Context
	events models.EventNames
}

func TestNodeTestSuite(t *testing.T) {
	suite.Run(t, new(NodeTestSuite))
}

func (s *NodeTestSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.events = models.NewEventNames(types.DefaultModel)
}

func (s *NodeTestSuite) config(id string, store types.StoreType, bus types.BusType) types.Config {
	cfg := types.Default
	cfg.DataDir = s.T().TempDir()
	cfg.Instance.ID = id
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 0
	cfg.Store.Type = store
	cfg.Bus.Type = bus
	cfg.Bus.EmbeddedPort = -1
	return cfg
}

func (s *NodeTestSuite) startNode(cfg types.Config) *Node {
	n, err := NewNode(s.ctx, NodeConfig{Config: cfg})
	s.Require().NoError(err)
	s.Require().NoError(n.Start(s.ctx))
	s.T().Cleanup(func() { _ = n.Stop(context.Background()) })
	return n
}

func (s *NodeTestSuite) client(n *Node) *client.Client {
	c, err := client.New(n.APIServer.GetURI().String(), client.WithRetryMax(0))
	s.Require().NoError(err)
	return c
}

func (s *NodeTestSuite) dial(n *Node) *websocket.Conn {
	ws, _, err := websocket.DefaultDialer.Dial(s.client(n).SocketURL(), nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = ws.Close() })

	frame := s.readFrame(ws)
	s.Equal(s.events.InstanceID, frame.Event)
	s.JSONEq(`"`+n.ID+`"`, string(frame.Data))
	return ws
}

func (s *NodeTestSuite) readFrame(ws *websocket.Conn) realtime.Frame {
	s.Require().NoError(ws.SetReadDeadline(time.Now().Add(frameTimeout)))
	var frame realtime.Frame
	s.Require().NoError(ws.ReadJSON(&frame))
	return frame
}

func (s *NodeTestSuite) TestServesRestAndSocket() {
	n := s.startNode(s.config("node-a", types.StoreInMemory, types.BusDisabled))
	c := s.client(n)
	ws := s.dial(n)

	doc := models.NewDocument("k1", models.Attributes{"name": "ada"})
	created, err := c.Create(s.ctx, doc)
	s.Require().NoError(err)
	s.Equal(doc, created)

	frame := s.readFrame(ws)
	s.Equal(s.events.Created, frame.Event)
	var received models.Document
	s.Require().NoError(json.Unmarshal(frame.Data, &received))
	s.Equal(doc, received)

	info, err := c.Instance(s.ctx)
	s.Require().NoError(err)
	s.Equal("node-a", info.InstanceID)
	s.Equal(string(types.StoreInMemory), info.StoreType)
	s.True(info.StoreAvailable)
	s.Equal(string(types.BusDisabled), info.BusType)
	s.Equal(1, info.Connections)
}

func (s *NodeTestSuite) TestRandomInstanceID() {
	n, err := NewNode(s.ctx, NodeConfig{Config: s.config("", types.StoreInMemory, types.BusDisabled)})
	s.Require().NoError(err)
	defer func() { s.NoError(n.Stop(s.ctx)) }()
	s.Len(n.ID, instanceIDLength)
	s.Equal(n.ID, n.Engine.InstanceID())
}

func (s *NodeTestSuite) TestFileStores() {
	for _, store := range []types.StoreType{types.StoreBoltDB, types.StoreSQLite} {
		s.Run(string(store), func() {
			cfg := s.config("node-"+string(store), store, types.BusDisabled)
			cfg.Store.Path = filepath.Join(cfg.DataDir, "docs."+string(store))
			n := s.startNode(cfg)
			c := s.client(n)

			_, err := c.Create(s.ctx, models.NewDocument("k1", models.Attributes{"n": 1.0}))
			s.Require().NoError(err)
			docs, err := c.ReadAll(s.ctx)
			s.Require().NoError(err)
			s.Len(docs, 1)
			s.Require().NoError(n.Stop(s.ctx))
			s.FileExists(cfg.Store.Path)
		})
	}
}

func (s *NodeTestSuite) TestDisabledStoreStillServes() {
	n := s.startNode(s.config("node-a", types.StoreDisabled, types.BusDisabled))
	c := s.client(n)

	_, err := c.Create(s.ctx, models.NewDocument("k1", nil))
	s.Require().NoError(err)
	docs, err := c.ReadAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *NodeTestSuite) TestChangesReachPeers() {
	a := s.startNode(s.config("node-a", types.StoreInMemory, types.BusEmbedded))
	cfgB := s.config("node-b", types.StoreInMemory, types.BusNATS)
	cfgB.Bus.Address = a.Bus.Address
	b := s.startNode(cfgB)

	s.Eventually(b.Bus.Available, frameTimeout, 10*time.Millisecond)
	wsB := s.dial(b)

	doc := models.NewDocument("k1", models.Attributes{"name": "ada"})
	_, err := s.client(a).Create(s.ctx, doc)
	s.Require().NoError(err)

	frame := s.readFrame(wsB)
	s.Equal(s.events.Created, frame.Event)
	var received models.Document
	s.Require().NoError(json.Unmarshal(frame.Data, &received))
	s.Equal(doc, received)

	s.Require().NoError(s.client(a).DeleteAll(s.ctx))
	s.Equal(s.events.AllDeleted, s.readFrame(wsB).Event)
}

func (s *NodeTestSuite) TestUnknownStoreType() {
	_, err := NewNode(s.ctx, NodeConfig{Config: s.config("node-a", "cassandra", types.BusDisabled)})
	s.Error(err)
}

func (s *NodeTestSuite) TestStopClosesSockets() {
	cm := system.NewCleanupManager()
	n, err := NewNode(s.ctx, NodeConfig{
		Config:         s.config("node-a", types.StoreInMemory, types.BusDisabled),
		CleanupManager: cm,
	})
	s.Require().NoError(err)
	s.Require().NoError(n.Start(s.ctx))
	ws := s.dial(n)

	cm.Cleanup(s.ctx)
	s.Require().NoError(ws.SetReadDeadline(time.Now().Add(frameTimeout)))
	_, _, err = ws.ReadMessage()
	s.Error(err)
	s.Zero(n.Hub.Count())
	s.NoError(n.Stop(s.ctx))
}
