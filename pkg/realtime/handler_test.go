//go:build unit || !integration

package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/docstore/inmemory"
	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/presence"
	"github.com/dsx-project/dsx/pkg/syncengine"
)

type HandlerTestSuite struct {
	suite.Suite
	ctx     context.Context
	events  models.EventNames
	store   *inmemory.Store
	hub     *Hub
	handler *Handler
	server  *httptest.Server
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (s *HandlerTestSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.events = models.NewEventNames("user")
	s.store = inmemory.NewStore()
	s.hub = NewHub(s.events)

	engine, err := syncengine.NewEngine(syncengine.Params{
		InstanceID:  "instance-a",
		Store:       s.store,
		Broadcaster: s.hub,
	})
	s.Require().NoError(err)
	tracker, err := presence.NewTracker(presence.TrackerParams{Store: s.store, Engine: engine})
	s.Require().NoError(err)

	s.handler = NewHandler(HandlerParams{
		InstanceID: "instance-a",
		Events:     s.events,
		Hub:        s.hub,
		Engine:     engine,
		Presence:   tracker,
	})
	s.server = httptest.NewServer(s.handler)
}

func (s *HandlerTestSuite) TearDownTest() {
	s.hub.CloseAll()
	s.server.Close()
}

// dial opens a client and consumes the instance announcement.
func (s *HandlerTestSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = ws.Close() })

	frame := s.read(ws)
	s.Equal(s.events.InstanceID, frame.Event)
	s.Equal(`"instance-a"`, string(frame.Data))
	return ws
}

func (s *HandlerTestSuite) send(ws *websocket.Conn, event string, data string) {
	frame := Frame{Event: event}
	if data != "" {
		frame.Data = json.RawMessage(data)
	}
	s.Require().NoError(ws.WriteJSON(frame))
}

func (s *HandlerTestSuite) read(ws *websocket.Conn) Frame {
	s.Require().NoError(ws.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var frame Frame
	s.Require().NoError(ws.ReadJSON(&frame))
	return frame
}

func (s *HandlerTestSuite) seed(key string, attrs models.Attributes) {
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument(key, attrs)))
}

func (s *HandlerTestSuite) connected(key string) bool {
	doc, err := s.store.FindOne(s.ctx, key)
	s.Require().NoError(err)
	connected, _ := doc.Connected()
	return connected
}

func (s *HandlerTestSuite) TestConnectMarksPresenceForOthers() {
	s.seed("u1", models.Attributes{"name": "ada", models.ConnectedField: false})
	observer := s.dial()
	client := s.dial()

	s.send(client, s.events.ConnectRequest, `"u1"`)
	ack := s.read(client)
	s.Equal(s.events.ConnectConfirmed, ack.Event)
	s.Equal(`"u1"`, string(ack.Data))

	update := s.read(observer)
	s.Equal(s.events.Updated, update.Event)
	s.JSONEq(`{"uuid":"u1","connected":true}`, string(update.Data))
	s.True(s.connected("u1"))

	s.Require().NoError(client.Close())
	update = s.read(observer)
	s.Equal(s.events.Updated, update.Event)
	s.JSONEq(`{"uuid":"u1","connected":false}`, string(update.Data))
	s.False(s.connected("u1"))
}

func (s *HandlerTestSuite) TestConnectUnknownKeyIsAcknowledged() {
	client := s.dial()
	s.send(client, s.events.ConnectRequest, `{"uuid":"ghost"}`)
	ack := s.read(client)
	s.Equal(s.events.ConnectConfirmed, ack.Event)
	s.Equal(`"ghost"`, string(ack.Data))

	_, err := s.store.FindOne(s.ctx, "ghost")
	s.Error(err)
}

func (s *HandlerTestSuite) TestRebindReleasesPreviousKey() {
	s.seed("u1", models.Attributes{models.ConnectedField: false})
	s.seed("u2", models.Attributes{models.ConnectedField: false})
	client := s.dial()

	s.send(client, s.events.ConnectRequest, `"u1"`)
	s.Equal(s.events.ConnectConfirmed, s.read(client).Event)
	s.send(client, s.events.ConnectRequest, `"u2"`)
	s.Equal(s.events.ConnectConfirmed, s.read(client).Event)

	s.Eventually(func() bool { return !s.connected("u1") && s.connected("u2") }, time.Second, 10*time.Millisecond)
	key, ok := s.handler.Bindings().Key(s.hub.IDs()[0])
	s.True(ok)
	s.Equal("u2", key)
}

func (s *HandlerTestSuite) TestCreateReachesOthersOnly() {
	observer := s.dial()
	client := s.dial()

	s.send(client, s.events.Create, `"{\"uuid\":\"u9\",\"name\":\"grace\"}"`)
	created := s.read(observer)
	s.Equal(s.events.Created, created.Event)
	s.JSONEq(`{"uuid":"u9","name":"grace"}`, string(created.Data))

	// frames are handled in order, so the next frame the sender sees is
	// the reply to its next request
	s.send(client, s.events.ConnectRequest, `"u0"`)
	s.Equal(s.events.ConnectConfirmed, s.read(client).Event)

	doc, err := s.store.FindOne(s.ctx, "u9")
	s.Require().NoError(err)
	s.Equal("grace", doc.Attributes["name"])
}

func (s *HandlerTestSuite) TestUpdateAndDelete() {
	s.seed("u1", models.Attributes{"name": "ada", "age": 36.0})
	observer := s.dial()
	client := s.dial()

	s.send(client, s.events.Update, `{"uuid":"u1","age":37,"name":null}`)
	updated := s.read(observer)
	s.Equal(s.events.Updated, updated.Event)
	doc, err := s.store.FindOne(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("ada", doc.Attributes["name"])
	s.Equal(37.0, doc.Attributes["age"])

	s.send(client, s.events.Delete, `"u1"`)
	deleted := s.read(observer)
	s.Equal(s.events.Deleted, deleted.Event)
	s.Equal(`"u1"`, string(deleted.Data))
	_, err = s.store.FindOne(s.ctx, "u1")
	s.Error(err)
}

func (s *HandlerTestSuite) TestMalformedEventsGetErrorFrames() {
	client := s.dial()

	s.send(client, s.events.Create, `{"name":"no key"}`)
	frame := s.read(client)
	s.Equal(s.events.Error, frame.Event)
	var payload ErrorPayload
	s.Require().NoError(json.Unmarshal(frame.Data, &payload))
	s.Equal(s.events.Create, payload.Event)
	s.Equal(string(models.MalformedIntent), payload.Code)

	s.send(client, "u_user_explode_i", `{}`)
	frame = s.read(client)
	s.Equal(s.events.Error, frame.Event)
	s.Require().NoError(json.Unmarshal(frame.Data, &payload))
	s.Equal(string(models.BadRequestError), payload.Code)

	docs, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *HandlerTestSuite) TestMalformedFramesKeepConnection() {
	s.seed("u1", models.Attributes{models.ConnectedField: false})
	client := s.dial()
	s.send(client, s.events.ConnectRequest, `"u1"`)
	s.Equal(s.events.ConnectConfirmed, s.read(client).Event)
	s.True(s.connected("u1"))

	for _, payload := range []string{"hello", `{"event":`, "", `{"data":"u1"}`, `[1,2]`} {
		s.Require().NoError(client.WriteMessage(websocket.TextMessage, []byte(payload)))
		reply := s.read(client)
		s.Equal(s.events.Error, reply.Event, payload)
		var errPayload ErrorPayload
		s.Require().NoError(json.Unmarshal(reply.Data, &errPayload))
		s.Equal(string(models.BadRequestError), errPayload.Code, payload)
	}

	s.send(client, s.events.ConnectRequest, `"u1"`)
	s.Equal(s.events.ConnectConfirmed, s.read(client).Event)
	s.True(s.connected("u1"))
}

func (s *HandlerTestSuite) TestUnregistersOnClose() {
	client := s.dial()
	s.Eventually(func() bool { return s.hub.Count() == 1 }, time.Second, 10*time.Millisecond)
	s.Require().NoError(client.Close())
	s.Eventually(func() bool { return s.hub.Count() == 0 }, time.Second, 10*time.Millisecond)
}
