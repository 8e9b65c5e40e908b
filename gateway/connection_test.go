package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Name      string
	MessageID string
	Data      json.RawMessage
}

type testClose struct {
	Err       error
	Resumable bool
}

type testHandler struct {
	Welcomes chan *WelcomeData
	Events   chan testEvent
	Closes   chan testClose
}

func newTestHandler() *testHandler {
	return &testHandler{
		Welcomes: make(chan *WelcomeData, 10),
		Events:   make(chan testEvent, 10),
		Closes:   make(chan testClose, 10),
	}
}

func (h *testHandler) HandleWelcome(welcome *WelcomeData) {
	h.Welcomes <- welcome
}

func (h *testHandler) HandleEvent(name string, messageID string, data json.RawMessage) {
	h.Events <- testEvent{Name: name, MessageID: messageID, Data: data}
}

func (h *testHandler) HandleClose(err error, resumable bool) {
	h.Closes <- testClose{Err: err, Resumable: resumable}
}

type gatewayServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	conns    chan *websocket.Conn
}

// newGatewayServer starts a fake gateway that upgrades each request and
// sends a welcome frame with a heartbeat interval long enough to never
// fire during a test.
func newGatewayServer(t *testing.T) *gatewayServer {
	return newGatewayServerWithInterval(t, 600000)
}

func newGatewayServerWithInterval(t *testing.T, heartbeatIntervalMS int) *gatewayServer {
	s := &gatewayServer{
		conns: make(chan *websocket.Conn, 10),
	}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(context.Background()))
		s.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		require.NoError(t, conn.WriteJSON(&Frame{
			Op:        OpWelcome,
			MessageID: "welcome-1",
			Data:      json.RawMessage(fmt.Sprintf(`{"heartbeatIntervalMs":%d,"lastMessageId":"welcome-1","botId":"bot-id","user":{"id":"user-id","name":"testbot"}}`, heartbeatIntervalMS)),
		}))
		s.conns <- conn
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *gatewayServer) URLString() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

func (s *gatewayServer) LastRequest() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

func waitForClose(t *testing.T, h *testHandler) testClose {
	select {
	case c := <-h.Closes:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for close")
		return testClose{}
	}
}

func TestConnection(t *testing.T) {
	server := newGatewayServer(t)
	handler := newTestHandler()

	conn, err := Dial(context.Background(), Options{
		URL:     server.URLString(),
		Token:   "test-token",
		Handler: handler,
	})
	require.NoError(t, err)

	welcome := <-handler.Welcomes
	assert.Equal(t, 600000, welcome.HeartbeatIntervalMS)
	assert.Equal(t, "bot-id", welcome.BotID)

	request := server.LastRequest()
	require.NotNil(t, request)
	assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
	assert.Empty(t, request.Header.Get("guilded-last-message-id"))

	serverConn := <-server.conns
	require.NoError(t, serverConn.WriteJSON(&Frame{
		Op:        OpEvent,
		EventName: "ChatMessageCreated",
		MessageID: "event-1",
		Data:      json.RawMessage(`{"serverId":"server-id"}`),
	}))

	event := <-handler.Events
	assert.Equal(t, "ChatMessageCreated", event.Name)
	assert.Equal(t, "event-1", event.MessageID)
	assert.Equal(t, "event-1", conn.LastMessageID())

	require.NoError(t, conn.Close())
	closed := waitForClose(t, handler)
	assert.NoError(t, closed.Err)
	assert.True(t, closed.Resumable)
}

func TestConnection_ResumeHeader(t *testing.T) {
	server := newGatewayServer(t)
	handler := newTestHandler()

	conn, err := Dial(context.Background(), Options{
		URL:           server.URLString(),
		Token:         "test-token",
		LastMessageID: "resume-from",
		Handler:       handler,
	})
	require.NoError(t, err)
	defer conn.Close()

	request := server.LastRequest()
	require.NotNil(t, request)
	assert.Equal(t, "resume-from", request.Header.Get("guilded-last-message-id"))
	assert.Equal(t, "resume-from", conn.LastMessageID())
}

func TestConnection_ServerScope(t *testing.T) {
	server := newGatewayServer(t)
	handler := newTestHandler()

	conn, err := Dial(context.Background(), Options{
		URL:      server.URLString(),
		Token:    "test-token",
		ServerID: "server-id",
		Handler:  handler,
	})
	require.NoError(t, err)
	defer conn.Close()

	request := server.LastRequest()
	require.NotNil(t, request)
	assert.Equal(t, "server-id", request.URL.Query().Get("teamId"))
}

func TestConnection_InvalidCursor(t *testing.T) {
	server := newGatewayServer(t)
	handler := newTestHandler()

	_, err := Dial(context.Background(), Options{
		URL:           server.URLString(),
		Token:         "test-token",
		LastMessageID: "stale-cursor",
		Handler:       handler,
	})
	require.NoError(t, err)

	serverConn := <-server.conns
	require.NoError(t, serverConn.WriteJSON(&Frame{Op: OpInvalidCursor}))
	require.NoError(t, serverConn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second)))

	closed := waitForClose(t, handler)
	assert.False(t, closed.Resumable)
}

func TestConnection_RemoteClose(t *testing.T) {
	server := newGatewayServer(t)
	handler := newTestHandler()

	_, err := Dial(context.Background(), Options{
		URL:     server.URLString(),
		Token:   "test-token",
		Handler: handler,
	})
	require.NoError(t, err)

	serverConn := <-server.conns
	require.NoError(t, serverConn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second)))

	closed := waitForClose(t, handler)
	assert.Error(t, closed.Err)
	assert.True(t, closed.Resumable)
}

func TestConnection_Heartbeat(t *testing.T) {
	server := newGatewayServerWithInterval(t, 50)
	handler := newTestHandler()

	conn, err := Dial(context.Background(), Options{
		URL:     server.URLString(),
		Token:   "test-token",
		Handler: handler,
	})
	require.NoError(t, err)
	defer conn.Close()

	serverConn := <-server.conns
	pings := make(chan struct{}, 100)
	serverConn.SetPingHandler(func(string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return serverConn.WriteControl(websocket.PongMessage, nil, time.Now().Add(time.Second))
	})
	go func() {
		for {
			if _, _, err := serverConn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-pings:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a ping")
		}
	}

	require.Eventually(t, func() bool {
		return conn.Latency() > 0
	}, 5*time.Second, 10*time.Millisecond)

	// Pongs kept the connection alive well past the interval.
	select {
	case closed := <-handler.Closes:
		t.Fatalf("connection closed unexpectedly: %v", closed.Err)
	default:
	}
}

func TestConnection_StaleConnectionCloses(t *testing.T) {
	server := newGatewayServerWithInterval(t, 100)
	handler := newTestHandler()

	_, err := Dial(context.Background(), Options{
		URL:     server.URLString(),
		Token:   "test-token",
		Handler: handler,
	})
	require.NoError(t, err)

	// The server never reads, so pings go unanswered and the read
	// deadline is never extended.
	<-server.conns

	start := time.Now()
	closed := waitForClose(t, handler)
	assert.Error(t, closed.Err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestConnection_Send(t *testing.T) {
	server := newGatewayServer(t)
	handler := newTestHandler()

	conn, err := Dial(context.Background(), Options{
		URL:     server.URLString(),
		Token:   "test-token",
		Handler: handler,
	})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Send(&Frame{Op: OpResume, MessageID: "resume-from"}))

	serverConn := <-server.conns
	var frame Frame
	require.NoError(t, serverConn.ReadJSON(&frame))
	assert.Equal(t, OpResume, frame.Op)
	assert.Equal(t, "resume-from", frame.MessageID)
}
