package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Handler receives frames from a Connection. Methods may be invoked on a
// separate goroutine, but invocations will never be made concurrently.
type Handler interface {
	// Called when the gateway sends its welcome frame. The connection is
	// not considered established until this happens.
	HandleWelcome(welcome *WelcomeData)

	// Called for each event frame, in the order the gateway delivered
	// them. Replayed events arrive through here as well.
	HandleEvent(name string, messageID string, data json.RawMessage)

	// Called when the connection is closed for any reason. err is nil for
	// a locally initiated close. resumable reports whether the replay
	// cursor is still worth presenting on the next dial; it is false when
	// the gateway rejected the cursor.
	HandleClose(err error, resumable bool)
}

// Options configures a gateway connection.
type Options struct {
	// URL is the gateway endpoint, e.g. "wss://www.guilded.gg/websocket/v1".
	URL string

	// Token is sent as a bearer token during the handshake.
	Token string

	// LastMessageID, if non-empty, asks the gateway to replay all events
	// after the identified message.
	LastMessageID string

	// ServerID, if non-empty, requests a connection scoped to a single
	// server.
	ServerID string

	Logger  logrus.FieldLogger
	Handler Handler

	// Dialer is used for the websocket handshake. Defaults to
	// websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

const connectionSendBufferSize = 100

// Connection is a single websocket connection to the gateway.
type Connection struct {
	logger  logrus.FieldLogger
	handler Handler

	conn              *websocket.Conn
	readLoopDone      chan struct{}
	writeLoopDone     chan struct{}
	outgoing          chan *websocket.PreparedMessage
	close             chan struct{}
	beginClosingOnce  sync.Once
	finishClosingOnce sync.Once

	mu            sync.Mutex
	closeErr      error
	resumable     bool
	lastMessageID string
	lastPingAt    time.Time
	latency       time.Duration
	pingInterval  time.Duration

	heartbeatInterval chan time.Duration
}

// Dial establishes a gateway connection and begins reading from it. The
// given context applies to the handshake only.
func Dial(ctx context.Context, opts Options) (*Connection, error) {
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+opts.Token)
	if opts.LastMessageID != "" {
		header.Set("guilded-last-message-id", opts.LastMessageID)
	}

	url := opts.URL
	if opts.ServerID != "" {
		url += "?teamId=" + opts.ServerID
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "gateway handshake failed with status %d", resp.StatusCode)
		}
		return nil, errors.Wrap(err, "gateway handshake failed")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := &Connection{
		logger:            logger,
		handler:           opts.Handler,
		conn:              conn,
		readLoopDone:      make(chan struct{}),
		writeLoopDone:     make(chan struct{}),
		outgoing:          make(chan *websocket.PreparedMessage, connectionSendBufferSize),
		close:             make(chan struct{}),
		resumable:         true,
		lastMessageID:     opts.LastMessageID,
		heartbeatInterval: make(chan time.Duration, 1),
	}
	conn.SetPongHandler(func(string) error {
		c.mu.Lock()
		if !c.lastPingAt.IsZero() {
			c.latency = time.Since(c.lastPingAt)
		}
		interval := c.pingInterval
		c.mu.Unlock()
		// Only a pong extends the read deadline. A peer that stops
		// answering heartbeats times out after two missed intervals.
		if interval > 0 {
			conn.SetReadDeadline(time.Now().Add(2 * interval))
		}
		return nil
	})
	go c.readLoop()
	go c.writeLoop()
	return c, nil
}

// Send marshals and sends a frame to the gateway. It returns an error if
// the send buffer is full.
func (c *Connection) Send(frame *Frame) error {
	data, err := jsoniter.Marshal(frame)
	if err != nil {
		return errors.Wrap(err, "error marshaling frame")
	}
	prepared, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		return errors.Wrap(err, "error preparing frame")
	}
	select {
	case c.outgoing <- prepared:
	default:
		return fmt.Errorf("send buffer full")
	}
	return nil
}

// Close closes the connection. This must not be called from handler
// functions.
func (c *Connection) Close() error {
	c.beginClosing()
	c.finishClosing()
	return nil
}

// LastMessageID returns the replay cursor: the id of the last event frame
// received from the gateway.
func (c *Connection) LastMessageID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMessageID
}

// Latency returns the round trip time measured by the most recent
// heartbeat, or zero if none has completed yet.
func (c *Connection) Latency() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latency
}

func (c *Connection) setCloseErr(err error) {
	c.mu.Lock()
	if c.closeErr == nil {
		c.closeErr = err
	}
	c.mu.Unlock()
}

func (c *Connection) readLoop() {
	defer close(c.readLoopDone)
	defer c.beginClosing()

	for {
		_, p, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.close:
			default:
				c.setCloseErr(err)
				if !websocket.IsCloseError(err, websocket.CloseAbnormalClosure, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Error(errors.Wrap(err, "websocket read error"))
				}
			}
			return
		}

		c.handleFrame(p)
	}
}

func (c *Connection) handleFrame(data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.logger.WithField("error", err.Error()).Info("malformed gateway frame received")
		return
	}

	if frame.MessageID != "" {
		c.mu.Lock()
		c.lastMessageID = frame.MessageID
		c.mu.Unlock()
	}

	switch frame.Op {
	case OpWelcome:
		var welcome WelcomeData
		if err := jsoniter.Unmarshal(frame.Data, &welcome); err != nil {
			c.logger.WithField("error", err.Error()).Info("malformed welcome frame received")
			return
		}
		if welcome.HeartbeatIntervalMS > 0 {
			interval := time.Duration(welcome.HeartbeatIntervalMS) * time.Millisecond
			c.mu.Lock()
			c.pingInterval = interval
			c.mu.Unlock()
			select {
			case c.heartbeatInterval <- interval:
			default:
			}
		}
		c.handler.HandleWelcome(&welcome)
	case OpEvent:
		c.handler.HandleEvent(frame.EventName, frame.MessageID, frame.Data)
	case OpResume:
		// The gateway has finished replaying missed events.
	case OpInvalidCursor:
		c.mu.Lock()
		c.resumable = false
		c.lastMessageID = ""
		c.mu.Unlock()
		c.logger.Warn("gateway rejected the replay cursor")
	case OpInternalError:
		c.logger.Warn("gateway reported an internal error")
	default:
		c.logger.WithField("op", frame.Op).Info("unknown gateway op received")
	}
}

func (c *Connection) writeLoop() {
	defer c.finishClosing()
	defer close(c.writeLoopDone)

	defer c.conn.Close()

	// Heartbeats don't begin until the welcome frame tells us the
	// interval.
	var heartbeat <-chan time.Time
	var ticker *time.Ticker
	var interval time.Duration
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		var msg *websocket.PreparedMessage
		select {
		case outgoing, ok := <-c.outgoing:
			if !ok {
				return
			}
			msg = outgoing
		case interval = <-c.heartbeatInterval:
			if ticker != nil {
				ticker.Stop()
			}
			ticker = time.NewTicker(interval)
			heartbeat = ticker.C
			// Arm the deadline once; from here on only pongs extend it.
			c.conn.SetReadDeadline(time.Now().Add(2 * interval))
			continue
		case <-heartbeat:
			c.mu.Lock()
			c.lastPingAt = time.Now()
			c.mu.Unlock()
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				if err != websocket.ErrCloseSent {
					c.setCloseErr(err)
					c.logger.Error(errors.Wrap(err, "websocket ping error"))
				}
				return
			}
			continue
		case <-c.close:
			c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}

		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

		if err := c.conn.WritePreparedMessage(msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseAbnormalClosure, websocket.CloseGoingAway) && err != websocket.ErrCloseSent {
				c.setCloseErr(err)
				c.logger.Error(errors.Wrap(err, "websocket write error"))
			}
			return
		}
	}
}

func (c *Connection) beginClosing() {
	c.beginClosingOnce.Do(func() {
		close(c.close)
	})
}

func (c *Connection) finishClosing() {
	<-c.readLoopDone
	<-c.writeLoopDone
	invokeHandler := false
	c.finishClosingOnce.Do(func() {
		invokeHandler = true
	})
	if invokeHandler {
		c.mu.Lock()
		err := c.closeErr
		resumable := c.resumable
		c.mu.Unlock()
		c.handler.HandleClose(err, resumable)
	}
}
