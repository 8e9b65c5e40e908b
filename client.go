package guilded

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/guildedgo/guilded/gateway"
	"github.com/guildedgo/guilded/rest"
)

// Client is a Guilded bot client. It maintains gateway connections,
// dispatches events to registered handlers, and keeps a cache of the
// objects it has seen.
//
// Register handlers before calling Run. The REST methods can be used
// independently of Run.
type Client struct {
	token  string
	config Config
	logger logrus.FieldLogger
	rest   *rest.Client
	state  *state

	// reconnectDelay is the amount added to the redial delay after each
	// consecutive dial failure. Shortened in tests.
	reconnectDelay time.Duration

	handlersMu    sync.RWMutex
	handlers      map[string][]func(interface{})
	catchAll      []func(string, interface{})
	errorHandlers []func(error)

	mu       sync.Mutex
	user     *ClientUser
	conn     *gateway.Connection
	readyCh  chan struct{}
	ready    bool
	cancel   context.CancelFunc
	group    *errgroup.Group
	groupCtx context.Context
	watched  map[string]struct{}
}

// NewClient creates a client for the given bot token. cfg may be nil.
func NewClient(token string, cfg *Config) *Client {
	var config Config
	if cfg != nil {
		config = *cfg
	}
	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	restClient := rest.NewClient(token)
	restClient.Logger = logger
	if config.RestURL != "" {
		restClient.BaseURL = config.RestURL
	}
	if config.HTTPClient != nil {
		restClient.HTTPClient = config.HTTPClient
	}
	if config.UserAgent != "" {
		restClient.UserAgent = config.UserAgent
	}

	return &Client{
		token:          token,
		config:         config,
		logger:         logger,
		rest:           restClient,
		state:          newState(config.maxMessageCache()),
		reconnectDelay: reconnectDelayStep,
		readyCh:        make(chan struct{}),
		watched:        map[string]struct{}{},
	}
}

// Rest returns the underlying REST client, for requests the typed
// methods don't cover.
func (c *Client) Rest() *rest.Client {
	return c.rest
}

// User returns the bot's own user, or nil before the first gateway
// welcome has been received.
func (c *Client) User() *ClientUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Ready reports whether the client has an established gateway connection.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// WaitUntilReady blocks until the client is ready or the context is
// canceled.
func (c *Client) WaitUntilReady(ctx context.Context) error {
	c.mu.Lock()
	ch := c.readyCh
	c.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latency returns the most recent heartbeat round trip time on the main
// gateway connection, or zero if none has completed.
func (c *Client) Latency() time.Duration {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return 0
	}
	return conn.Latency()
}

const reconnectDelayStep = 5 * time.Second

// Run connects to the gateway and dispatches events until the context is
// canceled or Close is called. Lost connections are re-established with a
// linearly increasing delay that resets once a connection succeeds.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.group != nil {
		c.mu.Unlock()
		return errors.New("client is already running")
	}
	g, gctx := errgroup.WithContext(ctx)
	c.cancel = cancel
	c.group = g
	c.groupCtx = gctx
	watched := make([]string, 0, len(c.watched))
	for serverID := range c.watched {
		watched = append(watched, serverID)
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.group = nil
		c.groupCtx = nil
		c.cancel = nil
		c.mu.Unlock()
	}()

	g.Go(func() error {
		return c.runConnection(gctx, "")
	})
	for _, serverID := range watched {
		serverID := serverID
		g.Go(func() error {
			return c.runConnection(gctx, serverID)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Open connects in the background and blocks only until the client is
// ready. Use Run when blocking is acceptable; use Close to stop a client
// started with Open.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.group != nil {
		c.mu.Unlock()
		return errors.New("client is already running")
	}
	c.mu.Unlock()

	go func() {
		if err := c.Run(context.Background()); err != nil {
			c.logger.Error(errors.Wrap(err, "client stopped"))
		}
	}()
	return c.WaitUntilReady(ctx)
}

// Close stops a running client. It is safe to call from handlers.
func (c *Client) Close() error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (c *Client) gatewayURL() string {
	if c.config.GatewayURL != "" {
		return c.config.GatewayURL
	}
	return DefaultGatewayURL
}

// watchServer arranges for a dedicated gateway connection scoped to the
// given server. If the client is running, the connection is dialed
// immediately; otherwise it is dialed when Run is called.
func (c *Client) watchServer(serverID string) {
	if c.config.DisableServerWebsockets || serverID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.watched[serverID]; ok {
		return
	}
	c.watched[serverID] = struct{}{}
	// The group context is done once Run begins shutting down, at which
	// point no new goroutines may be added to the group.
	if c.group != nil && c.groupCtx.Err() == nil {
		ctx := c.groupCtx
		serverID := serverID
		c.group.Go(func() error {
			return c.runConnection(ctx, serverID)
		})
	}
}

// runConnection dials and re-dials one gateway connection until the
// context is canceled. An empty serverID is the main connection.
func (c *Client) runConnection(ctx context.Context, serverID string) error {
	logger := c.logger
	if serverID != "" {
		logger = logger.WithField("server_id", serverID)
	}

	var lastMessageID string
	var delay time.Duration
	for {
		events := &connectionEvents{
			client:   c,
			serverID: serverID,
			closed:   make(chan struct{}),
		}
		conn, err := gateway.Dial(ctx, gateway.Options{
			URL:           c.gatewayURL(),
			Token:         c.token,
			LastMessageID: lastMessageID,
			ServerID:      serverID,
			Logger:        logger,
			Handler:       events,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			delay += c.reconnectDelay
			logger.WithField("error", err.Error()).Warnf("gateway dial failed, retrying in %v", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0

		if serverID == "" {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		}
		c.dispatch(eventConnect, &ConnectEvent{ServerID: serverID})

		select {
		case <-events.closed:
		case <-ctx.Done():
			conn.Close()
			<-events.closed
		}

		if events.resumable {
			lastMessageID = conn.LastMessageID()
		} else {
			lastMessageID = ""
		}

		if serverID == "" {
			c.mu.Lock()
			c.conn = nil
			if c.ready {
				c.ready = false
				c.readyCh = make(chan struct{})
			}
			c.mu.Unlock()
		}
		c.dispatch(eventDisconnect, &DisconnectEvent{ServerID: serverID, Err: events.err})

		if ctx.Err() != nil {
			return nil
		}
		if events.err != nil {
			logger.WithField("error", events.err.Error()).Warn("gateway connection lost, reconnecting")
		}
	}
}

// connectionEvents adapts one gateway connection's frames to the client.
type connectionEvents struct {
	client   *Client
	serverID string

	closed    chan struct{}
	err       error
	resumable bool
}

func (e *connectionEvents) HandleWelcome(welcome *gateway.WelcomeData) {
	c := e.client
	if e.serverID != "" {
		// Server-scoped connections don't carry the bot's identity.
		return
	}

	var user User
	if len(welcome.User) > 0 {
		if err := jsoniter.Unmarshal(welcome.User, &user); err != nil {
			c.deliverError(errors.Wrap(err, "error decoding welcome user"))
		}
	}
	user.client = c
	clientUser := &ClientUser{User: user, BotID: welcome.BotID}
	c.state.putUser(&clientUser.User)

	c.mu.Lock()
	c.user = clientUser
	if !c.ready {
		c.ready = true
		close(c.readyCh)
	}
	c.mu.Unlock()

	c.dispatch(eventReady, &ReadyEvent{
		User:          clientUser,
		LastMessageID: welcome.LastMessageID,
	})
}

func (e *connectionEvents) HandleEvent(name string, messageID string, data json.RawMessage) {
	e.client.dispatchGatewayEvent(name, data)
}

func (e *connectionEvents) HandleClose(err error, resumable bool) {
	e.err = err
	e.resumable = resumable
	close(e.closed)
}

// Cache accessors. These never hit the API; see the Fetch and OrFetch
// methods for that.

// CachedMessage returns a message from the cache, or nil.
func (c *Client) CachedMessage(messageID string) *Message {
	return c.state.message(messageID)
}

// CachedMessages returns all cached messages, oldest first.
func (c *Client) CachedMessages() []*Message {
	return c.state.messageList()
}

// CachedUser returns a user from the cache, or nil.
func (c *Client) CachedUser(userID string) *User {
	return c.state.user(userID)
}

// CachedUsers returns all cached users.
func (c *Client) CachedUsers() []*User {
	return c.state.userList()
}

// CachedServer returns a server from the cache, or nil.
func (c *Client) CachedServer(serverID string) *Server {
	return c.state.server(serverID)
}

// CachedServers returns all cached servers.
func (c *Client) CachedServers() []*Server {
	return c.state.serverList()
}

// CachedChannel returns a channel from the cache, or nil.
func (c *Client) CachedChannel(channelID string) *Channel {
	return c.state.channel(channelID)
}

// CachedChannels returns all cached channels.
func (c *Client) CachedChannels() []*Channel {
	return c.state.channelList()
}

// CachedMember returns a server member from the cache, or nil.
func (c *Client) CachedMember(serverID, userID string) *Member {
	return c.state.member(serverID, userID)
}

// CachedMembers returns all cached members of the given server.
func (c *Client) CachedMembers(serverID string) []*Member {
	return c.state.memberList(serverID)
}
