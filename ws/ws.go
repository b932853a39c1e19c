// Package ws is a minimal Ethereum JSON-RPC websocket client used to follow
// new block headers while waiting for transaction receipts
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("websocket connection closed")

// ClientInterface defines the contract for the head watcher
type ClientInterface interface {
	Start(ctx context.Context) error
	Close()
	SubscribeNewHeads(ctx context.Context) (*Subscription, error)
}

var _ ClientInterface = (*Client)(nil)

// Client manages one websocket connection to a node
type Client struct {
	url          string
	logger       *zap.Logger
	pingInterval time.Duration

	conn          *websocket.Conn
	cancel        context.CancelFunc
	done          chan struct{}
	nextID        int
	pending       map[int]chan rpcResponse
	subscriptions map[string]*Subscription
	wg            sync.WaitGroup
	mu            sync.RWMutex
	closeOnce     sync.Once
}

type clientConfig struct {
	logger       *zap.Logger
	pingInterval time.Duration
}

type Option func(*clientConfig)

// WithLogger sets the logger, defaults to a nop logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithPingInterval sets the keepalive interval, defaults to 30 seconds
func WithPingInterval(interval time.Duration) Option {
	return func(c *clientConfig) {
		c.pingInterval = interval
	}
}

// New creates a new websocket client for a node endpoint. http(s) urls are
// rewritten to ws(s).
func New(rawURL string, opts ...Option) *Client {
	cfg := clientConfig{
		logger:       zap.NewNop(),
		pingInterval: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		url:           rawURL,
		logger:        cfg.logger,
		pingInterval:  cfg.pingInterval,
		done:          make(chan struct{}),
		pending:       make(map[int]chan rpcResponse),
		subscriptions: make(map[string]*Subscription),
	}
}

// Start dials the node and starts the read/ping loops
func (c *Client) Start(ctx context.Context) error {
	u, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("parse websocket URL %q: %w", c.url, err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}
	// headers can exceed the 32KiB default on busy chains
	conn.SetReadLimit(1 << 20)

	loopCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(2)
	go c.readLoop(loopCtx)
	go c.pingLoop(loopCtx)

	c.logger.Debug("websocket connected", zap.String("host", u.Host))
	return nil
}

// Close closes the connection and waits for the loops to exit
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		conn := c.conn
		cancel := c.cancel
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if conn != nil {
			conn.Close(websocket.StatusNormalClosure, "closing")
		}

		c.wg.Wait()
	})
}

// readLoop handles incoming messages until the connection ends
func (c *Client) readLoop(ctx context.Context) {
	defer c.wg.Done()
	defer c.shutdown()

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return
			}
			c.logger.Warn("websocket read error", zap.Error(err))
			return
		}

		c.handleMessage(data)
	}
}

// pingLoop sends periodic control pings to keep the connection alive
func (c *Client) pingLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pingCtx)
			cancel()

			if err != nil {
				if ctx.Err() == nil {
					c.logger.Warn("websocket ping error", zap.Error(err))
				}
				return
			}
		}
	}
}

// shutdown fails pending requests and closes subscription channels. Only the
// read loop sends on those channels, so closing them here is safe.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	close(c.done)
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	for id, sub := range c.subscriptions {
		close(sub.heads)
		delete(c.subscriptions, id)
	}
}

// call sends a JSON-RPC request and waits for its response
func (c *Client) call(
	ctx context.Context,
	method string,
	params []any,
	result any,
) error {
	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return ErrClosed
	default:
	}
	if c.conn == nil {
		c.mu.Unlock()
		return errors.New("websocket not started")
	}
	c.nextID++
	id := c.nextID
	respCh := make(chan rpcResponse, 1)
	c.pending[id] = respCh
	conn := c.conn
	c.mu.Unlock()

	data, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		c.dropPending(id)
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		c.dropPending(id)
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}

	select {
	case <-ctx.Done():
		c.dropPending(id)
		return ctx.Err()
	case resp, ok := <-respCh:
		if !ok {
			return ErrClosed
		}
		if resp.Error != nil {
			return resp.Error
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
		return nil
	}
}

func (c *Client) dropPending(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
