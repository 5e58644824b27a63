// Package convo implements the chat platform transport: a websocket
// connection carrying JSON event frames, with automatic reconnection.
package convo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sourcehf/convo/internal/bot"
	"github.com/sourcehf/convo/internal/config"
	"github.com/sourcehf/convo/internal/logger"
	"github.com/sourcehf/convo/internal/metrics"
)

// Wire event names.
const (
	eventReceiveMessage = "convo_receivemessage"
	eventNewMessage     = "convo_newmessage"
)

// frame is the envelope of every wire message.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// outboundMessage is the payload of a convo_newmessage frame. PartyID -1
// targets the public channel.
type outboundMessage struct {
	PartyID int    `json:"partyID"`
	Message string `json:"message"`
}

// Client is a reconnecting websocket client for the chat platform.
// It implements bot.Sender.
type Client struct {
	url       string
	log       *logger.Logger
	metrics   *metrics.Metrics
	onMessage func(bot.Message)

	mu   sync.Mutex // guards conn and writes to it
	conn *websocket.Conn

	closed atomic.Bool
}

// NewClient creates a client for the given websocket URL.
func NewClient(url string, log *logger.Logger, m *metrics.Metrics) *Client {
	return &Client{
		url:     url,
		log:     log.WithModule("convo"),
		metrics: m,
	}
}

// OnMessage registers the inbound message callback. Each message is delivered
// on its own goroutine, so a slow handler never stalls the read loop.
// Must be called before Run.
func (c *Client) OnMessage(fn func(bot.Message)) {
	c.onMessage = fn
}

// Run connects and reads until ctx is cancelled or Close is called.
// Connection loss triggers reconnection with exponential backoff; Run only
// returns an error when the initial dial fails.
func (c *Client) Run(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return fmt.Errorf("connect to chat: %w", err)
	}
	c.log.WithField("url", c.url).Info("connected")

	for {
		if err := c.readLoop(); err != nil && !c.closed.Load() && ctx.Err() == nil {
			c.log.WithError(err).Warn("connection lost")
		}
		c.dropConn()

		if c.closed.Load() || ctx.Err() != nil {
			return nil
		}

		if err := c.reconnect(ctx); err != nil {
			return nil // ctx cancelled while backing off
		}
	}
}

// Send posts a message to the public channel.
func (c *Client) Send(message string) error {
	data, err := json.Marshal(outboundMessage{PartyID: -1, Message: message})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(config.ConvoWriteTimeout))
	if err := c.conn.WriteJSON(frame{Event: eventNewMessage, Data: data}); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Connected reports whether a websocket connection is currently up.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close shuts the connection down and stops reconnection.
func (c *Client) Close() error {
	c.closed.Store(true)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutting down"),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

// dropConn closes and clears the current connection, if any.
func (c *Client) dropConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: config.ConvoDialTimeout}
	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// readLoop reads frames until the connection drops. Malformed frames are
// logged and skipped; the loop only exits on a read error.
func (c *Client) readLoop() error {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return fmt.Errorf("not connected")
		}

		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			return err
		}
		if f.Event != eventReceiveMessage {
			continue
		}

		var msg bot.Message
		if err := json.Unmarshal(f.Data, &msg); err != nil {
			c.log.WithError(err).Warn("malformed inbound message")
			continue
		}
		if c.onMessage != nil {
			go c.onMessage(msg)
		}
	}
}

// reconnect dials with exponential backoff until it succeeds or ctx ends.
func (c *Client) reconnect(ctx context.Context) error {
	backoff := config.ConvoReconnectInitial

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if c.closed.Load() {
			return fmt.Errorf("client closed")
		}

		c.metrics.RecordReconnect()
		if err := c.dial(ctx); err != nil {
			c.log.WithError(err).WithField("backoff", backoff.String()).Warn("reconnect failed")
			backoff *= 2
			if backoff > config.ConvoReconnectMax {
				backoff = config.ConvoReconnectMax
			}
			continue
		}

		c.log.Info("reconnected")
		return nil
	}
}
