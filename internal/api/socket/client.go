package socket

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/hr-console/internal/domain"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

const (
	defaultSendBuffer   = 64
	defaultPingInterval = 25 * time.Second
	defaultWriteWait    = 10 * time.Second
	defaultMaxMessage   = 1 << 20

	invalidFrameEvent = "message"
)

// ClientOptions tunes the connection pumps.
type ClientOptions struct {
	SendBuffer      int
	PingInterval    time.Duration
	WriteWait       time.Duration
	MaxMessageBytes int64
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.SendBuffer <= 0 {
		o.SendBuffer = defaultSendBuffer
	}
	if o.PingInterval <= 0 {
		o.PingInterval = defaultPingInterval
	}
	if o.WriteWait <= 0 {
		o.WriteWait = defaultWriteWait
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = defaultMaxMessage
	}
	return o
}

// pongWait is how long the peer may stay silent before the read deadline
// expires.
func (o ClientOptions) pongWait() time.Duration {
	return o.PingInterval * 2
}

// Client is one authenticated socket connection.
type Client struct {
	ID   string
	User *domain.ConsoleUser

	conn   Conn
	hub    *Hub
	router *Router
	opts   ClientOptions
	logger *zap.Logger

	sendMu sync.Mutex
	send   chan []byte
	closed bool

	inflight sync.WaitGroup
}

// NewClient wraps conn for user.
func NewClient(conn Conn, user *domain.ConsoleUser, hub *Hub, router *Router, opts ClientOptions, logger *zap.Logger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Client{
		ID:     id,
		User:   user,
		conn:   conn,
		hub:    hub,
		router: router,
		opts:   opts,
		logger: logger.With(zap.String("client_id", id)),
		send:   make(chan []byte, opts.SendBuffer),
	}
}

// Run registers the client and serves it until the connection closes or
// ctx is cancelled. In-flight requests are cancelled on return.
func (c *Client) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.hub.Register(c)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump(ctx)
	}()

	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()

	c.readPump(ctx)
	cancel()
	c.inflight.Wait()
	c.hub.Unregister(c)
	<-writerDone
}

func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(c.opts.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.pongWait()))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				c.logger.Debug("socket read failed", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.pongWait()))
		c.handleFrame(ctx, data)
	}
}

func (c *Client) handleFrame(ctx context.Context, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil || strings.TrimSpace(env.Event) == "" {
		c.enqueue(encodeFailure(invalidFrameEvent, env.RequestID,
			apperrors.NewValidationError("invalid frame", nil)))
		return
	}
	if env.RequestID == "" {
		env.RequestID = uuid.NewString()
	}

	req := &Request{
		Event:     env.Event,
		RequestID: env.RequestID,
		Payload:   env.Payload,
		User:      c.User,
		ClientID:  c.ID,
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		if !c.enqueue(c.router.Dispatch(ctx, req)) {
			c.logger.Warn("socket send buffer full, dropping response",
				zap.String("event", req.Event),
				zap.String("request_id", req.RequestID))
		}
	}()
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if ctx.Err() == nil {
					c.logger.Debug("socket write failed", zap.Error(err))
				}
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue reports false only when the send buffer is full. Messages for a
// closed client are discarded.
func (c *Client) enqueue(msg []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) userID() string {
	if c.User == nil {
		return ""
	}
	return c.User.ID
}
