package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/maidmanager/internal/controller"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client is one bridge connection. Intents it sends run in a scope that
// is cancelled when the connection goes away.
type Client struct {
	hub    *Hub
	bridge *Bridge
	conn   *ws.Conn
	send   chan []byte
	logger *slog.Logger
}

func NewClient(hub *Hub, bridge *Bridge, conn *ws.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		bridge: bridge,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

// Run sends the current state, then serves the connection until it
// closes. Calls still in flight are cancelled on return.
func (c *Client) Run(ctx context.Context) {
	for _, msg := range c.bridge.Snapshot() {
		c.reply(msg)
	}
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	scope := controller.NewScope(ctx)
	defer func() {
		if err := scope.Close(); err != nil {
			c.logger.Debug("intent ended with error", "error", err)
		}
	}()

	go c.writePump(ctx)
	c.readPump(ctx, scope)
}

// reply queues msg for this client only.
func (c *Client) reply(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal reply", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Debug("client buffer full, reply dropped", "type", msg.Type)
	}
}

func (c *Client) readPump(ctx context.Context, scope *controller.Scope) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		c.handle(scope, data)
	}
}

// handle validates one intent and starts it. Rejections go back to the
// sender only.
func (c *Client) handle(scope *controller.Scope, data []byte) {
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		c.reply(NewMessage("intent", "rejected", "", map[string]any{"message": "malformed intent"}))
		return
	}
	run, err := c.bridge.prepare(in, time.Now())
	if err != nil {
		c.reply(NewMessage("intent", "rejected", in.MaidID, map[string]any{
			"intent":  in.Intent,
			"message": err.Error(),
		}))
		return
	}
	c.logger.Debug("intent", "intent", in.Intent, "maid_id", in.MaidID)
	scope.Go(func(ctx context.Context) error { return run(ctx) })
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
