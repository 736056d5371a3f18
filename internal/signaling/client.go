package signaling

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// ClientOptions bounds what a single connection may cost the relay.
type ClientOptions struct {
	// MaxMessageSize is the largest frame accepted from the peer.
	MaxMessageSize int64
	// SendBufferSize is the outbound queue length; overflow is dropped.
	SendBufferSize int
	// MessagesPerSecond and MessageBurst shape inbound frames.
	MessagesPerSecond float64
	MessageBurst      int
}

// DefaultClientOptions returns the limits used when none are configured.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		MaxMessageSize:    64 * 1024, // enough for WebRTC SDP messages
		SendBufferSize:    256,
		MessagesPerSecond: 20,
		MessageBurst:      40,
	}
}

func (o ClientOptions) withDefaults() ClientOptions {
	d := DefaultClientOptions()
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = d.SendBufferSize
	}
	if o.MessagesPerSecond <= 0 {
		o.MessagesPerSecond = d.MessagesPerSecond
	}
	if o.MessageBurst <= 0 {
		o.MessageBurst = d.MessageBurst
	}
	return o
}

// Client is a wrapper for a single websocket connection (a peer).
type Client struct {
	// ID is the server-assigned connection identifier.
	ID string

	hub  *Hub
	conn *websocket.Conn

	// send is a buffered channel for all outbound messages. Only the hub
	// goroutine writes to or closes it; WritePump drains it.
	send chan *Message

	limiter *rate.Limiter
	opts    ClientOptions
	log     *slog.Logger
}

// NewClient wraps conn with a fresh connection id.
func NewClient(hub *Hub, conn *websocket.Conn, opts ClientOptions) *Client {
	opts = opts.withDefaults()
	id := uuid.NewString()
	return &Client{
		ID:      id,
		hub:     hub,
		conn:    conn,
		send:    make(chan *Message, opts.SendBufferSize),
		limiter: rate.NewLimiter(rate.Limit(opts.MessagesPerSecond), opts.MessageBurst),
		opts:    opts,
		log:     hub.log.With("conn", id),
	}
}

// enqueue hands msg to the write pump without blocking. A full buffer drops
// the message: delivery is best effort.
func (c *Client) enqueue(msg *Message) {
	select {
	case c.send <- msg:
	default:
		c.log.Warn("Send buffer full, dropping message", "event", msg.Type)
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("Connection closed unexpectedly", "err", err)
			}
			return
		}

		if !c.limiter.Allow() {
			c.log.Warn("Dropping message", "err", ErrRateLimited)
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Warn("Dropping message", "err", fmt.Errorf("%w: %v", ErrMalformedPayload, err))
			continue
		}
		msg.client = c

		if !c.hub.dispatch(&msg) {
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.log.Debug("Write failed", "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
