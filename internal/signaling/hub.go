package signaling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
)

// Hub is the central brain of the signaling server.
//
// Run is the single goroutine that owns all state: the connection registry,
// the room groups and the Router's Directory. Client pumps only talk to it
// through channels, which serialises every room mutation.
type Hub struct {
	// clients maps live connection ids to their clients.
	clients map[string]*Client

	// groups maps room names to the connections subscribed to them.
	groups map[string]map[string]*Client

	router *Router

	register   chan *Client
	unregister chan *Client
	inbound    chan *Message

	// done is closed when Run returns.
	done chan struct{}

	log *slog.Logger
}

// NewHub creates a Hub routing events over rooms.
func NewHub(rooms *Directory, log *slog.Logger, opts ...RouterOption) *Hub {
	if log == nil {
		log = slog.Default()
	}
	h := &Hub{
		clients:    make(map[string]*Client),
		groups:     make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *Message),
		done:       make(chan struct{}),
		log:        log.With("component", "hub"),
	}
	h.router = NewRouter(h, rooms, log, opts...)
	return h
}

// Run starts the hub's main processing loop and blocks until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.log.Info("Hub stopped")
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case message := <-h.inbound:
			h.handleMessage(message)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Serve attaches an upgraded websocket connection to the hub and starts its
// pumps. It returns false when the hub is no longer running.
func (h *Hub) Serve(conn *websocket.Conn, opts ClientOptions) (*Client, bool) {
	client := NewClient(h, conn, opts)
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil, false
	}

	go client.WritePump()
	go client.ReadPump()
	return client, true
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) dispatch(msg *Message) bool {
	select {
	case h.inbound <- msg:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.clients[c.ID] = c
	h.log.Info("Client registered", "conn", c.ID, "addr", c.conn.RemoteAddr())

	msg, err := NewMessage(EventConnected, "", NewParticipant(c.ID))
	if err != nil {
		h.log.Error("Failed to encode message", "event", EventConnected, "err", err)
		return
	}
	c.enqueue(msg)
}

func (h *Hub) handleUnregister(c *Client) {
	if _, ok := h.clients[c.ID]; !ok {
		return
	}

	rooms := h.router.Disconnect(c.ID)
	delete(h.clients, c.ID)
	close(c.send)
	h.log.Info("Client unregistered", "conn", c.ID, "rooms", rooms)
}

func (h *Hub) handleMessage(msg *Message) {
	c := msg.client
	if c == nil {
		return
	}
	if _, ok := h.clients[c.ID]; !ok {
		// Raced with its own disconnect; cleanup already happened.
		return
	}

	if err := h.router.Handle(c.ID, msg); err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrUnknownTarget) {
			level = slog.LevelDebug
		}
		h.log.Log(context.Background(), level, "Event dropped", "conn", c.ID, "type", msg.Type, "err", err)
	}
}

func (h *Hub) closeAll() {
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	clear(h.groups)
}

// SendTo implements Transport.
func (h *Hub) SendTo(id string, msg *Message) error {
	c, ok := h.clients[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, id)
	}
	c.enqueue(msg)
	return nil
}

// Broadcast implements Transport.
func (h *Hub) Broadcast(room string, msg *Message, exclude string) {
	for id, c := range h.groups[room] {
		if id == exclude {
			continue
		}
		c.enqueue(msg)
	}
}

// JoinGroup implements Transport.
func (h *Hub) JoinGroup(id, room string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	if _, ok := h.groups[room]; !ok {
		h.groups[room] = make(map[string]*Client)
	}
	h.groups[room][id] = c
}

// LeaveGroup implements Transport.
func (h *Hub) LeaveGroup(id, room string) {
	members, ok := h.groups[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.groups, room)
	}
}
