package signaling

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxRoomNameLength bounds room names accepted from clients.
	MaxRoomNameLength = 128
	// DefaultMaxChatLength bounds chat lines when no limit is configured.
	DefaultMaxChatLength = 2000
)

// Router interprets inbound signaling events, mutates the Directory and
// emits notifications through the Transport.
//
// Router holds no locks: every call must come from the goroutine that owns
// the Directory (see Hub.Run).
type Router struct {
	transport Transport
	rooms     *Directory
	log       *slog.Logger
	validate  *validator.Validate
	roomRule  string
	chatRule  string
}

// RouterOption customises a Router.
type RouterOption func(*Router)

// WithMaxChatLength overrides the chat line limit.
func WithMaxChatLength(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.chatRule = fmt.Sprintf("required,max=%d", n)
		}
	}
}

func NewRouter(transport Transport, rooms *Directory, log *slog.Logger, opts ...RouterOption) *Router {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		transport: transport,
		rooms:     rooms,
		log:       log.With("component", "router"),
		validate:  validator.New(),
		roomRule:  fmt.Sprintf("required,max=%d", MaxRoomNameLength),
		chatRule:  fmt.Sprintf("required,max=%d", DefaultMaxChatLength),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle dispatches one inbound message from connection c. Errors describe
// dropped events; they are never fatal to the relay.
func (r *Router) Handle(c string, msg *Message) error {
	switch msg.Type {
	case EventJoin, EventReady, EventOffer, EventAnswer, EventICECandidate,
		EventMessage, EventMessages, EventLeave:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, msg.Type)
	}

	if err := r.validate.Var(msg.Room, r.roomRule); err != nil {
		return fmt.Errorf("%w: %s: room: %v", ErrMalformedPayload, msg.Type, err)
	}

	switch msg.Type {
	case EventJoin:
		r.Join(c, msg.Room)
	case EventReady:
		r.Ready(c, msg.Room)
	case EventOffer:
		return r.Offer(c, msg.Room, msg.Payload)
	case EventAnswer:
		return r.Answer(c, msg.Room, msg.Payload)
	case EventICECandidate:
		return r.ICECandidate(c, msg.Room, msg.Payload)
	case EventMessage:
		var text string
		if err := msg.DecodePayload(&text); err != nil {
			return err
		}
		if err := r.validate.Var(text, r.chatRule); err != nil {
			return fmt.Errorf("%w: message: %v", ErrMalformedPayload, err)
		}
		r.Message(c, msg.Room, text)
	case EventMessages:
		r.History(c, msg.Room)
	case EventLeave:
		r.Leave(c, msg.Room)
	}
	return nil
}

// Join admits c into room and notifies the room.
//
// The sole member of a room gets "created". Anyone joining an occupied room
// gets the current member list and "joined", and every existing member is
// told about the newcomer.
func (r *Router) Join(c, room string) {
	p := NewParticipant(c)
	joined, err := r.rooms.Join(room, p)
	switch {
	case errors.Is(err, ErrRoomFull):
		r.log.Info("Room join rejected", "room", room, "conn", c, "reason", err)
		r.sendTo(c, EventFull, room, nil)
		return
	case errors.Is(err, ErrAlreadyMember):
		r.log.Debug("Duplicate join ignored", "room", room, "conn", c)
		return
	}

	r.transport.JoinGroup(c, room)

	if joined.Len() <= 1 {
		r.log.Info("Room created", "room", room, "conn", c)
		r.sendTo(c, EventCreated, room, nil)
		return
	}

	r.log.Info("Client joined room", "room", room, "conn", c, "members", joined.Len())
	r.sendTo(c, EventUserList, room, joined.Others(c))
	r.sendTo(c, EventJoined, room, nil)
	r.broadcast(room, EventUserJoined, p, c)
}

// Ready tells the other members of room that c has local media ready.
func (r *Router) Ready(c, room string) {
	r.broadcast(room, EventReady, c, c)
}

// Offer relays a session offer; see relay.
func (r *Router) Offer(c, room string, payload json.RawMessage) error {
	return r.relay(EventOffer, c, room, payload)
}

// Answer relays a session answer; see relay.
func (r *Router) Answer(c, room string, payload json.RawMessage) error {
	return r.relay(EventAnswer, c, room, payload)
}

// ICECandidate relays a network candidate; see relay.
func (r *Router) ICECandidate(c, room string, payload json.RawMessage) error {
	return r.relay(EventICECandidate, c, room, payload)
}

// relay forwards an opaque handshake body: to the target connection when the
// payload names one, otherwise to every other member of room.
func (r *Router) relay(event, c, room string, payload json.RawMessage) error {
	sig, err := parseSignal(event, payload)
	if err != nil {
		return err
	}

	out := signalPayload(event, sig.Body, c)
	if sig.Targeted() {
		r.log.Debug("Relaying signal", "event", event, "from", c, "to", sig.TargetID)
		r.sendTo(sig.TargetID, event, room, out)
		return nil
	}

	r.log.Debug("Broadcasting signal", "event", event, "from", c, "room", room)
	r.broadcast(room, event, out, c)
	return nil
}

// Message appends a chat line to the room history and sends the whole
// history to every member, sender included.
func (r *Router) Message(c, room, text string) {
	username := r.rooms.Username(room, c)
	entries := r.rooms.AppendHistory(room, FormatEntry(username, text))
	r.broadcast(room, EventMessage, entries, "")
}

// History sends the room's chat log to c alone. Membership is not required.
func (r *Router) History(c, room string) {
	r.sendTo(c, EventMessage, room, r.rooms.History(room))
}

// Leave removes c from room and tells the remaining members. It reports
// whether c was a member; leaving twice emits nothing the second time.
func (r *Router) Leave(c, room string) bool {
	remaining, ok := r.rooms.Leave(room, c)
	if !ok {
		return false
	}
	r.transport.LeaveGroup(c, room)

	if remaining.Len() == 0 {
		r.log.Info("Room deleted", "room", room)
		return true
	}
	r.log.Info("Peer left room", "room", room, "conn", c, "members", remaining.Len())
	r.broadcast(room, EventUserLeft, c, c)
	return true
}

// Disconnect leaves every room c is in and returns their names.
func (r *Router) Disconnect(c string) []string {
	rooms := r.rooms.RoomsOf(c)
	for _, room := range rooms {
		r.Leave(c, room)
	}
	return rooms
}

func (r *Router) sendTo(id, event, room string, payload any) {
	msg, err := NewMessage(event, room, payload)
	if err != nil {
		r.log.Error("Failed to encode message", "event", event, "err", err)
		return
	}
	if err := r.transport.SendTo(id, msg); err != nil {
		r.log.Debug("Message dropped", "event", event, "to", id, "err", err)
	}
}

func (r *Router) broadcast(room, event string, payload any, exclude string) {
	msg, err := NewMessage(event, room, payload)
	if err != nil {
		r.log.Error("Failed to encode message", "event", event, "err", err)
		return
	}
	r.transport.Broadcast(room, msg, exclude)
}
