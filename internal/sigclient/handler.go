package sigclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rosaguta/DIV-C-Server/internal/signaling"
)

const signalBuffer = 32

// Handler routes incoming signaling messages to typed channels. Delivery is
// non-blocking: a consumer that falls behind loses events, the read loop
// never stalls.
type Handler struct {
	client *Client
	log    *slog.Logger

	Connected  chan signaling.Participant
	Created    chan string
	Joined     chan string
	Full       chan string
	UserList   chan []signaling.Participant
	UserJoined chan signaling.Participant
	UserLeft   chan string
	Ready      chan string
	Offer      chan signaling.OfferPayload
	Answer     chan signaling.AnswerPayload
	Candidate  chan signaling.CandidatePayload
	History    chan []string

	closeOnce sync.Once
}

// NewHandler creates a new message handler.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:     client,
		log:        client.log,
		Connected:  make(chan signaling.Participant, 1),
		Created:    make(chan string, 4),
		Joined:     make(chan string, 4),
		Full:       make(chan string, 4),
		UserList:   make(chan []signaling.Participant, 4),
		UserJoined: make(chan signaling.Participant, signalBuffer),
		UserLeft:   make(chan string, signalBuffer),
		Ready:      make(chan string, signalBuffer),
		Offer:      make(chan signaling.OfferPayload, signalBuffer),
		Answer:     make(chan signaling.AnswerPayload, signalBuffer),
		Candidate:  make(chan signaling.CandidatePayload, signalBuffer*4),
		History:    make(chan []string, signalBuffer),
	}
}

// Start routes messages until the connection ends, then closes every
// channel. Run it in its own goroutine.
func (h *Handler) Start() {
	defer h.close()

	for msg := range h.client.Incoming() {
		switch msg.Type {
		case signaling.EventConnected:
			decodeInto(h, msg, h.Connected)
		case signaling.EventCreated:
			deliver(h, msg.Type, h.Created, msg.Room)
		case signaling.EventJoined:
			deliver(h, msg.Type, h.Joined, msg.Room)
		case signaling.EventFull:
			deliver(h, msg.Type, h.Full, msg.Room)
		case signaling.EventUserList:
			decodeInto(h, msg, h.UserList)
		case signaling.EventUserJoined:
			decodeInto(h, msg, h.UserJoined)
		case signaling.EventUserLeft:
			decodeInto(h, msg, h.UserLeft)
		case signaling.EventReady:
			decodeInto(h, msg, h.Ready)
		case signaling.EventOffer:
			decodeInto(h, msg, h.Offer)
		case signaling.EventAnswer:
			decodeInto(h, msg, h.Answer)
		case signaling.EventICECandidate:
			decodeInto(h, msg, h.Candidate)
		case signaling.EventMessage:
			decodeInto(h, msg, h.History)
		default:
			h.log.Debug("Ignoring unknown event", "type", msg.Type)
		}
	}
}

// AwaitJoin waits for the relay's answer to a join of room. It reports
// whether this join created the room.
func (h *Handler) AwaitJoin(ctx context.Context, room string) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case r, ok := <-h.Created:
			if !ok {
				return false, ErrClosed
			}
			if r == room {
				return true, nil
			}
		case r, ok := <-h.Joined:
			if !ok {
				return false, ErrClosed
			}
			if r == room {
				return false, nil
			}
		case r, ok := <-h.Full:
			if !ok {
				return false, ErrClosed
			}
			if r == room {
				return false, fmt.Errorf("join %s: %w", room, signaling.ErrRoomFull)
			}
		}
	}
}

func decodeInto[T any](h *Handler, msg *signaling.Message, ch chan T) {
	var v T
	if err := msg.DecodePayload(&v); err != nil {
		h.log.Warn("Dropping event", "type", msg.Type, "err", err)
		return
	}
	deliver(h, msg.Type, ch, v)
}

func deliver[T any](h *Handler, event string, ch chan T, v T) {
	select {
	case ch <- v:
	default:
		h.log.Warn("Event channel full, dropping", "type", event)
	}
}

func (h *Handler) close() {
	h.closeOnce.Do(func() {
		close(h.Connected)
		close(h.Created)
		close(h.Joined)
		close(h.Full)
		close(h.UserList)
		close(h.UserJoined)
		close(h.UserLeft)
		close(h.Ready)
		close(h.Offer)
		close(h.Answer)
		close(h.Candidate)
		close(h.History)
	})
}

func marshalBody(v any) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}
