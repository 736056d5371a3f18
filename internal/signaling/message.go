package signaling

import (
	"encoding/json"
	"fmt"
)

// Message defines the structure for all C2S (Client to Server)
// and S2C (Server to Client) websocket frames.
type Message struct {
	Type    string          `json:"type"`
	Room    string          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// client is the connection that sent the message.
	// It's used internally by the Hub and not sent over JSON.
	client *Client `json:"-"`
}

// Inbound event names.
const (
	EventJoin         = "join"
	EventReady        = "ready"
	EventOffer        = "offer"
	EventAnswer       = "answer"
	EventICECandidate = "ice-candidate"
	EventMessage      = "message"
	EventMessages     = "messages"
	EventLeave        = "leave"
)

// Outbound-only event names. ready, offer, answer, ice-candidate and message
// are reused in both directions.
const (
	EventConnected  = "connected"
	EventCreated    = "created"
	EventJoined     = "joined"
	EventFull       = "full"
	EventUserList   = "user-list"
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
)

// Participant is one connection's membership record within a room.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// OfferPayload carries an opaque session description. TargetID is only set
// inbound, From only outbound.
type OfferPayload struct {
	Offer    json.RawMessage `json:"offer,omitempty"`
	TargetID string          `json:"targetId,omitempty"`
	From     string          `json:"from,omitempty"`
}

// AnswerPayload mirrors OfferPayload for the answering side.
type AnswerPayload struct {
	Answer   json.RawMessage `json:"answer,omitempty"`
	TargetID string          `json:"targetId,omitempty"`
	From     string          `json:"from,omitempty"`
}

// CandidatePayload carries an opaque ICE candidate.
type CandidatePayload struct {
	Candidate json.RawMessage `json:"candidate,omitempty"`
	TargetID  string          `json:"targetId,omitempty"`
	From      string          `json:"from,omitempty"`
}

// NewMessage builds an outbound message, encoding payload as JSON.
// A nil payload produces a frame without the payload field.
func NewMessage(eventType, room string, payload any) (*Message, error) {
	msg := &Message{Type: eventType, Room: room}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	msg.Payload = raw
	return msg, nil
}

// DecodePayload decodes the message payload into v.
func (m *Message) DecodePayload(v any) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%w: %s has no payload", ErrMalformedPayload, m.Type)
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, m.Type, err)
	}
	return nil
}
