package signaling

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Signal is the inbound form of offer, answer and ice-candidate. It is
// either targeted (TargetID set) or a room broadcast (legacy clients).
type Signal struct {
	Body     json.RawMessage
	TargetID string
}

// Targeted reports whether the signal names a single recipient.
func (s Signal) Targeted() bool {
	return s.TargetID != ""
}

// bodyField names the payload field holding the opaque body for each event.
var bodyField = map[string]string{
	EventOffer:        "offer",
	EventAnswer:       "answer",
	EventICECandidate: "candidate",
}

// parseSignal splits an inbound handshake payload into body and target.
//
// Accepted shapes:
//
//	{"offer": <body>, "targetId": "<id>"}  targeted
//	{"offer": {...}}                       broadcast, body unwrapped
//	<anything else>                        broadcast, whole payload is the body
//
// The body field is only unwrapped without a target when it holds an object,
// so a bare RTCIceCandidateInit (whose "candidate" is a string) is relayed
// intact. Bodies are never inspected further.
func parseSignal(event string, payload json.RawMessage) (Signal, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return Signal{}, fmt.Errorf("%w: %s has no payload", ErrMalformedPayload, event)
	}
	if payload[0] != '{' {
		return Signal{Body: payload}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Signal{}, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, event, err)
	}

	var target string
	if raw, ok := fields["targetId"]; ok && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &target); err != nil {
			return Signal{}, fmt.Errorf("%w: %s: targetId must be a string", ErrMalformedPayload, event)
		}
	}

	body, hasBody := fields[bodyField[event]]
	switch {
	case target != "":
		return Signal{Body: body, TargetID: target}, nil
	case hasBody && isObject(body):
		return Signal{Body: body}, nil
	default:
		return Signal{Body: payload}, nil
	}
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// signalPayload builds the outbound payload for a relayed handshake body.
func signalPayload(event string, body json.RawMessage, from string) any {
	switch event {
	case EventOffer:
		return OfferPayload{Offer: body, From: from}
	case EventAnswer:
		return AnswerPayload{Answer: body, From: from}
	default:
		return CandidatePayload{Candidate: body, From: from}
	}
}
