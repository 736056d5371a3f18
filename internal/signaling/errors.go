package signaling

import "errors"

var (
	// ErrRoomFull is returned when a join would exceed the room capacity.
	// The joiner is told with a "full" event; nothing else happens.
	ErrRoomFull = errors.New("room is full")

	// ErrAlreadyMember is returned when a connection joins a room it is already in.
	ErrAlreadyMember = errors.New("already a member of the room")

	// ErrUnknownTarget is returned by the transport when a targeted send names
	// a connection that is no longer live. The message is dropped.
	ErrUnknownTarget = errors.New("unknown target connection")

	ErrMalformedPayload = errors.New("malformed payload")
	ErrUnknownEvent     = errors.New("unknown event type")
	ErrRateLimited      = errors.New("rate limit exceeded")
)
