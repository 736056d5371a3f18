//go:generate go run go.uber.org/mock/mockgen -source=transport.go -destination=mocks/mock_transport.go -package=mocks
package signaling

// Transport is the socket layer the Router talks through. Every method is
// fire-and-forget: delivery is best effort and at most once.
type Transport interface {
	// SendTo delivers msg to one live connection. It returns ErrUnknownTarget
	// when id has no live connection; the message is dropped either way.
	SendTo(id string, msg *Message) error

	// Broadcast delivers msg to every connection in the room group except
	// exclude (which may be empty).
	Broadcast(room string, msg *Message, exclude string)

	// JoinGroup and LeaveGroup maintain the room groups used by Broadcast.
	JoinGroup(id, room string)
	LeaveGroup(id, room string)
}
