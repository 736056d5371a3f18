package signaling

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectory_Join_CreatesRoomOnFirstUse(t *testing.T) {
	req := require.New(t)
	d := NewDirectory(0)

	// Given no room exists
	_, ok := d.Room("room-x")
	req.False(ok)
	req.Equal(DefaultMaxClientsPerRoom, d.MaxClients())

	// When a participant joins
	room, err := d.Join("room-x", NewParticipant("alice-1"))

	// Then the room exists with one member
	req.NoError(err)
	req.Equal(1, room.Len())
	req.Equal(1, d.RoomCount())
	req.Equal([]string{"room-x"}, d.RoomsOf("alice-1"))
}

func TestDirectory_Join_EnforcesCapacity(t *testing.T) {
	req := require.New(t)
	d := NewDirectory(10)

	for i := range 10 {
		_, err := d.Join("full-room", NewParticipant(fmt.Sprintf("client-%02d", i)))
		req.NoError(err)
	}

	room, err := d.Join("full-room", NewParticipant("client-10"))

	req.ErrorIs(err, ErrRoomFull)
	req.Equal(10, room.Len())
	req.False(room.Has("client-10"))
	req.Empty(d.RoomsOf("client-10"))
}

func TestDirectory_Join_DuplicateIsRejected(t *testing.T) {
	req := require.New(t)
	d := NewDirectory(10)

	_, err := d.Join("room-x", NewParticipant("alice-1"))
	req.NoError(err)

	room, err := d.Join("room-x", NewParticipant("alice-1"))
	req.ErrorIs(err, ErrAlreadyMember)
	req.Equal(1, room.Len())
}

func TestDirectory_Leave_IsIdempotent(t *testing.T) {
	req := require.New(t)
	d := NewDirectory(10)
	_, _ = d.Join("room-x", NewParticipant("alice-1"))
	_, _ = d.Join("room-x", NewParticipant("bobby-2"))

	room, ok := d.Leave("room-x", "bobby-2")
	req.True(ok)
	req.Equal(1, room.Len())

	_, ok = d.Leave("room-x", "bobby-2")
	req.False(ok)

	_, ok = d.Leave("unknown", "bobby-2")
	req.False(ok)
}

func TestDirectory_Leave_DropsEmptyRoomButKeepsHistory(t *testing.T) {
	req := require.New(t)
	d := NewDirectory(10)
	_, _ = d.Join("room-x", NewParticipant("alice-1"))
	d.AppendHistory("room-x", FormatEntry("alice", "hi"))

	// When the last member leaves
	_, ok := d.Leave("room-x", "alice-1")
	req.True(ok)

	// Then the room is gone
	_, exists := d.Room("room-x")
	req.False(exists)
	req.Zero(d.RoomCount())
	req.Empty(d.RoomsOf("alice-1"))

	// And the history survives for the next joiner
	req.Equal([]string{"alice: hi"}, d.History("room-x"))
}

func TestDirectory_RoomsOf_TracksEveryMembership(t *testing.T) {
	req := require.New(t)
	d := NewDirectory(10)
	_, _ = d.Join("b-room", NewParticipant("alice-1"))
	_, _ = d.Join("a-room", NewParticipant("alice-1"))

	req.Equal([]string{"a-room", "b-room"}, d.RoomsOf("alice-1"))

	d.Leave("a-room", "alice-1")
	req.Equal([]string{"b-room"}, d.RoomsOf("alice-1"))
}

func TestDirectory_Username_FallsBackToID(t *testing.T) {
	req := require.New(t)
	d := NewDirectory(10)
	_, _ = d.Join("room-x", NewParticipant("alice-1234"))

	req.Equal("alice-", d.Username("room-x", "alice-1234"))
	req.Equal("stranger-99", d.Username("room-x", "stranger-99"))
	req.Equal("alice-1234", d.Username("other-room", "alice-1234"))
}

func TestDirectory_History_UnknownRoomIsEmpty(t *testing.T) {
	d := NewDirectory(10)
	require.Equal(t, []string{}, d.History("nowhere"))
}
