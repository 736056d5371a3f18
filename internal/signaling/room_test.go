package signaling

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsername_IsFixedPrefixOfID(t *testing.T) {
	req := require.New(t)

	req.Equal("3f2a9c", Username("3f2a9c11-7d4e-4b8a-9a51-0c2f2b7e8d10"))
	req.Equal("abc", Username("abc"))
	req.Equal(Username("3f2a9c11"), NewParticipant("3f2a9c11").Username)
}

func TestRoom_KeepsJoinOrder(t *testing.T) {
	req := require.New(t)
	room := NewRoom("room-x")

	room.add(NewParticipant("alice-1"))
	room.add(NewParticipant("bobby-2"))
	room.add(NewParticipant("carol-3"))

	req.Equal(3, room.Len())
	req.Equal([]Participant{NewParticipant("alice-1"), NewParticipant("carol-3")}, room.Others("bobby-2"))

	// When the middle member leaves
	req.True(room.remove("bobby-2"))
	req.False(room.remove("bobby-2"))

	// Then the others keep their order
	req.Equal([]Participant{NewParticipant("alice-1"), NewParticipant("carol-3")}, room.Participants())
	req.False(room.Has("bobby-2"))
}

func TestRoom_Others_EmptyIsNotNil(t *testing.T) {
	room := NewRoom("solo")
	room.add(NewParticipant("alice-1"))

	others := room.Others("alice-1")
	require.NotNil(t, others)
	require.Empty(t, others)
}

func TestHistory_AppendReturnsSnapshot(t *testing.T) {
	req := require.New(t)
	var h History

	first := h.Append(FormatEntry("alice", "hi"))
	second := h.Append(FormatEntry("bob", "hello"))

	req.Equal([]string{"alice: hi"}, first)
	req.Equal([]string{"alice: hi", "bob: hello"}, second)

	// Mutating a snapshot must not touch the log
	second[0] = "tampered"
	req.Equal("alice: hi", h.Entries()[0])
}

func TestHistory_NilIsEmpty(t *testing.T) {
	var h *History
	require.Equal(t, []string{}, h.Entries())
	require.Zero(t, h.Len())
}
