package signaling

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// UsernameLength is how many leading characters of a connection id form
// the participant's display name.
const UsernameLength = 6

// Username derives a stable display name from a connection id.
func Username(id string) string {
	if len(id) <= UsernameLength {
		return id
	}
	return id[:UsernameLength]
}

// NewParticipant builds the membership record for a connection.
func NewParticipant(id string) Participant {
	return Participant{ID: id, Username: Username(id)}
}

// Room is a named group of participants. Members are kept in join order so
// user lists are stable.
type Room struct {
	Name         string
	participants []Participant
}

func NewRoom(name string) *Room {
	return &Room{Name: name}
}

func (r *Room) Len() int {
	return len(r.participants)
}

func (r *Room) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

func (r *Room) Get(id string) (Participant, bool) {
	return lo.Find(r.participants, func(p Participant) bool { return p.ID == id })
}

func (r *Room) add(p Participant) {
	r.participants = append(r.participants, p)
}

// remove deletes the record for id. Returns true if it was present.
func (r *Room) remove(id string) bool {
	idx := slices.IndexFunc(r.participants, func(p Participant) bool { return p.ID == id })
	if idx < 0 {
		return false
	}
	r.participants = slices.Delete(r.participants, idx, idx+1)
	return true
}

// Participants returns a copy of the member list.
func (r *Room) Participants() []Participant {
	return slices.Clone(r.participants)
}

// Others returns every member except id.
func (r *Room) Others(id string) []Participant {
	return lo.Reject(r.participants, func(p Participant, _ int) bool { return p.ID == id })
}

// History is the append-only chat log of one room.
type History struct {
	entries []string
}

// FormatEntry renders a chat line the way it is stored in history.
func FormatEntry(username, text string) string {
	return fmt.Sprintf("%s: %s", username, text)
}

// Append adds an entry and returns a snapshot of the whole log.
func (h *History) Append(entry string) []string {
	h.entries = append(h.entries, entry)
	return h.Entries()
}

// Entries returns a snapshot of the log. Never nil, so it encodes as [].
func (h *History) Entries() []string {
	if h == nil {
		return []string{}
	}
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}
