package signaling

import (
	"sort"

	"github.com/samber/lo"
)

// DefaultMaxClientsPerRoom is the room capacity used when none is configured.
const DefaultMaxClientsPerRoom = 10

type set = map[string]struct{}

// Directory is the room state of the relay: rooms with their members, chat
// histories, and a reverse index from connection id to joined rooms.
//
// Histories are keyed independently of rooms, so a room's log outlives the
// moment it becomes empty and is served again when somebody rejoins.
//
// Directory is not safe for concurrent use; the Hub goroutine owns it.
type Directory struct {
	maxClients  int
	rooms       map[string]*Room
	histories   map[string]*History
	memberships map[string]set
}

func NewDirectory(maxClients int) *Directory {
	if maxClients <= 0 {
		maxClients = DefaultMaxClientsPerRoom
	}
	return &Directory{
		maxClients:  maxClients,
		rooms:       make(map[string]*Room),
		histories:   make(map[string]*History),
		memberships: make(map[string]set),
	}
}

// MaxClients returns the per-room capacity.
func (d *Directory) MaxClients() int {
	return d.maxClients
}

// Room looks up a room by name.
func (d *Directory) Room(name string) (*Room, bool) {
	room, ok := d.rooms[name]
	return room, ok
}

// Join adds p to the named room, creating the room on first use.
// The capacity check happens before any mutation; a rejected join leaves the
// room as it was.
func (d *Directory) Join(name string, p Participant) (*Room, error) {
	room, ok := d.rooms[name]
	if !ok {
		room = NewRoom(name)
		d.rooms[name] = room
	}
	if room.Has(p.ID) {
		return room, ErrAlreadyMember
	}
	if room.Len() >= d.maxClients {
		return room, ErrRoomFull
	}

	room.add(p)
	if _, ok := d.memberships[p.ID]; !ok {
		d.memberships[p.ID] = make(set)
	}
	d.memberships[p.ID][name] = struct{}{}
	return room, nil
}

// Leave removes id from the named room. It reports whether a record was
// removed; a second call for the same pair is a no-op returning false.
// When the room becomes empty it is dropped from the directory.
func (d *Directory) Leave(name, id string) (*Room, bool) {
	room, ok := d.rooms[name]
	if !ok || !room.remove(id) {
		return nil, false
	}

	if rooms, ok := d.memberships[id]; ok {
		delete(rooms, name)
		if len(rooms) == 0 {
			delete(d.memberships, id)
		}
	}

	if room.Len() == 0 {
		delete(d.rooms, name)
	}
	return room, true
}

// RoomsOf lists the rooms id is a member of, sorted by name.
func (d *Directory) RoomsOf(id string) []string {
	rooms := lo.Keys(d.memberships[id])
	sort.Strings(rooms)
	return rooms
}

// Username resolves id's display name in the room, falling back to id itself.
func (d *Directory) Username(name, id string) string {
	if room, ok := d.rooms[name]; ok {
		if p, ok := room.Get(id); ok {
			return p.Username
		}
	}
	return id
}

// AppendHistory records a chat entry for the room and returns the full log.
func (d *Directory) AppendHistory(name, entry string) []string {
	h, ok := d.histories[name]
	if !ok {
		h = &History{}
		d.histories[name] = h
	}
	return h.Append(entry)
}

// History returns the room's log, empty when nothing was ever said.
func (d *Directory) History(name string) []string {
	return d.histories[name].Entries()
}

// RoomCount returns the number of rooms with at least one member.
func (d *Directory) RoomCount() int {
	return len(d.rooms)
}
