package engine

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Room is one placed room in the world layout. The layout service itself is
// a host collaborator; the runtime only needs type lookup and relative→world
// conversion.
type Room struct {
	Name   string
	Type   string
	Origin mgl64.Vec3
	Facing mgl64.Quat
}

// Absolute converts a room-relative position into world space.
func (r *Room) Absolute(rel mgl64.Vec3) mgl64.Vec3 {
	if r == nil {
		return rel
	}
	return r.Origin.Add(r.Facing.Rotate(rel))
}

// RoomTable is a deterministic in-memory room lookup seeded the same way the
// world generator is.
type RoomTable struct {
	rooms []Room
	rng   *rand.Rand
}

// NewRoomTable creates a room table with a seeded random source.
func NewRoomTable(rooms []Room, seed int64) *RoomTable {
	copied := make([]Room, len(rooms))
	copy(copied, rooms)
	return &RoomTable{rooms: copied, rng: rand.New(rand.NewSource(seed))}
}

// RandomRoom picks a uniformly random room of the requested type.
func (t *RoomTable) RandomRoom(roomType string) (*Room, bool) {
	if t == nil {
		return nil, false
	}
	matches := make([]*Room, 0, len(t.rooms))
	for i := range t.rooms {
		if t.rooms[i].Type == roomType {
			matches = append(matches, &t.rooms[i])
		}
	}
	if len(matches) == 0 {
		return nil, false
	}
	return matches[t.rng.Intn(len(matches))], true
}
