package inventory

import (
	"errors"
	"fmt"
	"slices"
)

// ErrRoomNotFound is returned when a room number is not part of the layout.
var ErrRoomNotFound = errors.New("room not found")

// Inventory is an immutable snapshot of every room and its status.
// Rooms are held in ascending (floor, position) order.
//
// Invariant: every room number is unique and matches the layout.
type Inventory struct {
	layout Layout
	rooms  []Room
	index  map[int]int // room number -> index into rooms
}

// New builds an inventory for layout with every room Available.
//
// Precondition: layout must pass Validate.
// Postcondition: Returns an Inventory with layout.TotalRooms() rooms, or an error.
func New(layout Layout) (Inventory, error) {
	if err := layout.Validate(); err != nil {
		return Inventory{}, err
	}
	layout = Layout{Name: layout.Name, RoomsPerFloor: slices.Clone(layout.RoomsPerFloor)}

	rooms := make([]Room, 0, layout.TotalRooms())
	for i, count := range layout.RoomsPerFloor {
		floor := i + 1
		for pos := 1; pos <= count; pos++ {
			rooms = append(rooms, Room{
				Number:   RoomNumber(floor, pos),
				Floor:    floor,
				Position: pos,
				Status:   Available,
			})
		}
	}
	return build(layout, rooms), nil
}

// MustNew is New for layouts known to be valid. It panics on error.
func MustNew(layout Layout) Inventory {
	inv, err := New(layout)
	if err != nil {
		panic("inventory: MustNew: " + err.Error())
	}
	return inv
}

// Restore rebuilds an inventory from a layout and a full list of rooms, such
// as a snapshot received over the wire.
//
// Precondition: rooms must describe exactly the rooms of layout, in any order.
// Postcondition: Returns an Inventory whose statuses match rooms, or an error
// naming the first topology mismatch.
func Restore(layout Layout, rooms []Room) (Inventory, error) {
	base, err := New(layout)
	if err != nil {
		return Inventory{}, err
	}
	if len(rooms) != len(base.rooms) {
		return Inventory{}, fmt.Errorf("restoring inventory: expected %d rooms, got %d", len(base.rooms), len(rooms))
	}
	statuses := make(map[int]Status, len(rooms))
	for _, r := range rooms {
		i, ok := base.index[r.Number]
		if !ok {
			return Inventory{}, fmt.Errorf("restoring inventory: room %d: %w", r.Number, ErrRoomNotFound)
		}
		want := base.rooms[i]
		if r.Floor != want.Floor || r.Position != want.Position {
			return Inventory{}, fmt.Errorf("restoring inventory: room %d is at floor %d position %d, want floor %d position %d",
				r.Number, r.Floor, r.Position, want.Floor, want.Position)
		}
		if !r.Status.Valid() {
			return Inventory{}, fmt.Errorf("restoring inventory: room %d has invalid status %d", r.Number, int(r.Status))
		}
		if _, dup := statuses[r.Number]; dup {
			return Inventory{}, fmt.Errorf("restoring inventory: duplicate room %d", r.Number)
		}
		statuses[r.Number] = r.Status
	}
	return base.WithStatuses(statuses)
}

func build(layout Layout, rooms []Room) Inventory {
	index := make(map[int]int, len(rooms))
	for i, r := range rooms {
		index[r.Number] = i
	}
	return Inventory{layout: layout, rooms: rooms, index: index}
}

// Layout returns the topology this inventory was built from.
func (inv Inventory) Layout() Layout {
	return Layout{Name: inv.layout.Name, RoomsPerFloor: slices.Clone(inv.layout.RoomsPerFloor)}
}

// Count returns the total number of rooms.
func (inv Inventory) Count() int {
	return len(inv.rooms)
}

// Rooms returns a copy of all rooms in (floor, position) order.
func (inv Inventory) Rooms() []Room {
	return slices.Clone(inv.rooms)
}

// Room looks up a room by number.
//
// Postcondition: Returns (room, true) if found, or (Room{}, false).
func (inv Inventory) Room(number int) (Room, bool) {
	i, ok := inv.index[number]
	if !ok {
		return Room{}, false
	}
	return inv.rooms[i], true
}

// Available returns the Available rooms in inventory order.
func (inv Inventory) Available() []Room {
	var out []Room
	for _, r := range inv.rooms {
		if r.Status == Available {
			out = append(out, r)
		}
	}
	return out
}

// Floor returns the rooms on floor n in position order, or nil if the floor
// does not exist.
func (inv Inventory) Floor(n int) []Room {
	var out []Room
	for _, r := range inv.rooms {
		if r.Floor == n {
			out = append(out, r)
		}
	}
	return out
}

// CountByStatus tallies rooms per status. Every status is present in the map.
func (inv Inventory) CountByStatus() map[Status]int {
	counts := make(map[Status]int, len(AllStatuses))
	for _, s := range AllStatuses {
		counts[s] = 0
	}
	for _, r := range inv.rooms {
		counts[r.Status]++
	}
	return counts
}

// WithStatuses returns a copy of the inventory with the given room statuses
// applied. The receiver is not modified.
//
// Postcondition: Returns an error wrapping ErrRoomNotFound if any number is
// unknown, in which case no change is applied.
func (inv Inventory) WithStatuses(statuses map[int]Status) (Inventory, error) {
	for number, s := range statuses {
		if _, ok := inv.index[number]; !ok {
			return inv, fmt.Errorf("room %d: %w", number, ErrRoomNotFound)
		}
		if !s.Valid() {
			return inv, fmt.Errorf("room %d: invalid status %d", number, int(s))
		}
	}
	rooms := slices.Clone(inv.rooms)
	for number, s := range statuses {
		rooms[inv.index[number]].Status = s
	}
	return Inventory{layout: inv.layout, rooms: rooms, index: inv.index}, nil
}

// Map returns a copy of the inventory with fn applied to every room's status.
// fn receives each room in (floor, position) order.
func (inv Inventory) Map(fn func(Room) Status) Inventory {
	rooms := slices.Clone(inv.rooms)
	for i := range rooms {
		rooms[i].Status = fn(rooms[i])
	}
	return Inventory{layout: inv.layout, rooms: rooms, index: inv.index}
}
