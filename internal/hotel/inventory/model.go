// Package inventory provides the hotel room model: floors, rooms, statuses,
// and the immutable Inventory snapshot that the allocator reads.
package inventory

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the occupancy state of a single room.
type Status int

// Room statuses. The zero value is Available.
const (
	Available Status = iota
	Occupied
	Selected
)

// AllStatuses lists every Status in declaration order.
var AllStatuses = []Status{Available, Occupied, Selected}

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Available:
		return "available"
	case Occupied:
		return "occupied"
	case Selected:
		return "selected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	return s >= Available && s <= Selected
}

// ParseStatus converts a status name to a Status.
//
// Postcondition: Returns the matching Status or an error for unknown names.
func ParseStatus(name string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "available":
		return Available, nil
	case "occupied":
		return Occupied, nil
	case "selected":
		return Selected, nil
	}
	return Available, fmt.Errorf("unknown room status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid room status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Room is a single bookable room.
type Room struct {
	// Number is the guest-facing room number: floor*100 + position.
	Number int `json:"number"`
	// Floor is the 1-based floor the room is on.
	Floor int `json:"floor"`
	// Position is the 1-based distance rank from the stairs and lift.
	Position int `json:"position"`
	// Status is the current occupancy state.
	Status Status `json:"status"`
}

// RoomNumber returns the room number for a floor and position.
func RoomNumber(floor, position int) int {
	return floor*100 + position
}

// Less orders rooms ascending by floor, then position.
func Less(a, b Room) bool {
	if a.Floor != b.Floor {
		return a.Floor < b.Floor
	}
	return a.Position < b.Position
}

// Compare is the three-way form of Less, suitable for slices.SortFunc.
func Compare(a, b Room) int {
	if a.Floor != b.Floor {
		return a.Floor - b.Floor
	}
	return a.Position - b.Position
}

// MaxRoomsPerFloor keeps floor*100+position unique across floors.
const MaxRoomsPerFloor = 99

// Layout describes the fixed floor topology of a hotel.
type Layout struct {
	// Name is a display name for the property.
	Name string
	// RoomsPerFloor holds the room count of floor i+1 at index i.
	RoomsPerFloor []int
}

// DefaultLayout returns the standard 97-room topology: nine floors of ten
// rooms and a top floor of seven.
func DefaultLayout() Layout {
	return Layout{
		Name:          "Hotel",
		RoomsPerFloor: []int{10, 10, 10, 10, 10, 10, 10, 10, 10, 7},
	}
}

// Floors returns the number of floors.
func (l Layout) Floors() int {
	return len(l.RoomsPerFloor)
}

// TotalRooms returns the number of rooms across all floors.
func (l Layout) TotalRooms() int {
	total := 0
	for _, n := range l.RoomsPerFloor {
		total += n
	}
	return total
}

// Validate checks the layout invariants.
//
// Postcondition: Returns nil if the layout has at least one floor and every
// floor holds between 1 and MaxRoomsPerFloor rooms.
func (l Layout) Validate() error {
	if len(l.RoomsPerFloor) == 0 {
		return errors.New("layout must have at least one floor")
	}
	var errs []string
	for i, n := range l.RoomsPerFloor {
		if n < 1 || n > MaxRoomsPerFloor {
			errs = append(errs, fmt.Sprintf("floor %d must have 1-%d rooms, got %d", i+1, MaxRoomsPerFloor, n))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid layout: %s", strings.Join(errs, "; "))
	}
	return nil
}
