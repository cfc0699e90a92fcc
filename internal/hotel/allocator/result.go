package allocator

import (
	"fmt"

	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// Failure classifies why an allocation did not succeed.
type Failure int

// Failure kinds. FailureNone marks a successful result.
const (
	FailureNone Failure = iota
	// InvalidRequest means the requested count was below one.
	InvalidRequest
	// ExceedsMaxRooms means the requested count was above the per-booking cap.
	ExceedsMaxRooms
	// InsufficientAvailability means fewer rooms were available than requested.
	InsufficientAvailability
	// NoViableCombination is the internal-consistency guard: a strategy
	// produced a selection of the wrong size.
	NoViableCombination
)

var failureNames = map[Failure]string{
	FailureNone:              "none",
	InvalidRequest:           "invalid_request",
	ExceedsMaxRooms:          "exceeds_max_rooms",
	InsufficientAvailability: "insufficient_availability",
	NoViableCombination:      "no_viable_combination",
}

// String returns the snake_case failure name.
func (f Failure) String() string {
	if name, ok := failureNames[f]; ok {
		return name
	}
	return fmt.Sprintf("failure(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f Failure) MarshalText() ([]byte, error) {
	if _, ok := failureNames[f]; !ok {
		return nil, fmt.Errorf("invalid failure kind %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Failure) UnmarshalText(text []byte) error {
	for k, name := range failureNames {
		if name == string(text) {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("unknown failure kind %q", text)
}

// Strategy names the selection path that produced a result.
type Strategy int

// Strategies in the order the allocator tries them.
const (
	StrategyNone Strategy = iota
	StrategySameFloor
	StrategyExhaustive
	StrategyGreedy
)

var strategyNames = map[Strategy]string{
	StrategyNone:       "none",
	StrategySameFloor:  "same-floor",
	StrategyExhaustive: "exhaustive",
	StrategyGreedy:     "greedy",
}

// String returns the strategy name.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if _, ok := strategyNames[s]; !ok {
		return nil, fmt.Errorf("invalid strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	for k, name := range strategyNames {
		if name == string(text) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown strategy %q", text)
}

// BookingResult is the outcome of one allocation request.
//
// Invariant: Success implies len(Rooms) == the requested count and
// TotalTravelTime == travel time of Rooms. !Success implies Rooms is empty
// and TotalTravelTime is 0.
type BookingResult struct {
	// Rooms are the selected rooms in (floor, position) order.
	Rooms []inventory.Room `json:"rooms"`
	// TotalTravelTime is the aggregate travel time in minutes.
	TotalTravelTime int `json:"total_travel_time"`
	// Success reports whether rooms were selected.
	Success bool `json:"success"`
	// Message is a human-readable description of the outcome.
	Message string `json:"message"`
	// Failure classifies an unsuccessful result.
	Failure Failure `json:"failure"`
	// Strategy names the path that selected the rooms.
	Strategy Strategy `json:"strategy"`
	// Requested is the room count that was asked for.
	Requested int `json:"requested"`
	// Available is the number of Available rooms seen at allocation time.
	Available int `json:"available"`
}

// RoomNumbers returns the numbers of the selected rooms.
func (r BookingResult) RoomNumbers() []int {
	numbers := make([]int, len(r.Rooms))
	for i, room := range r.Rooms {
		numbers[i] = room.Number
	}
	return numbers
}

// ShowTravelTime reports whether a display layer should render the travel
// time: only for successful multi-room results with a non-zero cost.
func (r BookingResult) ShowTravelTime() bool {
	return r.Success && r.TotalTravelTime > 0
}

func failed(kind Failure, requested, available int, format string, args ...any) BookingResult {
	return BookingResult{
		Rooms:     []inventory.Room{},
		Success:   false,
		Message:   fmt.Sprintf(format, args...),
		Failure:   kind,
		Requested: requested,
		Available: available,
	}
}
