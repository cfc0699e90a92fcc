// Package allocator selects rooms for a booking request, minimising the
// travel time between the rooms a guest receives.
package allocator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
	"github.com/cory-johannsen/hotel/internal/hotel/travel"
)

// Options fixes the allocator's constants at construction.
type Options struct {
	// MaxRoomsPerBooking caps a single request.
	MaxRoomsPerBooking int
	// ExhaustiveMaxRequest enables exhaustive search for requests of at most
	// this many rooms.
	ExhaustiveMaxRequest int
	// ExhaustiveMaxAvailable enables exhaustive search when at most this many
	// rooms are available.
	ExhaustiveMaxAvailable int
	// Costs is the travel-time metric.
	Costs travel.Costs
}

// DefaultOptions returns the standard allocator constants.
func DefaultOptions() Options {
	return Options{
		MaxRoomsPerBooking:     5,
		ExhaustiveMaxRequest:   3,
		ExhaustiveMaxAvailable: 20,
		Costs:                  travel.DefaultCosts,
	}
}

// Allocator selects rooms from an inventory snapshot. It holds no mutable
// state and is safe for concurrent use.
type Allocator struct {
	opts Options
}

// New creates an Allocator with the given options.
//
// Precondition: opts.MaxRoomsPerBooking >= 1.
func New(opts Options) *Allocator {
	return &Allocator{opts: opts}
}

// Options returns the allocator's constants.
func (a *Allocator) Options() Options {
	return a.opts
}

// Allocate selects count rooms from inv. Strategies are tried in order:
//
//  1. Same floor: the lowest floor with at least count Available rooms
//     supplies its count rooms closest to the stairs.
//  2. Exhaustive: when count <= ExhaustiveMaxRequest or at most
//     ExhaustiveMaxAvailable rooms are free, every combination is scored and
//     the first one with the lowest travel time wins.
//  3. Greedy: otherwise the first count rooms in (floor, position) order.
//     This is a heuristic and is not guaranteed optimal.
//
// Allocate never panics and never returns an error; failures are reported
// through BookingResult.Success and BookingResult.Failure. The same inventory
// and count always produce the same result.
//
// Postcondition: On success len(result.Rooms) == count and
// result.TotalTravelTime == Costs.Aggregate(result.Rooms).
func (a *Allocator) Allocate(inv inventory.Inventory, count int) BookingResult {
	available := inv.Available()

	if count < 1 {
		return failed(InvalidRequest, count, len(available),
			"Please request at least 1 room.")
	}
	if count > a.opts.MaxRoomsPerBooking {
		return failed(ExceedsMaxRooms, count, len(available),
			"Maximum %d rooms can be booked at a time.", a.opts.MaxRoomsPerBooking)
	}
	if len(available) < count {
		return failed(InsufficientAvailability, count, len(available),
			"Only %d %s available, cannot book %d.", len(available), plural(len(available), "room is", "rooms are"), count)
	}

	selected, strategy := a.sameFloor(inv, count)
	if selected == nil {
		if a.exhaustiveAllowed(count, len(available)) {
			selected, strategy = a.exhaustive(available, count), StrategyExhaustive
		} else {
			selected, strategy = greedy(available, count), StrategyGreedy
		}
	}

	if len(selected) != count {
		return failed(NoViableCombination, count, len(available),
			"Unable to find a combination of %d rooms.", count)
	}

	slices.SortFunc(selected, inventory.Compare)
	total := a.opts.Costs.Aggregate(selected)
	return BookingResult{
		Rooms:           selected,
		TotalTravelTime: total,
		Success:         true,
		Message:         successMessage(selected, total),
		Failure:         FailureNone,
		Strategy:        strategy,
		Requested:       count,
		Available:       len(available),
	}
}

// exhaustiveAllowed is the guard against combinatorial blowup.
func (a *Allocator) exhaustiveAllowed(count, available int) bool {
	return count <= a.opts.ExhaustiveMaxRequest || available <= a.opts.ExhaustiveMaxAvailable
}

// sameFloor returns the first count Available rooms on the lowest floor that
// has enough of them, or nil if no floor does. Floor number takes priority
// over travel cost.
func (a *Allocator) sameFloor(inv inventory.Inventory, count int) ([]inventory.Room, Strategy) {
	for floor := 1; floor <= inv.Layout().Floors(); floor++ {
		var free []inventory.Room
		for _, r := range inv.Floor(floor) {
			if r.Status == inventory.Available {
				free = append(free, r)
			}
		}
		if len(free) >= count {
			return free[:count:count], StrategySameFloor
		}
	}
	return nil, StrategyNone
}

// exhaustive scores every count-combination of available, enumerated
// lexicographically over the slice as given, and keeps the first minimum.
func (a *Allocator) exhaustive(available []inventory.Room, count int) []inventory.Room {
	var (
		best     []int
		bestCost int
		scratch  = make([]inventory.Room, count)
	)
	combinations(len(available), count, func(idx []int) bool {
		for i, j := range idx {
			scratch[i] = available[j]
		}
		cost := a.opts.Costs.Aggregate(scratch)
		if best == nil || cost < bestCost {
			best = slices.Clone(idx)
			bestCost = cost
		}
		return true
	})

	out := make([]inventory.Room, len(best))
	for i, j := range best {
		out[i] = available[j]
	}
	return out
}

// greedy takes the first count rooms in (floor, position) order.
func greedy(available []inventory.Room, count int) []inventory.Room {
	sorted := slices.Clone(available)
	slices.SortFunc(sorted, inventory.Compare)
	if len(sorted) < count {
		return sorted
	}
	return sorted[:count:count]
}

func successMessage(rooms []inventory.Room, total int) string {
	numbers := make([]string, len(rooms))
	for i, r := range rooms {
		numbers[i] = strconv.Itoa(r.Number)
	}
	msg := fmt.Sprintf("Booked %d %s: %s.", len(rooms), plural(len(rooms), "room", "rooms"), strings.Join(numbers, ", "))
	if total > 0 {
		msg += fmt.Sprintf(" Total travel time: %d %s.", total, plural(total, "minute", "minutes"))
	}
	return msg
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
