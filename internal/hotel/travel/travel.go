// Package travel computes the walking time between hotel rooms.
package travel

import (
	"slices"

	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// Costs holds the per-unit travel costs in minutes.
type Costs struct {
	// PerFloor is the cost of moving one floor up or down.
	PerFloor int
	// PerPosition is the cost of moving one room along a corridor.
	PerPosition int
}

// DefaultCosts is two minutes per floor and one minute per room.
var DefaultCosts = Costs{PerFloor: 2, PerPosition: 1}

// Pairwise returns the travel time between a and b.
// Horizontal distance only counts when both rooms share a floor, since a
// guest changing floors always starts from the stairs.
//
// Precondition: PerFloor and PerPosition must be >= 0.
// Postcondition: Result is >= 0 and Pairwise(a, b) == Pairwise(b, a).
func (c Costs) Pairwise(a, b inventory.Room) int {
	t := abs(a.Floor-b.Floor) * c.PerFloor
	if a.Floor == b.Floor {
		t += abs(a.Position-b.Position) * c.PerPosition
	}
	return t
}

// Aggregate returns the path cost of visiting rooms in (floor, position)
// order. The input slice is not reordered.
//
// Postcondition: Returns 0 when len(rooms) <= 1.
func (c Costs) Aggregate(rooms []inventory.Room) int {
	if len(rooms) <= 1 {
		return 0
	}
	sorted := slices.Clone(rooms)
	slices.SortFunc(sorted, inventory.Compare)

	total := 0
	for i := 1; i < len(sorted); i++ {
		total += c.Pairwise(sorted[i-1], sorted[i])
	}
	return total
}

// Pairwise is DefaultCosts.Pairwise.
func Pairwise(a, b inventory.Room) int {
	return DefaultCosts.Pairwise(a, b)
}

// Aggregate is DefaultCosts.Aggregate.
func Aggregate(rooms []inventory.Room) int {
	return DefaultCosts.Aggregate(rooms)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
