// Package occupancy applies state transitions to an inventory: committing a
// booking, simulating random occupancy, and resetting every room.
package occupancy

import (
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
	"github.com/cory-johannsen/hotel/internal/random"
)

// DefaultProbability is the chance that Randomize marks a room Occupied.
const DefaultProbability = 0.3

// Commit marks every room in a successful result as Selected.
//
// Postcondition: If result.Success is false, or any room in the result is
// not part of inv, inv is returned unchanged. Otherwise only the result's
// rooms change.
func Commit(inv inventory.Inventory, result allocator.BookingResult) inventory.Inventory {
	if !result.Success || len(result.Rooms) == 0 {
		return inv
	}
	statuses := make(map[int]inventory.Status, len(result.Rooms))
	for _, r := range result.Rooms {
		statuses[r.Number] = inventory.Selected
	}
	next, err := inv.WithStatuses(statuses)
	if err != nil {
		return inv
	}
	return next
}

// Randomize overwrites every room's status independently: Occupied with
// probability p, Available otherwise. Selected rooms do not survive.
//
// Precondition: src must be non-nil.
// Postcondition: Every room in the result is Available or Occupied.
func Randomize(inv inventory.Inventory, src random.Source, p float64) inventory.Inventory {
	return inv.Map(func(inventory.Room) inventory.Status {
		if random.Chance(src, p) {
			return inventory.Occupied
		}
		return inventory.Available
	})
}

// ResetAll rebuilds the inventory from its layout with every room Available.
//
// Postcondition: Returns an inventory equal to inventory.New(inv.Layout()).
func ResetAll(inv inventory.Inventory) inventory.Inventory {
	fresh, err := inventory.New(inv.Layout())
	if err != nil {
		// The layout was validated when inv was built.
		return inv.Map(func(inventory.Room) inventory.Status { return inventory.Available })
	}
	return fresh
}
