package deskserver

import (
	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// Messages mirror api/proto/hotel/v1/frontdesk.proto; wire.go encodes them.

// Empty is the request or response of methods without a payload.
type Empty struct{}

// CountRequest asks for a number of rooms. Count is required.
type CountRequest struct {
	Count *int
}

// BookingRequest names a confirmation ID.
type BookingRequest struct {
	ConfirmationID string
}

// LayoutMessage is the wire form of inventory.Layout.
type LayoutMessage struct {
	Name          string
	RoomsPerFloor []int
}

// SnapshotResponse carries a full inventory.
type SnapshotResponse struct {
	Layout LayoutMessage
	Rooms  []inventory.Room
	Counts map[string]int
}

// QuoteResponse carries an uncommitted allocation and the inventory it ran
// against.
type QuoteResponse struct {
	Result   allocator.BookingResult
	Snapshot *SnapshotResponse
}

// BookResponse carries the receipt of a Book call.
type BookResponse struct {
	Receipt desk.Receipt
}

// BookingsResponse carries the booking ledger, oldest first.
type BookingsResponse struct {
	Bookings []desk.Receipt
}

func newSnapshotResponse(inv inventory.Inventory) *SnapshotResponse {
	layout := inv.Layout()
	counts := make(map[string]int, len(inventory.AllStatuses))
	for s, n := range inv.CountByStatus() {
		counts[s.String()] = n
	}
	return &SnapshotResponse{
		Layout: LayoutMessage{Name: layout.Name, RoomsPerFloor: layout.RoomsPerFloor},
		Rooms:  inv.Rooms(),
		Counts: counts,
	}
}

// Inventory rebuilds the snapshot.
//
// Postcondition: Returns an error if the rooms do not match the layout.
func (r *SnapshotResponse) Inventory() (inventory.Inventory, error) {
	layout := inventory.Layout{Name: r.Layout.Name, RoomsPerFloor: r.Layout.RoomsPerFloor}
	return inventory.Restore(layout, r.Rooms)
}
