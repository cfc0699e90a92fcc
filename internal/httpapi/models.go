package httpapi

import (
	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

// CountRequest is the body of POST /quotes and POST /bookings.
type CountRequest struct {
	Count *int `json:"count"`
}

// RoomsResponse describes the whole inventory.
type RoomsResponse struct {
	Name          string           `json:"name"`
	RoomsPerFloor []int            `json:"rooms_per_floor"`
	Counts        map[string]int   `json:"counts"`
	Rooms         []inventory.Room `json:"rooms"`
}

// BookingsResponse lists the booking ledger oldest first.
type BookingsResponse struct {
	Bookings []desk.Receipt `json:"bookings"`
}

func newRoomsResponse(inv inventory.Inventory) RoomsResponse {
	layout := inv.Layout()
	counts := make(map[string]int, len(inventory.AllStatuses))
	for s, n := range inv.CountByStatus() {
		counts[s.String()] = n
	}
	return RoomsResponse{
		Name:          layout.Name,
		RoomsPerFloor: layout.RoomsPerFloor,
		Counts:        counts,
		Rooms:         inv.Rooms(),
	}
}
