package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/desk"
	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
)

const (
	msgInvalidBody    = "request body must be a JSON object with an integer count"
	msgMissingCount   = "count is required"
	msgInvalidRoom    = "room number must be a positive integer"
	msgRoomNotFound   = "room not found"
	msgBookingMissing = "booking not found"
)

type handler struct {
	desk   *desk.Manager
	logger *zap.Logger
}

// listRooms handles GET /api/v1/rooms.
func (h *handler) listRooms(w http.ResponseWriter, r *http.Request) {
	inv, err := h.desk.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRoomsResponse(inv))
}

// getRoom handles GET /api/v1/rooms/{number}.
func (h *handler) getRoom(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["number"])
	if err != nil || n <= 0 {
		respondBadRequest(w, msgInvalidRoom)
		return
	}
	inv, err := h.desk.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	room, ok := inv.Room(n)
	if !ok {
		respondNotFound(w, msgRoomNotFound)
		return
	}
	respondJSON(w, http.StatusOK, room)
}

// quote handles POST /api/v1/quotes. Allocation failures are reported in
// the result with 200.
func (h *handler) quote(w http.ResponseWriter, r *http.Request) {
	count, ok := readCount(w, r)
	if !ok {
		return
	}
	res, err := h.desk.Quote(r.Context(), count)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// book handles POST /api/v1/bookings.
func (h *handler) book(w http.ResponseWriter, r *http.Request) {
	count, ok := readCount(w, r)
	if !ok {
		return
	}
	receipt, err := h.desk.Book(r.Context(), count)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !receipt.Result.Success {
		h.logger.Debug("http booking refused",
			zap.Int("count", count),
			zap.String("failure", receipt.Result.Failure.String()),
		)
		respondJSON(w, failureStatus(receipt.Result.Failure), receipt)
		return
	}
	w.Header().Set("Location", "/api/v1/bookings/"+receipt.ConfirmationID)
	respondJSON(w, http.StatusCreated, receipt)
}

// failureStatus maps an allocation failure to an HTTP status.
func failureStatus(f allocator.Failure) int {
	switch f {
	case allocator.InvalidRequest, allocator.ExceedsMaxRooms:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusConflict
	}
}

// listBookings handles GET /api/v1/bookings.
func (h *handler) listBookings(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.desk.Bookings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if receipts == nil {
		receipts = []desk.Receipt{}
	}
	respondJSON(w, http.StatusOK, BookingsResponse{Bookings: receipts})
}

// getBooking handles GET /api/v1/bookings/{id}.
func (h *handler) getBooking(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.desk.Booking(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, desk.ErrBookingNotFound) {
		respondNotFound(w, msgBookingMissing)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, receipt)
}

// randomize handles POST /api/v1/admin/randomize.
func (h *handler) randomize(w http.ResponseWriter, r *http.Request) {
	h.rebuild(w, r, h.desk.Randomize)
}

// reset handles POST /api/v1/admin/reset.
func (h *handler) reset(w http.ResponseWriter, r *http.Request) {
	h.rebuild(w, r, h.desk.Reset)
}

func (h *handler) rebuild(w http.ResponseWriter, r *http.Request, op func(context.Context) (inventory.Inventory, error)) {
	inv, err := op(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRoomsResponse(inv))
}

// readCount decodes a CountRequest, writing a 400 on failure.
func readCount(w http.ResponseWriter, r *http.Request) (int, bool) {
	var req CountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, msgInvalidBody)
		return 0, false
	}
	if req.Count == nil {
		respondBadRequest(w, msgMissingCount)
		return 0, false
	}
	return *req.Count, true
}

// fail reports an unexpected desk error.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	h.logger.Error("http request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondInternalError(w)
}
