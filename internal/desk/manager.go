// Package desk owns the canonical room inventory and serializes every
// booking and administrative change made to it.
package desk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
	"github.com/cory-johannsen/hotel/internal/hotel/occupancy"
	"github.com/cory-johannsen/hotel/internal/observability"
	"github.com/cory-johannsen/hotel/internal/random"
)

// ErrBookingNotFound is returned when a confirmation ID is unknown.
var ErrBookingNotFound = errors.New("booking not found")

// Receipt records the outcome of a Book call.
type Receipt struct {
	// ConfirmationID identifies a committed booking. Empty when the
	// allocation failed.
	ConfirmationID string `json:"confirmation_id,omitempty"`
	// Result is the allocation outcome.
	Result allocator.BookingResult `json:"result"`
	// BookedAt is when the booking was processed.
	BookedAt time.Time `json:"booked_at"`
}

// EventKind names a state change on the inventory.
type EventKind string

// Event kinds.
const (
	EventBooked     EventKind = "booked"
	EventRandomized EventKind = "randomized"
	EventReset      EventKind = "reset"
)

// Event describes a committed change to the inventory.
type Event struct {
	Kind EventKind `json:"kind"`
	// Rooms is the full inventory after the change.
	Rooms []inventory.Room `json:"rooms"`
	// Counts is the number of rooms per status after the change.
	Counts map[string]int `json:"counts"`
	// Receipt is set for EventBooked.
	Receipt *Receipt  `json:"receipt,omitempty"`
	At      time.Time `json:"at"`
}

// Options configures a Manager.
type Options struct {
	// OccupancyProbability is passed to occupancy.Randomize.
	OccupancyProbability float64
	// Source drives Randomize. Defaults to a crypto source.
	Source random.Source
	// Metrics is optional.
	Metrics *observability.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID defaults to uuid.NewString.
	NewID func() string
}

// Manager holds the canonical inventory. All methods are safe for
// concurrent use; allocate and commit happen under one lock so two
// concurrent bookings can never receive the same room.
type Manager struct {
	mu       sync.Mutex
	inv      inventory.Inventory
	alloc    *allocator.Allocator
	bookings []Receipt
	byID     map[string]int // confirmation ID -> index into bookings

	notifyMu  sync.Mutex
	listeners map[int]func(Event)
	nextID    int

	opts   Options
	logger *zap.Logger
}

// NewManager creates a Manager that starts from inv.
//
// Precondition: alloc and logger must be non-nil.
// Postcondition: Returns a Manager whose Snapshot equals inv.
func NewManager(inv inventory.Inventory, alloc *allocator.Allocator, logger *zap.Logger, opts Options) *Manager {
	if opts.Source == nil {
		opts.Source = random.NewCryptoSource()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	m := &Manager{
		inv:       inv,
		alloc:     alloc,
		byID:      make(map[string]int),
		listeners: make(map[int]func(Event)),
		opts:      opts,
		logger:    logger,
	}
	m.opts.Metrics.SetRooms(statusCounts(inv))
	return m
}

// Snapshot returns the current inventory.
func (m *Manager) Snapshot(ctx context.Context) (inventory.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return inventory.Inventory{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inv, nil
}

// Quote runs the allocator against the current inventory without
// committing the result.
//
// Postcondition: The inventory is unchanged.
func (m *Manager) Quote(ctx context.Context, count int) (allocator.BookingResult, error) {
	res, _, err := m.Preview(ctx, count)
	return res, err
}

// Preview is Quote that also returns the inventory the allocation ran
// against, read under the same lock.
//
// Postcondition: The inventory is unchanged. On success every quoted room is
// Available in the returned inventory.
func (m *Manager) Preview(ctx context.Context, count int) (allocator.BookingResult, inventory.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return allocator.BookingResult{}, inventory.Inventory{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allocate(count, "quote"), m.inv, nil
}

// Book allocates count rooms and commits them as Selected.
//
// Postcondition: On success the receipt carries a confirmation ID and the
// rooms are Selected in the inventory. On failure the inventory is
// unchanged and ConfirmationID is empty.
func (m *Manager) Book(ctx context.Context, count int) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	m.mu.Lock()
	res := m.allocate(count, "book")
	receipt := Receipt{Result: res, BookedAt: m.opts.Now()}
	if !res.Success {
		m.mu.Unlock()
		return receipt, nil
	}

	receipt.ConfirmationID = m.opts.NewID()
	m.inv = occupancy.Commit(m.inv, res)
	m.byID[receipt.ConfirmationID] = len(m.bookings)
	m.bookings = append(m.bookings, receipt)

	m.logger.Info("booking committed",
		zap.String("confirmation_id", receipt.ConfirmationID),
		zap.Ints("rooms", res.RoomNumbers()),
	)
	m.publishLocked(EventBooked, &receipt)
	return receipt, nil
}

// Randomize overwrites every room with a random Occupied/Available status
// and clears the booking ledger.
func (m *Manager) Randomize(ctx context.Context) (inventory.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return inventory.Inventory{}, err
	}

	m.mu.Lock()
	m.inv = occupancy.Randomize(m.inv, m.opts.Source, m.opts.OccupancyProbability)
	m.clearBookingsLocked()
	inv := m.inv

	m.logger.Info("occupancy randomized",
		zap.Float64("probability", m.opts.OccupancyProbability),
		zap.Int("occupied", inv.CountByStatus()[inventory.Occupied]),
	)
	m.publishLocked(EventRandomized, nil)
	return inv, nil
}

// Reset returns every room to Available and clears the booking ledger.
func (m *Manager) Reset(ctx context.Context) (inventory.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return inventory.Inventory{}, err
	}

	m.mu.Lock()
	m.inv = occupancy.ResetAll(m.inv)
	m.clearBookingsLocked()
	inv := m.inv

	m.logger.Info("inventory reset", zap.Int("rooms", inv.Count()))
	m.publishLocked(EventReset, nil)
	return inv, nil
}

// Bookings returns the committed bookings since the last reset or
// randomize, oldest first.
func (m *Manager) Bookings(ctx context.Context) ([]Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Receipt, len(m.bookings))
	copy(out, m.bookings)
	return out, nil
}

// Booking looks up a committed booking by confirmation ID.
//
// Postcondition: Returns ErrBookingNotFound if id is unknown.
func (m *Manager) Booking(ctx context.Context, id string) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.byID[id]
	if !ok {
		return Receipt{}, ErrBookingNotFound
	}
	return m.bookings[i], nil
}

// Subscribe registers fn to receive every Event. Events are delivered in
// commit order, one at a time, outside the inventory lock. fn must not call
// back into the Manager; the event carries the post-change rooms.
//
// Postcondition: Returns a func that removes the subscription.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.notifyMu.Lock()
		defer m.notifyMu.Unlock()
		delete(m.listeners, id)
	}
}

// allocate runs the allocator and records logs and metrics.
// Caller must hold m.mu.
func (m *Manager) allocate(count int, op string) allocator.BookingResult {
	start := time.Now()
	res := m.alloc.Allocate(m.inv, count)
	elapsed := time.Since(start)

	outcome := "success"
	if !res.Success {
		outcome = res.Failure.String()
	}
	m.opts.Metrics.ObserveAllocation(res.Strategy.String(), outcome, elapsed)

	m.logger.Debug("room allocation",
		zap.String("op", op),
		zap.Int("requested", count),
		zap.Int("available", res.Available),
		zap.String("strategy", res.Strategy.String()),
		zap.String("outcome", outcome),
		zap.Ints("rooms", res.RoomNumbers()),
		zap.Int("travel_time", res.TotalTravelTime),
		zap.Duration("elapsed", elapsed),
	)
	return res
}

func (m *Manager) clearBookingsLocked() {
	m.bookings = nil
	m.byID = make(map[string]int)
}

// publishLocked builds an event from the current inventory, releases m.mu,
// and delivers the event. Caller must hold m.mu; it is released on return.
func (m *Manager) publishLocked(kind EventKind, receipt *Receipt) {
	counts := statusCounts(m.inv)
	evt := Event{
		Kind:    kind,
		Rooms:   m.inv.Rooms(),
		Counts:  counts,
		Receipt: receipt,
		At:      m.opts.Now(),
	}
	m.opts.Metrics.SetRooms(counts)

	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()
	for _, fn := range m.listeners {
		fn(evt)
	}
}

func statusCounts(inv inventory.Inventory) map[string]int {
	counts := make(map[string]int, len(inventory.AllStatuses))
	for s, n := range inv.CountByStatus() {
		counts[s.String()] = n
	}
	return counts
}
