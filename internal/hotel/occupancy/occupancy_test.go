package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hotel/internal/hotel/allocator"
	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
	"github.com/cory-johannsen/hotel/internal/random"
)

func TestCommit_EndToEnd(t *testing.T) {
	inv := inventory.MustNew(inventory.DefaultLayout())
	res := allocator.New(allocator.DefaultOptions()).Allocate(inv, 2)
	require.True(t, res.Success)
	assert.Equal(t, []int{101, 102}, res.RoomNumbers())
	assert.Equal(t, 1, res.TotalTravelTime)

	next := Commit(inv, res)
	for _, r := range next.Rooms() {
		if r.Number == 101 || r.Number == 102 {
			assert.Equal(t, inventory.Selected, r.Status, "room %d", r.Number)
		} else {
			assert.Equal(t, inventory.Available, r.Status, "room %d", r.Number)
		}
	}

	// The original snapshot is untouched.
	assert.Equal(t, 97, inv.CountByStatus()[inventory.Available])

	// The next booking skips the committed rooms.
	res = allocator.New(allocator.DefaultOptions()).Allocate(next, 2)
	require.True(t, res.Success)
	assert.Equal(t, []int{103, 104}, res.RoomNumbers())
}

func TestCommit_FailedResultIsNoOp(t *testing.T) {
	inv := inventory.MustNew(inventory.DefaultLayout())
	a := allocator.New(allocator.DefaultOptions())

	for _, k := range []int{0, 6, 98} {
		res := a.Allocate(inv, k)
		require.False(t, res.Success)
		assert.Equal(t, inv.Rooms(), Commit(inv, res).Rooms())
	}

	// A failed result that somehow carries rooms still changes nothing.
	forged := allocator.BookingResult{
		Success: false,
		Rooms:   []inventory.Room{{Number: 101, Floor: 1, Position: 1}},
	}
	assert.Equal(t, inv.Rooms(), Commit(inv, forged).Rooms())
}

func TestCommit_UnknownRoomIsNoOp(t *testing.T) {
	inv := inventory.MustNew(inventory.Layout{RoomsPerFloor: []int{2}})
	res := allocator.BookingResult{
		Success: true,
		Rooms:   []inventory.Room{{Number: 101}, {Number: 999}},
	}
	assert.Equal(t, inv.Rooms(), Commit(inv, res).Rooms())
}

func TestRandomize_Reproducible(t *testing.T) {
	inv := inventory.MustNew(inventory.DefaultLayout())
	a := Randomize(inv, random.NewSeededSource(7), DefaultProbability)
	b := Randomize(inv, random.NewSeededSource(7), DefaultProbability)
	assert.Equal(t, a.Rooms(), b.Rooms())
}

func TestRandomize_ClearsSelected(t *testing.T) {
	inv := inventory.MustNew(inventory.DefaultLayout())
	res := allocator.New(allocator.DefaultOptions()).Allocate(inv, 5)
	inv = Commit(inv, res)
	require.Equal(t, 5, inv.CountByStatus()[inventory.Selected])

	next := Randomize(inv, random.NewSeededSource(1), DefaultProbability)
	counts := next.CountByStatus()
	assert.Equal(t, 0, counts[inventory.Selected])
	assert.Equal(t, 97, counts[inventory.Available]+counts[inventory.Occupied])
}

func TestRandomize_Extremes(t *testing.T) {
	inv := inventory.MustNew(inventory.DefaultLayout())
	src := random.NewSeededSource(3)
	assert.Equal(t, 97, Randomize(inv, src, 1).CountByStatus()[inventory.Occupied])
	assert.Equal(t, 97, Randomize(inv, src, 0).CountByStatus()[inventory.Available])
}

func TestResetAll(t *testing.T) {
	inv := inventory.MustNew(inventory.DefaultLayout())
	inv = Randomize(inv, random.NewSeededSource(11), 0.5)
	inv = Commit(inv, allocator.New(allocator.DefaultOptions()).Allocate(inv, 3))

	reset := ResetAll(inv)
	assert.Equal(t, inventory.MustNew(inventory.DefaultLayout()).Rooms(), reset.Rooms())
	assert.Equal(t, 97, reset.CountByStatus()[inventory.Available])
}

func TestProperty_RandomizeShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		p := rapid.Float64Range(0, 1).Draw(t, "p")
		k := rapid.IntRange(1, 5).Draw(t, "k")

		inv := inventory.MustNew(inventory.DefaultLayout())
		inv = Commit(inv, allocator.New(allocator.DefaultOptions()).Allocate(inv, k))
		next := Randomize(inv, random.NewSeededSource(seed), p)

		if next.Count() != 97 {
			t.Fatalf("room count changed to %d", next.Count())
		}
		for _, r := range next.Rooms() {
			if r.Status != inventory.Available && r.Status != inventory.Occupied {
				t.Fatalf("room %d has status %s after randomize", r.Number, r.Status)
			}
		}
	})
}
