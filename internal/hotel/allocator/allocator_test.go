package allocator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hotel/internal/hotel/inventory"
	"github.com/cory-johannsen/hotel/internal/hotel/travel"
)

// withFree returns an inventory for layout in which only the listed rooms are
// Available and every other room is Occupied.
func withFree(layout inventory.Layout, free ...int) inventory.Inventory {
	set := make(map[int]bool, len(free))
	for _, n := range free {
		set[n] = true
	}
	return inventory.MustNew(layout).Map(func(r inventory.Room) inventory.Status {
		if set[r.Number] {
			return inventory.Available
		}
		return inventory.Occupied
	})
}

func layoutOf(counts ...int) inventory.Layout {
	return inventory.Layout{RoomsPerFloor: counts}
}

func TestAllocate_FreshInventoryTwoRooms(t *testing.T) {
	a := New(DefaultOptions())
	res := a.Allocate(inventory.MustNew(inventory.DefaultLayout()), 2)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, []int{101, 102}, res.RoomNumbers())
	assert.Equal(t, 1, res.TotalTravelTime)
	assert.Equal(t, StrategySameFloor, res.Strategy)
	assert.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, 97, res.Available)
	assert.Contains(t, res.Message, "101, 102")
	assert.True(t, res.ShowTravelTime())
}

func TestAllocate_SingleRoom(t *testing.T) {
	a := New(DefaultOptions())
	res := a.Allocate(inventory.MustNew(inventory.DefaultLayout()), 1)

	require.True(t, res.Success)
	assert.Equal(t, []int{101}, res.RoomNumbers())
	assert.Equal(t, 0, res.TotalTravelTime)
	assert.False(t, res.ShowTravelTime())
	assert.NotContains(t, res.Message, "travel time")
}

func TestAllocate_ExceedsMaxRooms(t *testing.T) {
	a := New(DefaultOptions())
	res := a.Allocate(inventory.MustNew(inventory.DefaultLayout()), 6)

	assert.False(t, res.Success)
	assert.Equal(t, ExceedsMaxRooms, res.Failure)
	assert.Empty(t, res.Rooms)
	assert.Equal(t, 0, res.TotalTravelTime)
	assert.Contains(t, res.Message, "5")
}

func TestAllocate_InvalidRequest(t *testing.T) {
	a := New(DefaultOptions())
	for _, n := range []int{0, -3} {
		res := a.Allocate(inventory.MustNew(inventory.DefaultLayout()), n)
		assert.False(t, res.Success)
		assert.Equal(t, InvalidRequest, res.Failure)
		assert.Empty(t, res.Rooms)
	}
}

func TestAllocate_InsufficientAvailability(t *testing.T) {
	a := New(DefaultOptions())
	inv := withFree(inventory.DefaultLayout(), 305, 1007)

	res := a.Allocate(inv, 3)
	assert.False(t, res.Success)
	assert.Equal(t, InsufficientAvailability, res.Failure)
	assert.Equal(t, 2, res.Available)
	assert.Contains(t, res.Message, "Only 2 rooms are available")
	assert.Empty(t, res.Rooms)
}

func TestAllocate_SameFloorPreference(t *testing.T) {
	a := New(DefaultOptions())
	inv := withFree(inventory.DefaultLayout(), 103, 104, 107, 110)

	res := a.Allocate(inv, 3)
	require.True(t, res.Success)
	assert.Equal(t, []int{103, 104, 107}, res.RoomNumbers())
	assert.Equal(t, 4, res.TotalTravelTime)
	assert.Equal(t, StrategySameFloor, res.Strategy)
}

func TestAllocate_SameFloorLowestFloorWinsOverCost(t *testing.T) {
	a := New(DefaultOptions())
	// Floor 2 would cost 2 minutes; floor 1 costs 9 but is checked first.
	inv := withFree(inventory.DefaultLayout(), 101, 105, 110, 201, 202, 203)

	res := a.Allocate(inv, 3)
	require.True(t, res.Success)
	assert.Equal(t, []int{101, 105, 110}, res.RoomNumbers())
	assert.Equal(t, 9, res.TotalTravelTime)
}

func TestAllocate_SameFloorBeatsCheaperCrossFloor(t *testing.T) {
	a := New(DefaultOptions())
	inv := withFree(inventory.DefaultLayout(), 101, 110, 201)

	res := a.Allocate(inv, 2)
	require.True(t, res.Success)
	assert.Equal(t, []int{101, 110}, res.RoomNumbers())
	assert.Equal(t, StrategySameFloor, res.Strategy)
}

func TestAllocate_ExhaustiveFindsMinimum(t *testing.T) {
	a := New(DefaultOptions())
	inv := withFree(layoutOf(4, 4, 4), 101, 104, 202, 301, 302)

	res := a.Allocate(inv, 3)
	require.True(t, res.Success)
	assert.Equal(t, StrategyExhaustive, res.Strategy)
	assert.Equal(t, []int{202, 301, 302}, res.RoomNumbers())
	assert.Equal(t, 3, res.TotalTravelTime)
}

func TestAllocate_ExhaustiveTieKeepsFirstCombination(t *testing.T) {
	a := New(DefaultOptions())
	// {101,201} and {201,301} both cost 2; {101,201} is enumerated first.
	inv := withFree(layoutOf(1, 1, 1), 101, 201, 301)

	res := a.Allocate(inv, 2)
	require.True(t, res.Success)
	assert.Equal(t, StrategyExhaustive, res.Strategy)
	assert.Equal(t, []int{101, 201}, res.RoomNumbers())
	assert.Equal(t, 2, res.TotalTravelTime)
}

func TestAllocate_ExhaustiveSmallSyntheticMatchesBruteForce(t *testing.T) {
	// Six rooms across two floors, none with enough for a same-floor booking.
	layout := layoutOf(3, 3)
	a := New(DefaultOptions())
	inv := withFree(layout, 101, 103, 201, 203)

	res := a.Allocate(inv, 3)
	require.True(t, res.Success)
	assert.Equal(t, StrategyExhaustive, res.Strategy)
	assert.Equal(t, bruteForceMin(inv.Available(), 3, travel.DefaultCosts), res.TotalTravelTime)
}

// spreadInventory leaves three free rooms on every floor so no floor can take
// a four-room booking.
func spreadInventory() inventory.Inventory {
	var free []int
	for floor := 1; floor <= 10; floor++ {
		last := 9
		if floor == 10 {
			last = 7
		}
		free = append(free, inventory.RoomNumber(floor, 2), inventory.RoomNumber(floor, 5), inventory.RoomNumber(floor, last))
	}
	return withFree(inventory.DefaultLayout(), free...)
}

func TestAllocate_GreedyFallback(t *testing.T) {
	a := New(DefaultOptions())
	inv := spreadInventory()
	require.Len(t, inv.Available(), 30)

	res := a.Allocate(inv, 4)
	require.True(t, res.Success)
	assert.Equal(t, StrategyGreedy, res.Strategy)
	assert.Equal(t, []int{102, 105, 109, 202}, res.RoomNumbers())
	assert.Equal(t, 9, res.TotalTravelTime)
}

func TestAllocate_GreedyIsNotOptimal(t *testing.T) {
	inv := spreadInventory()
	greedyRes := New(DefaultOptions()).Allocate(inv, 4)

	opts := DefaultOptions()
	opts.ExhaustiveMaxAvailable = 100
	exhaustiveRes := New(opts).Allocate(inv, 4)

	require.True(t, exhaustiveRes.Success)
	assert.Equal(t, StrategyExhaustive, exhaustiveRes.Strategy)
	assert.Less(t, exhaustiveRes.TotalTravelTime, greedyRes.TotalTravelTime)
}

func TestAllocate_ForcedGuardThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.ExhaustiveMaxRequest = 0
	opts.ExhaustiveMaxAvailable = 0
	a := New(opts)

	inv := withFree(layoutOf(2, 2, 2), 102, 201, 302)
	res := a.Allocate(inv, 2)
	require.True(t, res.Success)
	assert.Equal(t, StrategyGreedy, res.Strategy)
	assert.Equal(t, []int{102, 201}, res.RoomNumbers())
}

func TestAllocate_DoesNotMutateInventory(t *testing.T) {
	a := New(DefaultOptions())
	inv := spreadInventory()
	before := inv.Rooms()
	a.Allocate(inv, 4)
	a.Allocate(inv, 2)
	assert.Equal(t, before, inv.Rooms())
}

func TestBookingResult_JSON(t *testing.T) {
	a := New(DefaultOptions())
	res := a.Allocate(inventory.MustNew(inventory.DefaultLayout()), 2)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"strategy":"same-floor"`)
	assert.Contains(t, string(data), `"failure":"none"`)

	var back BookingResult
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, res, back)
}

func TestFailure_UnknownText(t *testing.T) {
	var f Failure
	assert.Error(t, f.UnmarshalText([]byte("bogus")))
	assert.Equal(t, "no_viable_combination", NoViableCombination.String())
	_, err := Failure(42).MarshalText()
	assert.Error(t, err)
}

func TestCombinations_Lexicographic(t *testing.T) {
	var got [][]int
	combinations(4, 2, func(idx []int) bool {
		got = append(got, append([]int(nil), idx...))
		return true
	})
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}

func TestCombinations_Counts(t *testing.T) {
	count := func(n, k int) int {
		c := 0
		combinations(n, k, func([]int) bool { c++; return true })
		return c
	}
	assert.Equal(t, 1, count(5, 0))
	assert.Equal(t, 1, count(5, 5))
	assert.Equal(t, 0, count(3, 4))
	assert.Equal(t, 15504, count(20, 5))
}

func TestCombinations_StopEarly(t *testing.T) {
	c := 0
	combinations(10, 3, func([]int) bool {
		c++
		return c < 5
	})
	assert.Equal(t, 5, c)
}

// bruteForceMin recursively scores every k-subset of rooms.
func bruteForceMin(rooms []inventory.Room, k int, costs travel.Costs) int {
	best := -1
	var pick func(start int, chosen []inventory.Room)
	pick = func(start int, chosen []inventory.Room) {
		if len(chosen) == k {
			c := costs.Aggregate(chosen)
			if best < 0 || c < best {
				best = c
			}
			return
		}
		for i := start; i < len(rooms); i++ {
			pick(i+1, append(chosen, rooms[i]))
		}
	}
	pick(0, nil)
	return best
}

// genInventory draws a small layout with random occupancy.
func genInventory(t *rapid.T) inventory.Inventory {
	counts := rapid.SliceOfN(rapid.IntRange(1, 6), 1, 4).Draw(t, "rooms_per_floor")
	inv := inventory.MustNew(inventory.Layout{RoomsPerFloor: counts})
	statuses := make(map[int]inventory.Status)
	for _, r := range inv.Rooms() {
		if rapid.Bool().Draw(t, "occupied") {
			statuses[r.Number] = inventory.Occupied
		}
	}
	inv, err := inv.WithStatuses(statuses)
	if err != nil {
		t.Fatalf("applying statuses: %v", err)
	}
	return inv
}

func TestProperty_ExhaustiveIsOptimal(t *testing.T) {
	a := New(DefaultOptions())
	rapid.Check(t, func(t *rapid.T) {
		inv := genInventory(t)
		k := rapid.IntRange(1, 3).Draw(t, "k")
		res := a.Allocate(inv, k)

		if len(inv.Available()) < k {
			if res.Success || res.Failure != InsufficientAvailability {
				t.Fatalf("expected insufficient availability, got %+v", res)
			}
			return
		}
		if !res.Success {
			t.Fatalf("unexpected failure: %+v", res)
		}
		if len(res.Rooms) != k {
			t.Fatalf("expected %d rooms, got %d", k, len(res.Rooms))
		}
		if res.TotalTravelTime != travel.Aggregate(res.Rooms) {
			t.Fatalf("travel time %d does not match rooms", res.TotalTravelTime)
		}
		if res.Strategy == StrategyExhaustive {
			if want := bruteForceMin(inv.Available(), k, travel.DefaultCosts); res.TotalTravelTime != want {
				t.Fatalf("exhaustive returned %d, brute force minimum is %d", res.TotalTravelTime, want)
			}
		}
	})
}

func TestProperty_SameFloorUsesLowestEligibleFloor(t *testing.T) {
	a := New(DefaultOptions())
	rapid.Check(t, func(t *rapid.T) {
		inv := genInventory(t)
		k := rapid.IntRange(1, 5).Draw(t, "k")
		res := a.Allocate(inv, k)
		if !res.Success {
			return
		}

		eligible := 0
		for floor := 1; floor <= inv.Layout().Floors(); floor++ {
			free := 0
			for _, r := range inv.Floor(floor) {
				if r.Status == inventory.Available {
					free++
				}
			}
			if free >= k {
				eligible = floor
				break
			}
		}

		if eligible == 0 {
			if res.Strategy == StrategySameFloor {
				t.Fatalf("same-floor strategy with no eligible floor")
			}
			return
		}
		if res.Strategy != StrategySameFloor {
			t.Fatalf("expected same-floor strategy, got %s", res.Strategy)
		}
		for _, r := range res.Rooms {
			if r.Floor != eligible {
				t.Fatalf("room %d not on floor %d", r.Number, eligible)
			}
		}
	})
}

func TestProperty_CapAlwaysEnforced(t *testing.T) {
	a := New(DefaultOptions())
	rapid.Check(t, func(t *rapid.T) {
		inv := genInventory(t)
		k := rapid.IntRange(6, 50).Draw(t, "k")
		res := a.Allocate(inv, k)
		if res.Success || res.Failure != ExceedsMaxRooms {
			t.Fatalf("expected ExceedsMaxRooms, got %+v", res)
		}
	})
}

func TestProperty_Deterministic(t *testing.T) {
	a := New(DefaultOptions())
	rapid.Check(t, func(t *rapid.T) {
		inv := genInventory(t)
		k := rapid.IntRange(1, 5).Draw(t, "k")
		first := a.Allocate(inv, k)
		second := a.Allocate(inv, k)
		if first.Message != second.Message || first.TotalTravelTime != second.TotalTravelTime {
			t.Fatalf("non-deterministic allocation")
		}
	})
}
