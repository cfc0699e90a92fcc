package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCryptoSource_Range(t *testing.T) {
	src := NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)

		f := src.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	assert.PanicsWithValue(t, "random: Intn called with n <= 0", func() {
		NewCryptoSource().Intn(0)
	})
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := NewSeededSource(42)
	b := NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSeededSource_DifferentSeedsDiverge(t *testing.T) {
	a := NewSeededSource(1)
	b := NewSeededSource(2)
	same := true
	for i := 0; i < 20; i++ {
		if a.Intn(1<<30) != b.Intn(1<<30) {
			same = false
		}
	}
	assert.False(t, same)
}

func TestSeededSource_PanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { NewSeededSource(1).Intn(-1) })
}

// fixedSource returns a constant Float64 and records calls.
type fixedSource struct {
	f     float64
	calls int
}

func (s *fixedSource) Intn(n int) int { return 0 }
func (s *fixedSource) Float64() float64 {
	s.calls++
	return s.f
}

func TestChance_Bounds(t *testing.T) {
	src := &fixedSource{f: 0.5}
	assert.False(t, Chance(src, 0))
	assert.False(t, Chance(src, -1))
	assert.True(t, Chance(src, 1))
	assert.True(t, Chance(src, 2))
	assert.Equal(t, 0, src.calls)

	assert.True(t, Chance(src, 0.6))
	assert.False(t, Chance(src, 0.5))
	assert.Equal(t, 2, src.calls)
}

func TestProperty_ChanceFrequency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64().Draw(t, "seed")
		p := rapid.Float64Range(0.1, 0.9).Draw(t, "p")
		src := NewSeededSource(seed)

		const n = 4000
		hits := 0
		for i := 0; i < n; i++ {
			if Chance(src, p) {
				hits++
			}
		}
		got := float64(hits) / n
		if got < p-0.1 || got > p+0.1 {
			t.Fatalf("frequency %.3f too far from p=%.3f", got, p)
		}
	})
}
