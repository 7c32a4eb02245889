package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestProduction_GrowthSignAndCap(t *testing.T) {
	c, err := New(Config{
		Species:         []string{"a", "b", "c"},
		MaxProduction:   []float64{0.01, 0.02, 0.03},
		ProductionScale: 100,
		StepDuration:    10,
		LayerCount:      1,
		InitialTop:      1,
	})
	require.NoError(t, err)

	prod := c.Production([]float64{50, 500, 50}, []float64{1, 0.5, -1})

	// 0.01 * 50 * 10 / 100
	assert.InDelta(t, 0.05, prod[0], eps)
	// capped at 0.02 * 10
	assert.InDelta(t, 0.2, prod[1], eps)
	// non-positive growth
	assert.Zero(t, prod[2])
}

func TestAdvance_NoAccommodationNoErosion(t *testing.T) {
	c := newTestCore(t, 2, 5, 1)
	c.Advance(0, []float64{1}, []float64{1}, 1, 0)
	c.ShiftAccommodation(-10)
	before := c.Snapshot()

	c.Advance(1, []float64{1}, []float64{1}, 1, 0)

	assert.Equal(t, RegimeNoAccommodation, c.LastRegime())
	assert.Equal(t, before, c.Snapshot())
}

func TestAdvance_ClasticFill(t *testing.T) {
	c := newTestCore(t, 1, 0.4, 1)

	c.Advance(0, []float64{1}, []float64{1}, 0.5, 0)

	assert.Equal(t, RegimeClasticFill, c.LastRegime())
	assert.InDelta(t, 0.4, c.Thickness(0), eps)
	assert.InDelta(t, 0.4, c.Deposit(c.ClasticSlot(), 0), eps)
	assert.Zero(t, c.Deposit(0, 0), "carbonate production discarded")
	assert.Zero(t, c.Top())
}

func TestAdvance_CarbonateFillBoundary(t *testing.T) {
	// top 1.0, clastic 0.5, production 0.6 -> frac = 0.5/0.6
	c := newTestCore(t, 1, 1.0, 0.6)

	c.Advance(0, []float64{1}, []float64{1}, 0.5, 0)

	assert.Equal(t, RegimeCarbonateFill, c.LastRegime())
	assert.InDelta(t, 1.0, c.Thickness(0), eps)
	assert.InDelta(t, 0.6*(0.5/0.6), c.Deposit(0, 0), eps)
	assert.InDelta(t, 0.5, c.Deposit(c.ClasticSlot(), 0), eps)
	assert.Equal(t, 0.0, c.Top())
}

func TestAdvance_CarbonateFillScalesUniformly(t *testing.T) {
	c := newTestCore(t, 1, 1.0, 0.4, 0.8)

	c.Advance(0, []float64{1, 1}, []float64{1, 1}, 0.2, 0)

	require.Equal(t, RegimeCarbonateFill, c.LastRegime())
	frac := (1.0 - 0.2) / 1.2
	assert.InDelta(t, 0.4*frac, c.Deposit(0, 0), eps)
	assert.InDelta(t, 0.8*frac, c.Deposit(1, 0), eps)
	assert.InDelta(t, 2.0, c.Deposit(1, 0)/c.Deposit(0, 0), eps)
	assert.InDelta(t, 1.0, c.Thickness(0), eps)
}

func TestAdvance_Open(t *testing.T) {
	c := newTestCore(t, 2, 3, 0.5, 0.25)

	c.Advance(0, []float64{1, 1}, []float64{1, 1}, 0.25, 0)
	c.Advance(0, []float64{1, 1}, []float64{1, -1}, 0, 0)

	assert.Equal(t, RegimeOpen, c.LastRegime())
	assert.InDelta(t, 1.0, c.Deposit(0, 0), eps)
	assert.InDelta(t, 0.25, c.Deposit(1, 0), eps)
	assert.InDelta(t, 0.25, c.Deposit(c.ClasticSlot(), 0), eps)
	assert.InDelta(t, 1.5, c.Thickness(0), eps)
	assert.InDelta(t, 1.5, c.Top(), eps)
	assert.Zero(t, c.Thickness(1))
}

func TestAdvance_TopExactlyZeroIsNoop(t *testing.T) {
	c := newTestCore(t, 1, 0, 1)
	before := c.Snapshot()

	c.Advance(0, []float64{1}, []float64{1}, 1, -1)

	assert.Equal(t, RegimeNone, c.LastRegime())
	assert.Equal(t, before, c.Snapshot())
}

func TestAdvance_ZeroInputsIdempotent(t *testing.T) {
	for _, top := range []float64{2, -2} {
		c := newTestCore(t, 2, 5, 1, 1)
		c.Advance(0, []float64{1, 0.5}, []float64{1, 1}, 0.5, 0)
		c.ShiftAccommodation(top - c.Top())
		before := c.Snapshot()

		c.Advance(1, []float64{0, 0}, []float64{1, 1}, 0, 0)

		assert.Equal(t, before, c.Snapshot(), "top=%v", top)
	}
}

func TestAdvance_PanicsOnInvariantViolation(t *testing.T) {
	tests := []struct {
		name string
		code InvariantCode
		call func(c *Core)
	}{
		{"layer below range", ErrCodeLayerRange, func(c *Core) {
			c.Advance(-1, []float64{1}, []float64{1}, 0, 0)
		}},
		{"layer above range", ErrCodeLayerRange, func(c *Core) {
			c.Advance(3, []float64{1}, []float64{1}, 0, 0)
		}},
		{"layer decreasing", ErrCodeLayerOrder, func(c *Core) {
			c.Advance(2, []float64{1}, []float64{1}, 0, 0)
			c.Advance(1, []float64{1}, []float64{1}, 0, 0)
		}},
		{"vector length", ErrCodeVectorLength, func(c *Core) {
			c.Advance(0, []float64{1, 2}, []float64{1}, 0, 0)
		}},
		{"negative population", ErrCodeInputSign, func(c *Core) {
			c.Advance(0, []float64{-1}, []float64{1}, 0, 0)
		}},
		{"positive erosion", ErrCodeInputSign, func(c *Core) {
			c.Advance(0, []float64{1}, []float64{1}, 0, 1)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCore(t, 3, 5, 1)
			defer func() {
				r := recover()
				require.NotNil(t, r, "expected panic")
				ie, ok := r.(*InvariantError)
				require.True(t, ok, "panic value %T", r)
				assert.Equal(t, tt.code, ie.Code)
				assert.True(t, IsInvariantError(ie))
			}()
			tt.call(c)
		})
	}
}

// TestAdvance_Properties drives a core through a long pseudo-random
// sequence and checks conservation, monotonic karst erosion and the
// non-negative top after filling regimes at every step.
func TestAdvance_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const layers = 40
	c := newTestCore(t, layers, 1.5, 0.02, 0.05, 0.01)
	prevKarst := make([]float64, layers)

	for step := 0; step < layers*5; step++ {
		layer := step / 5
		if step%3 == 0 {
			c.ShiftAccommodation(rng.Float64()*0.3 - 0.18)
		}
		pop := []float64{rng.Float64() * 2, rng.Float64() * 2, rng.Float64() * 2}
		growth := []float64{rng.Float64() - 0.3, rng.Float64() - 0.3, rng.Float64() - 0.3}
		var erosion float64
		if rng.Intn(2) == 0 {
			erosion = -rng.Float64() * 0.2
		}

		c.Advance(layer, pop, growth, rng.Float64()*0.03, erosion)

		switch c.LastRegime() {
		case RegimeClasticFill, RegimeCarbonateFill, RegimeOpen:
			assert.GreaterOrEqual(t, c.Top(), 0.0, "step %d", step)
		}
		for k := 0; k < layers; k++ {
			var sum float64
			for s := 0; s <= c.ClasticSlot(); s++ {
				sum += c.Deposit(s, k)
			}
			require.InDelta(t, c.Thickness(k), sum, 1e-9, "conservation layer %d step %d", k, step)
			require.GreaterOrEqual(t, c.Thickness(k), 0.0)
			require.GreaterOrEqual(t, c.Karst(k), prevKarst[k], "karst decreased layer %d", k)
			prevKarst[k] = c.Karst(k)
		}
	}
}
