package economy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradepost/internal/entropy"
)

type countingSource struct {
	entropy.Source
	draws int
}

func (c *countingSource) Float64() float64 {
	c.draws++
	return c.Source.Float64()
}

func TestCombinedPeakTrend(t *testing.T) {
	st := &ResourceState{BasePrice: 100}
	sig := ComputeSignals(st, 5, Market{}, entropy.NewSeeded(1))
	assert.InDelta(t, 0.25, sig.Trend, 1e-12)
	assert.InDelta(t, 0, sig.Sine, 1e-12)
	assert.Zero(t, sig.Vol)

	sig.Supply, sig.Demand = 0, 0
	assert.InDelta(t, 1.25, sig.Combined(), 1e-12)
	assert.Equal(t, 125.00, BoundPrice(100, 100*sig.Combined()))
}

func TestRefreshAppliesFormula(t *testing.T) {
	// avail/avg = 5/6 makes supply pressure +0.05, cancelling the -0.05 demand step.
	st := &ResourceState{ID: 7, BasePrice: 100, CurrentPrice: 100, AvailableQuantity: 50, LastRefreshedDay: 4}
	m := Market{Volatility: 0, AvgQuantity: 60, PlayerOwned: 0}

	entry, changed := Refresh(st, 5, m, entropy.NewSeeded(1))
	require.True(t, changed)

	assert.Equal(t, HistoryEntry{GameResourceID: 7, Day: 5, Price: 125.00, Quantity: 46}, entry)
	assert.Equal(t, 125.00, st.CurrentPrice)
	assert.Equal(t, 46, st.AvailableQuantity)
	assert.Equal(t, 5, st.LastRefreshedDay)
	assert.Equal(t, 1, st.PriceDirection)
	assert.InDelta(t, 0.05, st.PriceMomentum, 1e-12)
	assert.Equal(t, 100.0, st.BasePrice)
}

func TestRefreshIsIdempotentPerDay(t *testing.T) {
	st := &ResourceState{ID: 1, BasePrice: 40, CurrentPrice: 40, AvailableQuantity: 80, LastRefreshedDay: 0, TrendPhase: 1.3, SinePhase: 0.4}
	m := Market{Volatility: 70, AvgQuantity: 75, PlayerOwned: 3}
	src := &countingSource{Source: entropy.NewSeeded(9)}

	first, changed := Refresh(st, 1, m, src)
	require.True(t, changed)
	snapshot := *st
	draws := src.draws

	second, changed := Refresh(st, 1, m, src)
	assert.False(t, changed)
	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, *st)
	assert.Equal(t, draws, src.draws, "a repeated refresh must not consume randomness")

	// Older days are refused without pretending the current values are theirs.
	older, changed := Refresh(st, 0, m, src)
	assert.False(t, changed)
	assert.Equal(t, HistoryEntry{}, older)
	assert.Equal(t, snapshot, *st)
	assert.Equal(t, draws, src.draws)
}

func TestRefreshStaysInBounds(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		rng := entropy.NewSeeded(seed)
		base := entropy.Uniform(rng, 1, 500)
		st := &ResourceState{
			BasePrice:         base,
			CurrentPrice:      RoundCents(base),
			AvailableQuantity: 1 + rng.Intn(300),
			TrendPhase:        entropy.Uniform(rng, 0, 2*math.Pi),
			SinePhase:         entropy.Uniform(rng, 0, 2*math.Pi),
			LastRefreshedDay:  -1,
		}
		for day := 0; day < 200; day++ {
			m := Market{
				Volatility:  rng.Intn(101),
				AvgQuantity: entropy.Uniform(rng, 0, 400),
				PlayerOwned: rng.Intn(50),
			}
			Refresh(st, day, m, rng)

			assert.GreaterOrEqual(t, st.CurrentPrice, FloorFactor*base-1e-9)
			assert.LessOrEqual(t, st.CurrentPrice, CeilingFactor*base+1e-9)
			assert.GreaterOrEqual(t, st.CurrentPrice, MinPrice)
			assert.InDelta(t, math.Round(st.CurrentPrice*100), st.CurrentPrice*100, 1e-6)
			assert.GreaterOrEqual(t, st.AvailableQuantity, 1)
		}
	}
}

func TestBoundPrice(t *testing.T) {
	tests := []struct {
		name      string
		base, raw float64
		want      float64
	}{
		{"inside band", 100, 123.456, 123.46},
		{"below floor", 100, 5, 20.00},
		{"above ceiling", 100, 900, 250.00},
		{"minimum price", 1, 0.1, 1.00},
		{"ceiling rounds down", 3.33, 1000, 8.32},
		{"floor rounds up", 10.02, 0, 2.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoundPrice(tt.base, tt.raw))
		})
	}
}

func TestPressures(t *testing.T) {
	assert.Equal(t, DemandHoldsMore, DemandPressure(11, 10))
	assert.Equal(t, DemandHoldsSome, DemandPressure(10, 10))
	assert.Equal(t, DemandHoldsSome, DemandPressure(1, 10))
	assert.Equal(t, DemandHoldsNone, DemandPressure(0, 10))

	assert.InDelta(t, 0.3, SupplyPressure(0, 10), 1e-12)
	assert.InDelta(t, 0, SupplyPressure(10, 10), 1e-12)
	assert.Equal(t, -1.0, SupplyPressure(1000, 10))
	assert.Zero(t, SupplyPressure(10, 0))
}

func TestNextQuantity(t *testing.T) {
	assert.Equal(t, 9, NextQuantity(10, 0.5))
	assert.Equal(t, 12, NextQuantity(10, -0.5))
	assert.Equal(t, 10, NextQuantity(10, 0))
	assert.Equal(t, 1, NextQuantity(1, 5))
}

func TestLocalQuotes(t *testing.T) {
	assert.Equal(t, 135.00, LocalPrice(100, 1.35))
	assert.Equal(t, 1.00, LocalPrice(0.5, 1.2))
	assert.Equal(t, 5, LocalAvailability(10, 0.55))
	assert.Equal(t, 0, LocalAvailability(1, 0.5))
}

func TestAverageQuantity(t *testing.T) {
	assert.Zero(t, AverageQuantity(nil))
	states := []*ResourceState{{AvailableQuantity: 10}, {AvailableQuantity: 20}, {AvailableQuantity: 33}}
	assert.InDelta(t, 21.0, AverageQuantity(states), 1e-12)
}
