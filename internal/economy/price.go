// Package economy computes daily prices and quantities, sizes starting stock,
// and keeps the FIFO inventory ledger.
package economy

import (
	"math"

	"github.com/talgya/tradepost/internal/entropy"
)

// Price wave shape. Periods are in days.
const (
	TrendPeriod    = 20.0
	TrendAmplitude = 0.25
	SinePeriod     = 10.0
	SineAmplitude  = 0.10
	MaxSwing       = 0.15 // volatility swing at volatility 100

	PressureWeight = 0.05 // weight of supply+demand pressure in the combined factor
	SupplyScale    = 0.3
	QuantityDamp   = -0.3 // quantity reacts against the price move

	FloorFactor   = 0.2
	CeilingFactor = 2.5
	MinPrice      = 1.00
)

// Demand pressure steps keyed on how much of the resource the player holds.
// These are deliberately coarse; see DESIGN.md before smoothing them.
const (
	DemandHoldsMore = 0.2
	DemandHoldsSome = 0.1
	DemandHoldsNone = -0.05
)

// ResourceState is the mutable economic state of one resource in one session.
type ResourceState struct {
	ID                int64   `db:"id" json:"id"`
	SessionID         string  `db:"session_id" json:"session_id"`
	ResourceID        string  `db:"resource_id" json:"resource_id"`
	CurrentPrice      float64 `db:"current_price" json:"current_price"`
	BasePrice         float64 `db:"base_price" json:"base_price"` // oscillation centre, fixed at creation
	AvailableQuantity int     `db:"available_quantity" json:"available_quantity"`
	LastRefreshedDay  int     `db:"last_refreshed_day" json:"last_refreshed_day"`
	SinePhase         float64 `db:"sine_phase" json:"sine_phase"`
	TrendPhase        float64 `db:"trend_phase" json:"trend_phase"`
	PriceDirection    int     `db:"price_direction" json:"price_direction"` // -1, 0, +1
	PriceMomentum     float64 `db:"price_momentum" json:"price_momentum"`
}

// HistoryEntry is one day's recorded price and quantity.
type HistoryEntry struct {
	GameResourceID int64   `db:"game_resource_id" json:"game_resource_id"`
	Day            int     `db:"day" json:"day"`
	Price          float64 `db:"price" json:"price"`
	Quantity       int     `db:"quantity" json:"quantity"`
}

// Market is the session-wide context a refresh reads.
type Market struct {
	Volatility  int     // resource volatility, 0–100
	AvgQuantity float64 // mean available quantity across the session's resources
	PlayerOwned int     // units of this resource in the player's lots
}

// Signals are the four layered components of a day's price.
type Signals struct {
	Trend  float64
	Sine   float64
	Vol    float64
	Supply float64
	Demand float64
}

// Combined folds the signals into one multiplier on the base price.
func (s Signals) Combined() float64 {
	wave := (1 + s.Trend) * (1 + s.Sine) * (1 + s.Vol)
	return wave + (s.Supply+s.Demand)*PressureWeight
}

// ComputeSignals draws exactly one random number (the volatility swing).
func ComputeSignals(st *ResourceState, day int, m Market, rng entropy.Source) Signals {
	d := float64(day)
	swing := MaxSwing * float64(m.Volatility) / 100
	return Signals{
		Trend:  math.Sin(2*math.Pi*d/TrendPeriod+st.TrendPhase) * TrendAmplitude,
		Sine:   math.Sin(2*math.Pi*d/SinePeriod+st.SinePhase) * SineAmplitude,
		Vol:    entropy.Uniform(rng, -swing, swing),
		Supply: SupplyPressure(st.AvailableQuantity, m.AvgQuantity),
		Demand: DemandPressure(m.PlayerOwned, st.AvailableQuantity),
	}
}

// SupplyPressure is positive when stock is scarcer than the session average.
func SupplyPressure(available int, avg float64) float64 {
	if avg <= 0 {
		return 0
	}
	return clamp((1-float64(available)/avg)*SupplyScale, -1, 1)
}

// DemandPressure steps up as the player accumulates the resource.
func DemandPressure(owned, available int) float64 {
	switch {
	case owned > available:
		return DemandHoldsMore
	case owned > 0:
		return DemandHoldsSome
	default:
		return DemandHoldsNone
	}
}

// BoundPrice clamps to the base-price band, floors at MinPrice and rounds to
// cents without leaving the band.
func BoundPrice(base, raw float64) float64 {
	lo, hi := base*FloorFactor, base*CeilingFactor
	p := clamp(raw, lo, hi)
	if p < MinPrice {
		p = MinPrice
	}
	p = RoundCents(p)
	if p < lo {
		p = CeilCents(lo)
	}
	if p > hi {
		p = FloorCents(hi)
	}
	return p
}

// NextQuantity moves stock against the price change and never drops below one.
func NextQuantity(available int, ratio float64) int {
	a := float64(available)
	q := int(math.Round(a + a*ratio*QuantityDamp))
	if q < 1 {
		q = 1
	}
	return q
}

// Refresh recomputes st for day. Repeating the last refreshed day returns the
// stored values with changed false. An older day cannot be reconstructed from
// st, so it yields a zero entry and changed false.
func Refresh(st *ResourceState, day int, m Market, rng entropy.Source) (entry HistoryEntry, changed bool) {
	switch {
	case st.LastRefreshedDay == day:
		return st.History(day), false
	case st.LastRefreshedDay > day:
		return HistoryEntry{}, false
	}

	sig := ComputeSignals(st, day, m, rng)
	newPrice := BoundPrice(st.BasePrice, st.BasePrice*sig.Combined())

	ratio := 0.0
	if st.CurrentPrice != 0 {
		ratio = (newPrice - st.CurrentPrice) / st.CurrentPrice
	}

	st.AvailableQuantity = NextQuantity(st.AvailableQuantity, ratio)
	st.CurrentPrice = newPrice
	st.PriceDirection = sign(ratio)
	st.PriceMomentum = 0.8*st.PriceMomentum + 0.2*ratio
	st.LastRefreshedDay = day

	return st.History(day), true
}

// History returns st's current values as the entry for day.
func (st *ResourceState) History(day int) HistoryEntry {
	return HistoryEntry{
		GameResourceID: st.ID,
		Day:            day,
		Price:          st.CurrentPrice,
		Quantity:       st.AvailableQuantity,
	}
}

// AverageQuantity is the mean available quantity of states, or 0 when empty.
func AverageQuantity(states []*ResourceState) float64 {
	if len(states) == 0 {
		return 0
	}
	total := 0
	for _, st := range states {
		total += st.AvailableQuantity
	}
	return float64(total) / float64(len(states))
}

// LocalPrice applies an event price multiplier to a current price.
func LocalPrice(current, multiplier float64) float64 {
	return RoundCents(math.Max(current*multiplier, MinPrice))
}

// LocalAvailability applies an event availability multiplier to a quantity.
func LocalAvailability(available int, multiplier float64) int {
	return int(math.Floor(float64(available) * multiplier))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
