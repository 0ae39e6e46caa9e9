package events

import (
	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/entropy"
)

// Age decrements every active instance by one day, floored at zero, and
// returns the instances it touched.
func Age(instances []Instance) []Instance {
	var aged []Instance
	for i := range instances {
		if !instances[i].Active() {
			continue
		}
		instances[i].DaysRemaining--
		if instances[i].DaysRemaining < 0 {
			instances[i].DaysRemaining = 0
		}
		aged = append(aged, instances[i])
	}
	return aged
}

// Spawner picks new events by rarity tier.
type Spawner struct {
	byTier map[catalog.Rarity][]*catalog.EventDefinition
	probs  map[catalog.Rarity]float64
}

// NewSpawner builds a spawner over the catalog's event definitions using the
// per-tier spawn probability table.
func NewSpawner(c *catalog.Catalog, probs map[catalog.Rarity]float64) *Spawner {
	return &Spawner{byTier: c.EventsByRarity(), probs: probs}
}

// Roll tries each tier from common to exceptional with an independent roll.
// The first tier that succeeds yields one of its definitions, chosen
// uniformly. Tiers without definitions are skipped without a roll.
func (s *Spawner) Roll(rng entropy.Source) (*catalog.EventDefinition, bool) {
	for _, tier := range catalog.Rarities {
		defs := s.byTier[tier]
		if len(defs) == 0 {
			continue
		}
		if rng.Float64() < s.probs[tier] {
			return defs[rng.Intn(len(defs))], true
		}
	}
	return nil, false
}

// Spawn rolls and, on success, returns a fresh instance triggered on day.
func (s *Spawner) Spawn(sessionID string, day int, rng entropy.Source) (Instance, *catalog.EventDefinition, bool) {
	def, ok := s.Roll(rng)
	if !ok {
		return Instance{}, nil, false
	}
	return Instance{
		SessionID:     sessionID,
		EventID:       def.ID,
		DayTriggered:  day,
		DaysRemaining: DurationDays(def.Duration, rng),
	}, def, true
}

// DurationDays draws a duration from d. An unset range lasts one day.
func DurationDays(d catalog.Duration, rng entropy.Source) int {
	if d.Min == 0 && d.Max == 0 {
		return 1
	}
	n := entropy.IntBetween(rng, d.Min, d.Max)
	if n < 1 {
		n = 1
	}
	return n
}
