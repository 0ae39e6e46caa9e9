// Package tuning holds the game-balance knobs read from tuning.yaml.
// Every field has a built-in default; a file only needs the keys it changes.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/simerr"
)

// Tuning is the full balance: session length, money, travel, buddies, event
// odds and opening stock sizing.
type Tuning struct {
	SessionDays       int     `yaml:"session_days"`
	HistoryDays       int     `yaml:"history_days"`
	StartingCash      float64 `yaml:"starting_cash"`
	InventoryCapacity int     `yaml:"inventory_capacity"`
	TravelTilesPerDay float64 `yaml:"travel_tiles_per_day"`

	BuddyHireCost float64 `yaml:"buddy_hire_cost"`
	MaxBuddies    int     `yaml:"max_buddies"`

	Events Events `yaml:"events"`
	Sizing Sizing `yaml:"sizing"`
}

// Events controls world event spawning.
type Events struct {
	// TriggerProbability gates the live turn's spawn attempt.
	TriggerProbability float64 `yaml:"trigger_probability"`
	// SpawnProbability is the independent per-tier roll, tried common first.
	SpawnProbability map[catalog.Rarity]float64 `yaml:"spawn_probability"`
}

// Sizing is the initial-quantity table used when a session is created:
//
//	base[rarity] * price_factor * population_factor * tag_bonus * neighbor_penalty
type Sizing struct {
	RarityBase      map[catalog.Rarity]float64 `yaml:"rarity_base"`
	PriceRef        float64                    `yaml:"price_ref"`
	PopulationRef   float64                    `yaml:"population_ref"`
	FactorMin       float64                    `yaml:"factor_min"`
	FactorMax       float64                    `yaml:"factor_max"`
	TagMatchBonus   float64                    `yaml:"tag_match_bonus"`
	NeighborPenalty float64                    `yaml:"neighbor_penalty"`
	NeighborRadius  float64                    `yaml:"neighbor_radius"`
}

// Default returns the shipped balance.
func Default() Tuning {
	return Tuning{
		SessionDays:       60,
		HistoryDays:       30,
		StartingCash:      500,
		InventoryCapacity: 200,
		TravelTilesPerDay: 4,
		BuddyHireCost:     150,
		MaxBuddies:        3,
		Events: Events{
			TriggerProbability: 0.35,
			SpawnProbability: map[catalog.Rarity]float64{
				catalog.RarityCommon:      0.15,
				catalog.RarityUncommon:    0.08,
				catalog.RarityRare:        0.03,
				catalog.RarityUltraRare:   0.01,
				catalog.RarityExceptional: 0.002,
			},
		},
		Sizing: Sizing{
			RarityBase: map[catalog.Rarity]float64{
				catalog.RarityCommon:      120,
				catalog.RarityUncommon:    60,
				catalog.RarityRare:        25,
				catalog.RarityUltraRare:   8,
				catalog.RarityExceptional: 3,
			},
			PriceRef:        20,
			PopulationRef:   2000,
			FactorMin:       0.5,
			FactorMax:       2,
			TagMatchBonus:   1.5,
			NeighborPenalty: 0.85,
			NeighborRadius:  6,
		},
	}
}

// Load reads path over the defaults. Maps are merged key by key.
func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, err
	}
	return Parse(raw)
}

// Parse decodes raw over the defaults and validates the result.
func Parse(raw []byte) (Tuning, error) {
	t := Default()
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Validate reports every out-of-range knob.
func (t Tuning) Validate() error {
	var ve simerr.ValidationError
	if t.SessionDays < 1 {
		ve.Add("session_days must be >= 1")
	}
	if t.HistoryDays < 1 {
		ve.Add("history_days must be >= 1")
	}
	if t.StartingCash < 0 {
		ve.Add("starting_cash must be >= 0")
	}
	if t.InventoryCapacity < 1 {
		ve.Add("inventory_capacity must be >= 1")
	}
	if t.TravelTilesPerDay <= 0 {
		ve.Add("travel_tiles_per_day must be > 0")
	}
	if t.BuddyHireCost < 0 {
		ve.Add("buddy_hire_cost must be >= 0")
	}
	if t.MaxBuddies < 0 {
		ve.Add("max_buddies must be >= 0")
	}
	if !isProbability(t.Events.TriggerProbability) {
		ve.Add("events.trigger_probability must be within 0..1")
	}
	for _, r := range catalog.Rarities {
		if p, ok := t.Events.SpawnProbability[r]; ok && !isProbability(p) {
			ve.Add("events.spawn_probability.%s must be within 0..1", r)
		}
		if t.Sizing.RarityBase[r] <= 0 {
			ve.Add("sizing.rarity_base.%s must be > 0", r)
		}
	}
	for r := range t.Events.SpawnProbability {
		if !r.Valid() {
			ve.Add("events.spawn_probability: unknown rarity %q", r)
		}
	}
	s := t.Sizing
	if s.PriceRef <= 0 || s.PopulationRef <= 0 {
		ve.Add("sizing.price_ref and sizing.population_ref must be > 0")
	}
	if s.FactorMin <= 0 || s.FactorMax < s.FactorMin {
		ve.Add("sizing.factor_min must be > 0 and <= factor_max")
	}
	if s.TagMatchBonus <= 0 || s.NeighborPenalty <= 0 {
		ve.Add("sizing.tag_match_bonus and sizing.neighbor_penalty must be > 0")
	}
	if s.NeighborRadius < 0 {
		ve.Add("sizing.neighbor_radius must be >= 0")
	}
	return ve.Err()
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
