package events

import (
	"log/slog"

	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/tags"
)

// Multipliers are the accumulated event effects on one (resource, location).
type Multipliers struct {
	Price        float64 `json:"price"`
	Availability float64 `json:"availability"`
}

// Neutral is the identity: no event applies.
var Neutral = Multipliers{Price: 1, Availability: 1}

// Match tests want against have. An empty want list imposes no requirement.
func Match(have tags.Set, want []string, mode catalog.MatchMode) bool {
	if len(want) == 0 {
		return true
	}
	if mode == catalog.MatchAll {
		return have.HasAll(want)
	}
	return have.HasAny(want)
}

// Resolver stacks the modifiers of active events. Stacking is a product, so
// neither event order nor modifier order matters.
type Resolver struct {
	catalog *catalog.Catalog
	tags    tags.Provider
}

func NewResolver(c *catalog.Catalog, tp tags.Provider) *Resolver {
	return &Resolver{catalog: c, tags: tp}
}

// Effects computes both multipliers for resourceID at locationID. Inactive
// instances are ignored.
func (r *Resolver) Effects(resourceID, locationID string, instances []Instance) Multipliers {
	out := Neutral
	resTags := r.tags.ResourceTags(resourceID)
	locTags := r.tags.LocationTags(locationID)

	for _, inst := range instances {
		if !inst.Active() {
			continue
		}
		def, ok := r.catalog.Event(inst.EventID)
		if !ok {
			slog.Warn("active event has no definition", "event", inst.EventID, "instance", inst.ID)
			continue
		}
		out.Price *= groupMultiplier(def.Price, resTags, locTags)
		out.Availability *= groupMultiplier(def.Availability, resTags, locTags)
	}
	return out
}

// Touches reports whether any modifier of def would apply to the pair.
func (r *Resolver) Touches(def *catalog.EventDefinition, resourceID, locationID string) bool {
	resTags := r.tags.ResourceTags(resourceID)
	locTags := r.tags.LocationTags(locationID)
	return groupMultiplier(def.Price, resTags, locTags) != 1 ||
		groupMultiplier(def.Availability, resTags, locTags) != 1
}

func groupMultiplier(fx catalog.Effects, resTags, locTags tags.Set) float64 {
	m := 1.0
	for _, mod := range fx.Resource {
		if Match(resTags, mod.Tags, mod.Match) {
			m *= mod.Multiplier
		}
	}
	for _, mod := range fx.Location {
		if Match(locTags, mod.LocationTags, mod.Match) && Match(resTags, mod.ResourceTags, mod.Match) {
			m *= mod.Multiplier
		}
	}
	return m
}
