package economy

import (
	"math"

	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/tags"
	"github.com/talgya/tradepost/internal/tuning"
)

// InitialQuantity sizes a resource's opening stock at the starting location.
// Cheap goods and populous towns get more; sharing a tag with the start
// location adds a bonus once, and every neighbour that also shares a tag
// takes a cut.
func InitialQuantity(s tuning.Sizing, res *catalog.Resource, start *catalog.Location, neighbors []*catalog.Location) int {
	base := s.RarityBase[res.Rarity]

	priceFactor := 1.0
	if mid := res.MidPrice(); mid > 0 {
		priceFactor = clamp(s.PriceRef/mid, s.FactorMin, s.FactorMax)
	}
	popFactor := clamp(float64(start.Population)/s.PopulationRef, s.FactorMin, s.FactorMax)

	resTags := tags.NewSet(res.Tags...)
	q := base * priceFactor * popFactor
	if resTags.Intersects(tags.NewSet(start.Tags...)) {
		q *= s.TagMatchBonus
	}
	for _, n := range neighbors {
		if resTags.Intersects(tags.NewSet(n.Tags...)) {
			q *= s.NeighborPenalty
		}
	}

	out := int(math.Round(q))
	if out < 1 {
		out = 1
	}
	return out
}
