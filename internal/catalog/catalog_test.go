package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradepost/internal/simerr"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, Grid{Width: 24, Height: 24}, c.Grid)
	assert.NotEmpty(t, c.Digest)

	grain, ok := c.Resource("grain")
	require.True(t, ok)
	assert.Equal(t, RarityCommon, grain.Rarity)
	assert.Equal(t, []string{"agricultural", "bulk", "food"}, grain.Tags)
	assert.InDelta(t, 6.5, grain.MidPrice(), 1e-9)

	_, ok = c.Location("crossgate")
	assert.True(t, ok)

	storm, ok := c.Event("storm_season")
	require.True(t, ok)
	require.Len(t, storm.Price.Location, 1)
	assert.Equal(t, MatchAny, storm.Price.Location[0].Match)

	byTier := c.EventsByRarity()
	for _, r := range Rarities {
		assert.NotEmpty(t, byTier[r], "tier %s", r)
	}

	p := c.TagProvider()
	assert.True(t, p.ResourceTags("fish").Has("maritime"))
	assert.True(t, p.LocationTags("saltmere").Has("coastal"))
}

func TestParseDefaultsMatchMode(t *testing.T) {
	doc := `
grid: {width: 4, height: 4}
resources:
  - {id: ore, min_price: 2, max_price: 4, volatility: 10, rarity: common, tags: [Metal]}
locations:
  - {id: a, x: 0, y: 0, population: 10}
events:
  - id: boom
    rarity: common
    price:
      resource:
        - tags: [metal]
          multiplier: 1.1
`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)
	ev, ok := c.Event("boom")
	require.True(t, ok)
	assert.Equal(t, MatchAny, ev.Price.Resource[0].Match)
	ore, _ := c.Resource("ore")
	assert.Equal(t, []string{"metal"}, ore.Tags)
}

func TestParseCollectsSemanticProblems(t *testing.T) {
	doc := `
grid: {width: 4, height: 4}
resources:
  - {id: ore, min_price: 5, max_price: 2, volatility: 10, rarity: common}
  - {id: ore, min_price: 1, max_price: 2, volatility: 10, rarity: common}
locations:
  - {id: far, x: 9, y: 1, population: 10}
events:
  - id: bad
    rarity: rare
    duration: {min: 3, max: 1}
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	require.True(t, simerr.IsValidation(err))

	var ve *simerr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 4)
	assert.Contains(t, err.Error(), "max_price below min_price")
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "outside the 4x4 grid")
	assert.Contains(t, err.Error(), "invalid duration range")
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown rarity", `
grid: {width: 4, height: 4}
resources: [{id: ore, min_price: 1, max_price: 2, volatility: 1, rarity: legendary}]
locations: [{id: a, x: 0, y: 0, population: 1}]
`},
		{"volatility over 100", `
grid: {width: 4, height: 4}
resources: [{id: ore, min_price: 1, max_price: 2, volatility: 101, rarity: common}]
locations: [{id: a, x: 0, y: 0, population: 1}]
`},
		{"unknown field", `
grid: {width: 4, height: 4}
resources: [{id: ore, min_price: 1, max_price: 2, volatility: 1, rarity: common, colour: red}]
locations: [{id: a, x: 0, y: 0, population: 1}]
`},
		{"zero multiplier", `
grid: {width: 4, height: 4}
resources: [{id: ore, min_price: 1, max_price: 2, volatility: 1, rarity: common}]
locations: [{id: a, x: 0, y: 0, population: 1}]
events: [{id: e, rarity: common, price: {resource: [{tags: [x], multiplier: 0}]}}]
`},
		{"bad match mode", `
grid: {width: 4, height: 4}
resources: [{id: ore, min_price: 1, max_price: 2, volatility: 1, rarity: common}]
locations: [{id: a, x: 0, y: 0, population: 1}]
events: [{id: e, rarity: common, price: {resource: [{tags: [x], match: some, multiplier: 1}]}}]
`},
		{"no locations", `
grid: {width: 4, height: 4}
resources: [{id: ore, min_price: 1, max_price: 2, volatility: 1, rarity: common}]
locations: []
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "catalog schema")
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultCatalogYAML, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Resources, 11)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNeighbors(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	ash, _ := c.Location("ashwood")

	near := c.Neighbors(ash, 6)
	ids := make([]string, 0, len(near))
	for _, l := range near {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []string{"greenford", "crossgate"}, ids)
}

func TestGridHelpers(t *testing.T) {
	g := Grid{Width: 5, Height: 3}
	assert.Equal(t, 15, g.Cells())
	assert.True(t, g.Contains(Coord{X: 4, Y: 2}))
	assert.False(t, g.Contains(Coord{X: 5, Y: 0}))
	assert.False(t, g.Contains(Coord{X: 0, Y: -1}))

	assert.InDelta(t, 5.0, Distance(Coord{0, 0}, Coord{3, 4}), 1e-9)
	assert.Equal(t, 1, TravelDays(Coord{1, 1}, Coord{1, 1}, 3))
	assert.Equal(t, 2, TravelDays(Coord{0, 0}, Coord{3, 4}, 3))
	assert.Equal(t, 5, TravelDays(Coord{0, 0}, Coord{3, 4}, 0))
}

func TestWithLocationsRevalidates(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	small := Grid{Width: 2, Height: 2}
	_, err = c.WithLocations(small, []Location{{ID: "x", X: 5, Y: 5}})
	assert.True(t, simerr.IsValidation(err))

	swapped, err := c.WithLocations(small, []Location{{ID: "x", X: 1, Y: 1, Tags: []string{"Urban"}}})
	require.NoError(t, err)
	loc, ok := swapped.Location("x")
	require.True(t, ok)
	assert.Equal(t, []string{"urban"}, loc.Tags)
	_, ok = swapped.Location("saltmere")
	assert.False(t, ok)
	_, ok = c.Location("saltmere")
	assert.True(t, ok)
}
