package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradepost/internal/entropy"
)

func TestGenerateLocationsDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 42

	a, err := GenerateLocations(cfg)
	require.NoError(t, err)
	b, err := GenerateLocations(cfg)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
	assert.LessOrEqual(t, len(a), cfg.Count)

	ids := map[string]bool{}
	for i, l := range a {
		assert.True(t, cfg.Grid.Contains(l.Coord()), "location %s off grid", l.ID)
		assert.Positive(t, l.Population)
		assert.NotEmpty(t, l.Tags)
		assert.False(t, ids[l.ID], "duplicate id %s", l.ID)
		ids[l.ID] = true
		for _, other := range a[:i] {
			assert.GreaterOrEqual(t, Distance(l.Coord(), other.Coord()), cfg.MinSpacing)
		}
	}
}

func TestGenerateLocationsDifferentSeeds(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 1
	a, err := GenerateLocations(cfg)
	require.NoError(t, err)
	cfg.Seed = 2
	b, err := GenerateLocations(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGeneratedLocationsValidate(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	cfg := DefaultGenConfig()
	cfg.Seed = 7
	locs, err := GenerateLocations(cfg)
	require.NoError(t, err)

	swapped, err := c.WithLocations(cfg.Grid, locs)
	require.NoError(t, err)
	assert.Len(t, swapped.Locations, len(locs))
}

func TestGenerateLocationsRejectsBadConfig(t *testing.T) {
	_, err := GenerateLocations(GenConfig{Count: 3})
	assert.Error(t, err)
	_, err = GenerateLocations(GenConfig{Grid: Grid{Width: 3, Height: 3}})
	assert.Error(t, err)

	_, err = GenerateLocations(GenConfig{Grid: Grid{Width: 40, Height: 40}, Count: MaxGeneratedLocations + 1, Seed: 1})
	assert.ErrorContains(t, err, "distinct names")
}

func TestGenerateNamesExhaustsPool(t *testing.T) {
	names := generateNames(entropy.NewSeeded(3), MaxGeneratedLocations)
	assert.Len(t, names, 484)
	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], n)
		seen[n] = true
	}
}

func TestOctaveNoiseNormalized(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 99
	locs, err := GenerateLocations(cfg)
	require.NoError(t, err)
	for _, l := range locs {
		// populationFor maps [0,1] density to [150, 7950].
		assert.GreaterOrEqual(t, l.Population, 150)
		assert.LessOrEqual(t, l.Population, 7950)
	}
}
