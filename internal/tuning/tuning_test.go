package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/simerr"
)

func TestDefaultIsValid(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())
	assert.Equal(t, 30, d.HistoryDays)
	assert.InDelta(t, 0.15, d.Events.SpawnProbability[catalog.RarityCommon], 1e-12)
	assert.InDelta(t, 0.002, d.Events.SpawnProbability[catalog.RarityExceptional], 1e-12)
}

func TestParseOverlaysDefaults(t *testing.T) {
	doc := `
session_days: 90
events:
  spawn_probability:
    rare: 0.05
sizing:
  neighbor_penalty: 0.7
`
	got, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 90, got.SessionDays)
	assert.Equal(t, 500.0, got.StartingCash)
	assert.InDelta(t, 0.05, got.Events.SpawnProbability[catalog.RarityRare], 1e-12)
	assert.InDelta(t, 0.15, got.Events.SpawnProbability[catalog.RarityCommon], 1e-12)
	assert.InDelta(t, 0.7, got.Sizing.NeighborPenalty, 1e-12)
	assert.InDelta(t, 1.5, got.Sizing.TagMatchBonus, 1e-12)
	assert.InDelta(t, 120.0, got.Sizing.RarityBase[catalog.RarityCommon], 1e-12)
}

func TestParseRejectsBadValues(t *testing.T) {
	doc := `
session_days: 0
travel_tiles_per_day: -1
events:
  trigger_probability: 1.5
  spawn_probability:
    mythic: 0.1
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)

	var ve *simerr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 4)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("session_days: [1, 2"))
	require.Error(t, err)
	assert.False(t, simerr.IsValidation(err))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_buddies: 5\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MaxBuddies)

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestShippedExampleMatchesDefaults(t *testing.T) {
	got, err := Load(filepath.Join("..", "..", "configs", "tuning.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}
