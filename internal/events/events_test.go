package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tradepost/internal/catalog"
	"github.com/talgya/tradepost/internal/tags"
)

// scripted replays fixed draws so tier rolls can be steered.
type scripted struct {
	floats []float64
	ints   []int
}

func (s *scripted) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scripted) Intn(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func defaultResolver(t *testing.T) (*catalog.Catalog, *Resolver) {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c, NewResolver(c, c.TagProvider())
}

func active(ids ...string) []Instance {
	out := make([]Instance, len(ids))
	for i, id := range ids {
		out[i] = Instance{ID: int64(i + 1), EventID: id, DaysRemaining: 2}
	}
	return out
}

func TestMatchModes(t *testing.T) {
	have := tags.NewSet("food", "maritime")

	assert.True(t, Match(have, []string{"food", "luxury"}, catalog.MatchAny))
	assert.False(t, Match(have, []string{"food", "luxury"}, catalog.MatchAll))
	assert.True(t, Match(have, []string{"food", "maritime"}, catalog.MatchAll))
	assert.False(t, Match(have, []string{"luxury"}, catalog.MatchAny))
	assert.True(t, Match(have, nil, catalog.MatchAll))
	assert.True(t, Match(have, nil, catalog.MatchAny))
}

func TestEffectsNoEvents(t *testing.T) {
	_, r := defaultResolver(t)
	assert.Equal(t, Neutral, r.Effects("grain", "greenford", nil))
}

func TestEffectsResourceScoped(t *testing.T) {
	_, r := defaultResolver(t)
	harvest := active("bumper_harvest")

	grain := r.Effects("grain", "crossgate", harvest)
	assert.InDelta(t, 0.8, grain.Price, 1e-12)
	assert.InDelta(t, 1.5, grain.Availability, 1e-12)

	// Wool is agricultural but not food, so only the any-mode price modifier hits.
	wool := r.Effects("wool", "crossgate", harvest)
	assert.InDelta(t, 0.8, wool.Price, 1e-12)
	assert.InDelta(t, 1.0, wool.Availability, 1e-12)

	assert.Equal(t, Neutral, r.Effects("silk", "crossgate", harvest))
}

func TestEffectsLocationScoped(t *testing.T) {
	_, r := defaultResolver(t)
	storm := active("storm_season")

	coastal := r.Effects("fish", "saltmere", storm)
	assert.InDelta(t, 1.35, coastal.Price, 1e-12)
	assert.InDelta(t, 0.5, coastal.Availability, 1e-12)

	assert.Equal(t, Neutral, r.Effects("fish", "greenford", storm), "inland town")
	assert.Equal(t, Neutral, r.Effects("grain", "saltmere", storm), "resource side fails")

	// No resource tags on the modifier: every resource in an urban market town.
	fair := active("market_fair")
	assert.InDelta(t, 0.92, r.Effects("relics", "crossgate", fair).Price, 1e-12)
	assert.InDelta(t, 1.0, r.Effects("relics", "saltmere", fair).Price, 1e-12)
	assert.InDelta(t, 1.25, r.Effects("relics", "saltmere", fair).Availability, 1e-12)
}

func TestEffectsStackWithinOneEvent(t *testing.T) {
	_, r := defaultResolver(t)
	collapse := active("mine_collapse")

	atMine := r.Effects("iron_ore", "ironhollow", collapse)
	assert.InDelta(t, 1.4*1.2, atMine.Price, 1e-12)
	assert.InDelta(t, 0.6, atMine.Availability, 1e-12)

	inTown := r.Effects("iron_ore", "crossgate", collapse)
	assert.InDelta(t, 1.4, inTown.Price, 1e-12)
}

func TestEffectsStackAcrossEventsInAnyOrder(t *testing.T) {
	_, r := defaultResolver(t)

	ab := r.Effects("fish", "saltmere", active("storm_season", "plague_rumours"))
	ba := r.Effects("fish", "saltmere", active("plague_rumours", "storm_season"))

	assert.InDelta(t, 1.35*0.85, ab.Price, 1e-12)
	assert.Equal(t, ab, ba)
}

func TestEffectsSkipInactiveAndUnknown(t *testing.T) {
	_, r := defaultResolver(t)
	insts := []Instance{
		{ID: 1, EventID: "storm_season", DaysRemaining: 0},
		{ID: 2, EventID: "no_such_event", DaysRemaining: 3},
	}
	assert.Equal(t, Neutral, r.Effects("fish", "saltmere", insts))
}

func TestTouches(t *testing.T) {
	c, r := defaultResolver(t)
	storm, _ := c.Event("storm_season")
	assert.True(t, r.Touches(storm, "fish", "brightport"))
	assert.False(t, r.Touches(storm, "timber", "brightport"))
}

func TestAge(t *testing.T) {
	insts := []Instance{
		{ID: 1, DaysRemaining: 3},
		{ID: 2, DaysRemaining: 1},
		{ID: 3, DaysRemaining: 0},
	}
	aged := Age(insts)

	assert.Len(t, aged, 2)
	assert.Equal(t, 2, insts[0].DaysRemaining)
	assert.Equal(t, 0, insts[1].DaysRemaining)
	assert.Equal(t, 0, insts[2].DaysRemaining)
	assert.False(t, insts[1].Active())
	assert.True(t, AnyActive(insts))
	assert.Len(t, ActiveOnly(insts), 1)

	Age(insts)
	Age(insts)
	assert.False(t, AnyActive(insts))
	assert.Equal(t, 0, insts[0].DaysRemaining)
}

func TestSpawnerFirstSuccessfulTierWins(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	probs := map[catalog.Rarity]float64{
		catalog.RarityCommon:      0.15,
		catalog.RarityUncommon:    0.08,
		catalog.RarityRare:        0.03,
		catalog.RarityUltraRare:   0.01,
		catalog.RarityExceptional: 0.002,
	}
	s := NewSpawner(c, probs)

	rng := &scripted{floats: []float64{0.5, 0.5, 0.01}, ints: []int{1, 0}}
	inst, def, ok := s.Spawn("sess", 4, rng)
	require.True(t, ok)
	assert.Equal(t, "royal_wedding", def.ID)
	assert.Equal(t, Instance{SessionID: "sess", EventID: "royal_wedding", DayTriggered: 4, DaysRemaining: 1}, inst)

	// Every tier fails.
	rng = &scripted{floats: []float64{0.9, 0.9, 0.9, 0.9, 0.9}}
	_, ok = s.Roll(rng)
	assert.False(t, ok)
	assert.Empty(t, rng.floats)
}

func TestSpawnerSkipsEmptyTiers(t *testing.T) {
	doc := `
grid: {width: 2, height: 2}
resources: [{id: ore, min_price: 1, max_price: 2, volatility: 1, rarity: common}]
locations: [{id: a, x: 0, y: 0, population: 1}]
events:
  - {id: comet, rarity: rare, duration: {min: 2, max: 4}}
`
	c, err := catalog.Parse([]byte(doc))
	require.NoError(t, err)
	s := NewSpawner(c, map[catalog.Rarity]float64{catalog.RarityCommon: 1, catalog.RarityRare: 0.5})

	// The only roll taken is the rare tier's.
	rng := &scripted{floats: []float64{0.4}, ints: []int{0, 2}}
	inst, def, ok := s.Spawn("sess", 0, rng)
	require.True(t, ok)
	assert.Equal(t, "comet", def.ID)
	assert.Equal(t, 4, inst.DaysRemaining)
}

func TestDurationDays(t *testing.T) {
	assert.Equal(t, 1, DurationDays(catalog.Duration{}, &scripted{}))
	assert.Equal(t, 3, DurationDays(catalog.Duration{Min: 2, Max: 4}, &scripted{ints: []int{1}}))
	assert.Equal(t, 1, DurationDays(catalog.Duration{Min: 0, Max: 3}, &scripted{ints: []int{0}}))
	assert.Equal(t, 5, DurationDays(catalog.Duration{Min: 5, Max: 5}, &scripted{}))
}
