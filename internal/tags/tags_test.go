package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMatching(t *testing.T) {
	s := NewSet("Metal", " industrial ", "")

	assert.Len(t, s, 2)
	assert.True(t, s.Has("metal"))
	assert.True(t, s.HasAny([]string{"food", "industrial"}))
	assert.False(t, s.HasAny([]string{"food"}))
	assert.True(t, s.HasAll([]string{"metal", "INDUSTRIAL"}))
	assert.False(t, s.HasAll([]string{"metal", "food"}))
	assert.True(t, s.HasAll(nil))
	assert.False(t, s.HasAny(nil))
	assert.Equal(t, []string{"industrial", "metal"}, s.Sorted())

	assert.True(t, s.Intersects(NewSet("food", "metal")))
	assert.False(t, s.Intersects(NewSet("food")))
}

type countingProvider struct {
	Static
	calls int
}

func (p *countingProvider) ResourceTags(id string) Set {
	p.calls++
	return p.Static.ResourceTags(id)
}

func TestCachedProvider(t *testing.T) {
	up := &countingProvider{Static: Static{
		Resources: map[string]Set{"iron": NewSet("metal")},
		Locations: map[string]Set{"port": NewSet("coastal")},
	}}
	c, err := NewCached(up, 0)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.True(t, c.ResourceTags("iron").Has("metal"))
	}
	assert.Equal(t, 1, up.calls)
	assert.True(t, c.LocationTags("port").Has("coastal"))
	assert.Empty(t, c.LocationTags("nowhere"))
	assert.Equal(t, 1, up.calls, "location lookups do not touch the resource side")
}

func TestCachedProviderEvicts(t *testing.T) {
	up := &countingProvider{Static: Static{Resources: map[string]Set{
		"iron": NewSet("metal"),
		"silk": NewSet("luxury"),
	}}}
	c, err := NewCached(up, 1)
	require.NoError(t, err)

	c.ResourceTags("iron")
	c.ResourceTags("silk")
	assert.True(t, c.ResourceTags("iron").Has("metal"))
	assert.Equal(t, 3, up.calls)
}
