// Package catalog holds the immutable per-process definitions the economy runs
// on: resources, locations and world event definitions.
package catalog

import (
	"github.com/talgya/tradepost/internal/tags"
)

// Rarity orders resources and events from most to least frequent.
type Rarity string

const (
	RarityCommon      Rarity = "common"
	RarityUncommon    Rarity = "uncommon"
	RarityRare        Rarity = "rare"
	RarityUltraRare   Rarity = "ultra_rare"
	RarityExceptional Rarity = "exceptional"
)

// Rarities lists every tier from most to least frequent.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityUltraRare, RarityExceptional}

// Valid reports whether r is a known tier.
func (r Rarity) Valid() bool {
	for _, known := range Rarities {
		if r == known {
			return true
		}
	}
	return false
}

// MatchMode selects how a modifier's tag list is tested against a tag set.
type MatchMode string

const (
	MatchAny MatchMode = "any" // at least one listed tag present
	MatchAll MatchMode = "all" // every listed tag present
)

// Resource is a tradeable good.
type Resource struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	MinPrice   float64  `yaml:"min_price"`
	MaxPrice   float64  `yaml:"max_price"`
	Volatility int      `yaml:"volatility"` // 0–100
	Rarity     Rarity   `yaml:"rarity"`
	Tags       []string `yaml:"tags"`
}

// MidPrice is the centre of the resource's price band.
func (r Resource) MidPrice() float64 {
	return (r.MinPrice + r.MaxPrice) / 2
}

// Location is a point on the bounded grid where trading and buddies happen.
type Location struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	X          int      `yaml:"x"`
	Y          int      `yaml:"y"`
	Population int      `yaml:"population"`
	Tags       []string `yaml:"tags"`
}

// Coord returns the location's grid position.
func (l Location) Coord() Coord {
	return Coord{X: l.X, Y: l.Y}
}

// ResourceModifier multiplies when the resource's tags pass the match test.
type ResourceModifier struct {
	Tags       []string  `yaml:"tags"`
	Match      MatchMode `yaml:"match"`
	Multiplier float64   `yaml:"multiplier"`
}

// ScopedModifier multiplies when both the location-tag test and the
// resource-tag test pass. An empty side imposes no requirement.
type ScopedModifier struct {
	LocationTags []string  `yaml:"location_tags"`
	ResourceTags []string  `yaml:"resource_tags"`
	Match        MatchMode `yaml:"match"`
	Multiplier   float64   `yaml:"multiplier"`
}

// Effects groups the modifiers an event applies to one multiplier.
type Effects struct {
	Resource []ResourceModifier `yaml:"resource"`
	Location []ScopedModifier   `yaml:"location"`
}

// Empty reports whether the group has no modifiers.
func (e Effects) Empty() bool {
	return len(e.Resource) == 0 && len(e.Location) == 0
}

// Duration is an inclusive day range. A zero range means one day.
type Duration struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// EventDefinition is a world event template.
type EventDefinition struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Rarity       Rarity   `yaml:"rarity"`
	Type         string   `yaml:"type"`
	Severity     int      `yaml:"severity"`
	Duration     Duration `yaml:"duration"`
	Price        Effects  `yaml:"price"`
	Availability Effects  `yaml:"availability"`
}

// Grid bounds the location coordinates: 0 <= x < Width, 0 <= y < Height.
type Grid struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Catalog is the validated, indexed set of definitions.
type Catalog struct {
	Grid      Grid              `yaml:"grid"`
	Resources []Resource        `yaml:"resources"`
	Locations []Location        `yaml:"locations"`
	Events    []EventDefinition `yaml:"events"`

	// Digest is the sha256 of the source document.
	Digest string `yaml:"-"`

	resources map[string]*Resource
	locations map[string]*Location
	events    map[string]*EventDefinition
}

// Resource returns the resource with the given id.
func (c *Catalog) Resource(id string) (*Resource, bool) {
	r, ok := c.resources[id]
	return r, ok
}

// Location returns the location with the given id.
func (c *Catalog) Location(id string) (*Location, bool) {
	l, ok := c.locations[id]
	return l, ok
}

// Event returns the event definition with the given id.
func (c *Catalog) Event(id string) (*EventDefinition, bool) {
	e, ok := c.events[id]
	return e, ok
}

// EventsByRarity groups event definitions by tier, preserving file order.
func (c *Catalog) EventsByRarity() map[Rarity][]*EventDefinition {
	out := make(map[Rarity][]*EventDefinition)
	for i := range c.Events {
		e := &c.Events[i]
		out[e.Rarity] = append(out[e.Rarity], e)
	}
	return out
}

// Neighbors returns the other locations within radius of loc.
func (c *Catalog) Neighbors(loc *Location, radius float64) []*Location {
	var out []*Location
	for i := range c.Locations {
		other := &c.Locations[i]
		if other.ID == loc.ID {
			continue
		}
		if Distance(loc.Coord(), other.Coord()) <= radius {
			out = append(out, other)
		}
	}
	return out
}

// TagProvider exposes the catalog's tag assignments.
func (c *Catalog) TagProvider() tags.Static {
	p := tags.Static{
		Resources: make(map[string]tags.Set, len(c.Resources)),
		Locations: make(map[string]tags.Set, len(c.Locations)),
	}
	for _, r := range c.Resources {
		p.Resources[r.ID] = tags.NewSet(r.Tags...)
	}
	for _, l := range c.Locations {
		p.Locations[l.ID] = tags.NewSet(l.Tags...)
	}
	return p
}

// WithLocations returns a copy of the catalog whose locations are replaced.
// The copy is re-validated.
func (c *Catalog) WithLocations(grid Grid, locs []Location) (*Catalog, error) {
	out := &Catalog{
		Grid:      grid,
		Resources: append([]Resource(nil), c.Resources...),
		Locations: append([]Location(nil), locs...),
		Events:    append([]EventDefinition(nil), c.Events...),
		Digest:    c.Digest,
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	out.index()
	return out, nil
}

func (c *Catalog) index() {
	c.resources = make(map[string]*Resource, len(c.Resources))
	for i := range c.Resources {
		c.resources[c.Resources[i].ID] = &c.Resources[i]
	}
	c.locations = make(map[string]*Location, len(c.Locations))
	for i := range c.Locations {
		c.locations[c.Locations[i].ID] = &c.Locations[i]
	}
	c.events = make(map[string]*EventDefinition, len(c.Events))
	for i := range c.Events {
		c.events[c.Events[i].ID] = &c.Events[i]
	}
}
