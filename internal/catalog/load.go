package catalog

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/talgya/tradepost/internal/simerr"
	"github.com/talgya/tradepost/internal/tags"
)

//go:embed catalog.schema.json
var schemaJSON []byte

//go:embed data/catalog.yaml
var defaultCatalogYAML []byte

const schemaURL = "https://tradepost.local/schemas/catalog.schema.json"

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("catalog schema: %v", err))
	}
	compiledSchema = compiler.MustCompile(schemaURL)
}

// Default returns the catalog shipped with the module.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// Load reads and validates a catalog document from path.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog, checks it against the JSON schema and then
// against the semantic rules the simulation relies on.
func Parse(raw []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	// Round-trip through JSON so the validator sees plain JSON types.
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	var generic any
	if err := json.Unmarshal(js, &generic); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	if err := compiledSchema.Validate(generic); err != nil {
		return nil, fmt.Errorf("catalog schema: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("catalog yaml: %w", err)
	}
	sum := sha256.Sum256(raw)
	c.Digest = hex.EncodeToString(sum[:])

	if err := c.validate(); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

// validate normalizes tags and match modes and collects every rule violation.
func (c *Catalog) validate() error {
	var ve simerr.ValidationError

	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		ve.Add("grid must have positive width and height")
	}
	if len(c.Resources) == 0 {
		ve.Add("catalog has no resources")
	}
	if len(c.Locations) == 0 {
		ve.Add("catalog has no locations")
	}

	seen := map[string]bool{}
	for i := range c.Resources {
		r := &c.Resources[i]
		where := fmt.Sprintf("resource %q", r.ID)
		if r.ID == "" {
			ve.Add("resource #%d: empty id", i)
		} else if seen["r:"+r.ID] {
			ve.Add("%s: duplicate id", where)
		}
		seen["r:"+r.ID] = true
		if r.MinPrice < 1 {
			ve.Add("%s: min_price must be >= 1", where)
		}
		if r.MaxPrice < r.MinPrice {
			ve.Add("%s: max_price below min_price", where)
		}
		if r.Volatility < 0 || r.Volatility > 100 {
			ve.Add("%s: volatility must be within 0..100", where)
		}
		if !r.Rarity.Valid() {
			ve.Add("%s: unknown rarity %q", where, r.Rarity)
		}
		r.Tags = normalizeTags(r.Tags)
	}

	for i := range c.Locations {
		l := &c.Locations[i]
		where := fmt.Sprintf("location %q", l.ID)
		if l.ID == "" {
			ve.Add("location #%d: empty id", i)
		} else if seen["l:"+l.ID] {
			ve.Add("%s: duplicate id", where)
		}
		seen["l:"+l.ID] = true
		if !c.Grid.Contains(l.Coord()) {
			ve.Add("%s: (%d,%d) outside the %dx%d grid", where, l.X, l.Y, c.Grid.Width, c.Grid.Height)
		}
		if l.Population < 0 {
			ve.Add("%s: negative population", where)
		}
		l.Tags = normalizeTags(l.Tags)
	}

	for i := range c.Events {
		e := &c.Events[i]
		where := fmt.Sprintf("event %q", e.ID)
		if e.ID == "" {
			ve.Add("event #%d: empty id", i)
		} else if seen["e:"+e.ID] {
			ve.Add("%s: duplicate id", where)
		}
		seen["e:"+e.ID] = true
		if !e.Rarity.Valid() {
			ve.Add("%s: unknown rarity %q", where, e.Rarity)
		}
		if e.Duration.Min < 0 || e.Duration.Max < e.Duration.Min {
			ve.Add("%s: invalid duration range %d..%d", where, e.Duration.Min, e.Duration.Max)
		}
		validateEffects(&ve, where+" price", &e.Price)
		validateEffects(&ve, where+" availability", &e.Availability)
	}

	return ve.Err()
}

func validateEffects(ve *simerr.ValidationError, where string, fx *Effects) {
	for i := range fx.Resource {
		m := &fx.Resource[i]
		m.Tags = normalizeTags(m.Tags)
		if len(m.Tags) == 0 {
			ve.Add("%s resource modifier #%d: no tags", where, i)
		}
		m.Match = normalizeMatch(ve, where, m.Match)
		if m.Multiplier <= 0 {
			ve.Add("%s resource modifier #%d: multiplier must be > 0", where, i)
		}
	}
	for i := range fx.Location {
		m := &fx.Location[i]
		m.LocationTags = normalizeTags(m.LocationTags)
		m.ResourceTags = normalizeTags(m.ResourceTags)
		m.Match = normalizeMatch(ve, where, m.Match)
		if m.Multiplier <= 0 {
			ve.Add("%s location modifier #%d: multiplier must be > 0", where, i)
		}
	}
}

func normalizeMatch(ve *simerr.ValidationError, where string, m MatchMode) MatchMode {
	switch m {
	case "":
		return MatchAny
	case MatchAny, MatchAll:
		return m
	default:
		ve.Add("%s: unknown match mode %q", where, m)
		return m
	}
}

func normalizeTags(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return tags.NewSet(in...).Sorted()
}
