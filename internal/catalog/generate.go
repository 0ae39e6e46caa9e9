// Procedural location maps using layered simplex noise.
// Elevation and moisture drive tags; a density layer drives population.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/tradepost/internal/entropy"
)

// GenConfig holds location generation parameters.
type GenConfig struct {
	Grid       Grid
	Count      int     // Number of locations to place
	Seed       int64   // Noise and naming seed (0 = random)
	MinSpacing float64 // Minimum distance between two locations
}

// DefaultGenConfig returns a map roughly the size of the shipped catalog.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Grid:       Grid{Width: 24, Height: 24},
		Count:      10,
		MinSpacing: 4,
	}
}

type cell struct {
	coord   Coord
	elev    float64
	moist   float64
	density float64
}

// GenerateLocations places cfg.Count locations on the grid. The result is
// deterministic for a given seed. Fewer locations are returned when spacing
// rules leave no room.
func GenerateLocations(cfg GenConfig) ([]Location, error) {
	if cfg.Grid.Width <= 0 || cfg.Grid.Height <= 0 {
		return nil, fmt.Errorf("generate locations: empty grid")
	}
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("generate locations: count must be positive")
	}
	if cfg.Count > MaxGeneratedLocations {
		return nil, fmt.Errorf("generate locations: count %d exceeds the %d distinct names", cfg.Count, MaxGeneratedLocations)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.CryptoSeed()
	}

	// Three noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	moistNoise := opensimplex.NewNormalized(seed + 1)
	densNoise := opensimplex.NewNormalized(seed + 2)

	cells := make([]cell, 0, cfg.Grid.Cells())
	for y := 0; y < cfg.Grid.Height; y++ {
		for x := 0; x < cfg.Grid.Width; x++ {
			fx, fy := float64(x), float64(y)
			cells = append(cells, cell{
				coord:   Coord{X: x, Y: y},
				elev:    octaveNoise(elevNoise, fx, fy, 4, 0.09, 0.5),
				moist:   octaveNoise(moistNoise, fx, fy, 3, 0.07, 0.5),
				density: octaveNoise(densNoise, fx, fy, 2, 0.12, 0.5),
			})
		}
	}

	// Most desirable cells first; coordinates break ties so the order is stable.
	sort.Slice(cells, func(i, j int) bool {
		si, sj := cellScore(cells[i]), cellScore(cells[j])
		if si != sj {
			return si > sj
		}
		if cells[i].coord.Y != cells[j].coord.Y {
			return cells[i].coord.Y < cells[j].coord.Y
		}
		return cells[i].coord.X < cells[j].coord.X
	})

	var picked []cell
	for _, c := range cells {
		if len(picked) >= cfg.Count {
			break
		}
		if tooClose(c.coord, picked, cfg.MinSpacing) {
			continue
		}
		picked = append(picked, c)
	}

	rng := entropy.NewSeeded(seed + 200)
	names := generateNames(rng, len(picked))

	locs := make([]Location, 0, len(picked))
	for i, c := range picked {
		pop := populationFor(c.density)
		locs = append(locs, Location{
			ID:         strings.ToLower(names[i]),
			Name:       names[i],
			X:          c.coord.X,
			Y:          c.coord.Y,
			Population: pop,
			Tags:       deriveTags(c, cfg.Grid, pop),
		})
	}
	return locs, nil
}

// cellScore prefers dense, temperate, well-watered cells.
func cellScore(c cell) float64 {
	score := c.density * 3
	score += 1 - math.Abs(c.elev-0.5)
	score += c.moist * 0.5
	return score
}

func populationFor(density float64) int {
	return 150 + int(math.Round(density*density*7800))
}

func deriveTags(c cell, g Grid, pop int) []string {
	var out []string
	edge := c.coord.X == 0 || c.coord.Y == 0 || c.coord.X == g.Width-1 || c.coord.Y == g.Height-1
	switch {
	case edge || c.elev < 0.3:
		out = append(out, "coastal", "port")
	case c.elev > 0.68:
		out = append(out, "highland", "mining")
	}
	if c.moist > 0.6 && c.elev >= 0.3 && c.elev <= 0.68 {
		out = append(out, "forest")
	}
	if c.moist < 0.3 {
		out = append(out, "arid")
	}
	if pop >= 3000 {
		out = append(out, "urban", "market")
	} else {
		out = append(out, "rural")
		if c.moist >= 0.45 {
			out = append(out, "agricultural")
		}
	}
	return out
}

func tooClose(coord Coord, existing []cell, minDist float64) bool {
	for _, e := range existing {
		if Distance(coord, e.coord) < minDist {
			return true
		}
	}
	return false
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

var (
	namePrefixes = []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Bright", "High", "Low", "Old",
		"Far", "Deep", "Long", "Gold", "Frost", "Salt", "Thorn", "Copper",
	}
	nameSuffixes = []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "wood", "field", "dale", "mere", "vale", "port",
		"bury", "well", "brook", "cliff", "moor", "ridge", "watch", "rest",
	}
)

// MaxGeneratedLocations is the number of distinct generated names.
var MaxGeneratedLocations = len(namePrefixes) * len(nameSuffixes)

// generateNames produces count distinct names by combining syllables. count
// must not exceed MaxGeneratedLocations.
func generateNames(rng entropy.Source, count int) []string {
	used := make(map[string]bool)
	names := make([]string, 0, count)
	for len(names) < count {
		name := namePrefixes[rng.Intn(len(namePrefixes))] + nameSuffixes[rng.Intn(len(nameSuffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}
	return names
}
