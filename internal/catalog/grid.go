package catalog

import "math"

// Coord is a cell on the location grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Contains reports whether c lies inside the grid.
func (g Grid) Contains(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.Width && c.Y < g.Height
}

// Cells returns the number of cells in the grid.
func (g Grid) Cells() int {
	return g.Width * g.Height
}

// Distance returns the straight-line distance between two cells.
func Distance(a, b Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// TravelDays returns how many days it takes to cover the distance between a
// and b at tilesPerDay, never less than one.
func TravelDays(a, b Coord, tilesPerDay float64) int {
	if tilesPerDay <= 0 {
		tilesPerDay = 1
	}
	days := int(math.Ceil(Distance(a, b) / tilesPerDay))
	if days < 1 {
		days = 1
	}
	return days
}
