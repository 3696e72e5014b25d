// Package grid models the play area: a rectangular cell grid with a noise
// generated walkability map. Positions are pixels; placement and wandering
// work in whole grid cells.
package grid

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Grid is the play-area layout. Immutable after Generate.
type Grid struct {
	Cols     int
	Rows     int
	CellSize int

	walkable []bool
}

// Generate builds a grid from a seed. Simplex noise carves a small fraction
// of cells unwalkable (debris fields); the hub cell and its neighbors stay
// clear so hired nanos always spawn on open ground.
func Generate(cols, rows, cellSize int, seed int64, blockedFrac float64) *Grid {
	g := &Grid{
		Cols:     cols,
		Rows:     rows,
		CellSize: cellSize,
		walkable: make([]bool, cols*rows),
	}

	noise := opensimplex.NewNormalized(seed)
	const frequency = 0.35
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := noise.Eval2(float64(x)*frequency, float64(y)*frequency)
			g.walkable[y*cols+x] = v >= blockedFrac
		}
	}

	hx, hy := g.HubCell()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if g.InBounds(hx+dx, hy+dy) {
				g.walkable[(hy+dy)*cols+hx+dx] = true
			}
		}
	}
	return g
}

// InBounds reports whether a grid cell exists.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Cols && y < g.Rows
}

// Walkable reports whether a grid cell is open ground.
func (g *Grid) Walkable(x, y int) bool {
	return g.InBounds(x, y) && g.walkable[y*g.Cols+x]
}

// Center returns the pixel center of a grid cell.
func (g *Grid) Center(x, y int) (float64, float64) {
	return float64(x*g.CellSize + g.CellSize/2),
		float64(y*g.CellSize + g.CellSize/2)
}

// CellOf returns the grid cell containing a pixel position.
func (g *Grid) CellOf(px, py float64) (int, int) {
	return int(px) / g.CellSize, int(py) / g.CellSize
}

// HubCell is the central hub's grid cell.
func (g *Grid) HubCell() (int, int) { return g.Cols / 2, g.Rows / 2 }

// HubCenter is the central hub's pixel center: the spawn point.
func (g *Grid) HubCenter() (float64, float64) {
	return g.Center(g.HubCell())
}

// RandomWalkable picks a uniformly random walkable interior cell. Border
// cells are excluded so wander targets stay off the rim.
func (g *Grid) RandomWalkable(rng *rand.Rand) (int, int) {
	for i := 0; i < 64; i++ {
		x := 1 + rng.Intn(g.Cols-2)
		y := 1 + rng.Intn(g.Rows-2)
		if g.Walkable(x, y) {
			return x, y
		}
	}
	return g.HubCell()
}
