package grid

import (
	"math/rand"
	"testing"
)

func testGrid() *Grid {
	return Generate(19, 20, 32, 42, 0.08)
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(19, 20, 32, 42, 0.08)
	b := Generate(19, 20, 32, 42, 0.08)
	for y := 0; y < a.Rows; y++ {
		for x := 0; x < a.Cols; x++ {
			if a.Walkable(x, y) != b.Walkable(x, y) {
				t.Fatalf("same seed diverged at (%d,%d)", x, y)
			}
		}
	}
}

func TestHubAlwaysWalkable(t *testing.T) {
	g := testGrid()
	hx, hy := g.HubCell()
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if !g.Walkable(hx+dx, hy+dy) {
				t.Fatalf("hub neighborhood blocked at (%d,%d)", hx+dx, hy+dy)
			}
		}
	}
}

func TestWalkableOutOfBounds(t *testing.T) {
	g := testGrid()
	if g.Walkable(-1, 0) || g.Walkable(0, -1) || g.Walkable(19, 0) || g.Walkable(0, 20) {
		t.Fatal("out-of-bounds cell reported walkable")
	}
}

func TestCenterAndCellOfRoundTrip(t *testing.T) {
	g := testGrid()
	px, py := g.Center(3, 7)
	if px != 3*32+16 || py != 7*32+16 {
		t.Fatalf("center (%.0f, %.0f), want (112, 240)", px, py)
	}
	cx, cy := g.CellOf(px, py)
	if cx != 3 || cy != 7 {
		t.Fatalf("cell (%d, %d) from center, want (3, 7)", cx, cy)
	}
}

func TestRandomWalkableStaysInterior(t *testing.T) {
	g := testGrid()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		x, y := g.RandomWalkable(rng)
		if x < 1 || y < 1 || x > g.Cols-2 || y > g.Rows-2 {
			t.Fatalf("picked border cell (%d,%d)", x, y)
		}
		if !g.Walkable(x, y) {
			t.Fatalf("picked blocked cell (%d,%d)", x, y)
		}
	}
}
