// internal/grid/grid.go
//
// Fixed-size 2D coordinate space shared by every grid game.
// Responsibilities:
//   - Bounds checks and row-major indexing for coordinate-indexed boards.
//   - 8-connected neighbour enumeration in a fixed angular order.
//   - Toroidal wrapping (floor modulo) for wraparound movement.
//
// Axes: x grows east, y grows south.

package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidSize is returned when a grid is built with a non-positive dimension.
var ErrInvalidSize = errors.New("grid dimensions must be positive")

// Coord is a cell coordinate or a direction vector.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// C is shorthand for Coord{X: x, Y: y}.
func C(x, y int) Coord { return Coord{X: x, Y: y} }

// Add returns c + d.
func (c Coord) Add(d Coord) Coord { return Coord{X: c.X + d.X, Y: c.Y + d.Y} }

// Neg returns the opposite vector.
func (c Coord) Neg() Coord { return Coord{X: -c.X, Y: -c.Y} }

// IsZero reports whether both components are zero.
func (c Coord) IsZero() bool { return c.X == 0 && c.Y == 0 }

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Compass offsets in neighbour order: E, SE, S, SW, W, NW, N, NE.
var offsets = [8]Coord{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// Grid is an immutable W×H coordinate space.
type Grid struct {
	W, H int
}

// New validates the dimensions and returns a Grid.
func New(w, h int) (Grid, error) {
	if w <= 0 || h <= 0 {
		return Grid{}, fmt.Errorf("%dx%d: %w", w, h, ErrInvalidSize)
	}
	return Grid{W: w, H: h}, nil
}

// Len returns the number of cells.
func (g Grid) Len() int { return g.W * g.H }

// Index returns the row-major slice index of c. c must be in bounds.
func (g Grid) Index(c Coord) int { return c.Y*g.W + c.X }

// At is the inverse of Index.
func (g Grid) At(i int) Coord { return Coord{X: i % g.W, Y: i / g.W} }

// Contains reports whether c lies inside [0,W)×[0,H).
func (g Grid) Contains(c Coord) bool {
	return c.X >= 0 && c.X < g.W && c.Y >= 0 && c.Y < g.H
}

// Wrap reduces c onto the torus; negative components wrap to the far edge.
func (g Grid) Wrap(c Coord) Coord {
	return Coord{X: mod(c.X, g.W), Y: mod(c.Y, g.H)}
}

// Neighbors returns the in-bounds 8-neighbours of c in E, SE, S, SW, W, NW, N, NE order.
func (g Grid) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(offsets))
	for _, d := range offsets {
		if n := c.Add(d); g.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// WrappedNeighbors returns all 8 neighbours of c reduced onto the torus.
// On grids narrower than 3 cells some entries repeat.
func (g Grid) WrappedNeighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(offsets))
	for _, d := range offsets {
		out = append(out, g.Wrap(c.Add(d)))
	}
	return out
}

// Cells returns every coordinate in row-major order.
func (g Grid) Cells() []Coord {
	out := make([]Coord, 0, g.Len())
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			out = append(out, Coord{X: x, Y: y})
		}
	}
	return out
}

func mod(v, m int) int { return ((v % m) + m) % m }
