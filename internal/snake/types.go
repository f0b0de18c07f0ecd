// internal/snake/types.go
//
// Type definitions for the Snake engine.
// Defines:
//   - Direction vectors (Up/Down/Left/Right on a y-grows-south grid).
//   - TickResult: the tri-state outcome of one movement step.
//   - Listener: presentation sink for body/point/score changes.

package snake

import "github.com/robalobadob/arcade/internal/grid"

var (
	Up    = grid.C(0, -1)
	Down  = grid.C(0, 1)
	Left  = grid.C(-1, 0)
	Right = grid.C(1, 0)
)

// Kind classifies a tick.
type Kind uint8

const (
	Continue Kind = iota // moved, nothing eaten
	Grew                 // moved onto the point and grew by one
	Fatal                // collided; the game is over
)

func (k Kind) String() string {
	switch k {
	case Grew:
		return "grew"
	case Fatal:
		return "fatal"
	default:
		return "continue"
	}
}

// Cause says what a Fatal tick hit.
type Cause uint8

const (
	NoCause Cause = iota
	SelfCollision
	WallCollision
)

func (c Cause) String() string {
	switch c {
	case SelfCollision:
		return "self"
	case WallCollision:
		return "wall"
	default:
		return ""
	}
}

// TickResult is returned from Tick and inspected by the caller.
type TickResult struct {
	Kind  Kind
	Cause Cause
	Head  grid.Coord // head after the tick, or the cell that was hit
}

// Listener receives presentation updates.
type Listener interface {
	Occupied(c grid.Coord)
	Vacated(c grid.Coord)
	PointPlaced(c grid.Coord)
	ScoreChanged(score int)
}

type nopListener struct{}

func (nopListener) Occupied(grid.Coord)    {}
func (nopListener) Vacated(grid.Coord)     {}
func (nopListener) PointPlaced(grid.Coord) {}
func (nopListener) ScoreChanged(int)       {}

func isUnit(d grid.Coord) bool {
	ax, ay := d.X, d.Y
	if ax < 0 {
		ax = -ax
	}
	if ay < 0 {
		ay = -ay
	}
	return ax+ay == 1
}
