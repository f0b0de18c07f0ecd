// internal/minesweeper/types.go
//
// Core type definitions for the Minesweeper engine.
// Defines:
//   - CellState: Hidden / Revealed / Flagged.
//   - Cell: one board square (state, bomb flag, lazily computed adjacency).
//   - Outcome + Result: what a reveal did to the game.
//   - Listener: presentation sink notified of every visible change.

package minesweeper

import "github.com/robalobadob/arcade/internal/grid"

// CellState is the player-visible state of a square.
type CellState uint8

const (
	Hidden CellState = iota
	Revealed
	Flagged
)

func (s CellState) String() string {
	switch s {
	case Revealed:
		return "revealed"
	case Flagged:
		return "flagged"
	default:
		return "hidden"
	}
}

// Cell is one square of the board.
// Adjacent is only meaningful once the cell has been revealed.
type Cell struct {
	State    CellState
	Bomb     bool
	Adjacent int
}

// Outcome reports whether a game is still going.
type Outcome uint8

const (
	Continue Outcome = iota
	Win
	Lose
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Lose:
		return "lose"
	default:
		return "continue"
	}
}

// Result describes the effect of a Reveal or Chord.
type Result struct {
	Started  bool    // this call generated the field
	Outcome  Outcome // Win/Lose are terminal
	Revealed int     // cells opened by this call, cascade included
}

// Listener receives presentation updates. The engine never reads anything back.
type Listener interface {
	CellChanged(c grid.Coord, cell Cell)
	RemainingChanged(remaining int)
}

type nopListener struct{}

func (nopListener) CellChanged(grid.Coord, Cell) {}
func (nopListener) RemainingChanged(int)         {}
