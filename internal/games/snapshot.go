package games

import (
	"github.com/robalobadob/arcade/internal/grid"
	"github.com/robalobadob/arcade/internal/minesweeper"
	"github.com/robalobadob/arcade/internal/session"
)

// Snapshot is the full read-only view of a game, for clients that join late
// or poll instead of streaming events.
type Snapshot struct {
	Title   string        `json:"title"`
	State   session.State `json:"state"`
	Elapsed string        `json:"elapsed"` // mm:ss
	Score   string        `json:"score"`   // current score, formatted
	Width   int           `json:"width"`
	Height  int           `json:"height"`

	Mines *MinesView `json:"mines,omitempty"`
	Snake *SnakeView `json:"snake,omitempty"`
}

// CellView is how a client sees one Minesweeper cell. Bombs stay hidden
// until they are revealed or the game is lost.
type CellView struct {
	State string `json:"state"`
	Count int    `json:"count"`
	Bomb  bool   `json:"bomb"`
}

// MinesView is the Minesweeper part of a Snapshot.
type MinesView struct {
	Cells     [][]CellView `json:"cells"` // [y][x]
	Remaining int          `json:"remaining"`
	Label     string       `json:"label"`
	Generated bool         `json:"generated"`
}

// SnakeView is the Snake part of a Snapshot.
type SnakeView struct {
	Body      []grid.Coord `json:"body"` // tail first
	Point     *grid.Coord  `json:"point,omitempty"`
	Direction grid.Coord   `json:"direction"`
	Points    int          `json:"points"`
	Speed     float64      `json:"speed"`
	Wrap      bool         `json:"wrap"`
	Cause     string       `json:"cause,omitempty"`
}

func cellView(c minesweeper.Cell, showBombs bool) CellView {
	v := CellView{State: c.State.String()}
	if c.State == minesweeper.Revealed {
		v.Count = c.Adjacent
		v.Bomb = c.Bomb
	}
	if showBombs && c.Bomb {
		v.Bomb = true
	}
	return v
}
