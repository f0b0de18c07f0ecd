// internal/minesweeper/engine.go
//
// Rules engine for a single Minesweeper game.
// Responsibilities:
//   - Defer bomb placement to the first reveal so the opening move and its
//     neighbours are always safe.
//   - Reveal cells, cascading through zero-adjacency regions.
//   - Flag bookkeeping (cosmetic remaining-bomb counter) and chord quick-open.
//   - Detect Win (every non-bomb revealed) and Lose (bomb revealed).
//
// Notes:
//   - The board is a row-major []Cell keyed by grid.Index; it is the only
//     source of truth for cell state.
//   - Acting on flagged/revealed cells, out-of-range coordinates or a finished
//     game is a silent no-op. A detonation is an Outcome, not an error.

package minesweeper

import (
	"math/rand/v2"

	"github.com/robalobadob/arcade/internal/grid"
)

// Engine owns the board for the lifetime of one game.
type Engine struct {
	cfg   Config
	g     grid.Grid
	rng   *rand.Rand
	lis   Listener
	cells []Cell

	generated bool
	bombs     int
	opened    int
	remaining int
	outcome   Outcome
}

// New validates cfg and returns an engine ready for its first game.
// A nil rng seeds from the clock; a nil listener discards notifications.
func New(cfg Config, rng *rand.Rand, lis Listener) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = grid.NewRNG(0)
	}
	if lis == nil {
		lis = nopListener{}
	}
	e := &Engine{cfg: cfg, g: grid.Grid{W: cfg.Width, H: cfg.Height}, rng: rng, lis: lis}
	e.StartNewGame()
	return e, nil
}

// StartNewGame clears the board to Hidden and zeroes every counter.
// Bombs are not placed until the first reveal. Every cell that was not
// Hidden is reported as Hidden again.
func (e *Engine) StartNewGame() {
	old := e.cells
	e.cells = make([]Cell, e.g.Len())
	for i, c := range old {
		if c.State != Hidden {
			e.lis.CellChanged(e.g.At(i), Cell{})
		}
	}
	e.generated = false
	e.bombs = 0
	e.opened = 0
	e.outcome = Continue
	e.setRemaining(0)
}

// Reveal opens the cell at c.
func (e *Engine) Reveal(c grid.Coord) Result {
	var res Result
	if e.outcome != Continue || !e.g.Contains(c) {
		return res
	}
	if e.cells[e.g.Index(c)].State != Hidden {
		return res
	}
	if !e.generated {
		e.generate(c)
		res.Started = true
	}
	e.reveal(c, &res)
	res.Outcome = e.outcome
	return res
}

// Chord re-reveals every neighbour of an already revealed cell when at least
// one of them carries a flag. Flags are trusted, not verified.
func (e *Engine) Chord(c grid.Coord) Result {
	var res Result
	if e.outcome != Continue || !e.g.Contains(c) {
		return res
	}
	if e.cells[e.g.Index(c)].State != Revealed {
		return res
	}
	neighbors := e.g.Neighbors(c)
	flagged := false
	for _, n := range neighbors {
		if e.cells[e.g.Index(n)].State == Flagged {
			flagged = true
			break
		}
	}
	if !flagged {
		return res
	}
	for _, n := range neighbors {
		e.reveal(n, &res)
	}
	res.Outcome = e.outcome
	return res
}

// ToggleFlag flips Hidden⇄Flagged and reports whether anything changed.
func (e *Engine) ToggleFlag(c grid.Coord) bool {
	if e.outcome != Continue || !e.g.Contains(c) {
		return false
	}
	cell := &e.cells[e.g.Index(c)]
	switch cell.State {
	case Hidden:
		cell.State = Flagged
		e.setRemaining(e.remaining - 1)
	case Flagged:
		cell.State = Hidden
		e.setRemaining(e.remaining + 1)
	default:
		return false
	}
	e.lis.CellChanged(c, *cell)
	return true
}

// WinCondition is true once every non-bomb cell has been revealed.
// A detonated board never satisfies it, even if the opened count lines up.
func (e *Engine) WinCondition() bool {
	return e.generated && e.outcome != Lose && e.g.Len()-e.opened == e.bombs
}

// reveal is the recursive step. The Hidden guard is what stops the cascade
// from visiting a cell twice.
func (e *Engine) reveal(c grid.Coord, res *Result) {
	if e.outcome != Continue {
		return
	}
	cell := &e.cells[e.g.Index(c)]
	if cell.State != Hidden {
		return
	}
	cell.State = Revealed
	e.opened++
	res.Revealed++

	if cell.Bomb {
		e.outcome = Lose
		e.lis.CellChanged(c, *cell)
		return
	}

	cell.Adjacent = e.adjacentBombs(c)
	e.lis.CellChanged(c, *cell)
	if cell.Adjacent == 0 {
		for _, n := range e.g.Neighbors(c) {
			e.reveal(n, res)
		}
	}
	if e.outcome == Continue && e.WinCondition() {
		e.outcome = Win
	}
}

// generate places bombs everywhere except the safe zone around the opening move.
func (e *Engine) generate(opening grid.Coord) {
	safe := make(map[grid.Coord]struct{}, 9)
	safe[opening] = struct{}{}
	for _, n := range e.g.Neighbors(opening) {
		safe[n] = struct{}{}
	}

	e.bombs = 0
	for i := range e.cells {
		if _, ok := safe[e.g.At(i)]; ok {
			continue
		}
		if e.rng.Float64() < e.cfg.Density {
			e.cells[i].Bomb = true
			e.bombs++
		}
	}
	e.generated = true
	// Flags placed before the first reveal already moved the counter.
	e.setRemaining(e.remaining + e.bombs)
}

func (e *Engine) adjacentBombs(c grid.Coord) int {
	n := 0
	for _, nb := range e.g.Neighbors(c) {
		if e.cells[e.g.Index(nb)].Bomb {
			n++
		}
	}
	return n
}

func (e *Engine) setRemaining(n int) {
	e.remaining = n
	e.lis.RemainingChanged(n)
}

// Grid returns the board dimensions.
func (e *Engine) Grid() grid.Grid { return e.g }

// Config returns the config the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Cell returns the cell at c.
func (e *Engine) Cell(c grid.Coord) (Cell, bool) {
	if !e.g.Contains(c) {
		return Cell{}, false
	}
	return e.cells[e.g.Index(c)], true
}

// Cells returns a copy of the board in row-major order.
func (e *Engine) Cells() []Cell { return append([]Cell(nil), e.cells...) }

func (e *Engine) Generated() bool { return e.generated }
func (e *Engine) BombCount() int { return e.bombs }
func (e *Engine) Opened() int { return e.opened }
func (e *Engine) Remaining() int { return e.remaining }
func (e *Engine) Outcome() Outcome { return e.outcome }
