// internal/games/minesweeper.go
//
// Minesweeper variant: binds the minefield engine to a Session and a
// Publisher.
// Responsibilities:
//   - Map input events to engine calls (primary = reveal, secondary = flag,
//     double = chord on a revealed cell, reveal otherwise).
//   - Start the session clock on the first effective reveal; finish it on
//     Win or Lose.
//   - Score is elapsed play time in seconds, lower is better.
//
// Notes:
//   - Every event takes mu, so the engine and session see one event at a time.

package games

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robalobadob/arcade/internal/grid"
	"github.com/robalobadob/arcade/internal/minesweeper"
	"github.com/robalobadob/arcade/internal/session"
)

const recordTimeout = 5 * time.Second

// Minesweeper is a playable minefield.
type Minesweeper struct {
	mu   sync.Mutex
	eng  *minesweeper.Engine
	sess *session.Session
	pub  Publisher
}

// NewMinesweeper validates cfg and returns a game in state None.
func NewMinesweeper(cfg minesweeper.Config, deps Deps) (*Minesweeper, error) {
	m := &Minesweeper{pub: deps.publisher()}
	eng, err := minesweeper.New(cfg, grid.NewRNG(deps.Seed), mineSink{m})
	if err != nil {
		return nil, err
	}
	m.eng = eng
	m.sess = session.New(m, deps.Recorder, deps.sessionOptions(TitleMinesweeper, m.pub)...)
	if err := m.sess.NewGame(); err != nil {
		return nil, err
	}
	return m, nil
}

// PrimaryAction reveals c.
func (m *Minesweeper) PrimaryAction(c grid.Coord) minesweeper.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sess.AcceptsInput() {
		return minesweeper.Result{}
	}
	return m.settle(m.eng.Reveal(c))
}

// SecondaryAction toggles a flag on c.
func (m *Minesweeper) SecondaryAction(c grid.Coord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sess.AcceptsInput() {
		return false
	}
	return m.eng.ToggleFlag(c)
}

// DoubleAction chords a revealed cell and reveals anything else.
func (m *Minesweeper) DoubleAction(c grid.Coord) minesweeper.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sess.AcceptsInput() {
		return minesweeper.Result{}
	}
	if cell, ok := m.eng.Cell(c); ok && cell.State == minesweeper.Revealed {
		return m.settle(m.eng.Chord(c))
	}
	return m.settle(m.eng.Reveal(c))
}

func (m *Minesweeper) settle(res minesweeper.Result) minesweeper.Result {
	if res.Revealed > 0 {
		m.sess.Begin()
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	switch res.Outcome {
	case minesweeper.Win:
		m.sess.Finish(ctx, session.Win)
	case minesweeper.Lose:
		m.sess.Finish(ctx, session.Lose)
	}
	return res
}

// NewGame clears the board and resets the session.
func (m *Minesweeper) NewGame() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.NewGame()
}

// TogglePause pauses or resumes, returning the resulting state.
func (m *Minesweeper) TogglePause() session.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, _ := m.sess.TogglePause()
	return st
}

func (m *Minesweeper) State() session.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.State()
}

// Close ends the session.
func (m *Minesweeper) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess.Close()
}

// Snapshot returns the board as the player sees it.
func (m *Minesweeper) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := m.eng.Grid()
	lost := m.eng.Outcome() == minesweeper.Lose
	cells := make([][]CellView, g.H)
	for y := range cells {
		cells[y] = make([]CellView, g.W)
		for x := range cells[y] {
			c, _ := m.eng.Cell(grid.C(x, y))
			cells[y][x] = cellView(c, lost)
		}
	}
	return Snapshot{
		Title:   TitleMinesweeper,
		State:   m.sess.State(),
		Elapsed: FormatDuration(m.sess.Elapsed()),
		Score:   m.FormatScore(m.RawScore()),
		Width:   g.W,
		Height:  g.H,
		Mines: &MinesView{
			Cells:     cells,
			Remaining: m.eng.Remaining(),
			Label:     remainingLabel(m.eng.Remaining()),
			Generated: m.eng.Generated(),
		},
	}
}

// session.Game. These are called by the session with mu already held.

func (m *Minesweeper) Title() string { return TitleMinesweeper }

func (m *Minesweeper) StartNewGame() error {
	m.eng.StartNewGame()
	return nil
}

func (m *Minesweeper) CloseGame() {}

// RawScore is the elapsed play time in seconds.
func (m *Minesweeper) RawScore() float64 { return m.sess.Elapsed().Seconds() }

func (m *Minesweeper) FormatScore(raw float64) string { return FormatClock(raw) }

func (m *Minesweeper) ParseScore(s string) (float64, error) { return ParseClock(s) }

func (m *Minesweeper) SortDescending() bool { return false }

func remainingLabel(n int) string { return fmt.Sprintf("%d bombs remain", n) }

// mineSink forwards engine notifications as events.
type mineSink struct{ m *Minesweeper }

func (s mineSink) CellChanged(c grid.Coord, cell minesweeper.Cell) {
	v := cellView(cell, false)
	s.m.pub.Publish(Event{Type: EventCell, Game: TitleMinesweeper, At: at(c), Cell: &v})
}

func (s mineSink) RemainingChanged(n int) {
	s.m.pub.Publish(Event{Type: EventRemaining, Game: TitleMinesweeper, Value: n, Label: remainingLabel(n)})
}
