// internal/snake/engine.go
//
// Rules engine for a single Snake game.
// Responsibilities:
//   - Keep the body as an ordered slice (tail first, head last) plus a
//     coordinate-indexed occupancy table.
//   - Accept direction changes, refusing an instant reversal.
//   - Advance one cell per Tick, detecting wall and self collisions.
//   - Grow on the point, ramp the speed, and place the next point uniformly
//     among free cells.
//
// Notes:
//   - The engine does no timing of its own; Interval reports how long the
//     caller should wait before the next Tick.
//   - A Fatal tick leaves the body exactly as it was before that tick.

package snake

import (
	"math/rand/v2"
	"time"

	"github.com/robalobadob/arcade/internal/grid"
)

// Engine owns the body for the lifetime of one game.
type Engine struct {
	cfg Config
	g   grid.Grid
	rng *rand.Rand
	lis Listener

	body     []grid.Coord
	occupied []bool

	dir, prevDir grid.Coord
	point        grid.Coord
	hasPoint     bool
	score        int
	speed        float64

	started bool
	dead    bool
	cause   Cause
}

// New validates cfg and returns an engine ready for its first game.
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
	cfg.Body = append([]grid.Coord(nil), cfg.Body...)
	e := &Engine{cfg: cfg, g: grid.Grid{W: cfg.Width, H: cfg.Height}, rng: rng, lis: lis}
	e.StartNewGame()
	return e, nil
}

// StartNewGame restores the configured body, direction and speed. The snake
// stays idle, with no point on the board, until the first SetDirection.
// The listener sees the old body and point vacated before the new body
// appears.
func (e *Engine) StartNewGame() {
	for _, p := range e.body {
		e.lis.Vacated(p)
	}
	if e.hasPoint {
		e.lis.Vacated(e.point)
	}
	e.body = append(e.body[:0], e.cfg.Body...)
	e.occupied = make([]bool, e.g.Len())
	for _, p := range e.body {
		e.occupied[e.g.Index(p)] = true
		e.lis.Occupied(p)
	}
	e.dir = e.cfg.Direction
	e.prevDir = e.cfg.Direction
	e.hasPoint = false
	e.score = 0
	e.speed = e.cfg.Speed
	e.started = false
	e.dead = false
	e.cause = NoCause
	e.lis.ScoreChanged(0)
}

// SetDirection queues d for the next tick. It is ignored when d is not a unit
// step, when it reverses the direction used on the previous tick, or after
// the game is over. started is true for the first accepted direction, which
// also places the point; the caller should start ticking then.
func (e *Engine) SetDirection(d grid.Coord) (accepted, started bool) {
	if e.dead || !isUnit(d) || d == e.prevDir.Neg() {
		return false, false
	}
	e.dir = d
	if !e.started {
		e.started = true
		e.placePoint()
		return true, true
	}
	return true, false
}

// Tick advances the snake by one cell. Before the first direction it does
// nothing; after a Fatal result it keeps returning that result.
func (e *Engine) Tick() TickResult {
	if e.dead {
		return TickResult{Kind: Fatal, Cause: e.cause, Head: e.Head()}
	}
	if !e.started {
		return TickResult{Kind: Continue, Head: e.Head()}
	}

	tail := e.body[0]
	head := e.Head().Add(e.dir)
	if e.cfg.Wrap {
		head = e.g.Wrap(head)
	}
	if !e.g.Contains(head) {
		return e.die(WallCollision, head)
	}
	// The tail has moved on, so its cell is free this tick.
	if head != tail && e.occupied[e.g.Index(head)] {
		return e.die(SelfCollision, head)
	}

	e.body = append(e.body[:0], e.body[1:]...)
	e.occupied[e.g.Index(tail)] = false
	e.lis.Vacated(tail)

	e.body = append(e.body, head)
	e.occupied[e.g.Index(head)] = true
	e.lis.Occupied(head)
	e.prevDir = e.dir

	if !e.hasPoint || head != e.point {
		return TickResult{Kind: Continue, Head: head}
	}

	e.score++
	e.lis.ScoreChanged(e.score)
	e.body = append([]grid.Coord{tail}, e.body...)
	e.occupied[e.g.Index(tail)] = true
	e.lis.Occupied(tail)
	e.speed += e.cfg.Acceleration
	e.placePoint()
	return TickResult{Kind: Grew, Head: head}
}

func (e *Engine) die(c Cause, at grid.Coord) TickResult {
	e.dead = true
	e.cause = c
	return TickResult{Kind: Fatal, Cause: c, Head: at}
}

// placePoint picks a uniformly random free cell. A full board gets no point.
func (e *Engine) placePoint() {
	free := make([]int, 0, e.g.Len()-len(e.body))
	for i, occ := range e.occupied {
		if !occ {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		e.hasPoint = false
		return
	}
	e.point = e.g.At(free[e.rng.IntN(len(free))])
	e.hasPoint = true
	e.lis.PointPlaced(e.point)
}

// Interval is the wait before the next tick at the current speed.
func (e *Engine) Interval() time.Duration {
	return time.Duration(float64(time.Second) / e.speed)
}

// Head returns the head coordinate.
func (e *Engine) Head() grid.Coord { return e.body[len(e.body)-1] }

// Body returns a copy of the body, tail first.
func (e *Engine) Body() []grid.Coord { return append([]grid.Coord(nil), e.body...) }

// Point returns the current point and whether one is on the board.
func (e *Engine) Point() (grid.Coord, bool) { return e.point, e.hasPoint }

func (e *Engine) Grid() grid.Grid { return e.g }
func (e *Engine) Config() Config { return e.cfg }
func (e *Engine) Len() int { return len(e.body) }
func (e *Engine) Score() int { return e.score }
func (e *Engine) Speed() float64 { return e.speed }
func (e *Engine) Direction() grid.Coord { return e.dir }
func (e *Engine) Started() bool { return e.started }
func (e *Engine) Dead() bool { return e.dead }
func (e *Engine) Cause() Cause { return e.cause }
func (e *Engine) Occupies(c grid.Coord) bool {
	return e.g.Contains(c) && e.occupied[e.g.Index(c)]
}
