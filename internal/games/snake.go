// internal/games/snake.go
//
// Snake variant: binds the snake engine to a Session, a tick Scheduler and a
// Publisher.
// Responsibilities:
//   - The first accepted direction begins the session and starts ticking at
//     the engine's interval.
//   - Each tick re-arms with the engine's current interval, so growth speeds
//     the game up.
//   - A Fatal tick finishes the session as Over and stops the ticker.
//   - Pause and resume suspend and restart the ticker.
//
// Notes:
//   - Ticks and input share mu. A tick that finds the session not Running
//     does nothing, and neither does a tick left over from an earlier game.

package games

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/grid"
	"github.com/robalobadob/arcade/internal/metrics"
	"github.com/robalobadob/arcade/internal/session"
	"github.com/robalobadob/arcade/internal/snake"
)

// Snake is a playable snake game.
type Snake struct {
	mu    sync.Mutex
	eng   *snake.Engine
	sess  *session.Session
	pub   Publisher
	sched session.Scheduler
	tick  session.Handle
	epoch uint64 // bumped whenever tick is stopped; older tick funcs are stale
}

// NewSnake validates cfg and returns a game in state None.
func NewSnake(cfg snake.Config, deps Deps) (*Snake, error) {
	s := &Snake{pub: deps.publisher(), sched: deps.scheduler()}
	eng, err := snake.New(cfg, grid.NewRNG(deps.Seed), snakeSink{s})
	if err != nil {
		return nil, err
	}
	s.eng = eng
	s.sess = session.New(s, deps.Recorder, deps.sessionOptions(TitleSnake, s.pub)...)
	if err := s.sess.NewGame(); err != nil {
		return nil, err
	}
	return s, nil
}

// DirectionInput steers the snake. It reports whether d was accepted.
func (s *Snake) DirectionInput(d grid.Coord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sess.AcceptsInput() {
		return false
	}
	ok, started := s.eng.SetDirection(d)
	if started {
		s.sess.Begin()
		ep := s.epoch
		s.tick = s.sched.Start(s.eng.Interval(), func() (time.Duration, bool) { return s.onTick(ep) })
	}
	return ok
}

// onTick runs one tick for the game started at epoch ep. A timer that
// fired before a restart may still be waiting on mu; it must not move the
// new game's snake.
func (s *Snake) onTick(ep uint64) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ep != s.epoch {
		return 0, false
	}
	switch s.sess.State() {
	case session.Running:
	case session.Paused:
		return s.eng.Interval(), true
	default:
		return 0, false
	}

	res := s.eng.Tick()
	metrics.Ticks.WithLabelValues(res.Kind.String()).Inc()
	if res.Kind != snake.Fatal {
		return s.eng.Interval(), true
	}

	s.pub.Publish(Event{Type: EventCollision, Game: TitleSnake, At: at(res.Head), Cause: res.Cause.String()})
	log.Debug().Str("cause", res.Cause.String()).Int("points", s.eng.Score()).Msg("snake collided")
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	s.sess.Finish(ctx, session.Over)
	s.tick = nil
	s.epoch++
	return 0, false
}

// NewGame resets the board and the session. Any running ticker is cancelled.
func (s *Snake) NewGame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.NewGame()
}

// TogglePause pauses or resumes, returning the resulting state.
func (s *Snake) TogglePause() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, _ := s.sess.TogglePause()
	return st
}

func (s *Snake) State() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.State()
}

// Close cancels the ticker and ends the session.
func (s *Snake) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess.Close()
}

// Snapshot returns the body, point and score.
func (s *Snake) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.eng.Grid()
	v := &SnakeView{
		Body:      s.eng.Body(),
		Direction: s.eng.Direction(),
		Points:    s.eng.Score(),
		Speed:     s.eng.Speed(),
		Wrap:      s.eng.Config().Wrap,
		Cause:     s.eng.Cause().String(),
	}
	if p, ok := s.eng.Point(); ok {
		v.Point = &p
	}
	return Snapshot{
		Title:   TitleSnake,
		State:   s.sess.State(),
		Elapsed: FormatDuration(s.sess.Elapsed()),
		Score:   s.FormatScore(s.RawScore()),
		Width:   g.W,
		Height:  g.H,
		Snake:   v,
	}
}

// session.Game and session.Pauser, called with mu held.

func (s *Snake) Title() string { return TitleSnake }

func (s *Snake) StartNewGame() error {
	s.stopTicking()
	s.eng.StartNewGame()
	return nil
}

func (s *Snake) CloseGame() { s.stopTicking() }

func (s *Snake) RawScore() float64 { return float64(s.eng.Score()) }

func (s *Snake) FormatScore(raw float64) string { return FormatPoints(raw) }

func (s *Snake) ParseScore(v string) (float64, error) { return ParsePoints(v) }

func (s *Snake) SortDescending() bool { return true }

func (s *Snake) OnPause() {
	if s.tick != nil {
		s.tick.Pause()
	}
}

func (s *Snake) OnResume() {
	if s.tick != nil {
		s.tick.Resume()
	}
}

func (s *Snake) stopTicking() {
	s.epoch++
	if s.tick != nil {
		s.tick.Cancel()
		s.tick = nil
	}
}

// snakeSink forwards engine notifications as events.
type snakeSink struct{ s *Snake }

func (k snakeSink) Occupied(c grid.Coord) {
	k.s.pub.Publish(Event{Type: EventOccupied, Game: TitleSnake, At: at(c)})
}

func (k snakeSink) Vacated(c grid.Coord) {
	k.s.pub.Publish(Event{Type: EventVacated, Game: TitleSnake, At: at(c)})
}

func (k snakeSink) PointPlaced(c grid.Coord) {
	k.s.pub.Publish(Event{Type: EventPoint, Game: TitleSnake, At: at(c)})
}

func (k snakeSink) ScoreChanged(n int) {
	k.s.pub.Publish(Event{Type: EventScore, Game: TitleSnake, Value: n})
}
