// internal/session/session.go
//
// Session drives one Game through the state machine in state.go.
// Responsibilities:
//   - Enforce the legal transitions (Begin, Finish, TogglePause, NewGame).
//   - Track elapsed play time, counting only time spent Running.
//   - Hand the score of a Win or Over to the recorder.
//
// Notes:
//   - A Session is not safe for concurrent use. The owning variant serialises
//     every event (input, tick, pause) before calling in.
//   - Collaborators are passed to New; nothing is looked up at runtime.

package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/arcade/internal/metrics"
	"github.com/robalobadob/arcade/internal/scores"
)

// Session is the state machine around one Game.
type Session struct {
	game Game
	rec  scores.Recorder
	now  func() time.Time
	lis  Listener

	state    State
	previous State
	elapsed  time.Duration
	since    time.Time // start of the current Running stretch
}

// Option customises a Session.
type Option func(*Session)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithListener registers a transition listener.
func WithListener(l Listener) Option { return func(s *Session) { s.lis = l } }

// New builds a Session in state None. rec may be nil, in which case scores
// are dropped.
func New(g Game, rec scores.Recorder, opts ...Option) *Session {
	s := &Session{game: g, rec: rec, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Game returns the game this session drives.
func (s *Session) Game() Game { return s.game }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Previous returns the state a resume will restore while Paused.
func (s *Session) Previous() State { return s.previous }

// AcceptsInput reports whether player input should reach the engine.
func (s *Session) AcceptsInput() bool { return s.state == None || s.state == Running }

// NewGame restarts the game and resets the session to None.
func (s *Session) NewGame() error {
	if err := s.game.StartNewGame(); err != nil {
		return err
	}
	s.elapsed = 0
	s.previous = None
	s.set(None)
	return nil
}

// Begin moves None to Running, typically on the first input. It reports
// whether a transition happened.
func (s *Session) Begin() bool {
	if s.state != None {
		return false
	}
	s.since = s.now()
	s.set(Running)
	return true
}

// Finish ends a Running game with one of the terminal states. Win and Over
// record the game's raw score; Lose records nothing. A recorder failure is
// logged and does not undo the transition.
func (s *Session) Finish(ctx context.Context, to State) bool {
	if s.state != Running || !to.Terminal() {
		return false
	}
	s.stopClock()
	s.set(to)
	if to == Lose || s.rec == nil {
		return true
	}
	e := scores.Entry{Title: s.game.Title(), Raw: s.game.RawScore(), At: s.now()}
	if err := s.rec.Record(ctx, e); err != nil {
		metrics.ScoreErrors.Inc()
		log.Warn().Err(err).Str("game", e.Title).Float64("raw", e.Raw).Msg("record score")
	}
	return true
}

// TogglePause pauses a None or Running game, or resumes a Paused one to the
// state it was paused from. Terminal states ignore it. The returned bool
// reports whether anything changed.
func (s *Session) TogglePause() (State, bool) {
	switch s.state {
	case None, Running:
		if s.state == Running {
			s.stopClock()
		}
		s.previous = s.state
		s.set(Paused)
		if p, ok := s.game.(Pauser); ok {
			p.OnPause()
		}
		return Paused, true
	case Paused:
		to := s.previous
		if to == Running {
			s.since = s.now()
		}
		s.set(to)
		if p, ok := s.game.(Pauser); ok {
			p.OnResume()
		}
		return to, true
	default:
		return s.state, false
	}
}

// Elapsed returns the play time so far, excluding time spent paused.
func (s *Session) Elapsed() time.Duration {
	if s.state == Running {
		return s.elapsed + s.now().Sub(s.since)
	}
	return s.elapsed
}

// Close stops the game. The session should not be used afterwards.
func (s *Session) Close() { s.game.CloseGame() }

func (s *Session) stopClock() {
	s.elapsed += s.now().Sub(s.since)
}

func (s *Session) set(to State) {
	from := s.state
	s.state = to
	if from == to {
		return
	}
	log.Debug().Str("game", s.game.Title()).Stringer("from", from).Stringer("to", to).Msg("state change")
	if s.lis != nil {
		s.lis.StateChanged(from, to)
	}
}
