package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/robalobadob/arcade/internal/scores"
)

type fakeGame struct {
	title    string
	raw      float64
	starts   int
	closed   bool
	pauses   int
	resumes  int
	startErr error
}

func (g *fakeGame) Title() string { return g.title }
func (g *fakeGame) StartNewGame() error { g.starts++; return g.startErr }
func (g *fakeGame) CloseGame() { g.closed = true }
func (g *fakeGame) RawScore() float64 { return g.raw }
func (g *fakeGame) FormatScore(raw float64) string { return fmt.Sprint(raw) }
func (g *fakeGame) SortDescending() bool { return true }
func (g *fakeGame) OnPause() { g.pauses++ }
func (g *fakeGame) OnResume() { g.resumes++ }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) add(d time.Duration) { c.t = c.t.Add(d) }

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, scores.Entry) error { return errors.New("disk full") }
func (failingRecorder) History(context.Context, string, bool) ([]scores.Entry, error) {
	return nil, nil
}

func newSession(t *testing.T) (*Session, *fakeGame, *scores.Memory, *fakeClock) {
	t.Helper()
	g := &fakeGame{title: "Snake", raw: 7}
	rec := scores.NewMemory()
	clk := &fakeClock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	s := New(g, rec, WithClock(clk.now))
	if err := s.NewGame(); err != nil {
		t.Fatal(err)
	}
	return s, g, rec, clk
}

func history(t *testing.T, rec scores.Recorder) []scores.Entry {
	t.Helper()
	es, err := rec.History(context.Background(), "Snake", true)
	if err != nil {
		t.Fatal(err)
	}
	return es
}

func TestParseStateRoundTrip(t *testing.T) {
	for _, st := range []State{None, Running, Paused, Win, Lose, Over} {
		got, err := ParseState(st.String())
		if err != nil || got != st {
			t.Fatalf("ParseState(%q)=%v,%v", st.String(), got, err)
		}
	}
	if _, err := ParseState("exploded"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestBeginOnlyFromNone(t *testing.T) {
	s, _, _, _ := newSession(t)
	if !s.Begin() || s.State() != Running {
		t.Fatalf("Begin from None: state=%v", s.State())
	}
	if s.Begin() {
		t.Fatal("Begin from Running should be ignored")
	}
}

func TestFinishRecordsWinAndOver(t *testing.T) {
	for _, to := range []State{Win, Over} {
		t.Run(to.String(), func(t *testing.T) {
			s, _, rec, clk := newSession(t)
			s.Begin()
			clk.add(3 * time.Second)
			if !s.Finish(context.Background(), to) {
				t.Fatal("Finish refused")
			}
			es := history(t, rec)
			if len(es) != 1 || es[0].Raw != 7 || !es[0].At.Equal(clk.t) {
				t.Fatalf("history=%+v", es)
			}
		})
	}
}

func TestFinishLoseRecordsNothing(t *testing.T) {
	s, _, rec, _ := newSession(t)
	s.Begin()
	s.Finish(context.Background(), Lose)
	if s.State() != Lose {
		t.Fatalf("state=%v", s.State())
	}
	if es := history(t, rec); len(es) != 0 {
		t.Fatalf("lose recorded %+v", es)
	}
}

func TestFinishRequiresRunning(t *testing.T) {
	s, _, _, _ := newSession(t)
	if s.Finish(context.Background(), Win) {
		t.Fatal("Finish from None accepted")
	}
	s.Begin()
	if s.Finish(context.Background(), Paused) {
		t.Fatal("Finish to a non-terminal state accepted")
	}
	s.Finish(context.Background(), Over)
	if s.Finish(context.Background(), Win) {
		t.Fatal("Finish after a terminal state accepted")
	}
}

func TestRecorderFailureKeepsTransition(t *testing.T) {
	g := &fakeGame{title: "Snake"}
	s := New(g, failingRecorder{})
	s.Begin()
	if !s.Finish(context.Background(), Over) || s.State() != Over {
		t.Fatalf("state=%v", s.State())
	}
}

func TestTogglePauseRestoresPrevious(t *testing.T) {
	cases := []State{None, Running}
	for _, from := range cases {
		t.Run(from.String(), func(t *testing.T) {
			s, g, _, _ := newSession(t)
			if from == Running {
				s.Begin()
			}
			if st, ok := s.TogglePause(); !ok || st != Paused {
				t.Fatalf("pause=(%v,%v)", st, ok)
			}
			if s.AcceptsInput() {
				t.Fatal("paused session accepts input")
			}
			if st, ok := s.TogglePause(); !ok || st != from {
				t.Fatalf("resume=(%v,%v) want %v", st, ok, from)
			}
			if g.pauses != 1 || g.resumes != 1 {
				t.Fatalf("pauses=%d resumes=%d", g.pauses, g.resumes)
			}
		})
	}
}

func TestTogglePauseIgnoredWhenTerminal(t *testing.T) {
	s, g, _, _ := newSession(t)
	s.Begin()
	s.Finish(context.Background(), Lose)
	if _, ok := s.TogglePause(); ok {
		t.Fatal("pause accepted after Lose")
	}
	if g.pauses != 0 {
		t.Fatal("OnPause called after Lose")
	}
}

func TestElapsedExcludesPause(t *testing.T) {
	s, _, _, clk := newSession(t)
	clk.add(time.Minute) // idle in None does not count
	s.Begin()
	clk.add(10 * time.Second)
	s.TogglePause()
	clk.add(time.Hour)
	s.TogglePause()
	clk.add(5 * time.Second)
	if got := s.Elapsed(); got != 15*time.Second {
		t.Fatalf("elapsed=%v want 15s", got)
	}
	s.Finish(context.Background(), Win)
	clk.add(time.Minute)
	if got := s.Elapsed(); got != 15*time.Second {
		t.Fatalf("elapsed after finish=%v want 15s", got)
	}
}

func TestNewGameResets(t *testing.T) {
	s, g, _, clk := newSession(t)
	s.Begin()
	clk.add(time.Second)
	s.Finish(context.Background(), Over)
	if err := s.NewGame(); err != nil {
		t.Fatal(err)
	}
	if s.State() != None || s.Elapsed() != 0 || g.starts != 2 {
		t.Fatalf("state=%v elapsed=%v starts=%d", s.State(), s.Elapsed(), g.starts)
	}
}

func TestNewGameErrorKeepsState(t *testing.T) {
	s, g, _, _ := newSession(t)
	s.Begin()
	g.startErr = errors.New("boom")
	if err := s.NewGame(); err == nil {
		t.Fatal("expected error")
	}
	if s.State() != Running {
		t.Fatalf("state=%v want running", s.State())
	}
}

func TestListenerSeesTransitions(t *testing.T) {
	var seen []string
	g := &fakeGame{title: "Snake"}
	s := New(g, nil, WithListener(ListenerFunc(func(from, to State) {
		seen = append(seen, from.String()+">"+to.String())
	})))
	s.Begin()
	s.TogglePause()
	s.TogglePause()
	s.Finish(context.Background(), Over)
	want := "[none>running running>paused paused>running running>over]"
	if got := fmt.Sprint(seen); got != want {
		t.Fatalf("transitions=%s want %s", got, want)
	}
}

func TestCloseClosesGame(t *testing.T) {
	s, g, _, _ := newSession(t)
	s.Close()
	if !g.closed {
		t.Fatal("CloseGame not called")
	}
}
