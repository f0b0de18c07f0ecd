// internal/games/registry.go
//
// Game selection by title.
// Responsibilities:
//   - Deps: the collaborators every variant is built with (recorder, sink,
//     scheduler, seed, clock). Nothing is discovered at runtime.
//   - New: build the variant for a title from Settings.
//   - Lookup: static per-title facts (ranking direction, score format) for
//     listing scores without a live game.

package games

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/arcade/internal/minesweeper"
	"github.com/robalobadob/arcade/internal/scores"
	"github.com/robalobadob/arcade/internal/session"
	"github.com/robalobadob/arcade/internal/snake"
)

const (
	TitleMinesweeper = "Minesweeper"
	TitleSnake       = "Snake"
)

// ErrUnknownTitle is returned for a title no variant answers to.
var ErrUnknownTitle = errors.New("unknown game title")

// Variant is what the host needs from any game.
type Variant interface {
	Title() string
	NewGame() error
	TogglePause() session.State
	State() session.State
	Snapshot() Snapshot
	Close()
}

var (
	_ session.Game        = (*Minesweeper)(nil)
	_ session.ScoreParser = (*Minesweeper)(nil)
	_ session.Game        = (*Snake)(nil)
	_ session.Pauser      = (*Snake)(nil)
	_ session.ScoreParser = (*Snake)(nil)
)

// Deps are the collaborators a variant is built with. Zero values fall back
// to: no recording, no events, real timers, clock-seeded randomness, time.Now.
type Deps struct {
	Recorder  scores.Recorder
	Publisher Publisher
	Scheduler session.Scheduler
	Seed      int64
	Clock     func() time.Time
	Watch     session.Listener // optional, told of every transition after the publisher
}

func (d Deps) publisher() Publisher {
	if d.Publisher == nil {
		return nopPublisher{}
	}
	return d.Publisher
}

func (d Deps) scheduler() session.Scheduler {
	if d.Scheduler == nil {
		return session.TimerScheduler{}
	}
	return d.Scheduler
}

func (d Deps) sessionOptions(title string, pub Publisher) []session.Option {
	opts := []session.Option{session.WithListener(stateSink{title: title, pub: pub, next: d.Watch})}
	if d.Clock != nil {
		opts = append(opts, session.WithClock(d.Clock))
	}
	return opts
}

// Settings carries the engine configuration for every title.
type Settings struct {
	Minesweeper minesweeper.Config
	Snake       snake.Config
}

// DefaultSettings returns each engine's default config.
func DefaultSettings() Settings {
	return Settings{Minesweeper: minesweeper.DefaultConfig(), Snake: snake.DefaultConfig()}
}

// Validate checks every engine config.
func (s Settings) Validate() error {
	if err := s.Minesweeper.Validate(); err != nil {
		return fmt.Errorf("minesweeper: %w", err)
	}
	if err := s.Snake.Validate(); err != nil {
		return fmt.Errorf("snake: %w", err)
	}
	return nil
}

// Info is the static description of a title.
type Info struct {
	Title          string
	SortDescending bool
	FormatScore    func(raw float64) string
	ParseScore     func(s string) (float64, error)
}

var infos = []Info{
	{Title: TitleMinesweeper, SortDescending: false, FormatScore: FormatClock, ParseScore: ParseClock},
	{Title: TitleSnake, SortDescending: true, FormatScore: FormatPoints, ParseScore: ParsePoints},
}

// Titles lists the playable titles.
func Titles() []string {
	out := make([]string, len(infos))
	for i, in := range infos {
		out[i] = in.Title
	}
	return out
}

// Lookup resolves a title case-insensitively.
func Lookup(title string) (Info, error) {
	for _, in := range infos {
		if strings.EqualFold(in.Title, strings.TrimSpace(title)) {
			return in, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %q", ErrUnknownTitle, title)
}

// New builds and starts a fresh game for title.
func New(title string, set Settings, deps Deps) (Variant, error) {
	in, err := Lookup(title)
	if err != nil {
		return nil, err
	}
	switch in.Title {
	case TitleMinesweeper:
		return NewMinesweeper(set.Minesweeper, deps)
	default:
		return NewSnake(set.Snake, deps)
	}
}
