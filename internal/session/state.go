// internal/session/state.go
//
// Game state machine shared by every variant.
//
//	None ──Begin──▶ Running ──Finish──▶ Win | Lose | Over
//	  │               ▲  │
//	  └──TogglePause──┼──┘
//	                  ▼
//	               Paused ──TogglePause──▶ previous state
//
// Win, Lose and Over are terminal until the next NewGame.

package session

import (
	"fmt"
	"strings"
)

// State is the lifecycle position of a game.
type State uint8

const (
	None State = iota
	Running
	Paused
	Win
	Lose
	Over
)

var stateNames = [...]string{"none", "running", "paused", "win", "lose", "over"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Terminal reports whether s ends the game.
func (s State) Terminal() bool { return s == Win || s == Lose || s == Over }

// ParseState is the inverse of String (case-insensitive).
func ParseState(v string) (State, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, n := range stateNames {
		if n == v {
			return State(i), nil
		}
	}
	return None, fmt.Errorf("unknown game state %q", v)
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
