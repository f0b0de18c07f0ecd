package snake

import (
	"errors"
	"fmt"

	"github.com/robalobadob/arcade/internal/grid"
)

// ErrInvalidConfig is returned when a game cannot be set up from the given config.
var ErrInvalidConfig = errors.New("invalid snake config")

// Config holds the board and movement parameters.
type Config struct {
	Width        int
	Height       int
	Body         []grid.Coord // tail first, head last
	Direction    grid.Coord
	Speed        float64 // ticks per second at start
	Acceleration float64 // added to Speed on every point eaten
	Wrap         bool
}

// DefaultConfig returns the classic 16×16 layout with a three-cell snake heading east.
func DefaultConfig() Config {
	return Config{
		Width:        16,
		Height:       16,
		Body:         []grid.Coord{{X: 1, Y: 8}, {X: 2, Y: 8}, {X: 3, Y: 8}},
		Direction:    Right,
		Speed:        5,
		Acceleration: 0.02,
	}
}

// Validate rejects configs that cannot start a game.
func (c Config) Validate() error {
	g, err := grid.New(c.Width, c.Height)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(c.Body) < 2 {
		return fmt.Errorf("%w: body needs at least 2 cells, got %d", ErrInvalidConfig, len(c.Body))
	}
	seen := make(map[grid.Coord]struct{}, len(c.Body))
	for _, p := range c.Body {
		if !g.Contains(p) {
			return fmt.Errorf("%w: body cell %v outside %dx%d", ErrInvalidConfig, p, c.Width, c.Height)
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: duplicate body cell %v", ErrInvalidConfig, p)
		}
		seen[p] = struct{}{}
	}
	if !isUnit(c.Direction) {
		return fmt.Errorf("%w: direction %v is not a unit step", ErrInvalidConfig, c.Direction)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive", ErrInvalidConfig)
	}
	if c.Acceleration < 0 {
		return fmt.Errorf("%w: acceleration must not be negative", ErrInvalidConfig)
	}
	return nil
}
