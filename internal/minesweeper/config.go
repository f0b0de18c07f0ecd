package minesweeper

import (
	"errors"
	"fmt"

	"github.com/robalobadob/arcade/internal/grid"
)

// ErrInvalidConfig is returned when a game cannot be set up from the given config.
var ErrInvalidConfig = errors.New("invalid minesweeper config")

// MaxSide bounds each board dimension. The reveal cascade recurses once per
// opened cell, so its depth grows with the board's area.
const MaxSide = 256

// Config holds the board parameters.
type Config struct {
	Width   int
	Height  int
	Density float64 // per-cell bomb probability outside the safe zone, in [0,1)
}

// DefaultConfig returns a 10×10 board with a 0.2 bomb density.
func DefaultConfig() Config {
	return Config{Width: 10, Height: 10, Density: 0.2}
}

// Validate rejects configs that cannot produce a playable board.
func (c Config) Validate() error {
	if _, err := grid.New(c.Width, c.Height); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Width > MaxSide || c.Height > MaxSide {
		return fmt.Errorf("%w: board %dx%d exceeds %dx%d", ErrInvalidConfig, c.Width, c.Height, MaxSide, MaxSide)
	}
	if c.Density < 0 || c.Density >= 1 {
		return fmt.Errorf("%w: density %v outside [0,1)", ErrInvalidConfig, c.Density)
	}
	return nil
}
