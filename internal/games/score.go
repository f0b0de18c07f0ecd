package games

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrBadScore is returned when a formatted score cannot be parsed back.
var ErrBadScore = errors.New("malformed score")

// FormatClock renders seconds as "mm:ss", flooring both parts. Minutes are
// not capped at 59.
func FormatClock(raw float64) string {
	if raw < 0 || math.IsNaN(raw) {
		raw = 0
	}
	total := int(math.Floor(raw))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseClock is the inverse of FormatClock, exact to the second.
func ParseClock(s string) (float64, error) {
	mm, ss, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBadScore, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("%w: minutes in %q", ErrBadScore, s)
	}
	sec, err := strconv.Atoi(ss)
	if err != nil || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("%w: seconds in %q", ErrBadScore, s)
	}
	return float64(m*60 + sec), nil
}

// FormatDuration is FormatClock for a time.Duration.
func FormatDuration(d time.Duration) string { return FormatClock(d.Seconds()) }

// FormatPoints renders a point count.
func FormatPoints(raw float64) string { return strconv.FormatInt(int64(raw), 10) }

// ParsePoints is the inverse of FormatPoints.
func ParsePoints(s string) (float64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadScore, s)
	}
	return float64(n), nil
}
