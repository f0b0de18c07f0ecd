// internal/scores/scores.go
//
// Score recorder contract shared by every storage backend.
// Responsibilities:
//   - Entry: one finished game (title, raw score, timestamp).
//   - Recorder: append an entry, list a title's history pre-sorted.
//   - Ranked: the "1. 03:12 - 10/17/26 14:05:09" listing used by the host.
//
// Notes:
//   - Ordering is by raw score (ascending or descending per game), ties broken
//     by the earlier timestamp. Every backend returns the same order.

package scores

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyTitle is returned when an entry carries no game title.
var ErrEmptyTitle = errors.New("scores: empty title")

// TimeLayout is the timestamp layout used in ranked listings.
const TimeLayout = "01/02/06 15:04:05"

// Entry is one recorded score.
type Entry struct {
	Title string    `json:"title"`
	Raw   float64   `json:"raw"`
	At    time.Time `json:"at"`
}

// Recorder persists finished-game scores.
type Recorder interface {
	// Record appends e to the history of e.Title.
	Record(ctx context.Context, e Entry) error

	// History returns every entry for title, best first according to
	// descending. An unknown title yields an empty slice, not an error.
	History(ctx context.Context, title string, descending bool) ([]Entry, error)
}

// Sort orders es in place the way History must return them.
func Sort(es []Entry, descending bool) {
	slices.SortStableFunc(es, func(a, b Entry) int {
		c := cmp.Compare(a.Raw, b.Raw)
		if descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return a.At.Compare(b.At)
	})
}

// Ranked renders es as numbered lines, formatting each raw score with format.
func Ranked(es []Entry, format func(float64) string) []string {
	out := make([]string, 0, len(es))
	for i, e := range es {
		out = append(out, fmt.Sprintf("%d. %s - %s", i+1, format(e.Raw), e.At.Format(TimeLayout)))
	}
	return out
}

func validate(e Entry) error {
	if e.Title == "" {
		return ErrEmptyTitle
	}
	return nil
}

// stampKey makes a unique key for a score recorded at at. Backends that key
// entries by time use it so two scores from the same instant both survive.
func stampKey(at time.Time) string {
	return at.Format(time.RFC3339Nano) + "|" + uuid.NewString()
}

// parseStamp reads the time back out of a stampKey. Keys written without the
// suffix are accepted too.
func parseStamp(key string) (time.Time, error) {
	ts, _, _ := strings.Cut(key, "|")
	return time.Parse(time.RFC3339Nano, ts)
}
