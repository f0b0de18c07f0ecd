// internal/games/events.go
//
// Presentation-sink events. Engines notify their listener; the variant turns
// each notification into an Event and hands it to a Publisher. Nothing here
// reads presentation state back.

package games

import (
	"github.com/robalobadob/arcade/internal/grid"
	"github.com/robalobadob/arcade/internal/metrics"
	"github.com/robalobadob/arcade/internal/session"
)

// Event types.
const (
	EventCell      = "cell"      // Minesweeper cell changed
	EventRemaining = "remaining" // bomb counter label changed
	EventOccupied  = "occupied"  // snake body entered a cell
	EventVacated   = "vacated"   // snake body left a cell
	EventPoint     = "point"     // new point placed
	EventScore     = "score"     // snake score changed
	EventState     = "state"     // session state transition
	EventCollision = "collision" // snake hit a wall or itself
)

// Event is one presentation update.
type Event struct {
	Type  string      `json:"type"`
	Game  string      `json:"game"`
	At    *grid.Coord `json:"at,omitempty"`
	Cell  *CellView   `json:"cell,omitempty"`
	Value int         `json:"value"`
	Label string      `json:"label,omitempty"`
	State string      `json:"state,omitempty"`
	Cause string      `json:"cause,omitempty"`
}

// Publisher receives events. Publish is called with the variant's lock held
// and must not block.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

func at(c grid.Coord) *grid.Coord { return &c }

// stateSink publishes session transitions and counts finished games.
type stateSink struct {
	title string
	pub   Publisher
	next  session.Listener
}

func (s stateSink) StateChanged(from, to session.State) {
	if to.Terminal() {
		metrics.Outcomes.WithLabelValues(s.title, to.String()).Inc()
	}
	s.pub.Publish(Event{Type: EventState, Game: s.title, State: to.String(), Label: from.String()})
	if s.next != nil {
		s.next.StateChanged(from, to)
	}
}
