package session

// Game is the capability set every playable variant exposes to its Session.
type Game interface {
	// Title names the game; scores are kept per title.
	Title() string

	// StartNewGame resets the engine for a fresh round.
	StartNewGame() error

	// CloseGame stops anything the game runs in the background.
	CloseGame()

	// RawScore is the numeric score recorded on Win or Over.
	RawScore() float64

	// FormatScore renders a raw score for display.
	FormatScore(raw float64) string

	// SortDescending is true when a higher raw score ranks first.
	SortDescending() bool
}

// Pauser is implemented by games that need to react to pause and resume,
// e.g. by suspending a tick scheduler.
type Pauser interface {
	OnPause()
	OnResume()
}

// ScoreParser is implemented by games whose FormatScore has an inverse.
type ScoreParser interface {
	ParseScore(s string) (float64, error)
}

// Listener is notified of every state transition.
type Listener interface {
	StateChanged(from, to State)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(from, to State)

func (f ListenerFunc) StateChanged(from, to State) { f(from, to) }
