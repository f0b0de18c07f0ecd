// internal/session/ticker.go
//
// Fixed-interval tick scheduler with an explicit handle.
// Responsibilities:
//   - Call fn after each interval; fn returns the next interval and whether
//     to keep going.
//   - Arm the next tick only after fn has returned, so ticks never overlap.
//   - Pause, Resume and Cancel through the returned handle.
//
// Notes:
//   - Each arm bumps a generation counter. A timer that fires after Pause or
//     Cancel sees a stale generation and does nothing.
//   - Resume waits a full interval before the next tick.

package session

import (
	"sync"
	"time"
)

// TickFunc runs one tick and returns the wait before the next one.
// Returning ok=false stops the ticker.
type TickFunc func() (next time.Duration, ok bool)

// Handle controls a running tick loop.
type Handle interface {
	Pause()
	Resume()
	Cancel()
	Running() bool
}

// Scheduler starts tick loops. Variants take one so tests can drive ticks by hand.
type Scheduler interface {
	Start(interval time.Duration, fn TickFunc) Handle
}

// TimerScheduler runs ticks on time.AfterFunc timers.
type TimerScheduler struct{}

func (TimerScheduler) Start(interval time.Duration, fn TickFunc) Handle {
	return StartTicker(interval, fn)
}

// Ticker is the timer-backed Handle.
type Ticker struct {
	mu        sync.Mutex
	fn        TickFunc
	interval  time.Duration
	timer     *time.Timer
	gen       uint64
	paused    bool
	cancelled bool

	tickMu sync.Mutex // held while fn runs
}

// StartTicker arms the first tick after interval.
func StartTicker(interval time.Duration, fn TickFunc) *Ticker {
	t := &Ticker{fn: fn, interval: interval}
	t.mu.Lock()
	t.armLocked()
	t.mu.Unlock()
	return t
}

func (t *Ticker) armLocked() {
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(t.interval, func() { t.fire(gen) })
}

func (t *Ticker) stopLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Ticker) fire(gen uint64) {
	t.tickMu.Lock()
	defer t.tickMu.Unlock()

	t.mu.Lock()
	if gen != t.gen || t.paused || t.cancelled {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	next, ok := t.fn()

	t.mu.Lock()
	defer t.mu.Unlock()
	if !ok {
		t.cancelled = true
		t.stopLocked()
		return
	}
	// Paused, cancelled or re-armed while fn ran.
	if gen != t.gen || t.paused || t.cancelled {
		return
	}
	if next > 0 {
		t.interval = next
	}
	t.armLocked()
}

// Pause stops ticking until Resume. A tick already running completes.
func (t *Ticker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused || t.cancelled {
		return
	}
	t.paused = true
	t.stopLocked()
}

// Resume restarts a paused ticker.
func (t *Ticker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused || t.cancelled {
		return
	}
	t.paused = false
	t.armLocked()
}

// Cancel stops the ticker for good.
func (t *Ticker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
	t.stopLocked()
}

// Running reports whether a tick is scheduled or in flight.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.paused && !t.cancelled
}
