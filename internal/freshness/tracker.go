// Package freshness tracks when the table contents last changed, so the UI
// can render an "updated Ns ago" indicator.
package freshness

import (
	"sync"
	"time"
)

// Tracker records the wall-clock instant of the most recent data mutation.
// Touch is called on snapshot loads and applied price updates; query-state
// changes never touch it.
type Tracker struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewTracker creates a tracker with no recorded mutation.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// NewTrackerWithClock creates a tracker using the given clock. Test hook.
func NewTrackerWithClock(now func() time.Time) *Tracker {
	return &Tracker{now: now}
}

// Touch records that the data changed now.
func (t *Tracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.now()
}

// Seconds returns whole seconds elapsed since the last mutation. The second
// return is false when nothing has been recorded yet.
func (t *Tracker) Seconds() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last.IsZero() {
		return 0, false
	}
	secs := int(t.now().Sub(t.last) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return secs, true
}
