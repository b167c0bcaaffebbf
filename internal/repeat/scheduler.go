// Package repeat provides per-button hold-to-repeat timing.
package repeat

import (
	"sync"
	"time"

	"github.com/frudas24/padglass/internal/gamepad"
)

// entry is one live delay+interval pair for a held button.
type entry struct {
	delay  *time.Timer
	ticker *time.Ticker
	stop   chan struct{}
}

// Scheduler runs an initial one-shot delay followed by a recurring interval
// per held directional button. At most one live pair exists per button.
type Scheduler struct {
	mu       sync.Mutex
	delay    time.Duration
	interval time.Duration
	entries  map[gamepad.Buttons]*entry
}

// NewScheduler returns a scheduler with the given delay and interval.
func NewScheduler(delay, interval time.Duration) *Scheduler {
	return &Scheduler{
		delay:    delay,
		interval: interval,
		entries:  make(map[gamepad.Buttons]*entry),
	}
}

// Start begins repeating fn for btn: once when the delay elapses, then once
// per interval. A repeat already running for btn is torn down and restarted.
func (s *Scheduler) Start(btn gamepad.Buttons, fn func()) {
	s.mu.Lock()
	s.clearLocked(btn)

	e := &entry{stop: make(chan struct{})}
	s.entries[btn] = e
	e.delay = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.entries[btn] != e {
			s.mu.Unlock()
			return
		}
		e.ticker = time.NewTicker(s.interval)
		s.mu.Unlock()

		fn()
		for {
			select {
			case <-e.ticker.C:
				fn()
			case <-e.stop:
				return
			}
		}
	})
	s.mu.Unlock()
}

// Clear cancels any repeat running for btn. No-op when none is running;
// clearing before the delay elapses means fn never fires.
func (s *Scheduler) Clear(btn gamepad.Buttons) {
	s.mu.Lock()
	s.clearLocked(btn)
	s.mu.Unlock()
}

// ClearAll cancels every outstanding repeat. Required on capture-mode changes
// and on shutdown so no stale callback fires into an inactive context.
func (s *Scheduler) ClearAll() {
	s.mu.Lock()
	for btn := range s.entries {
		s.clearLocked(btn)
	}
	s.mu.Unlock()
}

// Active reports whether a repeat is live for btn.
func (s *Scheduler) Active(btn gamepad.Buttons) bool {
	s.mu.Lock()
	_, ok := s.entries[btn]
	s.mu.Unlock()
	return ok
}

// clearLocked tears down the entry for btn. Caller holds the mutex.
func (s *Scheduler) clearLocked(btn gamepad.Buttons) {
	e, ok := s.entries[btn]
	if !ok {
		return
	}
	delete(s.entries, btn)
	e.delay.Stop()
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stop)
}
