// Package debounce provides a cancellable scheduled task that coalesces
// bursts of triggers into a single run after a quiet period.
package debounce

import (
	"sync"
	"sync/atomic"
	"time"
)

// Debouncer runs a callback once no new Trigger has arrived for delay.
//
// Each Trigger cancels the pending run and schedules a new one, so the
// delay restarts rather than accumulates. The callback is never run
// concurrently with itself. All methods are safe for concurrent use.
type Debouncer struct {
	mu       sync.Mutex
	runMu    sync.Mutex
	delay    time.Duration
	timer    *time.Timer
	pending  bool
	seq      uint64 // detects stale timer callbacks
	stopped  atomic.Bool
	callback func()
}

// New creates a debouncer that calls callback after delay of quiet.
func New(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
	}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}

// SetDelay changes the quiet period used by subsequent triggers.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Trigger schedules the callback, replacing any pending schedule.
// It does nothing after Stop.
func (d *Debouncer) Trigger() {
	if d.stopped.Load() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	current := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if !d.pending || d.seq != current || d.callback == nil {
			d.mu.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		d.mu.Unlock()
		d.run()
	})
}

// Flush runs the callback now if a run is pending and cancels the
// scheduled one. Reports whether the callback ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if !d.pending || d.callback == nil {
		d.mu.Unlock()
		return false
	}
	d.pending = false
	d.mu.Unlock()

	d.run()
	return true
}

// Cancel drops any pending run.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// Stop cancels any pending run and waits for a running callback to
// return. The callback never runs after Stop returns. Stop must not be
// called from inside the callback.
func (d *Debouncer) Stop() {
	d.stopped.Store(true)
	d.Cancel()
	d.runMu.Lock()
	d.runMu.Unlock()
}

// IsPending reports whether a run is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) run() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if d.stopped.Load() {
		return
	}
	d.callback()
}
