// Package watcher reloads plans when files in the plans directory change.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is used when no window is configured
const DefaultDebounce = 300 * time.Millisecond

// Debouncer collapses a burst of file events into one reload. Editors write a
// plan through several create/rename/write events; only the last one fires.
type Debouncer struct {
	window time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	seq    uint64
}

// NewDebouncer returns a debouncer with the given window. Zero or negative
// means DefaultDebounce.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{window: window}
}

// Trigger (re)arms the timer. fn runs once the window passes without another
// Trigger.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// A stale timer may fire after Stop lost the race
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops any pending call
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Window returns the debounce window
func (d *Debouncer) Window() time.Duration {
	return d.window
}
