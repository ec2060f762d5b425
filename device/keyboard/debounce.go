package keyboard

import (
	"sync"
	"time"
)

// Debouncer runs fn once after delay has elapsed since the most recent
// Trigger. Each Trigger within the window restarts the wait.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates an idle debouncer. A non-positive delay falls back to
// CapsLockReleaseDelay.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = CapsLockReleaseDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger cancels any pending call and schedules a new one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Stop cancels a pending call. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A Trigger or Stop that raced with the timer already superseded us.
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}
