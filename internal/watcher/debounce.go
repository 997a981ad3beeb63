package watcher

import "time"

// Debouncer coalesces bursts of triggers into one tick delivered delay after
// the last trigger. It is not safe for concurrent use; the event loop owns it.
type Debouncer struct {
	delay   time.Duration
	timer   *time.Timer
	pending bool
}

// NewDebouncer creates an idle Debouncer.
func NewDebouncer(delay time.Duration) *Debouncer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &Debouncer{delay: delay, timer: t}
}

// Trigger (re)starts the delay.
func (d *Debouncer) Trigger() {
	d.timer.Reset(d.delay)
	d.pending = true
}

// C delivers a tick once the delay has elapsed without a new trigger.
// The receiver must call Fired after receiving.
func (d *Debouncer) C() <-chan time.Time {
	return d.timer.C
}

// Fired marks the pending tick as consumed.
func (d *Debouncer) Fired() {
	d.pending = false
}

// Pending reports whether a tick is scheduled.
func (d *Debouncer) Pending() bool {
	return d.pending
}

// Stop cancels a scheduled tick.
func (d *Debouncer) Stop() {
	d.timer.Stop()
	d.pending = false
}

// Delay returns the configured delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
