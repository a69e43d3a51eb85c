// Package throttle coalesces bursts of triggers into at most one action per
// fixed delay. Unlike a debounce, a pending timer is never pushed back: the
// first trigger arms it and every trigger until it fires joins that cycle.
package throttle

import "time"

// DefaultDelay is ~15 runs per second.
const DefaultDelay = 66 * time.Millisecond

// Throttle is owned by a single loop goroutine and is not safe for
// concurrent use. The owner selects on C() and calls Fired when it receives.
type Throttle struct {
	delay   time.Duration
	timer   *time.Timer
	timerCh <-chan time.Time
}

// New creates an idle Throttle. A non-positive delay uses DefaultDelay.
func New(delay time.Duration) *Throttle {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Throttle{delay: delay}
}

// Delay returns the configured delay.
func (t *Throttle) Delay() time.Duration { return t.delay }

// Arm moves Idle → Pending. Returns false if a timer is already pending,
// in which case the trigger is coalesced into the upcoming run.
func (t *Throttle) Arm() bool {
	if t.timer != nil {
		return false
	}
	t.timer = time.NewTimer(t.delay)
	t.timerCh = t.timer.C
	return true
}

// Pending reports whether a timer is outstanding.
func (t *Throttle) Pending() bool {
	return t.timer != nil
}

// C returns the channel that fires when the pending timer expires. It is nil
// while idle, so a select case on it blocks forever.
func (t *Throttle) C() <-chan time.Time {
	return t.timerCh
}

// Fired moves Pending → Idle after the owner received from C.
func (t *Throttle) Fired() {
	t.timer = nil
	t.timerCh = nil
}

// Stop cancels any pending timer and returns to Idle.
func (t *Throttle) Stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
		t.timerCh = nil
	}
}
