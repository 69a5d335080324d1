package logic

import "time"

// Debouncer filters electrical bounce from a single digital input.
// A raw level is accepted once it has held for longer than the threshold.
type Debouncer struct {
	threshold   time.Duration
	lastReading bool
	lastChange  time.Time
	stable      bool
	toggle      bool
}

// NewDebouncer creates a debouncer whose stability window starts at now.
// The input is assumed released at startup.
func NewDebouncer(threshold time.Duration, now time.Time) *Debouncer {
	return &Debouncer{
		threshold:  threshold,
		lastChange: now,
	}
}

// Sample feeds one raw reading and reports whether the stable level changed.
func (d *Debouncer) Sample(reading bool, now time.Time) Transition {
	// Every edge, bounce included, restarts the window.
	if reading != d.lastReading {
		d.lastChange = now
	}
	d.lastReading = reading

	if now.Sub(d.lastChange) <= d.threshold || reading == d.stable {
		return TransitionNone
	}

	d.stable = reading
	if d.stable {
		d.toggle = !d.toggle
		return TransitionPressed
	}
	return TransitionReleased
}

// Stable returns the debounced level.
func (d *Debouncer) Stable() bool {
	return d.stable
}

// Toggle returns the press-parity latch.
func (d *Debouncer) Toggle() bool {
	return d.toggle
}

// ResetToggle puts the latch back to its idle (off) state.
func (d *Debouncer) ResetToggle() {
	d.toggle = false
}
