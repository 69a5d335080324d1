package logic

import "time"

// Pulse is a non-blocking one-shot indicator pulse evaluated on every tick.
type Pulse struct {
	width time.Duration
	until time.Time
}

// NewPulse creates an inactive pulse of the given width.
func NewPulse(width time.Duration) *Pulse {
	return &Pulse{width: width}
}

// Trigger starts (or restarts) the pulse at now.
func (p *Pulse) Trigger(now time.Time) {
	p.until = now.Add(p.width)
}

// Active reports whether the pulse is still on at now.
func (p *Pulse) Active(now time.Time) bool {
	return now.Before(p.until)
}

// Cancel switches the pulse off immediately.
func (p *Pulse) Cancel() {
	p.until = time.Time{}
}
