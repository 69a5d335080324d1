package logic

import "time"

const noValue = -1

// NotifyDecision is the outcome of one notifier evaluation.
type NotifyDecision struct {
	Idle      bool // peer disconnected; indicators go to their off state
	Fired     bool // cadence elapsed on this tick
	Heartbeat bool
	Mirror    bool
	Send      bool // value differs from the last one sent
	Value     uint8
}

// Notifier rate-limits button reports and suppresses unchanged values.
type Notifier struct {
	interval  time.Duration
	deadline  time.Time
	heartbeat bool
	lastSent  int
}

// NewNotifier creates a notifier that fires on its first connected tick.
func NewNotifier(interval time.Duration) *Notifier {
	return &Notifier{
		interval: interval,
		lastSent: noValue,
	}
}

// Tick evaluates the notifier for the current control-loop iteration.
func (n *Notifier) Tick(now time.Time, connected bool, value uint8) NotifyDecision {
	if !connected {
		return NotifyDecision{Idle: true}
	}
	if now.Before(n.deadline) {
		return NotifyDecision{}
	}

	// Re-arm from now, not from the old deadline, so a stalled loop
	// cannot fire several times in a row to catch up.
	n.deadline = now.Add(n.interval)
	n.heartbeat = !n.heartbeat

	d := NotifyDecision{
		Fired:     true,
		Heartbeat: n.heartbeat,
		Mirror:    value != 0,
		Value:     value,
	}
	if int(value) != n.lastSent {
		n.lastSent = int(value)
		d.Send = true
	}
	return d
}

// Reset forgets the last sent value so the next fire always sends.
func (n *Notifier) Reset() {
	n.lastSent = noValue
}

// LastSent returns the last value pushed to the peer, or -1.
func (n *Notifier) LastSent() int {
	return n.lastSent
}
