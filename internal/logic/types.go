// Package logic contains the pure button/slider state machine for the BLE panel.
// This package has NO external dependencies (no GPIO, BLE, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// ReportMode selects what the button register carries to the peer.
type ReportMode string

const (
	// ReportToggle reports a latch that flips once per accepted press.
	ReportToggle ReportMode = "toggle"
	// ReportLevel reports the live debounced button level.
	ReportLevel ReportMode = "level"
)

// ParseReportMode validates a report mode string.
func ParseReportMode(s string) (ReportMode, error) {
	switch ReportMode(s) {
	case ReportToggle, ReportLevel:
		return ReportMode(s), nil
	}
	return "", fmt.Errorf("unknown report mode %q (want %q or %q)", s, ReportToggle, ReportLevel)
}

// Config holds the timing constants of the control loop.
type Config struct {
	Debounce       time.Duration // raw level must hold longer than this
	NotifyInterval time.Duration // minimum spacing between notifier evaluations
	PulseWidth     time.Duration // link LED activity pulse length
	Report         ReportMode
}

// DefaultConfig matches the reference board: 10ms debounce, 100ms notify cadence.
func DefaultConfig() Config {
	return Config{
		Debounce:       10 * time.Millisecond,
		NotifyInterval: 100 * time.Millisecond,
		PulseWidth:     10 * time.Millisecond,
		Report:         ReportToggle,
	}
}

// Transition is the result of one debouncer sample.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionPressed
	TransitionReleased
)

func (t Transition) String() string {
	switch t {
	case TransitionPressed:
		return "PRESSED"
	case TransitionReleased:
		return "RELEASED"
	}
	return "NONE"
}

// EventType identifies a device event published as telemetry.
type EventType string

const (
	EventButtonPressed    EventType = "BUTTON_PRESSED"
	EventButtonReleased   EventType = "BUTTON_RELEASED"
	EventButtonNotified   EventType = "BUTTON_NOTIFIED"
	EventSliderSet        EventType = "SLIDER_SET"
	EventPeerConnected    EventType = "PEER_CONNECTED"
	EventPeerDisconnected EventType = "PEER_DISCONNECTED"
)

// Event is a state change worth telling the outside world about.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Value carries the button value for BUTTON_* events and the
	// slider intensity for SLIDER_SET.
	Value int
	// Duty is the applied PWM duty (SLIDER_SET only).
	Duty int
}

// Input represents a single control-loop sample.
type Input struct {
	Pressed bool // raw button level, true = pressed
	Time    time.Time
}

// Frame is what the control loop must do after a tick.
type Frame struct {
	// Fired is true when the notifier cadence elapsed on this tick.
	Fired bool
	// Heartbeat, Mirror and Link are the indicator levels to drive.
	// Heartbeat and Mirror are only meaningful when Fired is true.
	Heartbeat bool
	Mirror    bool
	Link      bool
	// Notify is set when Value must be pushed to the peer.
	Notify bool
	Value  uint8
	Events []Event
}

// SliderUpdate describes the effect of a slider write.
type SliderUpdate struct {
	Intensity uint8 // as written by the peer
	Duty      uint8 // applied PWM duty, 0-255
	Clamped   bool  // Intensity was above 100
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Presses       int
	Releases      int
	Notifications int
	SliderWrites  int
	Connects      int
	Disconnects   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

// State is a read-only view of the device scalars.
type State struct {
	Connected    bool
	Stable       bool
	Toggle       bool
	LastNotified int // -1 when nothing was sent since the last connect
	Intensity    uint8
	Duty         uint8
}
