package logic

import "time"

// Device holds every mutable scalar of the panel. It is owned by the control
// loop and is not safe for concurrent use: BLE callbacks must be funneled to
// the loop goroutine before touching it.
type Device struct {
	cfg       Config
	debouncer *Debouncer
	notifier  *Notifier
	link      *Pulse
	connected bool
	intensity uint8
	duty      uint8

	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewDevice creates a disconnected device in its power-on state.
// The startTime is used for calculating uptime in heartbeat events.
func NewDevice(cfg Config, startTime time.Time) *Device {
	if cfg.Report == "" {
		cfg.Report = ReportToggle
	}
	return &Device{
		cfg:           cfg,
		debouncer:     NewDebouncer(cfg.Debounce, startTime),
		notifier:      NewNotifier(cfg.NotifyInterval),
		link:          NewPulse(cfg.PulseWidth),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Tick runs the debouncer and then the notifier for one control-loop iteration.
func (d *Device) Tick(in Input) Frame {
	var f Frame

	switch d.debouncer.Sample(in.Pressed, in.Time) {
	case TransitionPressed:
		d.eventCounts.Presses++
		f.Events = append(f.Events, Event{Timestamp: in.Time, Type: EventButtonPressed, Value: 1})
	case TransitionReleased:
		d.eventCounts.Releases++
		f.Events = append(f.Events, Event{Timestamp: in.Time, Type: EventButtonReleased, Value: 0})
	}

	dec := d.notifier.Tick(in.Time, d.connected, d.reportable())
	if dec.Idle {
		return f
	}

	f.Link = d.link.Active(in.Time)
	f.Fired = dec.Fired
	f.Heartbeat = dec.Heartbeat
	f.Mirror = dec.Mirror
	f.Value = dec.Value
	if dec.Send {
		f.Notify = true
		d.eventCounts.Notifications++
		f.Events = append(f.Events, Event{Timestamp: in.Time, Type: EventButtonNotified, Value: int(dec.Value)})
	}
	return f
}

// reportable computes the button register value from the configured source.
func (d *Device) reportable() uint8 {
	v := d.debouncer.Toggle()
	if d.cfg.Report == ReportLevel {
		v = d.debouncer.Stable()
	}
	if v {
		return 1
	}
	return 0
}

// Connect handles a peer connection. The toggle latch and the last sent value
// are reset so the first fire after connecting always pushes a value.
func (d *Device) Connect(now time.Time) []Event {
	d.connected = true
	d.debouncer.ResetToggle()
	d.notifier.Reset()
	d.link.Trigger(now)
	d.eventCounts.Connects++
	return []Event{{Timestamp: now, Type: EventPeerConnected}}
}

// Disconnect handles a peer disconnection. The next tick idles the indicators.
func (d *Device) Disconnect(now time.Time) []Event {
	d.connected = false
	d.link.Cancel()
	d.eventCounts.Disconnects++
	return []Event{{Timestamp: now, Type: EventPeerDisconnected}}
}

// WriteSlider applies a slider payload written by the peer. Only the first
// byte is used; an empty payload is ignored and ok is false.
func (d *Device) WriteSlider(payload []byte, now time.Time) (upd SliderUpdate, events []Event, ok bool) {
	if len(payload) == 0 {
		return SliderUpdate{}, nil, false
	}

	duty, clamped := SliderDuty(payload[0])
	d.intensity = payload[0]
	d.duty = duty
	d.link.Trigger(now)
	d.eventCounts.SliderWrites++

	upd = SliderUpdate{Intensity: payload[0], Duty: duty, Clamped: clamped}
	events = []Event{{Timestamp: now, Type: EventSliderSet, Value: int(payload[0]), Duty: int(duty)}}
	return upd, events, true
}

// Connected reports whether a peer is connected.
func (d *Device) Connected() bool {
	return d.connected
}

// CurrentState returns a copy of the device scalars.
func (d *Device) CurrentState() State {
	return State{
		Connected:    d.connected,
		Stable:       d.debouncer.Stable(),
		Toggle:       d.debouncer.Toggle(),
		LastNotified: d.notifier.LastSent(),
		Intensity:    d.intensity,
		Duty:         d.duty,
	}
}

// EventCountsSnapshot returns a copy of the event counters.
func (d *Device) EventCountsSnapshot() EventCounts {
	return d.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Device) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.eventCounts,
	}
}
