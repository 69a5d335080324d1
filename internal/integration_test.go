package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/ble-slider/internal/ble"
	"github.com/sweeney/ble-slider/internal/gpio"
	"github.com/sweeney/ble-slider/internal/logic"
	"github.com/sweeney/ble-slider/internal/mqtt"
	"github.com/sweeney/ble-slider/internal/status"
)

// panel wires the fakes together the same way the daemon does, with the
// control loop unrolled so tests can step it one millisecond at a time.
type panel struct {
	t          *testing.T
	start      time.Time
	now        time.Time
	reader     *gpio.FakeReader
	indicators *gpio.FakeIndicators
	peripheral *ble.FakePeripheral
	queue      *ble.Queue
	publisher  *mqtt.FakePublisher
	device     *logic.Device
}

func newPanel(t *testing.T, cfg logic.Config, samples []bool) *panel {
	t.Helper()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := &panel{
		t:          t,
		start:      start,
		now:        start,
		reader:     gpio.NewFakeReader(samples),
		indicators: gpio.NewFakeIndicators(),
		peripheral: ble.NewFakePeripheral(),
		queue:      ble.NewQueue(8),
		publisher:  mqtt.NewFakePublisher(),
		device:     logic.NewDevice(cfg, start),
	}
	if err := p.peripheral.Start(p.queue); err != nil {
		t.Fatalf("start peripheral: %v", err)
	}
	return p
}

func (p *panel) publish(events []logic.Event) {
	for _, e := range events {
		if err := p.publisher.Publish(e); err != nil {
			p.t.Fatalf("publish: %v", err)
		}
	}
}

// drain applies every queued BLE callback at the current time.
func (p *panel) drain() {
	for {
		select {
		case ev := <-p.queue.Events():
			switch ev.Kind {
			case ble.EventConnected:
				p.publish(p.device.Connect(p.now))
			case ble.EventDisconnected:
				p.publish(p.device.Disconnect(p.now))
			case ble.EventSliderWrite:
				upd, events, ok := p.device.WriteSlider(ev.Payload, p.now)
				if ok {
					p.indicators.SetBrightness(upd.Duty)
					p.publish(events)
				}
			}
		default:
			return
		}
	}
}

// advance runs n 1ms ticks.
func (p *panel) advance(n int) {
	for i := 0; i < n; i++ {
		p.now = p.now.Add(time.Millisecond)
		p.drain()

		pressed, err := p.reader.Read()
		if err != nil {
			p.t.Fatalf("gpio read: %v", err)
		}
		f := p.device.Tick(logic.Input{Pressed: pressed, Time: p.now})
		p.publish(f.Events)
		if f.Fired {
			p.indicators.Set(gpio.LEDHeartbeat, f.Heartbeat)
			p.indicators.Set(gpio.LEDMirror, f.Mirror)
		}
		if f.Notify {
			if err := p.peripheral.NotifyButton(f.Value); err != nil {
				p.t.Fatalf("notify: %v", err)
			}
		}
	}
}

func pattern(parts ...[]bool) []bool {
	var out []bool
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func level(on bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = on
	}
	return out
}

// TestIntegrationFullFlow connects a peer, presses the button twice and moves
// the slider, checking what the peer and the broker see.
func TestIntegrationFullFlow(t *testing.T) {
	samples := pattern(
		level(false, 50),
		level(true, 50),  // press 1: accepted 11ms after the edge
		level(false, 50), // release
		level(true, 50),  // press 2
		level(false, 200),
	)
	p := newPanel(t, logic.DefaultConfig(), samples)

	p.peripheral.Connect()
	p.advance(100)
	p.peripheral.WriteSlider([]byte{50})
	p.advance(100)
	p.peripheral.WriteSlider([]byte{100})
	p.advance(200)

	// Initial 0, then toggle 1 after the first press, 0 after the second.
	want := []uint8{0, 1, 0}
	if len(p.peripheral.Notified) != len(want) {
		t.Fatalf("notified: got %v, want %v", p.peripheral.Notified, want)
	}
	for i := range want {
		if p.peripheral.Notified[i] != want[i] {
			t.Errorf("notification %d: got %d, want %d", i, p.peripheral.Notified[i], want[i])
		}
	}

	if got := p.indicators.Duties; len(got) != 2 || got[0] != 128 || got[1] != 255 {
		t.Errorf("duties: got %v, want [128 255]", got)
	}

	counts := p.device.EventCountsSnapshot()
	if counts.Presses != 2 || counts.Releases != 2 {
		t.Errorf("expected 2 presses and 2 releases, got %+v", counts)
	}
	if counts.SliderWrites != 2 || counts.Connects != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if counts.Notifications != 3 {
		t.Errorf("notifications: got %d, want 3", counts.Notifications)
	}
}

// TestIntegrationDisconnectedPanelIsSilent verifies nothing reaches the peer
// while no one is connected, even though the button is debounced.
func TestIntegrationDisconnectedPanelIsSilent(t *testing.T) {
	p := newPanel(t, logic.DefaultConfig(), pattern(level(false, 10), level(true, 100)))
	p.advance(300)

	if len(p.peripheral.Notified) != 0 {
		t.Errorf("expected no notifications, got %v", p.peripheral.Notified)
	}
	if len(p.publisher.Events) != 1 || p.publisher.Events[0].Type != logic.EventButtonPressed {
		t.Errorf("expected only BUTTON_PRESSED, got %+v", p.publisher.Events)
	}
}

// TestIntegrationToggleResetOnConnect verifies a press made before the peer
// connects is not carried into the session.
func TestIntegrationToggleResetOnConnect(t *testing.T) {
	p := newPanel(t, logic.DefaultConfig(), pattern(level(true, 30), level(false, 300)))
	p.advance(50)
	if !p.device.CurrentState().Toggle {
		t.Fatal("expected toggle set by the early press")
	}

	p.peripheral.Connect()
	p.advance(200)

	if len(p.peripheral.Notified) != 1 || p.peripheral.Notified[0] != 0 {
		t.Errorf("expected a single 0 after connect, got %v", p.peripheral.Notified)
	}
}

// TestIntegrationWideButtonPayload verifies the 2-byte little-endian encoding.
func TestIntegrationWideButtonPayload(t *testing.T) {
	p := newPanel(t, logic.DefaultConfig(), pattern(level(false, 5), level(true, 200)))
	p.peripheral.Width = 2

	p.peripheral.Connect()
	p.advance(200)

	if len(p.peripheral.Payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %v", p.peripheral.Payloads)
	}
	got := p.peripheral.Payloads[1]
	if len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("payload: got %v, want [1 0]", got)
	}
}

// TestIntegrationSliderPayloadCopied verifies the queue does not alias the
// stack's write buffer.
func TestIntegrationSliderPayloadCopied(t *testing.T) {
	p := newPanel(t, logic.DefaultConfig(), level(false, 1))

	buf := []byte{20}
	p.peripheral.WriteSlider(buf)
	buf[0] = 90
	p.advance(1)

	if st := p.device.CurrentState(); st.Intensity != 20 {
		t.Errorf("intensity: got %d, want 20", st.Intensity)
	}
}

// TestIntegrationPayloadFormat verifies the exact JSON structure.
func TestIntegrationPayloadFormat(t *testing.T) {
	p := newPanel(t, logic.DefaultConfig(), level(false, 1))
	p.peripheral.WriteSlider([]byte{75})
	p.advance(1)

	if len(p.publisher.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(p.publisher.Payloads))
	}
	want := `{"panel":{"timestamp":"2026-01-01T12:00:00Z","event":"SLIDER_SET","value":75,"duty":191}}`
	if got := string(p.publisher.Payloads[0]); got != want {
		t.Errorf("payload:\ngot  %s\nwant %s", got, want)
	}
}

// TestIntegrationStartupThenShutdown verifies the lifecycle events around
// panel events, as published by the daemon.
func TestIntegrationStartupThenShutdown(t *testing.T) {
	p := newPanel(t, logic.DefaultConfig(), level(false, 10))
	tracker := status.NewTracker(p.start, status.Config{
		DeviceName:       ble.DefaultDeviceName,
		DebounceMs:       10,
		NotifyIntervalMs: 100,
		Report:           "toggle",
		ButtonWidth:      1,
	})

	startup := mqtt.SystemEvent{
		Timestamp:  p.start,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "STARTUP", ""),
	}
	if err := p.publisher.PublishSystem(startup); err != nil {
		t.Fatal(err)
	}

	p.peripheral.Connect()
	p.advance(10)
	tracker.Update(p.device.CurrentState(), p.device.EventCountsSnapshot())

	shutdown := mqtt.SystemEvent{
		Timestamp:  p.now,
		Event:      "SHUTDOWN",
		Reason:     "SIGTERM",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", "SIGTERM"),
	}
	if err := p.publisher.PublishSystem(shutdown); err != nil {
		t.Fatal(err)
	}

	if len(p.publisher.SystemPayloads) != 2 {
		t.Fatalf("expected 2 system payloads, got %d", len(p.publisher.SystemPayloads))
	}

	var first, last status.StatusJSON
	if err := json.Unmarshal(p.publisher.SystemPayloads[0], &first); err != nil {
		t.Fatalf("startup JSON: %v", err)
	}
	if err := json.Unmarshal(p.publisher.SystemPayloads[1], &last); err != nil {
		t.Fatalf("shutdown JSON: %v", err)
	}

	if first.Status.Event != "STARTUP" || first.Status.Peer.Connected {
		t.Errorf("unexpected startup status: %+v", first.Status)
	}
	if first.Status.Config.DeviceName != ble.DefaultDeviceName {
		t.Errorf("startup device name: got %q", first.Status.Config.DeviceName)
	}
	if last.Status.Event != "SHUTDOWN" || last.Status.Reason != "SIGTERM" {
		t.Errorf("unexpected shutdown status: %+v", last.Status)
	}
	if !last.Status.Peer.Connected || last.Status.Counts.Notifications != 1 {
		t.Errorf("shutdown should reflect the session: %+v", last.Status)
	}
}
