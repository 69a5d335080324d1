package mqtt

import (
	"github.com/sweeney/ble-slider/internal/logic"
)

// FakePublisher records what the panel would have sent to the broker.
type FakePublisher struct {
	Events   []logic.Event
	Payloads [][]byte

	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// Set to fail the next publishes without recording them.
	PublishError       error
	PublishSystemError error

	Closed    bool
	Connected bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool { return f.Connected }

// EventsOfType returns the recorded panel events of type t, in publish order.
func (f *FakePublisher) EventsOfType(t logic.EventType) []logic.Event {
	var out []logic.Event
	for _, e := range f.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// LastSystemEvent returns the most recent lifecycle event, if any.
func (f *FakePublisher) LastSystemEvent() (SystemEvent, bool) {
	if len(f.SystemEvents) == 0 {
		return SystemEvent{}, false
	}
	return f.SystemEvents[len(f.SystemEvents)-1], true
}

// CountSystem returns how many lifecycle events named name were recorded.
func (f *FakePublisher) CountSystem(name string) int {
	n := 0
	for _, se := range f.SystemEvents {
		if se.Event == name {
			n++
		}
	}
	return n
}

// Reset clears recordings and injected errors between test phases.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{}
}
