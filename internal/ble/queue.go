package ble

// EventKind identifies a wireless stack event.
type EventKind int

const (
	EventConnected EventKind = iota
	EventDisconnected
	EventSliderWrite
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventSliderWrite:
		return "slider-write"
	}
	return "unknown"
}

// Event is one wireless stack callback, captured for the control loop.
type Event struct {
	Kind    EventKind
	Payload []byte // EventSliderWrite only
}

// Queue is a Handler that forwards stack callbacks to a single consumer.
// The stack is the only producer; the control loop is the only consumer,
// so all device state is mutated from one goroutine.
type Queue struct {
	ch chan Event
}

// NewQueue creates a queue holding up to size pending events. Producers
// block when it is full.
func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Event, size)}
}

// OnConnect enqueues a connection event.
func (q *Queue) OnConnect() {
	q.ch <- Event{Kind: EventConnected}
}

// OnDisconnect enqueues a disconnection event.
func (q *Queue) OnDisconnect() {
	q.ch <- Event{Kind: EventDisconnected}
}

// OnSliderWrite enqueues a copy of the written bytes; the stack may reuse
// its buffer after the callback returns.
func (q *Queue) OnSliderWrite(payload []byte) {
	q.ch <- Event{Kind: EventSliderWrite, Payload: append([]byte(nil), payload...)}
}

// Events returns the receive side for the control loop.
func (q *Queue) Events() <-chan Event {
	return q.ch
}
