package mqtt

import log "github.com/sirupsen/logrus"

// backlogSize holds a few minutes of panel traffic. Button notifications
// are rate limited to one per cadence window and only sent on change, so
// the queue fills slowly.
const backlogSize = 128

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func (m bufferedMsg) lifecycle() bool {
	return m.topic == TopicSystem
}

// backlog queues messages in publish order while the broker is unreachable.
// When full it evicts the oldest panel event; lifecycle messages only go
// once nothing else is left. Not safe for concurrent use; RealPublisher
// guards it with its mutex.
type backlog struct {
	msgs    []bufferedMsg
	size    int
	dropped int // evictions since the last drain
}

func newBacklog(size int) *backlog {
	return &backlog{size: size}
}

func (b *backlog) push(msg bufferedMsg) {
	if len(b.msgs) >= b.size {
		b.evict()
	}
	b.msgs = append(b.msgs, msg)
}

func (b *backlog) evict() {
	victim := 0
	for i, m := range b.msgs {
		if !m.lifecycle() {
			victim = i
			break
		}
	}
	if b.dropped == 0 {
		log.WithField("size", b.size).Warn("mqtt: backlog full, dropping oldest panel events")
	}
	b.dropped++
	b.msgs = append(b.msgs[:victim], b.msgs[victim+1:]...)
}

// drain empties the backlog, returning the queued messages oldest first and
// how many were evicted since the previous drain.
func (b *backlog) drain() (msgs []bufferedMsg, dropped int) {
	msgs, dropped = b.msgs, b.dropped
	b.msgs, b.dropped = nil, 0
	return msgs, dropped
}

func (b *backlog) len() int {
	return len(b.msgs)
}
