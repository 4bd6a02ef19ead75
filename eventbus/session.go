package eventbus

import (
	"sync"
	"sync/atomic"
	"time"
)

// subscriber is one live stream consumer of a session. Channels are
// bounded; a full channel triggers the overflow-disconnect policy instead
// of blocking the producer.
type subscriber struct {
	id     uint64
	ch     chan *Event
	closed atomic.Bool

	// disconnecting is claimed once, by whichever producer first observes
	// this subscriber's buffer full, so only one goroutine ever drives the
	// overflow hand-off (draining room, delivering the marker, closing the
	// channel) even if several producers race on the same full buffer.
	disconnecting atomic.Bool
}

// send attempts a non-blocking delivery. It reports false if the
// subscriber's buffer is full (the caller disconnects it), if it was already
// closed, or if an overflow disconnect is already underway — once claimed,
// no further event should compete for the room being drained for the
// overflow marker.
func (s *subscriber) send(evt *Event) bool {
	if s.closed.Load() || s.disconnecting.Load() {
		return false
	}
	select {
	case s.ch <- evt:
		return true
	default:
		return false
	}
}

// close closes the subscriber's channel exactly once. Safe to call
// concurrently and more than once.
func (s *subscriber) close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// Session is a logical channel binding one orchestration run to its stream
// of events. The Session exclusively owns its subscriber set; publishers
// hand events to it and never touch a subscriber channel directly.
type Session struct {
	ID        string
	CreatedAt time.Time

	bufferSize int

	seq atomic.Uint64

	// subs is swapped with copy-on-write semantics so publish's fan-out
	// never takes a lock shared with subscribe/unsubscribe.
	subs     atomic.Pointer[[]*subscriber]
	nextSub  atomic.Uint64

	mu         sync.Mutex // guards terminal/terminalAt only
	terminal   bool
	terminalAt time.Time
}

func newSession(id string, bufferSize int) *Session {
	s := &Session{ID: id, CreatedAt: time.Now(), bufferSize: bufferSize}
	empty := make([]*subscriber, 0)
	s.subs.Store(&empty)
	return s
}

// Terminal reports whether this session has already emitted its terminal
// event.
func (s *Session) Terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

// reapAt returns the instant the session becomes eligible for reaping, and
// whether it has gone terminal at all.
func (s *Session) reapAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminalAt, s.terminal
}

// markTerminal flips the session terminal exactly once and records when.
// Returns false if it was already terminal.
func (s *Session) markTerminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal {
		return false
	}
	s.terminal = true
	s.terminalAt = time.Now()
	return true
}

// addSubscriber appends sub to the subscriber set via a CAS loop so
// concurrent subscribes/unsubscribes never block a publisher.
func (s *Session) addSubscriber(sub *subscriber) {
	for {
		old := s.subs.Load()
		next := make([]*subscriber, len(*old)+1)
		copy(next, *old)
		next[len(*old)] = sub
		if s.subs.CompareAndSwap(old, &next) {
			return
		}
	}
}

// removeSubscriber drops sub from the subscriber set via a CAS loop.
func (s *Session) removeSubscriber(sub *subscriber) {
	for {
		old := s.subs.Load()
		idx := -1
		for i, existing := range *old {
			if existing == sub {
				idx = i
				break
			}
		}
		if idx == -1 {
			return
		}
		next := make([]*subscriber, 0, len(*old)-1)
		next = append(next, (*old)[:idx]...)
		next = append(next, (*old)[idx+1:]...)
		if s.subs.CompareAndSwap(old, &next) {
			return
		}
	}
}

// publish stamps evt with the next sequence number and timestamp, fans it
// out non-blockingly to every subscriber, and disconnects any subscriber
// whose buffer is full. If evt is terminal, every remaining subscriber
// channel is closed after delivery so stream readers observe end-of-stream.
//
// publish is a no-op once the session is already terminal, per the spec's
// "publish after terminal is a no-op" rule.
func (s *Session) publish(bus *EventBus, evt *Event) {
	s.mu.Lock()
	alreadyTerminal := s.terminal
	s.mu.Unlock()
	if alreadyTerminal {
		return
	}

	evt.Seq = s.seq.Add(1)
	evt.Timestamp = time.Now()

	subs := *s.subs.Load()
	for _, sub := range subs {
		if !sub.send(evt.clone()) {
			bus.disconnectOverflow(s, sub)
		}
	}

	if evt.Type.terminal() {
		s.markTerminal()
		s.notifyTerminal()
	}
}

// notifyTerminal closes every subscriber channel still attached to the
// session. Called once the terminal event has already been delivered.
func (s *Session) notifyTerminal() {
	subs := *s.subs.Load()
	for _, sub := range subs {
		sub.close()
	}
}

// subscriberCount reports the number of live subscribers, for tests and
// observability.
func (s *Session) subscriberCount() int {
	return len(*s.subs.Load())
}
