// Package eventbus implements the per-session in-process pub/sub fabric:
// bounded per-subscriber queues, keep-alives, overflow disconnection and
// session reaping after a grace period.
package eventbus

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/motorlot/recoengine/config"
	"github.com/motorlot/recoengine/log"
)

// EventBus is a process-wide registry mapping session id to Session. Reads
// (Open returning an existing session, Publish, Subscribe) scale; the
// registry map itself is guarded by a single rw-lock, following the
// spec's "reads scale, writes serialize" discipline. Safe for concurrent
// use from any number of producers and subscribers.
type EventBus struct {
	cfg config.Config

	mu       sync.RWMutex
	sessions map[string]*Session

	stopReap chan struct{}
	reapDone chan struct{}
}

// New creates an EventBus and starts its background session reaper.
func New(cfg config.Config) *EventBus {
	b := &EventBus{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		stopReap: make(chan struct{}),
		reapDone: make(chan struct{}),
	}
	go b.reapLoop()
	return b
}

// Open returns the live Session for sessionId, creating one if absent.
// Reopening an existing live (or terminal-but-not-yet-reaped) session
// returns the same Session; a fresh Session is only created once the prior
// one has been reaped.
func (b *EventBus) Open(sessionID string) *Session {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	b.mu.RLock()
	if s, ok := b.sessions[sessionID]; ok {
		b.mu.RUnlock()
		return s
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[sessionID]; ok {
		return s
	}
	s := newSession(sessionID, b.cfg.PerSubscriberBuffer)
	b.sessions[sessionID] = s
	return s
}

// lookup returns the session for id without creating it.
func (b *EventBus) lookup(sessionID string) (*Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.sessions[sessionID]
	return s, ok
}

// Publish delivers evt to every live subscriber of sessionId. It fails
// silently if no session exists, so producers never block on an absent
// subscriber.
func (b *EventBus) Publish(sessionID string, evt *Event) {
	s, ok := b.lookup(sessionID)
	if !ok {
		log.Warnf("eventbus: publish to unknown session %s dropped", sessionID)
		return
	}
	evt.SessionID = sessionID
	s.publish(b, evt)
}

// Subscribe attaches a new subscriber to sessionId, creating the session if
// it does not exist yet (so a client may connect before the orchestrator
// publishes anything). The returned Subscription starts delivering from the
// current tail forward — it never replays history — after a synthetic
// connection_established event.
func (b *EventBus) Subscribe(sessionID string) *Subscription {
	s := b.Open(sessionID)

	sub := &subscriber{
		id: s.nextSub.Add(1),
		ch: make(chan *Event, s.bufferSize),
	}

	established := NewEvent(sessionID, TypeConnectionEstablished)
	established.Seq = s.seq.Add(1)
	established.Timestamp = time.Now()
	// Never drop the welcome event: the buffer was only just created, and
	// the subscriber is attached only afterwards, so no concurrent publish
	// can precede the welcome event or fill the buffer first.
	sub.ch <- established
	s.addSubscriber(sub)

	return &Subscription{
		bus:       b,
		session:   s,
		sub:       sub,
		keepAlive: b.cfg.KeepAliveInterval,
	}
}

// Close marks sessionId terminal (if it was not already) and notifies every
// subscriber by closing its channel. The session itself stays addressable
// until the reaper removes it after SessionReapGrace, so late callers can
// still observe it went terminal.
func (b *EventBus) Close(sessionID string) {
	s, ok := b.lookup(sessionID)
	if !ok {
		return
	}
	if s.markTerminal() {
		s.notifyTerminal()
	}
}

// Shutdown stops the reaper and closes every live session's subscribers.
// Intended to be called once at process teardown.
func (b *EventBus) Shutdown() {
	close(b.stopReap)
	<-b.reapDone

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.sessions {
		if s.markTerminal() {
			s.notifyTerminal()
		}
		delete(b.sessions, id)
	}
}

// disconnectOverflow drops a slow subscriber: it reliably delivers an
// overflow terminal marker, then removes and closes the subscriber. The
// orchestrator and every other subscriber are unaffected.
//
// disconnecting is claimed via CAS first so that, if several producers
// observe the same full buffer concurrently, only one of them drives the
// hand-off; the others return immediately instead of racing to send on a
// channel the winner may already be closing.
func (b *EventBus) disconnectOverflow(s *Session, sub *subscriber) {
	if !sub.disconnecting.CompareAndSwap(false, true) {
		return
	}

	overflow := NewEvent(s.ID, TypeError)
	overflow.ErrorKind = "overflow"
	overflow.ErrorMessage = "subscriber disconnected: buffer overflow"
	overflow.Seq = s.seq.Add(1)
	overflow.Timestamp = time.Now()

	// The buffer is full precisely because this subscriber is too slow to
	// drain it, so a plain non-blocking send would drop the marker exactly
	// like the event that triggered the overflow. Discard the oldest
	// buffered event to make room, then deliver the marker — bounded by the
	// channel capacity so this can never spin.
	delivered := false
	for attempts := 0; attempts <= cap(sub.ch); attempts++ {
		select {
		case sub.ch <- overflow:
			delivered = true
		default:
			select {
			case <-sub.ch:
			default:
			}
			continue
		}
		break
	}

	s.removeSubscriber(sub)
	sub.close()
	if delivered {
		log.Warnf("eventbus: subscriber %d on session %s disconnected: overflow", sub.id, s.ID)
	} else {
		log.Warnf("eventbus: subscriber %d on session %s disconnected: overflow (marker undeliverable)", sub.id, s.ID)
	}
}

// reapLoop periodically removes sessions that went terminal more than
// SessionReapGrace ago.
func (b *EventBus) reapLoop() {
	defer close(b.reapDone)

	interval := b.cfg.SessionReapGrace
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopReap:
			return
		case <-ticker.C:
			b.reapOnce()
		}
	}
}

func (b *EventBus) reapOnce() {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.sessions {
		terminalAt, terminal := s.reapAt()
		if terminal && now.Sub(terminalAt) >= b.cfg.SessionReapGrace {
			delete(b.sessions, id)
		}
	}
}
