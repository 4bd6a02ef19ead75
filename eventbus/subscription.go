package eventbus

import (
	"context"
	"errors"
	"time"
)

// ErrStreamClosed is returned by Subscription.Next once the session has
// gone terminal and every buffered event has been delivered.
var ErrStreamClosed = errors.New("eventbus: stream closed")

// Subscription is a read-only view onto one session's event stream for a
// single subscriber. Stream transports call Next in a loop until it returns
// ErrStreamClosed or a context error.
type Subscription struct {
	bus       *EventBus
	session   *Session
	sub       *subscriber
	keepAlive time.Duration
}

// Next blocks until the next event is available, a keep-alive interval
// elapses with no delivery (in which case a synthetic keep_alive event is
// returned), or ctx is done. It returns ErrStreamClosed once the
// subscriber's channel has been closed — by the session going terminal or
// by an overflow disconnect — and fully drained.
func (s *Subscription) Next(ctx context.Context) (*Event, error) {
	interval := s.keepAlive
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case evt, ok := <-s.sub.ch:
		if !ok {
			return nil, ErrStreamClosed
		}
		return evt, nil
	case <-timer.C:
		ka := NewEvent(s.session.ID, TypeKeepAlive)
		ka.Timestamp = time.Now()
		return ka, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close detaches this subscriber from its session without waiting for a
// terminal event, e.g. when an HTTP client disconnects mid-stream.
func (s *Subscription) Close() {
	s.session.removeSubscriber(s.sub)
	s.sub.close()
}

// SessionID returns the id of the session this subscription is attached to.
func (s *Subscription) SessionID() string {
	return s.session.ID
}
