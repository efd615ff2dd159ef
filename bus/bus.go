// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bus provides an in-process broadcast channel fanning payloads out
// to multiple subscribers.
//
// Every subscriber owns an independent, bounded backlog and observes
// payloads in publish order. A slow subscriber loses its oldest unread
// payload rather than stalling the publisher or being torn down: game state
// snapshots are best-effort telemetry and a stale snapshot is worthless
// once a fresher one exists.
//
// Payloads are treated as immutable once published. Neither the bus nor
// any subscriber may modify them.
package bus

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/propagation"
)

// Payloads per subscriber held before the oldest is dropped, unless
// overridden with [WithBacklog]. Matches the event channel capacity used by
// the game state integration server.
const defaultBacklog = 16

// ErrNoSubscribers is returned by [Bus.Publish] when no subscriptions are
// live. Telemetry published into the void is a condition the caller should
// observe, not a silent success.
var ErrNoSubscribers = errors.New("bus: no subscribers")

// ErrClosed is returned by [Subscription.Recv] once the bus has been
// closed and the subscription's backlog is fully drained.
var ErrClosed = errors.New("bus: closed")

// Event pairs a payload with the trace context captured at publish time,
// so handler spans can be parented to the span of the connection that
// produced the payload.
type Event struct {
	Payload []byte
	Carrier propagation.MapCarrier
}

// Bus broadcasts published payloads to every live [Subscription].
type Bus struct {
	backlog int

	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// Option configures a [Bus].
type Option func(*Bus)

// WithBacklog sets the per-subscriber backlog capacity. A zero value
// leaves the default in place.
func WithBacklog(n uint) Option {
	return func(b *Bus) {
		if n == 0 {
			return
		}
		b.backlog = int(n)
	}
}

// New returns an open Bus with no subscribers.
func New(opts ...Option) *Bus {
	b := &Bus{
		backlog: defaultBacklog,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a new subscription with an empty backlog. Payloads
// published before Subscribe returns are not observed by it. Subscribing
// to a closed bus returns a subscription that immediately reports
// [ErrClosed].
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{
		bus: b,
		ch:  make(chan Event, b.backlog),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs = append(b.subs, sub)
	return sub
}

// Publish delivers the event to every live subscription.
//
// Delivery never blocks: a subscription whose backlog is full loses its
// oldest unread event to make room. Publish returns [ErrNoSubscribers]
// when there are no live subscriptions, and [ErrClosed] after Close.
func (b *Bus) Publish(event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if len(b.subs) == 0 {
		return ErrNoSubscribers
	}

	for _, sub := range b.subs {
		select {
		case sub.ch <- event:
			continue
		default:
		}

		// Backlog full. Only Publish ever sends on sub.ch and it holds
		// b.mu, so at most one element needs to be evicted; the receiver
		// racing us to drain it first is fine.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Close marks the bus closed and unblocks every waiting [Subscription.Recv]
// with [ErrClosed] once their backlogs drain. Close is idempotent.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}

// Subscription is one subscriber's ordered view into the event stream.
type Subscription struct {
	bus *Bus
	ch  chan Event

	closeOnce sync.Once
}

// Close removes the subscription from the bus. A bus whose last
// subscription has closed reports [ErrNoSubscribers] on the next
// Publish, so a consumer that stops receiving must Close rather than
// just abandon its subscription. Close is idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		if s.bus.closed {
			return
		}
		for i, sub := range s.bus.subs {
			if sub != s {
				continue
			}
			s.bus.subs = append(s.bus.subs[:i], s.bus.subs[i+1:]...)
			close(s.ch)
			return
		}
	})
}

// Recv blocks until the next event is available, the bus is closed
// ([ErrClosed]) or ctx is done (ctx.Err()). Events already in the backlog
// are still delivered after the bus closes. When both an event and
// cancellation are ready, either outcome may win the race.
func (s *Subscription) Recv(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case event, ok := <-s.ch:
		if !ok {
			return Event{}, ErrClosed
		}
		return event, nil
	}
}
