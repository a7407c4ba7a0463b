// Package notify provides the fan-out primitive behind per-event-kind
// notification streams: live delivery to every current subscriber, no
// buffering of past events.
package notify

import "sync"

// subscriberBuffer bounds how far a subscriber may lag before events are
// dropped for it. Delivery must never block the inbound dispatch loop.
const subscriberBuffer = 32

// Broadcaster fans events out to all currently-subscribed listeners. A
// listener only observes events published after it subscribed; there is no
// replay. The zero value is not usable, construct with NewBroadcaster.
type Broadcaster[T any] struct {
	mux    sync.Mutex
	subs   map[int]chan T
	nextID int
	closed bool
}

func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a listener and returns its receive channel along with
// a cancel function. After Close the returned channel is already completed.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mux.Lock()
	defer b.mux.Unlock()
	ch := make(chan T, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	return ch, func() { b.unsubscribe(id) }
}

func (b *Broadcaster[T]) unsubscribe(id int) {
	b.mux.Lock()
	defer b.mux.Unlock()
	if b.closed {
		return
	}
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers event to every current subscriber. Delivery is
// fire-and-forget: with no subscribers the event is lost, and a subscriber
// whose buffer is full misses it.
func (b *Broadcaster[T]) Publish(event T) {
	b.mux.Lock()
	defer b.mux.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close completes every subscriber channel and rejects further publishes.
// Calling Close more than once is a no-op.
func (b *Broadcaster[T]) Close() {
	b.mux.Lock()
	defer b.mux.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
