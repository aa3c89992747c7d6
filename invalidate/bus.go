// Package invalidate implements the cache's one-way, fire-and-forget
// invalidation message bus: external goroutines publish unique keys that
// should be invalidated, and the cache's owning goroutine drains them at
// its convenience and feeds them to Cache.ProcessInvalidUniqueKeys.
//
// Delivery is best-effort, matching spec.md's message-bus contract: a
// full queue drops the new message rather than blocking the publisher,
// and lookups that later miss (because the resource was already removed)
// are silently ignored by the consumer.
package invalidate

import "github.com/djdv/gpucache/key"

// Bus is a bounded, channel-backed queue of unique-key invalidation
// messages. It is safe for concurrent use by many publishers; only the
// single goroutine that owns the cache should call Drain.
type Bus struct {
	messages chan key.Unique
}

// NewBus creates a Bus with room for capacity pending messages before
// Publish starts dropping.
func NewBus(capacity int) *Bus {
	return &Bus{messages: make(chan key.Unique, capacity)}
}

// Publish enqueues an invalidation for k. If the queue is full, the
// message is dropped rather than blocking the caller: this mirrors
// spec.md's "best-effort" delivery guarantee rather than the cache's
// single-threaded mutation guarantee, which Publish does not touch.
func (b *Bus) Publish(k key.Unique) {
	select {
	case b.messages <- k:
	default:
	}
}

// Drain removes and returns every message currently queued, in the order
// they were published. It must only be called from the goroutine that
// owns the cache.
func (b *Bus) Drain() []key.Unique {
	var msgs []key.Unique
	for {
		select {
		case k := <-b.messages:
			msgs = append(msgs, k)
		default:
			return msgs
		}
	}
}
