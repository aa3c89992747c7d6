// Package clock implements the monotonic timestamp counter the cache uses
// to order resources for LRU-style eviction, including detection of the
// point at which the counter wraps around.
package clock

// Allocator emits a strictly increasing sequence of timestamps. The zero
// value is ready to use and starts at 0.
type Allocator struct {
	next uint32
}

// AtWrapPoint reports whether the allocator is sitting at the value it
// resets to after a wrap (that is, 0). This is true both before the very
// first timestamp is ever issued and immediately after [Allocator.Next]
// has handed out math.MaxUint32 and the counter has wrapped.
// Callers use it to decide whether wrap recovery must run before the
// next timestamp is handed out.
func (a *Allocator) AtWrapPoint() bool {
	return a.next == 0
}

// Next returns the next timestamp in the sequence and advances the
// counter. It does not itself detect or handle wrapping: callers that
// care about wrap recovery must check [Allocator.AtWrapPoint] first.
func (a *Allocator) Next() uint32 {
	ts := a.next
	a.next++
	return ts
}

// Resume sets the counter to resume at n. Used after wrap recovery has
// assigned dense timestamps [0, n) to every tracked resource, so the next
// timestamp handed out continues from n.
func (a *Allocator) Resume(n uint32) {
	a.next = n
}
