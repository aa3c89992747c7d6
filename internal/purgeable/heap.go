// Package purgeable implements the cache's purgeable partition: a binary
// min-heap ordered by timestamp (oldest first), supporting O(log n)
// removal from an arbitrary position via a back-index stored on each
// resource. It wraps container/heap the way ava-labs-strevm/queue.Priority
// wraps it, generalized with an explicit Remove(resource) operation the
// cache needs for promotion and invalidation.
package purgeable

import "container/heap"

// Indexed is the capability the purgeable heap needs from a tracked
// resource: its ordering key (timestamp) and a slot to record its heap
// position, so arbitrary-position removal can run in O(log n).
type Indexed interface {
	CacheTimestamp() uint32
	CacheIndex() int
	SetCacheIndex(int)
}

// Heap is a min-heap of purgeable resources. The zero value is ready to
// use.
type Heap[R Indexed] struct {
	h innerHeap[R]
}

// Len returns the number of tracked resources.
func (p *Heap[R]) Len() int {
	return len(p.h)
}

// Push adds resource to the heap and records its heap position on it.
func (p *Heap[R]) Push(resource R) {
	heap.Push(&p.h, resource)
}

// Peek returns the resource with the oldest timestamp without removing
// it. It panics if the heap is empty.
func (p *Heap[R]) Peek() R {
	return p.h[0]
}

// Pop removes and returns the resource with the oldest timestamp. It
// panics if the heap is empty.
func (p *Heap[R]) Pop() R {
	return heap.Pop(&p.h).(R)
}

// Remove removes resource from an arbitrary position in the heap, using
// its stored index. resource must currently be tracked by this heap at
// the index it reports via CacheIndex.
func (p *Heap[R]) Remove(resource R) {
	heap.Remove(&p.h, resource.CacheIndex())
}

// Each calls fn for every tracked resource in unspecified order. fn must
// not mutate the heap.
func (p *Heap[R]) Each(fn func(R)) {
	for _, r := range p.h {
		fn(r)
	}
}

// innerHeap implements heap.Interface. Swap keeps each element's stored
// back-index in sync with its position, which is what makes arbitrary
// Remove possible without a linear scan.
type innerHeap[R Indexed] []R

func (h innerHeap[R]) Len() int { return len(h) }

func (h innerHeap[R]) Less(i, j int) bool {
	return h[i].CacheTimestamp() < h[j].CacheTimestamp()
}

func (h innerHeap[R]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].SetCacheIndex(i)
	h[j].SetCacheIndex(j)
}

func (h *innerHeap[R]) Push(x any) {
	r := x.(R)
	r.SetCacheIndex(len(*h))
	*h = append(*h, r)
}

func (h *innerHeap[R]) Pop() any {
	old := *h
	n := len(old)
	r := old[n-1]
	var zero R
	old[n-1] = zero
	*h = old[:n-1]
	r.SetCacheIndex(-1)
	return r
}
