package gpucache

import "github.com/djdv/gpucache/key"

// fakeResource is a minimal [Resource] implementation used by the
// in-package property tests, which need to drive the cache through its
// Notifier-style callbacks the way a real GPU resource would.
type fakeResource struct {
	cache    *Cache
	notifier Notifier

	name string
	size uint64

	ts    uint32
	index int

	refs      int
	budgeted  bool
	wrapped   bool
	pendingIO bool
	released  bool

	scratchKey key.Scratch
	uniqueKey  key.Unique
}

// newFakeResource returns a resource holding one external reference, the
// same precondition a freshly constructed GPU resource satisfies before
// its owner ever inserts it into the cache (Insert requires a resource
// not be purgeable on arrival). cache is retained only for Release/Abandon,
// which need Cache.Remove; the Notifier callbacks go through whatever
// SetNotifier hands back from Insert.
func newFakeResource(cache *Cache, name string, size uint64) *fakeResource {
	return &fakeResource{cache: cache, name: name, size: size, index: -1, refs: 1}
}

// SetNotifier receives the callback handle Cache.Insert hands out.
func (r *fakeResource) SetNotifier(n Notifier) { r.notifier = n }

func (r *fakeResource) GPUMemorySize() uint64        { return r.size }
func (r *fakeResource) CacheTimestamp() uint32        { return r.ts }
func (r *fakeResource) SetCacheTimestamp(ts uint32)   { r.ts = ts }
func (r *fakeResource) CacheIndex() int               { return r.index }
func (r *fakeResource) SetCacheIndex(i int)           { r.index = i }
func (r *fakeResource) IsPurgeable() bool             { return r.refs == 0 }
func (r *fakeResource) IsWrapped() bool               { return r.wrapped }
func (r *fakeResource) IsBudgeted() bool              { return r.budgeted }
func (r *fakeResource) SetBudgeted(b bool)            { r.budgeted = b }
func (r *fakeResource) HasOutstandingRefs() bool      { return r.refs > 0 }
func (r *fakeResource) HasPendingIO() bool            { return r.pendingIO }
func (r *fakeResource) Ref()                          { r.refs++ }
func (r *fakeResource) ScratchKey() key.Scratch       { return r.scratchKey }
func (r *fakeResource) UniqueKey() key.Unique         { return r.uniqueKey }
func (r *fakeResource) SetUniqueKey(k key.Unique)     { r.uniqueKey = k }

// Unref drops one external reference. Once the count reaches zero the
// resource notifies the cache, exactly as a real resource's reference
// counter's destructor would.
func (r *fakeResource) Unref() {
	r.refs--
	if r.refs == 0 {
		r.notifier.NotifyPurgeable(r)
	}
}

func (r *fakeResource) Release() {
	if r.released {
		return
	}
	r.released = true
	r.cache.Remove(r)
}

func (r *fakeResource) Abandon() {
	if r.released {
		return
	}
	r.released = true
	r.cache.Remove(r)
}
