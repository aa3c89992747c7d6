package gpucache

import "github.com/djdv/gpucache/key"

// Resource is the capability set the cache needs from a GPU-backed
// object. The cache treats resources as opaque handles through this
// interface; the object's construction, GPU-side teardown, and
// reference-counting policy are entirely the caller's concern.
//
// Implementations store CacheIndex and CacheTimestamp as plain fields
// mutated only by the cache (the "intrusive back-index" approach spec.md
// describes as one valid option; an external resource-id -> index map is
// an equally valid alternative the cache does not need to know about).
type Resource interface {
	// GPUMemorySize reports the resource's footprint in bytes.
	GPUMemorySize() uint64

	// CacheTimestamp and SetCacheTimestamp store the LRU ordering key the
	// cache assigns on insertion, promotion, and wrap recovery.
	CacheTimestamp() uint32
	SetCacheTimestamp(uint32)

	// CacheIndex and SetCacheIndex store the resource's current slot in
	// whichever partition (nonpurgeable array or purgeable heap) holds
	// it. -1 means the resource is not tracked by either.
	CacheIndex() int
	SetCacheIndex(int)

	// IsPurgeable reports whether the resource currently has no
	// outstanding external references and may be released without
	// observable effect.
	IsPurgeable() bool

	// IsWrapped reports whether the resource's underlying GPU state is
	// owned externally: wrapped resources are tracked but never
	// destroyed as scratch candidates and never carry a ScratchKey.
	IsWrapped() bool

	// IsBudgeted reports whether the resource counts against the
	// cache's budgets.
	IsBudgeted() bool
	// SetBudgeted flips the resource's budgeted flag. Called by the
	// cache when a scratch-eligible resource is admitted into the
	// budget (see Cache.NotifyPurgeable).
	SetBudgeted(bool)

	// HasOutstandingRefs reports whether any external reference to the
	// resource remains. This is distinct from IsPurgeable during the
	// scratch-lookup predicate: a resource may be indexed in the scratch
	// map while nonpurgeable (i.e. still referenced) if a prior lookup
	// already promoted it but the owner has not released its reference
	// yet.
	HasOutstandingRefs() bool

	// HasPendingIO reports whether the resource has outstanding
	// asynchronous I/O against it (e.g. a pending upload or readback).
	HasPendingIO() bool

	// Ref adds one external reference to the resource. The cache calls
	// this when handing a scratch resource back to a caller via
	// FindAndRefScratchResource.
	Ref()

	// ScratchKey returns the resource's scratch key, or the zero value
	// if it has none.
	ScratchKey() key.Scratch

	// UniqueKey returns the resource's unique key, or the zero value if
	// it has none.
	UniqueKey() key.Unique
	// SetUniqueKey installs (or, given the zero value, clears) the
	// resource's unique key. Called only by the cache controller.
	SetUniqueKey(key.Unique)

	// Release destroys the resource's GPU state and removes it from the
	// cache.
	Release()
	// Abandon removes the resource from the cache without tearing down
	// GPU state, used when the device is lost.
	Abandon()
}

// Notifier is the small interface a resource implementation holds a
// reference to, so it can call back into the cache that tracks it. A
// cache hands one to the resource at insertion time (see [Cache.Insert]);
// this avoids every resource needing to depend on the full [Cache] type
// and keeps the callback surface to exactly what spec.md's design notes
// describe.
type Notifier interface {
	// NotifyPurgeable must be called by a resource when its external
	// reference count reaches zero.
	NotifyPurgeable(Resource)
	// DidChangeGPUMemorySize must be called after a resource's
	// GPUMemorySize changes, with the size it reported before the
	// change.
	DidChangeGPUMemorySize(resource Resource, oldSize uint64)
	// DidChangeBudgetStatus must be called after a resource's
	// IsBudgeted flag is toggled by something other than the cache
	// itself.
	DidChangeBudgetStatus(Resource)
}

// NotifierSetter is implemented by resources that want to hold onto the
// Notifier handed out at insertion time instead of closing over their
// owning [Cache] directly. [Cache.Insert] calls SetNotifier whenever
// resource implements this interface.
type NotifierSetter interface {
	SetNotifier(Notifier)
}
