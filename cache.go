// Package gpucache implements a budgeted GPU-resource cache: an
// in-process registry that tracks every GPU-backed object owned by a
// rendering backend, decides when each object may be reused, and evicts
// objects once cumulative usage exceeds configured budgets.
//
// The cache assumes single-threaded mutation on the caller's own
// goroutine (conventionally the render thread); invalidation messages
// may arrive from other goroutines through the invalidate package, but
// are only applied when the owning goroutine calls
// [Cache.ProcessInvalidUniqueKeys].
package gpucache

import (
	"go.uber.org/zap"

	"github.com/djdv/gpucache/internal/assert"
	"github.com/djdv/gpucache/internal/clock"
	"github.com/djdv/gpucache/internal/metrics"
	"github.com/djdv/gpucache/internal/nonpurgeable"
	"github.com/djdv/gpucache/internal/purgeable"
	"github.com/djdv/gpucache/internal/scratchmap"
	"github.com/djdv/gpucache/internal/uniquehash"
	"github.com/djdv/gpucache/key"
)

// Default budgets, matching the cache's source material.
const (
	DefaultMaxCount int32  = 2048
	DefaultMaxBytes uint64 = 96 << 20
)

// ScratchFlags narrow a scratch-resource lookup in
// [Cache.FindAndRefScratchResource].
type ScratchFlags uint8

const (
	// PreferNoPendingIO asks for a resource with no pending I/O if one
	// exists, but falls back to any eligible resource otherwise.
	PreferNoPendingIO ScratchFlags = 1 << iota
	// RequireNoPendingIO fails the lookup outright if no resource
	// without pending I/O is available.
	RequireNoPendingIO
)

// Cache is a budgeted, single-threaded GPU-resource cache. The zero
// value is not ready to use; construct one with [NewCache].
type Cache struct {
	log     *zap.Logger
	metrics *metrics.Recorder

	clock        clock.Allocator
	nonpurgeable nonpurgeable.Array[Resource]
	purgeableH   purgeable.Heap[Resource]
	scratch      scratchmap.Map[Resource]
	unique       uniquehash.Map[Resource]

	maxCount int32
	maxBytes uint64

	bytes         uint64
	budgetedCount int32
	budgetedBytes uint64

	highWaterCount         int
	highWaterBytes         uint64
	budgetedHighWaterCount int32
	budgetedHighWaterBytes uint64

	overBudgetCB func()

	validationCounter uint64
}

// NewCache constructs a Cache with [DefaultMaxCount] and [DefaultMaxBytes]
// budgets, adjusted by opts.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		log:      zap.NewNop(),
		maxCount: DefaultMaxCount,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats is a point-in-time snapshot of the cache's occupancy, including
// the high-water marks the source material gates behind a
// GR_CACHE_STATS build flag; here they are always tracked and simply
// optional to read.
type Stats struct {
	Count         int
	Bytes         uint64
	BudgetedCount int32
	BudgetedBytes uint64

	HighWaterCount         int
	HighWaterBytes         uint64
	BudgetedHighWaterCount int32
	BudgetedHighWaterBytes uint64
}

// Stats returns a snapshot of the cache's current occupancy.
func (c *Cache) Stats() Stats {
	return Stats{
		Count:                  c.resourceCount(),
		Bytes:                  c.bytes,
		BudgetedCount:          c.budgetedCount,
		BudgetedBytes:          c.budgetedBytes,
		HighWaterCount:         c.highWaterCount,
		HighWaterBytes:         c.highWaterBytes,
		BudgetedHighWaterCount: c.budgetedHighWaterCount,
		BudgetedHighWaterBytes: c.budgetedHighWaterBytes,
	}
}

// SetLimits installs new budgets and immediately purges if the cache is
// now over budget.
func (c *Cache) SetLimits(maxCount int32, maxBytes uint64) {
	c.maxCount = maxCount
	c.maxBytes = maxBytes
	c.purgeAsNeeded()
}

// SetOverBudgetCallback installs fn, invoked at most once per
// purgeAsNeeded call when the purgeable heap has been fully drained and
// the cache remains over budget. fn may free external references, which
// arrive back as [Cache.NotifyPurgeable] calls; fn must not otherwise
// mutate the cache.
func (c *Cache) SetOverBudgetCallback(fn func()) {
	c.overBudgetCB = fn
}

func (c *Cache) overBudget() bool {
	return c.budgetedCount > c.maxCount || c.budgetedBytes > c.maxBytes
}

func (c *Cache) resourceCount() int {
	return c.nonpurgeable.Len() + c.purgeableH.Len()
}

// Insert registers resource with the cache. resource must not already be
// tracked, destroyed, or purgeable.
func (c *Cache) Insert(resource Resource) {
	assert.That(resource.CacheIndex() == -1, string(ErrAlreadyTracked))
	assert.That(!resource.IsPurgeable(), string(ErrNotPurgeableAtInsert))

	if setter, ok := resource.(NotifierSetter); ok {
		setter.SetNotifier(c)
	}

	// The timestamp must be set before adding to the nonpurgeable array,
	// in case this allocation triggers wrap recovery: recovery walks
	// every already-tracked resource, and this one must not be among
	// them yet.
	resource.SetCacheTimestamp(c.nextTimestamp())
	c.nonpurgeable.Add(resource)

	size := resource.GPUMemorySize()
	c.bytes += size
	c.updateHighWater()
	if resource.IsBudgeted() {
		c.budgetedCount++
		c.budgetedBytes += size
		c.updateBudgetedHighWater()
	}
	if resource.ScratchKey().IsValid() {
		assert.That(!resource.IsWrapped(), "wrapped resource must not carry a scratch key")
		c.scratch.Insert(resource.ScratchKey(), resource)
	}

	c.log.Debug("insert", zap.Uint64("size", size), zap.Int("resources", c.resourceCount()))
	c.recordOccupancy()
	c.purgeAsNeeded()
	c.validate()
}

// Remove removes resource from whichever partition holds it and
// un-indexes it from the scratch map and unique hash.
func (c *Cache) Remove(resource Resource) {
	c.validate()

	if resource.IsPurgeable() {
		c.purgeableH.Remove(resource)
	} else {
		c.nonpurgeable.Remove(resource)
	}

	size := resource.GPUMemorySize()
	c.bytes -= size
	if resource.IsBudgeted() {
		c.budgetedCount--
		c.budgetedBytes -= size
	}
	if resource.ScratchKey().IsValid() {
		c.scratch.Remove(resource.ScratchKey(), resource)
	}
	if resource.UniqueKey().IsValid() {
		c.unique.Remove(resource.UniqueKey())
	}

	c.recordOccupancy()
	c.validate()
}

func isScratchCandidate(r Resource) bool {
	return r.ScratchKey().IsValid() && !r.UniqueKey().IsValid()
}

func availableForScratchUse(rejectPendingIO bool) func(Resource) bool {
	return func(r Resource) bool {
		if r.HasOutstandingRefs() || !isScratchCandidate(r) {
			return false
		}
		return !rejectPendingIO || !r.HasPendingIO()
	}
}

// FindAndRefScratchResource looks up a resource interchangeable under
// scratchKey, refs it, and makes it most-recently-used. It returns false
// if no eligible resource exists.
func (c *Cache) FindAndRefScratchResource(scratchKey key.Scratch, flags ScratchFlags) (Resource, bool) {
	assert.That(scratchKey.IsValid(), "scratch key must be valid")

	if flags&(PreferNoPendingIO|RequireNoPendingIO) != 0 {
		if r, ok := c.scratch.Find(scratchKey, availableForScratchUse(true)); ok {
			c.refAndMakeMRU(r)
			c.validate()
			return r, true
		}
		if flags&RequireNoPendingIO != 0 {
			return nil, false
		}
		// A resource without pending I/O wasn't found, but budget may
		// still remain. The cache's source material leaves open whether
		// to fall through to any match or allocate a new resource
		// instead; this falls through, preserving spec.md's choice.
	}

	r, ok := c.scratch.Find(scratchKey, availableForScratchUse(false))
	if ok {
		c.refAndMakeMRU(r)
		c.validate()
	}
	return r, ok
}

// refAndMakeMRU promotes resource to nonpurgeable (if it wasn't already),
// adds an external reference, and assigns it a fresh timestamp.
func (c *Cache) refAndMakeMRU(resource Resource) {
	if resource.IsPurgeable() {
		c.purgeableH.Remove(resource)
		c.nonpurgeable.Add(resource)
	}
	resource.Ref()
	resource.SetCacheTimestamp(c.nextTimestamp())
}

// ChangeUniqueKey assigns newKey to resource, displacing whatever
// resource previously held it. An invalid newKey clears resource's
// unique key instead.
func (c *Cache) ChangeUniqueKey(resource Resource, newKey key.Unique) {
	assert.That(resource.CacheIndex() != -1, string(ErrNotTracked))

	if resource.UniqueKey().IsValid() {
		c.unique.Remove(resource.UniqueKey())
	}

	if !newKey.IsValid() {
		resource.SetUniqueKey(key.Unique{})
		c.validate()
		return
	}

	if old, ok := c.unique.Find(newKey); ok {
		if !old.ScratchKey().IsValid() && old.IsPurgeable() {
			// old cannot be reused as scratch and nobody references it:
			// release it outright. Clear resource's to-be-assigned key
			// first, since Release triggers validation that checks
			// unique-hash consistency, and resource must not appear to
			// hold newKey while old still does.
			resource.SetUniqueKey(key.Unique{})
			old.Release()
		} else {
			c.unique.Remove(newKey)
			old.SetUniqueKey(key.Unique{})
		}
	}

	resource.SetUniqueKey(newKey)
	c.unique.Add(newKey, resource)
	c.validate()
}

// RemoveUniqueKey strips resource's unique key. If the caller was holding
// a reference only to perform this invalidation, dropping that reference
// afterward will deliver a [Cache.NotifyPurgeable] call in the usual way.
func (c *Cache) RemoveUniqueKey(resource Resource) {
	if resource.UniqueKey().IsValid() {
		c.unique.Remove(resource.UniqueKey())
	}
	resource.SetUniqueKey(key.Unique{})
	c.validate()
}

// NotifyPurgeable must be called by resource when its external reference
// count reaches zero. It moves resource into the purgeable heap and
// decides whether to keep it (possibly admitting it into the budget) or
// release it immediately.
func (c *Cache) NotifyPurgeable(resource Resource) {
	assert.That(resource.CacheIndex() != -1, string(ErrNotTracked))
	assert.That(resource.IsPurgeable(), "NotifyPurgeable called on a non-purgeable resource")

	c.nonpurgeable.Remove(resource)
	c.purgeableH.Push(resource)

	if !resource.IsBudgeted() {
		if !resource.IsWrapped() && resource.ScratchKey().IsValid() {
			// We won't purge an existing resource to make room for this
			// one.
			size := resource.GPUMemorySize()
			if c.budgetedCount < c.maxCount && c.budgetedBytes+size <= c.maxBytes {
				resource.SetBudgeted(true)
				c.budgetedCount++
				c.budgetedBytes += size
				c.updateBudgetedHighWater()
				c.recordOccupancy()
				return
			}
		}
	} else {
		noKey := !resource.ScratchKey().IsValid() && !resource.UniqueKey().IsValid()
		if !c.overBudget() && !noKey {
			c.recordOccupancy()
			return
		}
	}

	before := c.resourceCount()
	resource.Release()
	assert.That(c.resourceCount() < before, "release did not remove the resource from the cache")
	c.recordOccupancy()
	c.validate()
}

// DidChangeGPUMemorySize must be called after resource's GPUMemorySize
// changes, with the size it reported before the change.
func (c *Cache) DidChangeGPUMemorySize(resource Resource, oldSize uint64) {
	assert.That(resource.CacheIndex() != -1, string(ErrNotTracked))

	newSize := resource.GPUMemorySize()
	delta := int64(newSize) - int64(oldSize)
	c.bytes = applyDelta(c.bytes, delta)
	c.updateHighWater()
	if resource.IsBudgeted() {
		c.budgetedBytes = applyDelta(c.budgetedBytes, delta)
		c.updateBudgetedHighWater()
	}

	c.purgeAsNeeded()
	c.recordOccupancy()
	c.validate()
}

// DidChangeBudgetStatus must be called after resource's IsBudgeted flag
// toggles by some means other than the cache itself (see
// [Cache.NotifyPurgeable] for the path the cache drives internally).
func (c *Cache) DidChangeBudgetStatus(resource Resource) {
	assert.That(resource.CacheIndex() != -1, string(ErrNotTracked))

	size := resource.GPUMemorySize()
	if resource.IsBudgeted() {
		c.budgetedCount++
		c.budgetedBytes += size
		c.updateBudgetedHighWater()
		c.purgeAsNeeded()
	} else {
		c.budgetedCount--
		c.budgetedBytes -= size
	}

	c.recordOccupancy()
	c.validate()
}

// purgeAsNeeded releases purgeable resources, oldest first, while the
// cache is over budget. If the heap drains and the cache is still over
// budget, it invokes the over-budget callback once.
func (c *Cache) purgeAsNeeded() {
	if !c.overBudget() {
		return
	}

	released := 0
	stillOverBudget := true
	for c.purgeableH.Len() > 0 {
		resource := c.purgeableH.Peek()
		resource.Release()
		released++
		if !c.overBudget() {
			stillOverBudget = false
			break
		}
	}
	if released > 0 && c.metrics != nil {
		c.metrics.IncEvictions(released)
	}
	c.validate()

	if stillOverBudget && c.overBudgetCB != nil {
		c.log.Warn("cache over budget after draining purgeable heap",
			zap.Int32("budgetedCount", c.budgetedCount),
			zap.Uint64("budgetedBytes", c.budgetedBytes),
		)
		if c.metrics != nil {
			c.metrics.IncOverBudget()
		}
		c.overBudgetCB()
		c.validate()
	}
}

// PurgeAllUnlocked releases every purgeable resource unconditionally.
func (c *Cache) PurgeAllUnlocked() {
	for c.purgeableH.Len() > 0 {
		c.purgeableH.Peek().Release()
	}
	c.recordOccupancy()
	c.validate()
}

// ProcessInvalidUniqueKeys clears the unique key of, and un-indexes, any
// tracked resource named by keys. Keys that no longer name a tracked
// resource are silently ignored, matching the best-effort delivery
// contract of the invalidation message bus.
func (c *Cache) ProcessInvalidUniqueKeys(keys []key.Unique) {
	for _, k := range keys {
		if resource, ok := c.unique.Find(k); ok {
			c.RemoveUniqueKey(resource)
		}
	}
}

// AbandonAll releases every tracked resource without tearing down GPU
// state, used when the device is lost.
func (c *Cache) AbandonAll() {
	for c.nonpurgeable.Len() > 0 {
		c.nonpurgeable.Last().Abandon()
	}
	for c.purgeableH.Len() > 0 {
		c.purgeableH.Peek().Abandon()
	}
	c.assertEmpty()
}

// ReleaseAll releases every tracked resource, tearing down GPU state.
func (c *Cache) ReleaseAll() {
	for c.nonpurgeable.Len() > 0 {
		c.nonpurgeable.Last().Release()
	}
	for c.purgeableH.Len() > 0 {
		c.purgeableH.Peek().Release()
	}
	c.assertEmpty()
}

func (c *Cache) assertEmpty() {
	assert.That(c.scratch.Count() == 0, "scratch map not empty after drain")
	assert.That(c.unique.Count() == 0, "unique hash not empty after drain")
	assert.That(c.resourceCount() == 0, "resource count not zero after drain")
	assert.That(c.bytes == 0, "bytes not zero after drain")
	assert.That(c.budgetedCount == 0, "budgeted count not zero after drain")
	assert.That(c.budgetedBytes == 0, "budgeted bytes not zero after drain")
	c.recordOccupancy()
}

func (c *Cache) updateHighWater() {
	if n := c.resourceCount(); n > c.highWaterCount {
		c.highWaterCount = n
	}
	if c.bytes > c.highWaterBytes {
		c.highWaterBytes = c.bytes
	}
}

func (c *Cache) updateBudgetedHighWater() {
	if c.budgetedCount > c.budgetedHighWaterCount {
		c.budgetedHighWaterCount = c.budgetedCount
	}
	if c.budgetedBytes > c.budgetedHighWaterBytes {
		c.budgetedHighWaterBytes = c.budgetedBytes
	}
}

func (c *Cache) recordOccupancy() {
	if c.metrics != nil {
		c.metrics.SetOccupancy(c.resourceCount(), c.bytes, int(c.budgetedCount), c.budgetedBytes)
	}
}

func applyDelta(v uint64, delta int64) uint64 {
	return uint64(int64(v) + delta)
}

// nextTimestamp returns the next LRU timestamp, running wrap recovery
// first if the allocator has just wrapped around.
func (c *Cache) nextTimestamp() uint32 {
	if c.clock.AtWrapPoint() {
		if n := c.resourceCount(); n > 0 {
			c.recoverFromWrap(n)
		}
	}
	return c.clock.Next()
}

// recoverFromWrap renumbers every tracked resource's timestamp to a dense
// sequence starting at 0, preserving relative order, then resumes the
// allocator at count. Without this, resources that survived the wrap
// would appear newer than resources timestamped just after it, corrupting
// LRU order.
func (c *Cache) recoverFromWrap(count int) {
	c.log.Info("recovering from timestamp wrap", zap.Int("resources", count))

	// Popping a min-heap yields ascending timestamp order for free.
	sortedPurgeable := make([]Resource, 0, c.purgeableH.Len())
	for c.purgeableH.Len() > 0 {
		sortedPurgeable = append(sortedPurgeable, c.purgeableH.Pop())
	}

	c.nonpurgeable.Sort(func(a, b Resource) bool {
		return a.CacheTimestamp() < b.CacheTimestamp()
	})

	var (
		next           uint32
		pi, ni         int
		nonpurgeableLn = c.nonpurgeable.Len()
	)
	for pi < len(sortedPurgeable) && ni < nonpurgeableLn {
		p, n := sortedPurgeable[pi], c.nonpurgeable.At(ni)
		assert.That(p.CacheTimestamp() != n.CacheTimestamp(), "two resources share a timestamp before wrap recovery")
		if p.CacheTimestamp() < n.CacheTimestamp() {
			p.SetCacheTimestamp(next)
			next++
			pi++
		} else {
			n.SetCacheTimestamp(next)
			next++
			ni++
		}
	}
	for ; pi < len(sortedPurgeable); pi++ {
		sortedPurgeable[pi].SetCacheTimestamp(next)
		next++
	}
	for ; ni < nonpurgeableLn; ni++ {
		c.nonpurgeable.At(ni).SetCacheTimestamp(next)
		next++
	}

	for _, r := range sortedPurgeable {
		c.purgeableH.Push(r)
	}

	assert.That(int(next) == count, "recovered timestamp count does not match tracked resource count")
	c.clock.Resume(next)
}
