//go:build gpucache_debug

package gpucache

import "github.com/djdv/gpucache/internal/assert"

// validationSamplePeriod bounds how often validate actually walks the
// cache's partitions. Full validation is O(n); running it on every
// mutation would make debug builds unusable on any cache of meaningful
// size, so only every Nth call pays for it. The counter is a plain
// field, not time- or randomness-based, so a given test run validates
// the same call sites every time it's re-run.
const validationSamplePeriod = 31

// validate walks the cache's internal structures and panics if a
// resource sits in the wrong partition, has a negative cache index, or
// if the byte, budget, resource, scratch-map or unique-hash totals
// disagree with the walk. It does not check that a stored index equals
// the resource's position, nor the wrapped, budgeted-unique-key or
// timestamp invariants. Only compiled into debug
// builds (gpucache_debug); see cache_validate_release.go for the
// release no-op.
func (c *Cache) validate() {
	c.validationCounter++
	if c.validationCounter%validationSamplePeriod != 0 {
		return
	}

	var (
		bytes, budgetedBytes uint64
		budgetedCount        int32
		nonpurgeableCount    int
		purgeableCount       int
		scratchResidentCount int
		uniqueResidentCount  int
	)

	c.nonpurgeable.Each(func(r Resource) {
		assert.That(!r.IsPurgeable(), "resource in nonpurgeable array reports itself purgeable")
		assert.That(r.CacheIndex() >= 0, "nonpurgeable resource has a negative cache index")
		nonpurgeableCount++
		bytes += r.GPUMemorySize()
		if r.IsBudgeted() {
			budgetedCount++
			budgetedBytes += r.GPUMemorySize()
		}
		if r.ScratchKey().IsValid() {
			scratchResidentCount++
		}
		if r.UniqueKey().IsValid() {
			uniqueResidentCount++
		}
	})
	c.purgeableH.Each(func(r Resource) {
		assert.That(r.IsPurgeable(), "resource in purgeable heap reports itself not purgeable")
		assert.That(r.CacheIndex() >= 0, "purgeable resource has a negative cache index")
		purgeableCount++
		bytes += r.GPUMemorySize()
		if r.IsBudgeted() {
			budgetedCount++
			budgetedBytes += r.GPUMemorySize()
		}
		if r.ScratchKey().IsValid() {
			scratchResidentCount++
		}
		if r.UniqueKey().IsValid() {
			uniqueResidentCount++
		}
	})

	assert.That(bytes == c.bytes, "tracked byte total diverged from walked total")
	assert.That(budgetedBytes == c.budgetedBytes, "budgeted byte total diverged from walked total")
	assert.That(budgetedCount == c.budgetedCount, "budgeted count diverged from walked total")
	assert.That(nonpurgeableCount+purgeableCount == c.resourceCount(), "resource count diverged from walked total")
	assert.That(c.scratch.Count() == scratchResidentCount, "scratch map entry count diverged from resources carrying a valid scratch key")
	assert.That(c.unique.Count() == uniqueResidentCount, "unique hash entry count diverged from resources carrying a valid unique key")
}
