// Package gpucache implements a budgeted cache for GPU-backed resources.
//
// A [Cache] tracks resources across two partitions: nonpurgeable (held by
// at least one external reference) and purgeable (no outstanding
// references, eligible for reuse or eviction). Resources move between
// partitions as references are acquired and released; the cache assigns
// each a monotonic timestamp when it is inserted and whenever a scratch
// lookup hands it back out, to maintain LRU order within the purgeable
// partition, recovering transparently if the timestamp counter wraps
// around.
//
// Resources are looked up two ways. A [key.Scratch] key names a pool of
// interchangeable resources (e.g. "512x512 RGBA8 texture"); any purgeable
// resource under that key may satisfy a new request for one via
// [Cache.FindAndRefScratchResource]. A [key.Unique] key names exactly one
// resource, reassigned through [Cache.ChangeUniqueKey] and invalidated
// asynchronously through the invalidate package.
//
// The cache assumes all mutating methods are called from a single
// goroutine, conventionally the goroutine that owns the GPU context.
package gpucache
