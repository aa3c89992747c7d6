package gpucache

import (
	"testing"

	"github.com/djdv/gpucache/key"
)

// BenchmarkCacheInsertEvict mirrors the teacher's own BenchmarkCache
// style, here over insert/unref/reuse against a single scratch key
// instead of a plain get/set cache.
func BenchmarkCacheInsertEvict(b *testing.B) {
	const (
		maxCount = 512
		maxBytes = ^uint64(0)
	)
	c := NewCache(WithLimits(maxCount, maxBytes))
	sk := key.NewScratch(key.GenerateResourceType(), []byte("bench"))

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		if found, ok := c.FindAndRefScratchResource(sk, 0); ok {
			found.(*fakeResource).Unref()
			continue
		}
		r := newFakeResource(c, "bench", 4096)
		r.budgeted = true
		r.scratchKey = sk
		c.Insert(r)
		r.Unref()
	}
}
