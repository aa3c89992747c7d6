//go:build !gpucache_debug

package gpucache

// validate is a no-op outside debug builds; see cache_validate.go.
func (c *Cache) validate() {}
