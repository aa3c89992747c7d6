// Package nonpurgeable implements the cache's in-use partition: an
// unordered vector of resources with O(1) removal via swap-with-last,
// using a back-index stored on each resource.
package nonpurgeable

import "sort"

// Indexed is the capability the nonpurgeable array needs from a tracked
// resource: a slot to record its current position, so removal can be
// O(1) instead of a linear scan.
type Indexed interface {
	CacheIndex() int
	SetCacheIndex(int)
}

// Array is an unordered vector of in-use resources. The zero value is
// ready to use.
type Array[R Indexed] struct {
	resources []R
}

// Len returns the number of tracked resources.
func (a *Array[R]) Len() int {
	return len(a.resources)
}

// Add appends resource to the array and records its slot index on it.
func (a *Array[R]) Add(resource R) {
	index := len(a.resources)
	a.resources = append(a.resources, resource)
	resource.SetCacheIndex(index)
}

// Remove removes resource from the array using its stored index: the
// tail element is moved into the vacated slot and its index is updated,
// then the array is shrunk by one. resource must currently be tracked by
// this array at the index it reports via CacheIndex.
func (a *Array[R]) Remove(resource R) {
	index := resource.CacheIndex()
	last := len(a.resources) - 1
	tail := a.resources[last]
	a.resources[index] = tail
	tail.SetCacheIndex(index)
	var zero R
	a.resources[last] = zero
	a.resources = a.resources[:last]
	resource.SetCacheIndex(-1)
}

// At returns the resource at position i. It panics if i is out of range.
func (a *Array[R]) At(i int) R {
	return a.resources[i]
}

// Each calls fn for every tracked resource in unspecified order. fn must
// not mutate the array.
func (a *Array[R]) Each(fn func(R)) {
	for _, r := range a.resources {
		fn(r)
	}
}

// Last returns the resource currently at the tail of the array. It
// panics if the array is empty.
func (a *Array[R]) Last() R {
	return a.resources[len(a.resources)-1]
}

// Sort reorders the array in place according to less, correcting every
// resource's stored index to match its new slot. Used by timestamp wrap
// recovery.
func (a *Array[R]) Sort(less func(a, b R) bool) {
	sort.Slice(a.resources, func(i, j int) bool {
		return less(a.resources[i], a.resources[j])
	})
	for i, r := range a.resources {
		r.SetCacheIndex(i)
	}
}
