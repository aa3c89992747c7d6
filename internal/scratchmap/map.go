// Package scratchmap implements the multimap from ScratchKey to the set
// of resources interchangeable under that key.
package scratchmap

import "github.com/djdv/gpucache/key"

// Map is a multimap keyed by [key.Scratch]. The zero value is ready to
// use.
type Map[R comparable] struct {
	buckets map[key.Scratch][]R
}

// Insert adds resource under key. The same resource may be inserted
// under at most one key at a time in practice, but the map itself does
// not enforce that; the caller (the cache controller) owns that
// invariant.
func (m *Map[R]) Insert(k key.Scratch, resource R) {
	if m.buckets == nil {
		m.buckets = make(map[key.Scratch][]R)
	}
	m.buckets[k] = append(m.buckets[k], resource)
}

// Remove removes one specific occurrence of resource stored under key.
// It is a no-op if resource is not present under key.
func (m *Map[R]) Remove(k key.Scratch, resource R) {
	bucket, ok := m.buckets[k]
	if !ok {
		return
	}
	for i, r := range bucket {
		if r == resource {
			last := len(bucket) - 1
			bucket[i] = bucket[last]
			var zero R
			bucket[last] = zero
			bucket = bucket[:last]
			break
		}
	}
	if len(bucket) == 0 {
		delete(m.buckets, k)
	} else {
		m.buckets[k] = bucket
	}
}

// Find returns any resource stored under key for which predicate holds,
// preferring (but not guaranteeing beyond) insertion order, along with
// true. If no resource under key satisfies predicate, it returns the
// zero value and false.
func (m *Map[R]) Find(k key.Scratch, predicate func(R) bool) (R, bool) {
	for _, r := range m.buckets[k] {
		if predicate(r) {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// CountForKey returns the number of resources currently stored under key.
func (m *Map[R]) CountForKey(k key.Scratch) int {
	return len(m.buckets[k])
}

// Count returns the total number of (key, resource) entries across all
// keys.
func (m *Map[R]) Count() int {
	n := 0
	for _, bucket := range m.buckets {
		n += len(bucket)
	}
	return n
}
