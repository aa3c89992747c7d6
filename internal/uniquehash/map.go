// Package uniquehash implements the injective map from UniqueKey to the
// single resource that currently holds it.
package uniquehash

import (
	"fmt"

	"github.com/djdv/gpucache/key"
)

// Map is an injective map keyed by [key.Unique]: each key maps to at most
// one resource. The zero value is ready to use.
type Map[R any] struct {
	entries map[key.Unique]R
}

// Add registers resource under k. It panics if
// a resource is already registered under that key; the cache controller
// is responsible for enforcing uniqueness before calling Add (spec's
// "contract violation" for a double-add of a UniqueKey).
func (m *Map[R]) Add(k key.Unique, resource R) {
	if m.entries == nil {
		m.entries = make(map[key.Unique]R)
	}
	if _, exists := m.entries[k]; exists {
		panic(fmt.Sprintf("uniquehash: key %s already registered", k))
	}
	m.entries[k] = resource
}

// Remove removes the entry for key, if any.
func (m *Map[R]) Remove(k key.Unique) {
	delete(m.entries, k)
}

// Find returns the resource registered under key, if any.
func (m *Map[R]) Find(k key.Unique) (R, bool) {
	r, ok := m.entries[k]
	return r, ok
}

// Count returns the number of registered keys.
func (m *Map[R]) Count() int {
	return len(m.entries)
}
