package scratchmap_test

import (
	"testing"

	"github.com/djdv/gpucache/internal/scratchmap"
	"github.com/djdv/gpucache/key"
)

type resource struct {
	name        string
	pendingIO   bool
	outstanding bool
}

func TestInsertFindRemove(t *testing.T) {
	var m scratchmap.Map[*resource]
	typ := key.GenerateResourceType()
	k := key.NewScratch(typ, []byte("pool"))

	r1 := &resource{name: "r1", pendingIO: true}
	r2 := &resource{name: "r2"}
	m.Insert(k, r1)
	m.Insert(k, r2)

	if got := m.CountForKey(k); got != 2 {
		t.Fatalf("CountForKey() = %d, want 2", got)
	}

	noIO := func(r *resource) bool { return !r.pendingIO }
	found, ok := m.Find(k, noIO)
	if !ok || found != r2 {
		t.Fatalf("Find() = (%v, %v), want (r2, true)", found, ok)
	}

	m.Remove(k, r2)
	if got := m.CountForKey(k); got != 1 {
		t.Fatalf("CountForKey() after remove = %d, want 1", got)
	}
	_, ok = m.Find(k, noIO)
	if ok {
		t.Fatal("Find() should miss once the only matching resource is removed")
	}

	m.Remove(k, r1)
	if got := m.CountForKey(k); got != 0 {
		t.Fatalf("CountForKey() after draining key = %d, want 0", got)
	}
	if got := m.Count(); got != 0 {
		t.Fatalf("Count() = %d, want 0", got)
	}
}

func TestFindRequiresPredicateMatch(t *testing.T) {
	var m scratchmap.Map[*resource]
	typ := key.GenerateResourceType()
	k := key.NewScratch(typ, []byte("pool"))
	m.Insert(k, &resource{name: "only", pendingIO: true})

	_, ok := m.Find(k, func(r *resource) bool { return !r.pendingIO })
	if ok {
		t.Fatal("Find() matched a resource that fails the predicate")
	}
}

func TestRemoveMissingKeyIsNoop(t *testing.T) {
	var m scratchmap.Map[*resource]
	typ := key.GenerateResourceType()
	k := key.NewScratch(typ, []byte("pool"))
	m.Remove(k, &resource{name: "ghost"})
	if got := m.Count(); got != 0 {
		t.Fatalf("Count() = %d, want 0", got)
	}
}
