package uniquehash_test

import (
	"testing"

	"github.com/djdv/gpucache/internal/uniquehash"
	"github.com/djdv/gpucache/key"
)

func TestAddFindRemove(t *testing.T) {
	var m uniquehash.Map[string]
	dom := key.GenerateDomain()
	k := key.NewUnique(dom, []byte("entry-1"))

	m.Add(k, "resource-a")
	if got, ok := m.Find(k); !ok || got != "resource-a" {
		t.Fatalf("Find() = (%q, %v), want (\"resource-a\", true)", got, ok)
	}
	if m.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", m.Count())
	}

	m.Remove(k)
	if _, ok := m.Find(k); ok {
		t.Fatal("Find() should miss after Remove")
	}
	if m.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", m.Count())
	}
}

func TestAddDuplicatePanics(t *testing.T) {
	var m uniquehash.Map[string]
	dom := key.GenerateDomain()
	k := key.NewUnique(dom, []byte("entry-1"))
	m.Add(k, "first")

	defer func() {
		if recover() == nil {
			t.Fatal("Add should panic on duplicate key registration")
		}
	}()
	m.Add(k, "second")
}
