package invalidate_test

import (
	"testing"

	"github.com/djdv/gpucache/invalidate"
	"github.com/djdv/gpucache/key"
)

func TestPublishDrainOrder(t *testing.T) {
	bus := invalidate.NewBus(4)
	dom := key.GenerateDomain()
	k1 := key.NewUnique(dom, []byte("a"))
	k2 := key.NewUnique(dom, []byte("b"))

	bus.Publish(k1)
	bus.Publish(k2)

	got := bus.Drain()
	if len(got) != 2 || got[0] != k1 || got[1] != k2 {
		t.Fatalf("Drain() = %v, want [%v %v]", got, k1, k2)
	}

	if got := bus.Drain(); len(got) != 0 {
		t.Fatalf("second Drain() = %v, want empty", got)
	}
}

func TestPublishDropsWhenFull(t *testing.T) {
	bus := invalidate.NewBus(1)
	dom := key.GenerateDomain()
	k1 := key.NewUnique(dom, []byte("a"))
	k2 := key.NewUnique(dom, []byte("b"))

	bus.Publish(k1)
	bus.Publish(k2) // queue full, dropped rather than blocking

	got := bus.Drain()
	if len(got) != 1 || got[0] != k1 {
		t.Fatalf("Drain() = %v, want [%v]", got, k1)
	}
}
