package clock_test

import (
	"math"
	"testing"

	"github.com/djdv/gpucache/internal/clock"
)

func TestAllocatorSequence(t *testing.T) {
	var a clock.Allocator
	for i := uint32(0); i < 5; i++ {
		if got := a.Next(); got != i {
			t.Fatalf("Next() = %d, want %d", got, i)
		}
	}
}

func TestAllocatorWrapPoint(t *testing.T) {
	var a clock.Allocator
	if !a.AtWrapPoint() {
		t.Fatal("fresh allocator should be at the wrap point")
	}
	a.Next()
	if a.AtWrapPoint() {
		t.Fatal("allocator should not be at the wrap point after one Next()")
	}

	a.Resume(math.MaxUint32)
	if got := a.Next(); got != math.MaxUint32 {
		t.Fatalf("Next() = %d, want MaxUint32", got)
	}
	if !a.AtWrapPoint() {
		t.Fatal("allocator should report the wrap point immediately after wrapping")
	}
}

func TestAllocatorResume(t *testing.T) {
	var a clock.Allocator
	a.Resume(100)
	if got := a.Next(); got != 100 {
		t.Fatalf("Next() = %d, want 100", got)
	}
}
