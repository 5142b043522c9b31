// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc_test

import (
	"testing"

	"code.hybscloud.com/conc"
	"code.hybscloud.com/iox"
)

func TestFixedStackAllocator(t *testing.T) {
	a := conc.FixedStackAllocator{}
	if !a.ThreadSafe() {
		t.Fatalf("fixed allocator not thread-safe")
	}
	sc := a.Allocate()
	if sc == nil {
		t.Fatalf("allocate returned nil")
	}
	a.Deallocate(sc)
	a.Deallocate(nil) // no-op
}

func TestPooledStackAllocatorReuse(t *testing.T) {
	skipRace(t)
	a := conc.NewPooledStackAllocator(8)
	sc := a.Allocate()
	a.Deallocate(sc)
	sc2 := a.Allocate()
	if sc2 != sc {
		t.Fatalf("pooled allocator did not recycle the freed context")
	}
}

func TestPooledStackAllocatorReserve(t *testing.T) {
	skipRace(t)
	a := conc.NewPooledStackAllocator(8)
	if _, err := a.TryAllocate(); !iox.IsWouldBlock(err) {
		t.Fatalf("tryallocate on empty pool got %v, want would-block", err)
	}
	a.Reserve(4)
	for i := range 4 {
		if _, err := a.TryAllocate(); err != nil {
			t.Fatalf("tryallocate %d after reserve: %v", i, err)
		}
	}
	if _, err := a.TryAllocate(); !iox.IsWouldBlock(err) {
		t.Fatalf("tryallocate past reserve got %v, want would-block", err)
	}
	// Allocate falls back to a fresh context when the pool is empty
	if sc := a.Allocate(); sc == nil {
		t.Fatalf("allocate fallback returned nil")
	}
}

func TestLocalStackAllocator(t *testing.T) {
	a := conc.NewLocalStackAllocator()
	if a.ThreadSafe() {
		t.Fatalf("local allocator reports thread-safe")
	}
	sc := a.Allocate()
	a.Deallocate(sc)
	if sc2 := a.Allocate(); sc2 != sc {
		t.Fatalf("local allocator did not recycle the freed context")
	}
	a.Reserve(3)
	for range 3 {
		if sc := a.Allocate(); sc == nil {
			t.Fatalf("allocate after reserve returned nil")
		}
	}
}

func TestCoroutineOnPooledStack(t *testing.T) {
	skipRace(t)
	a := conc.NewPooledStackAllocator(4)
	for range 8 {
		f := conc.NewCoroutineStack(func(y *conc.Yielder[int, int], n int) int {
			return n * 2
		}, a)
		v, err := f.Resume(21)
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if v != 42 {
			t.Fatalf("got %d, want 42", v)
		}
	}
}
