// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"code.hybscloud.com/lfq"
)

// StackContext holds the per-activation resources backing one
// coroutine: the transfer channel used by the switch primitive and the
// allocator that owns the context. The goroutine stack itself is
// runtime-managed; what an allocator recycles is everything else a
// coroutine activation needs.
type StackContext struct {
	xfer  chan word
	alloc StackAllocator
}

// StackAllocator provides and recycles coroutine activation resources.
// Schedulers consume allocators through this interface; an allocator
// reporting ThreadSafe() false is serialized by the owning scheduler.
type StackAllocator interface {
	// Allocate returns a context ready for use by one coroutine.
	Allocate() *StackContext
	// Deallocate returns a context to the allocator. The context must
	// not be used afterwards.
	Deallocate(sc *StackContext)
	// Reserve pre-provisions resources for n future allocations.
	Reserve(n int)
	// ThreadSafe reports whether the allocator may be called
	// concurrently without external locking.
	ThreadSafe() bool
}

func newStackContext() *StackContext {
	return &StackContext{xfer: make(chan word)}
}

// FixedStackAllocator allocates fresh resources on every request and
// lets the garbage collector reclaim them. It is stateless and safe
// for concurrent use.
type FixedStackAllocator struct{}

func (a FixedStackAllocator) Allocate() *StackContext {
	sc := newStackContext()
	sc.alloc = a
	return sc
}

func (FixedStackAllocator) Deallocate(sc *StackContext) {
	if sc != nil {
		sc.alloc = nil
	}
}

func (FixedStackAllocator) Reserve(int) {}

func (FixedStackAllocator) ThreadSafe() bool { return true }

// PooledStackAllocator recycles contexts through a bounded lock-free
// MPMC free list. Allocation falls back to a fresh context when the
// pool is empty; deallocation into a full pool drops the context for
// the garbage collector. Safe for concurrent use without locking.
type PooledStackAllocator struct {
	free lfq.Queue[*StackContext]
}

// NewPooledStackAllocator creates a pooled allocator retaining up to
// capacity idle contexts. Capacity rounds up to the next power of two
// (lfq semantics); the minimum is 2.
func NewPooledStackAllocator(capacity int) *PooledStackAllocator {
	if capacity < 2 {
		capacity = 2
	}
	return &PooledStackAllocator{free: lfq.NewMPMC[*StackContext](capacity)}
}

func (a *PooledStackAllocator) Allocate() *StackContext {
	sc, err := a.free.Dequeue()
	if err != nil {
		sc = newStackContext()
	}
	sc.alloc = a
	return sc
}

// TryAllocate returns a pooled context or iox.ErrWouldBlock when the
// free list is empty, without falling back to a fresh allocation.
func (a *PooledStackAllocator) TryAllocate() (*StackContext, error) {
	sc, err := a.free.Dequeue()
	if err != nil {
		return nil, err
	}
	sc.alloc = a
	return sc, nil
}

func (a *PooledStackAllocator) Deallocate(sc *StackContext) {
	if sc == nil {
		return
	}
	sc.alloc = nil
	_ = a.free.Enqueue(&sc)
}

func (a *PooledStackAllocator) Reserve(n int) {
	for range n {
		sc := newStackContext()
		if a.free.Enqueue(&sc) != nil {
			return
		}
	}
}

func (a *PooledStackAllocator) ThreadSafe() bool { return true }

// LocalStackAllocator recycles contexts through an unsynchronized
// slice. It reports ThreadSafe() false, so schedulers that share it
// across workers serialize access; the N:1 scheduler needs no lock by
// construction.
type LocalStackAllocator struct {
	free []*StackContext
}

func NewLocalStackAllocator() *LocalStackAllocator {
	return &LocalStackAllocator{}
}

func (a *LocalStackAllocator) Allocate() *StackContext {
	if n := len(a.free); n > 0 {
		sc := a.free[n-1]
		a.free = a.free[:n-1]
		sc.alloc = a
		return sc
	}
	sc := newStackContext()
	sc.alloc = a
	return sc
}

func (a *LocalStackAllocator) Deallocate(sc *StackContext) {
	if sc == nil {
		return
	}
	sc.alloc = nil
	a.free = append(a.free, sc)
}

func (a *LocalStackAllocator) Reserve(n int) {
	for range n {
		a.free = append(a.free, newStackContext())
	}
}

func (a *LocalStackAllocator) ThreadSafe() bool { return false }
