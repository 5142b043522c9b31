// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import "runtime"

// coroCore carries the shared slots both sides of a coroutine use.
// Argument and result cross the switch boundary through these slots;
// every handoff on the transfer channel orders the accesses, so
// exactly one side touches them at a time.
type coroCore[A, R any] struct {
	coroContext
	fn  func(*Yielder[A, R], A) R
	arg A
	res R
}

// Coroutine is a resumable function: Resume runs the body until it
// yields or returns, passing values in both directions. Data flows out
// through the value given to Yield (or the body's return value), and
// flows back in through the argument of the next Resume, which becomes
// Yield's return value inside the body. Turns alternate.
//
// Use struct{} for A or R when a direction carries no data.
type Coroutine[A, R any] struct {
	core *coroCore[A, R]
}

// Yielder suspends a coroutine from inside its body.
type Yielder[A, R any] struct {
	core *coroCore[A, R]
}

// Yield publishes r to the pending Resume call and suspends. It
// returns the argument of the next Resume.
func (y *Yielder[A, R]) Yield(r R) A {
	y.core.res = r
	y.core.yieldJump(wordYielded)
	return y.core.arg
}

// NewCoroutine creates a coroutine running fn on the default
// allocator. A nil fn yields a coroutine that is dead on construction.
// The body does not run until the first Resume.
func NewCoroutine[A, R any](fn func(*Yielder[A, R], A) R) *Coroutine[A, R] {
	return NewCoroutineStack(fn, FixedStackAllocator{})
}

// NewCoroutineStack creates a coroutine drawing its activation
// resources from sa.
//
// A coroutine abandoned while still suspended is force-unwound when
// the garbage collector drops the handle, so deferred cleanup in the
// body runs and the activation resources return to sa.
func NewCoroutineStack[A, R any](fn func(*Yielder[A, R], A) R, sa StackAllocator) *Coroutine[A, R] {
	core := &coroCore[A, R]{fn: fn}
	c := &Coroutine[A, R]{core: core}
	if fn == nil {
		return c
	}
	core.makeContext(sa, func() {
		core.res = core.fn(&Yielder[A, R]{core: core}, core.arg)
	})
	runtime.AddCleanup(c, func(core *coroCore[A, R]) { core.unwind() }, core)
	return c
}

// Alive reports whether the coroutine can still be resumed. It is
// true until the body runs to completion, panics, or is unwound.
func (c *Coroutine[A, R]) Alive() bool {
	return c.core.alive()
}

// Resume runs the coroutine until its next yield or return. It returns
// the yielded value, or the body's return value on the final resume.
// Resuming a dead coroutine returns ErrDeadCoroutine. A panic in the
// body is re-raised here, exactly once, after which the coroutine is
// dead.
//
// The argument is observed by the body exactly as passed: as Yield's
// return value, or as the body argument on the first resume. Exactly
// one resume is in flight at a time.
func (c *Coroutine[A, R]) Resume(a A) (R, error) {
	core := c.core
	if !core.alive() {
		var zero R
		return zero, ErrDeadCoroutine
	}
	core.arg = a
	core.call()
	// keep the handle reachable across the body's run, or the cleanup
	// could observe an executing context and unwind it mid-flight
	runtime.KeepAlive(c)
	return core.res, nil
}

// Call is Resume under the name the callable-object view of a
// coroutine suggests.
func (c *Coroutine[A, R]) Call(a A) (R, error) {
	return c.Resume(a)
}

// Cancel force-unwinds a suspended coroutine: the body's deferred
// cleanup runs and the coroutine becomes dead. No-op if already dead.
// Cancel must not be called while the coroutine is running.
func (c *Coroutine[A, R]) Cancel() {
	c.core.unwind()
	runtime.KeepAlive(c)
}
