// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"runtime"

	"code.hybscloud.com/atomix"
)

// word is the datum carried across a context switch: the resumer sends
// a resume or unwind request in, the coroutine reports why it came
// back out.
type word uint8

const (
	wordResume word = iota
	wordUnwind
	wordYielded
	wordWaiting
	wordDead
)

// Context states. Hold: suspended or not yet started. Exec: running.
// Term: finished, resources released; terminal.
const (
	stateHold uint32 = iota
	stateExec
	stateTerm
)

// coroContext is the suspend/resume engine every coroutine-like type
// is built on. The switch primitive is the unbuffered transfer channel
// in the stack context: exactly one side runs at a time, and every
// handoff synchronizes the slots the two sides share.
//
// A context is not copied and not moved once makeContext has run.
type coroContext struct {
	stack *StackContext
	state atomix.Uint32

	// fault carries a panic out of the body; re-raised on the resumer
	// at the resume call that observed the death, exactly once.
	fault   any
	faulted bool

	// task points back at the owning scheduler task, if any.
	task any
}

// makeContext acquires activation resources from sa and starts the
// backing goroutine. The body does not run until the first call; the
// trampoline parks on the transfer channel waiting for a resume or an
// unwind request.
func (c *coroContext) makeContext(sa StackAllocator, entry func()) {
	c.stack = sa.Allocate()
	xfer := c.stack.xfer
	go func() {
		id := glsStore(c)
		defer func() {
			if r := recover(); r != nil {
				c.fault = r
				c.faulted = true
			}
			c.state.Store(stateTerm)
			xfer <- wordDead
			glsClear(id)
		}()
		if w := <-xfer; w == wordUnwind {
			return
		}
		entry()
	}()
}

// call resumes the context and blocks until it yields, blocks on a
// scheduler condvar, or dies. It returns the word the coroutine came
// back with. On death the stack is released and any captured body
// panic is re-raised here, on the resumer.
//
// The caller must have checked alive(); resuming a Term context is a
// programming error upstream.
func (c *coroContext) call() word {
	xfer := c.stack.xfer
	c.state.Store(stateExec)
	xfer <- wordResume
	w := <-xfer
	if w == wordDead {
		c.releaseStack()
		c.rethrow()
	}
	return w
}

// yieldJump suspends the running context, reporting w to whoever
// called call. It returns once resumed; an unwind request terminates
// the goroutine via runtime.Goexit so deferred cleanup runs.
// Must be called on the context's own goroutine.
func (c *coroContext) yieldJump(w word) {
	xfer := c.stack.xfer
	c.state.Store(stateHold)
	xfer <- w
	if in := <-xfer; in == wordUnwind {
		runtime.Goexit()
	}
}

// unwind forces a suspended (or never started) context to terminate,
// running its deferred cleanup. No-op on a Term context; unwinding a
// running context is not possible.
func (c *coroContext) unwind() {
	if c.stack == nil {
		return
	}
	switch c.state.Load() {
	case stateTerm:
		return
	case stateExec:
		panic("conc: unwind of a running coroutine")
	}
	xfer := c.stack.xfer
	xfer <- wordUnwind
	<-xfer // wordDead
	c.releaseStack()
	c.rethrow()
}

// alive reports whether the context can still be resumed.
func (c *coroContext) alive() bool {
	return c.stack != nil && c.state.Load() != stateTerm
}

// releaseStack returns the activation resources to their allocator.
// Called exactly once, by whichever side observed the death word.
func (c *coroContext) releaseStack() {
	if sc := c.stack; sc != nil {
		c.stack = nil
		sc.alloc.Deallocate(sc)
	}
}

// rethrow re-raises a captured body panic, exactly once.
func (c *coroContext) rethrow() {
	if c.faulted {
		r := c.fault
		c.fault, c.faulted = nil, false
		panic(r)
	}
}
