// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"iter"
	"runtime"
)

type genCore[T any] struct {
	coroContext
	fn  func(*Producer[T])
	val *T
}

// Generator is a coroutine specialized for producing a sequence: the
// body yields values out and nothing flows back in. Construction runs
// the body up to its first yield, so the first value is available
// immediately; a body that returns without yielding produces an
// empty, dead generator.
type Generator[T any] struct {
	core *genCore[T]
}

// Producer emits values from inside a generator body.
type Producer[T any] struct {
	core *genCore[T]
}

// Yield publishes v as the generator's current value and suspends
// until the next Resume.
func (p *Producer[T]) Yield(v T) {
	p.core.val = &v
	p.core.yieldJump(wordYielded)
}

// NewGenerator creates a generator running fn on the default allocator
// and advances it to its first value. A nil fn yields a dead, empty
// generator.
func NewGenerator[T any](fn func(*Producer[T])) *Generator[T] {
	return NewGeneratorStack(fn, FixedStackAllocator{})
}

// NewGeneratorStack creates a generator drawing its activation
// resources from sa. Like a coroutine, an abandoned suspended
// generator is force-unwound when the handle is collected.
func NewGeneratorStack[T any](fn func(*Producer[T]), sa StackAllocator) *Generator[T] {
	core := &genCore[T]{fn: fn}
	g := &Generator[T]{core: core}
	if fn == nil {
		return g
	}
	core.makeContext(sa, func() {
		core.fn(&Producer[T]{core: core})
		core.val = nil
	})
	runtime.AddCleanup(g, func(core *genCore[T]) { core.unwind() }, core)
	core.call()
	return g
}

// Value returns the current value, or ErrNoValue when the generator
// is empty. Value does not advance the generator; successive calls
// return the same value until Resume.
func (g *Generator[T]) Value() (T, error) {
	if g.Empty() {
		var zero T
		return zero, ErrNoValue
	}
	v := *g.core.val
	runtime.KeepAlive(g)
	return v, nil
}

// Resume advances the generator to its next value. It returns
// ErrDeadGenerator once the body has finished. A panic in the body is
// re-raised here, exactly once.
func (g *Generator[T]) Resume() error {
	if !g.core.alive() {
		return ErrDeadGenerator
	}
	g.core.call()
	// keep the handle reachable across the body's run, or the cleanup
	// could observe an executing context and unwind it mid-flight
	runtime.KeepAlive(g)
	return nil
}

// Empty reports whether the generator holds no current value. A dead
// generator is always empty.
func (g *Generator[T]) Empty() bool {
	return g.core.val == nil || !g.core.alive()
}

// Alive reports whether the generator can still be resumed.
func (g *Generator[T]) Alive() bool {
	return g.core.alive()
}

// Cancel force-unwinds a suspended generator, running the body's
// deferred cleanup. No-op if already dead.
func (g *Generator[T]) Cancel() {
	g.core.unwind()
	runtime.KeepAlive(g)
}

// Iter adapts the generator to a range-over-func sequence. The
// sequence consumes the generator: values already produced before Iter
// are included, and breaking out leaves the generator suspended at the
// unconsumed value.
func (g *Generator[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := g.Value()
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
			if g.Resume() != nil {
				return
			}
		}
	}
}
