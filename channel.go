// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

type chanNode[T any] struct {
	val  T
	next *chanNode[T]
}

type chanState[T any] struct {
	mu     sync.Mutex
	cond   Condvar
	head   *chanNode[T]
	tail   *chanNode[T]
	closed bool

	// closedWord mirrors closed for the lock-free Closed query.
	closedWord atomix.Uint32
	serial     Serial
}

// Channel is an unbounded FIFO queue shared between producers and
// consumers. Handles are values: copying a Channel yields another
// handle on the same queue, so channels pass by value through Spawn
// closures the way file descriptors pass between processes.
//
// Get blocks until an item or close; how it blocks is decided by the
// condvar the channel was built with, so a channel made by
// MakeChannel under a coroutine scheduler suspends the calling task
// instead of the OS thread.
type Channel[T any] struct {
	s *chanState[T]
}

// NewChannel creates a channel whose consumers block on the native
// condvar. Use MakeChannel inside a running scheduler instead.
func NewChannel[T any]() Channel[T] {
	return NewChannelCond[T](NativeCondvar)
}

// NewChannelCond creates a channel blocking through the condvar built
// by factory over the channel's internal mutex.
func NewChannelCond[T any](factory CondvarFactory) Channel[T] {
	s := &chanState[T]{serial: nextSerial()}
	s.cond = factory(&s.mu)
	return Channel[T]{s: s}
}

// Serial returns the channel's process-unique identifier.
func (c Channel[T]) Serial() Serial {
	return c.s.serial
}

// Put appends v to the channel and wakes one waiting consumer.
// Returns ErrClosedChannel if the channel is closed; v is not
// enqueued in that case.
func (c Channel[T]) Put(v T) error {
	s := c.s
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosedChannel
	}
	s.push(v)
	s.cond.NotifyOne()
	s.mu.Unlock()
	notifyYield()
	return nil
}

// Emplace constructs an item in place: ctor runs under the channel
// lock, and only if the channel is still open. Returns
// ErrClosedChannel without calling ctor otherwise.
func (c Channel[T]) Emplace(ctor func() T) error {
	s := c.s
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosedChannel
	}
	s.push(ctor())
	s.cond.NotifyOne()
	s.mu.Unlock()
	notifyYield()
	return nil
}

// Get blocks until an item is available and removes it. Once the
// channel is closed and drained, Get returns ErrClosedChannel; items
// enqueued before the close are still delivered.
func (c Channel[T]) Get() (T, error) {
	s := c.s
	s.mu.Lock()
	for s.head == nil && !s.closed {
		s.cond.Wait()
	}
	v, ok := s.pop()
	s.mu.Unlock()
	if !ok {
		var zero T
		return zero, ErrClosedChannel
	}
	return v, nil
}

// TryGet removes an item without blocking. It returns iox.ErrWouldBlock
// when the channel is open but empty, and ErrClosedChannel once a
// closed channel has been drained.
func (c Channel[T]) TryGet() (T, error) {
	s := c.s
	s.mu.Lock()
	v, ok := s.pop()
	closed := s.closed
	s.mu.Unlock()
	if ok {
		return v, nil
	}
	var zero T
	if closed {
		return zero, ErrClosedChannel
	}
	return zero, iox.ErrWouldBlock
}

// Empty reports whether a Get would block right now. A closed channel
// reports empty even while items remain to be drained; emptiness is a
// liveness signal, not an item count.
func (c Channel[T]) Empty() bool {
	s := c.s
	s.mu.Lock()
	empty := s.closed || s.head == nil
	s.mu.Unlock()
	return empty
}

// Closed reports whether the channel has been closed. Lock-free.
func (c Channel[T]) Closed() bool {
	return c.s.closedWord.Load() != 0
}

// Close closes the channel and wakes all waiting consumers. Idempotent.
// Pending items remain retrievable by Get and TryGet.
func (c Channel[T]) Close() {
	s := c.s
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.closedWord.Store(1)
	s.cond.NotifyAll()
	s.mu.Unlock()
	notifyYield()
}

func (s *chanState[T]) push(v T) {
	n := &chanNode[T]{val: v}
	if s.tail == nil {
		s.head, s.tail = n, n
		return
	}
	s.tail.next = n
	s.tail = n
}

func (s *chanState[T]) pop() (T, bool) {
	n := s.head
	if n == nil {
		var zero T
		return zero, false
	}
	s.head = n.next
	if s.head == nil {
		s.tail = nil
	}
	return n.val, true
}

// notifyYield gives a just-woken consumer task a chance to run. Called
// after the channel lock is released: a task must never suspend while
// holding the lock, or a single-worker dispatcher deadlocks against
// the waiter it is trying to wake.
func notifyYield() {
	if cc := currentContext(); cc != nil && cc.task != nil {
		if s := Current(); s != nil {
			s.Yield()
		}
	}
}
