// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"runtime"
	"sync"
)

// SimpleCoroutineScheduler multiplexes all tasks onto the goroutine
// that called Start (the N:1 model). Exactly one task runs at a time
// and switches happen only at Yield and condvar waits, so tasks need
// no locking among themselves. A task that blocks natively blocks the
// whole scheduler.
type SimpleCoroutineScheduler struct {
	stackSource
	tasks []*task
	pos   int
}

// NewSimpleCoroutineScheduler creates an N:1 scheduler. A nil sa
// selects the default fixed allocator.
func NewSimpleCoroutineScheduler(sa StackAllocator) *SimpleCoroutineScheduler {
	s := &SimpleCoroutineScheduler{}
	s.sa = defaultAllocator(sa)
	return s
}

func (s *SimpleCoroutineScheduler) Start(main func()) error {
	if err := acquireScheduler(s); err != nil {
		return err
	}
	defer releaseScheduler(s)
	s.tasks = append(s.tasks, newTask(schedStacks{s}, s, main))
	s.dispatch()
	return nil
}

// dispatch runs tasks round-robin until none remain. A task leaves the
// ring only by finishing; spin-wait condvars keep yielding until their
// predicate holds.
func (s *SimpleCoroutineScheduler) dispatch() {
	for len(s.tasks) > 0 {
		if s.pos >= len(s.tasks) {
			s.pos = 0
		}
		t := s.tasks[s.pos]
		if t.call() == wordDead {
			s.tasks = append(s.tasks[:s.pos], s.tasks[s.pos+1:]...)
		} else {
			s.pos++
		}
	}
}

func (s *SimpleCoroutineScheduler) Spawn(fn func()) {
	s.tasks = append(s.tasks, newTask(schedStacks{s}, s, fn))
}

// Yield suspends the calling task until its next turn. Outside a task
// it degrades to yielding the OS thread.
func (s *SimpleCoroutineScheduler) Yield() {
	if t := currentTaskOf(s); t != nil {
		t.yieldJump(wordYielded)
		return
	}
	runtime.Gosched()
}

// MakeCondition builds a spin-wait condvar: a waiting task repeatedly
// yields its turn until signaled, so the dispatcher keeps running the
// other tasks, one of which eventually notifies.
func (s *SimpleCoroutineScheduler) MakeCondition(l *sync.Mutex) Condvar {
	return &spinCond{s: s, l: l}
}

// spinCond tracks one-shot signals and a broadcast generation. All
// accesses happen on tasks of the same N:1 scheduler, which run
// strictly one at a time, so the fields need no atomics of their own.
type spinCond struct {
	s       *SimpleCoroutineScheduler
	l       *sync.Mutex
	signals int
	gen     uint
}

func (c *spinCond) NotifyOne() { c.signals++ }

func (c *spinCond) NotifyAll() { c.gen++ }

func (c *spinCond) Wait() {
	gen := c.gen
	c.l.Unlock()
	for c.signals == 0 && c.gen == gen {
		c.s.Yield()
	}
	if c.gen == gen {
		c.signals--
	}
	c.l.Lock()
}
