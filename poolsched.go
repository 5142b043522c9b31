// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"runtime"
	"sync"
)

// CoroutineScheduler dispatches tasks over a fixed pool of worker
// goroutines (the M:N model). Tasks migrate freely between workers
// across suspensions; a task blocked on a scheduler condvar leaves its
// worker free to run other tasks.
//
// The master lock guards the three task lists. Available holds tasks
// ready to run, running holds tasks currently on a worker, waiting
// holds tasks parked on a condvar. Workers exit when all three drain.
type CoroutineScheduler struct {
	stackSource
	threads int

	mu   sync.Mutex
	cond *sync.Cond

	available taskList
	waiting   taskList
	running   taskList

	wg sync.WaitGroup
}

// NewCoroutineScheduler creates an M:N scheduler with the given number
// of workers; threads <= 0 selects runtime.GOMAXPROCS(0). A nil sa
// selects the default fixed allocator.
func NewCoroutineScheduler(threads int, sa StackAllocator) *CoroutineScheduler {
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	s := &CoroutineScheduler{threads: threads}
	s.sa = defaultAllocator(sa)
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *CoroutineScheduler) Start(main func()) error {
	if err := acquireScheduler(s); err != nil {
		return err
	}
	defer releaseScheduler(s)
	s.mu.Lock()
	s.available.pushBack(newTask(schedStacks{s}, s, main))
	s.mu.Unlock()
	for range s.threads {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.dispatch()
		}()
	}
	s.wg.Wait()
	return nil
}

// dispatch is one worker's loop: pull a ready task, run it to its next
// suspension point, file it back under the list matching how it came
// back. A task that parked on a condvar arrives here still holding the
// master lock, handed over across the switch; this worker completes
// the bookkeeping and releases it.
func (s *CoroutineScheduler) dispatch() {
	for {
		s.mu.Lock()
		for s.available.empty() {
			if s.waiting.empty() && s.running.empty() {
				s.cond.Broadcast()
				s.mu.Unlock()
				return
			}
			s.cond.Wait()
		}
		t := s.available.popFront()
		s.running.pushBack(t)
		s.mu.Unlock()

		switch t.call() {
		case wordWaiting:
			// master lock held since the task locked it in Wait
			s.running.remove(t)
			s.waiting.pushBack(t)
			s.mu.Unlock()
		case wordDead:
			s.mu.Lock()
			s.running.remove(t)
			if s.available.empty() && s.waiting.empty() && s.running.empty() {
				s.cond.Broadcast()
			}
			s.mu.Unlock()
		default: // wordYielded
			s.mu.Lock()
			s.running.remove(t)
			s.available.pushBack(t)
			s.mu.Unlock()
		}
	}
}

// Spawn adds fn as a new task. Safe to call from tasks, workers, and
// threads outside the scheduler.
func (s *CoroutineScheduler) Spawn(fn func()) {
	t := newTask(schedStacks{s}, s, fn)
	s.mu.Lock()
	s.available.pushBack(t)
	s.cond.Signal()
	s.mu.Unlock()
}

// Yield suspends the calling task, handing its worker to another ready
// task. Outside a task it degrades to yielding the OS thread.
func (s *CoroutineScheduler) Yield() {
	if t := currentTaskOf(s); t != nil {
		t.yieldJump(wordYielded)
		return
	}
	runtime.Gosched()
}

// MakeCondition builds a task condvar: waiting parks the task on the
// scheduler instead of blocking the worker.
func (s *CoroutineScheduler) MakeCondition(l *sync.Mutex) Condvar {
	return &taskCond{s: s, l: l}
}

// taskCond parks tasks on the scheduler's waiting list. Its waiter
// stack is guarded by the scheduler's master lock.
//
// Wait locks the master lock before releasing the caller's mutex and
// suspends still holding it; the worker finishes filing the task and
// unlocks. Notifiers must take the master lock to touch the waiter
// stack, so a notification can never slip between the mutex release
// and the suspension.
type taskCond struct {
	s       *CoroutineScheduler
	l       *sync.Mutex
	waiters *task
}

func (c *taskCond) Wait() {
	t := currentTaskOf(c.s)
	if t == nil {
		panic("conc: condition wait outside scheduler task")
	}
	c.s.mu.Lock()
	t.nextWaiting = c.waiters
	c.waiters = t
	c.l.Unlock()
	t.yieldJump(wordWaiting)
	c.l.Lock()
}

func (c *taskCond) NotifyOne() {
	s := c.s
	s.mu.Lock()
	if t := c.waiters; t != nil {
		c.waiters = t.nextWaiting
		t.nextWaiting = nil
		s.waiting.remove(t)
		s.available.pushBack(t)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (c *taskCond) NotifyAll() {
	s := c.s
	s.mu.Lock()
	for t := c.waiters; t != nil; {
		next := t.nextWaiting
		t.nextWaiting = nil
		s.waiting.remove(t)
		s.available.pushBack(t)
		t = next
	}
	c.waiters = nil
	s.cond.Broadcast()
	s.mu.Unlock()
}
