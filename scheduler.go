// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import "sync"

// Scheduler runs a set of tasks to completion. Start installs the
// scheduler as the process-wide current scheduler, runs main, and
// returns after every spawned task has finished. The three
// implementations differ only in what a task is mapped onto:
// ThreadScheduler gives each task its own goroutine,
// SimpleCoroutineScheduler multiplexes tasks onto the starting
// goroutine, CoroutineScheduler dispatches them over a fixed pool of
// workers.
type Scheduler interface {
	// Start installs the scheduler, runs main as the first task, and
	// blocks until all tasks finish. Returns ErrSchedulerActive if
	// another scheduler is already running.
	Start(main func()) error
	// Spawn adds a new task. Callable from inside tasks and, for
	// thread-safe schedulers, from outside.
	Spawn(fn func())
	// Yield gives up the caller's turn. Inside a task it suspends the
	// task; elsewhere it yields the OS thread.
	Yield()
	// MakeCondition builds the condvar flavor matching the scheduler's
	// blocking model, bound to l.
	MakeCondition(l *sync.Mutex) Condvar
	// AllocateStack and DeallocateStack expose the scheduler's stack
	// allocator, serialized if the allocator is not thread-safe.
	AllocateStack() *StackContext
	DeallocateStack(sc *StackContext)
	// ReserveStacks pre-provisions n stack contexts.
	ReserveStacks(n int)
}

var (
	schedMu  sync.Mutex
	schedCur Scheduler
)

func acquireScheduler(s Scheduler) error {
	schedMu.Lock()
	defer schedMu.Unlock()
	if schedCur != nil {
		return ErrSchedulerActive
	}
	schedCur = s
	return nil
}

func releaseScheduler(s Scheduler) {
	schedMu.Lock()
	if schedCur == s {
		schedCur = nil
	}
	schedMu.Unlock()
}

// Current returns the running scheduler, or nil if none is running.
func Current() Scheduler {
	schedMu.Lock()
	s := schedCur
	schedMu.Unlock()
	return s
}

func mustCurrent() Scheduler {
	s := Current()
	if s == nil {
		panic("conc: no scheduler running")
	}
	return s
}

// Run starts s with main as the first task and returns main's result.
// A panic escaping main is recovered and re-raised on the caller after
// the scheduler has shut down.
func Run[R any](s Scheduler, main func() R) (R, error) {
	var (
		res     R
		fault   any
		faulted bool
	)
	err := s.Start(func() {
		defer func() {
			if r := recover(); r != nil {
				fault, faulted = r, true
			}
		}()
		res = main()
	})
	if faulted {
		panic(fault)
	}
	return res, err
}

// Spawn adds fn as a task of the running scheduler.
func Spawn(fn func()) { mustCurrent().Spawn(fn) }

// Yield gives up the caller's turn on the running scheduler.
func Yield() { mustCurrent().Yield() }

// MakeChannel creates a channel that blocks the way the running
// scheduler's tasks block.
func MakeChannel[T any]() Channel[T] {
	s := mustCurrent()
	return NewChannelCond[T](s.MakeCondition)
}

// MakeCondition builds a condvar of the running scheduler's flavor.
func MakeCondition(l *sync.Mutex) Condvar {
	return mustCurrent().MakeCondition(l)
}

// MakeCoroutine creates a coroutine drawing its activation resources
// from the running scheduler's stack allocator.
func MakeCoroutine[A, R any](fn func(*Yielder[A, R], A) R) *Coroutine[A, R] {
	return NewCoroutineStack(fn, schedStacks{mustCurrent()})
}

// MakeGenerator creates a generator drawing its activation resources
// from the running scheduler's stack allocator.
func MakeGenerator[T any](fn func(*Producer[T])) *Generator[T] {
	return NewGeneratorStack(fn, schedStacks{mustCurrent()})
}

// schedStacks adapts a scheduler's stack methods to StackAllocator so
// MakeCoroutine and MakeGenerator funnel through the scheduler's pool.
type schedStacks struct {
	s Scheduler
}

func (a schedStacks) Allocate() *StackContext     { return a.s.AllocateStack() }
func (a schedStacks) Deallocate(sc *StackContext) { a.s.DeallocateStack(sc) }
func (a schedStacks) Reserve(n int)               { a.s.ReserveStacks(n) }
func (a schedStacks) ThreadSafe() bool            { return true }

// task is one schedulable unit of a coroutine scheduler: a context
// whose body is just fn, linked into the scheduler's intrusive lists.
type task struct {
	coroContext
	fn func()

	sched any

	next, prev  *task
	nextWaiting *task
}

func newTask(sa StackAllocator, sched any, fn func()) *task {
	t := &task{fn: fn, sched: sched}
	t.coroContext.task = t
	t.makeContext(sa, fn)
	return t
}

// currentTaskOf returns the task executing on the calling goroutine if
// it belongs to sched, else nil. Plain function calls from outside any
// task, and tasks of a different scheduler, both come back nil.
func currentTaskOf(sched any) *task {
	cc := currentContext()
	if cc == nil {
		return nil
	}
	t, ok := cc.task.(*task)
	if !ok || t.sched != sched {
		return nil
	}
	return t
}

// taskList is an intrusive doubly linked list of tasks. Not
// concurrency-safe; callers hold the owning scheduler's lock.
type taskList struct {
	head, tail *task
	n          int
}

func (l *taskList) empty() bool { return l.head == nil }

func (l *taskList) len() int { return l.n }

func (l *taskList) pushBack(t *task) {
	t.next, t.prev = nil, l.tail
	if l.tail == nil {
		l.head = t
	} else {
		l.tail.next = t
	}
	l.tail = t
	l.n++
}

func (l *taskList) popFront() *task {
	t := l.head
	if t == nil {
		return nil
	}
	l.remove(t)
	return t
}

func (l *taskList) remove(t *task) {
	if t.prev == nil {
		l.head = t.next
	} else {
		t.prev.next = t.next
	}
	if t.next == nil {
		l.tail = t.prev
	} else {
		t.next.prev = t.prev
	}
	t.next, t.prev = nil, nil
	l.n--
}

// stackSource is the allocator plumbing shared by all three
// schedulers: it serializes access when the configured allocator is
// not thread-safe.
type stackSource struct {
	samu sync.Mutex
	sa   StackAllocator
}

func (ss *stackSource) AllocateStack() *StackContext {
	if ss.sa.ThreadSafe() {
		return ss.sa.Allocate()
	}
	ss.samu.Lock()
	sc := ss.sa.Allocate()
	ss.samu.Unlock()
	return sc
}

func (ss *stackSource) DeallocateStack(sc *StackContext) {
	if ss.sa.ThreadSafe() {
		ss.sa.Deallocate(sc)
		return
	}
	ss.samu.Lock()
	ss.sa.Deallocate(sc)
	ss.samu.Unlock()
}

func (ss *stackSource) ReserveStacks(n int) {
	if ss.sa.ThreadSafe() {
		ss.sa.Reserve(n)
		return
	}
	ss.samu.Lock()
	ss.sa.Reserve(n)
	ss.samu.Unlock()
}

func defaultAllocator(sa StackAllocator) StackAllocator {
	if sa == nil {
		return FixedStackAllocator{}
	}
	return sa
}
