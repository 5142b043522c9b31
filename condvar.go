// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import "sync"

// Condvar is a condition variable bound to a mutex at construction.
// Wait atomically releases the mutex and suspends the caller; it
// reacquires the mutex before returning. What "suspend" means depends
// on the implementation: the native condvar parks the OS thread, the
// scheduler condvars suspend the calling task so the worker can run
// something else.
//
// Spurious wakeups are possible; callers recheck their predicate in a
// loop as with sync.Cond.
type Condvar interface {
	// NotifyOne wakes at least one waiter, if any. The caller should
	// hold the bound mutex.
	NotifyOne()
	// NotifyAll wakes all current waiters. The caller should hold the
	// bound mutex.
	NotifyAll()
	// Wait releases the bound mutex, suspends until notified, and
	// reacquires the mutex. The caller must hold the mutex.
	Wait()
}

// CondvarFactory builds a condition variable over l. Channels obtain
// their condvar through a factory so the same channel code blocks
// correctly under any scheduler.
type CondvarFactory func(l *sync.Mutex) Condvar

// NativeCondvar wraps sync.Cond: waiting parks the OS thread. It is
// the factory used by channels outside any scheduler and by the 1:1
// thread scheduler.
func NativeCondvar(l *sync.Mutex) Condvar {
	return nativeCond{c: sync.NewCond(l)}
}

type nativeCond struct {
	c *sync.Cond
}

func (nc nativeCond) NotifyOne() { nc.c.Signal() }
func (nc nativeCond) NotifyAll() { nc.c.Broadcast() }
func (nc nativeCond) Wait()      { nc.c.Wait() }
