// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package conc provides stackful coroutines, generators, channels and
// cooperative task scheduling.
//
// The package implements three concurrency models over one coroutine
// abstraction:
//
//   - [ThreadScheduler]: 1:1. One independently scheduled goroutine
//     per task, preemptive, no cooperation required.
//   - [SimpleCoroutineScheduler]: N:1. All tasks multiplexed
//     cooperatively onto the goroutine that called Start.
//   - [CoroutineScheduler]: M:N. Tasks multiplexed onto a fixed pool
//     of worker goroutines, migrating between workers across yields.
//
// # Architecture
//
//   - Switching: each coroutine owns a dedicated goroutine; suspend and
//     resume transfer control through a single unbuffered channel
//     carrying a control word. The transfer resources live in a
//     [StackContext] obtained from a [StackAllocator]; the
//     [PooledStackAllocator] recycles them through a lock-free MPMC
//     free list from [code.hybscloud.com/lfq].
//   - Values: [Coroutine] passes values in both directions across the
//     resume/yield boundary; [Generator] produces one value per resume
//     and is iterable via [Generator.Iter].
//   - Communication: [Channel] is a thread- and task-safe FIFO with
//     blocking Get and a non-blocking TryGet that returns
//     [code.hybscloud.com/iox.ErrWouldBlock] at the I/O boundary.
//   - Blocking: [Condvar] abstracts the condition variable a channel
//     blocks on, so the same channel works under the native
//     implementation, the N:1 spin-yield implementation, and the M:N
//     intrusive wait-list implementation.
//   - Effects: channel operations are also exposed as algebraic effect
//     operations on [code.hybscloud.com/kont]; [ExecChan] evaluates an
//     effectful protocol against channels, yielding to the active
//     scheduler while an operation would block.
//
// # Errors
//
// Misuse is reported through sentinel errors ([ErrDeadCoroutine],
// [ErrDeadGenerator], [ErrNoValue], [ErrClosedChannel],
// [ErrSchedulerActive]). A panic inside a coroutine or generator body
// is captured at the switch boundary and re-raised on the resumer,
// exactly once, at the resume call that observed the body's death.
//
// # Example
//
//	sched := NewCoroutineScheduler(4, nil)
//	sum, _ := Run(sched, func() int {
//		ch := MakeChannel[int]()
//		for i := range 10 {
//			Spawn(func() { ch.Put(i) })
//		}
//		total := 0
//		for range 10 {
//			v, _ := ch.Get()
//			total += v
//		}
//		return total
//	})
package conc
