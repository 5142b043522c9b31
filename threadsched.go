// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"runtime"
	"sync"
)

// ThreadScheduler maps every task onto its own goroutine (the 1:1
// model). Tasks block natively, so channels made under it wait on
// sync.Cond; Start returns once all spawned tasks have finished.
type ThreadScheduler struct {
	stackSource
	wg sync.WaitGroup
}

// NewThreadScheduler creates a 1:1 scheduler. A nil sa selects the
// default fixed allocator.
func NewThreadScheduler(sa StackAllocator) *ThreadScheduler {
	s := &ThreadScheduler{}
	s.sa = defaultAllocator(sa)
	return s
}

func (s *ThreadScheduler) Start(main func()) error {
	if err := acquireScheduler(s); err != nil {
		return err
	}
	defer releaseScheduler(s)
	main()
	s.wg.Wait()
	return nil
}

func (s *ThreadScheduler) Spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *ThreadScheduler) Yield() {
	runtime.Gosched()
}

func (s *ThreadScheduler) MakeCondition(l *sync.Mutex) Condvar {
	return NativeCondvar(l)
}
