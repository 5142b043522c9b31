// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc_test

import (
	"errors"
	"runtime"
	"testing"

	"code.hybscloud.com/conc"
)

func TestCoroutineResumeYield(t *testing.T) {
	// body: doubles the first argument, then returns second+1
	f := conc.NewCoroutine(func(y *conc.Yielder[int, int], a int) int {
		b := y.Yield(a * 2)
		return b + 1
	})

	v, err := f.Resume(5)
	if err != nil {
		t.Fatalf("first resume: %v", err)
	}
	if v != 10 {
		t.Fatalf("first resume got %d, want 10", v)
	}
	if !f.Alive() {
		t.Fatalf("coroutine dead after first yield")
	}

	v, err = f.Resume(100)
	if err != nil {
		t.Fatalf("second resume: %v", err)
	}
	if v != 101 {
		t.Fatalf("second resume got %d, want 101", v)
	}
	if f.Alive() {
		t.Fatalf("coroutine alive after return")
	}

	_, err = f.Resume(0)
	if !errors.Is(err, conc.ErrDeadCoroutine) {
		t.Fatalf("third resume got %v, want ErrDeadCoroutine", err)
	}
}

func TestCoroutineArgumentFlow(t *testing.T) {
	// every Resume argument must surface exactly once inside the body
	var seen []int
	f := conc.NewCoroutine(func(y *conc.Yielder[int, struct{}], a int) struct{} {
		for range 3 {
			seen = append(seen, a)
			a = y.Yield(struct{}{})
		}
		seen = append(seen, a)
		return struct{}{}
	})
	for i := 1; f.Alive(); i++ {
		if _, err := f.Resume(i); err != nil {
			t.Fatalf("resume %d: %v", i, err)
		}
	}
	want := []int{1, 2, 3, 4}
	if len(seen) != len(want) {
		t.Fatalf("body saw %d arguments, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("argument %d got %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestCoroutineNilFunc(t *testing.T) {
	f := conc.NewCoroutine[int, int](nil)
	if f.Alive() {
		t.Fatalf("nil-body coroutine reports alive")
	}
	if _, err := f.Resume(1); !errors.Is(err, conc.ErrDeadCoroutine) {
		t.Fatalf("resume got %v, want ErrDeadCoroutine", err)
	}
}

func TestCoroutinePanicRethrow(t *testing.T) {
	f := conc.NewCoroutine(func(y *conc.Yielder[struct{}, struct{}], _ struct{}) struct{} {
		y.Yield(struct{}{})
		panic("boom")
	})
	if _, err := f.Resume(struct{}{}); err != nil {
		t.Fatalf("first resume: %v", err)
	}

	func() {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatalf("second resume did not re-raise body panic")
			}
			if r != "boom" {
				t.Fatalf("re-raised %v, want boom", r)
			}
		}()
		f.Resume(struct{}{})
	}()

	if f.Alive() {
		t.Fatalf("coroutine alive after panic")
	}
	// the panic must surface exactly once
	if _, err := f.Resume(struct{}{}); !errors.Is(err, conc.ErrDeadCoroutine) {
		t.Fatalf("post-panic resume got %v, want ErrDeadCoroutine", err)
	}
}

func TestCoroutineCancelRunsDefers(t *testing.T) {
	cleaned := make(chan struct{}, 1)
	f := conc.NewCoroutine(func(y *conc.Yielder[struct{}, struct{}], _ struct{}) struct{} {
		defer func() { cleaned <- struct{}{} }()
		y.Yield(struct{}{})
		y.Yield(struct{}{})
		return struct{}{}
	})
	if _, err := f.Resume(struct{}{}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	f.Cancel()
	select {
	case <-cleaned:
	default:
		t.Fatalf("deferred cleanup did not run on cancel")
	}
	if f.Alive() {
		t.Fatalf("coroutine alive after cancel")
	}
	f.Cancel() // idempotent
}

func TestCoroutineCancelBeforeStart(t *testing.T) {
	ran := false
	f := conc.NewCoroutine(func(y *conc.Yielder[struct{}, struct{}], _ struct{}) struct{} {
		ran = true
		return struct{}{}
	})
	f.Cancel()
	if ran {
		t.Fatalf("body ran despite cancel before first resume")
	}
	if f.Alive() {
		t.Fatalf("coroutine alive after cancel")
	}
}

func TestCoroutineAbandonedMidResume(t *testing.T) {
	// the leak-unwind cleanup must not fire while the body is running,
	// even when the last handle reference dies inside Resume
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int)

	f := conc.NewCoroutine(func(y *conc.Yielder[int, int], a int) int {
		close(entered)
		<-release
		return a * 2
	})
	go func(f *conc.Coroutine[int, int]) {
		v, err := f.Resume(21)
		if err != nil {
			t.Errorf("resume: %v", err)
		}
		done <- v
	}(f)
	f = nil

	<-entered
	for range 3 {
		runtime.GC()
	}
	close(release)
	if v := <-done; v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}

func TestCoroutineNested(t *testing.T) {
	inner := conc.NewCoroutine(func(y *conc.Yielder[int, int], a int) int {
		return y.Yield(a+1) + 1
	})
	outer := conc.NewCoroutine(func(y *conc.Yielder[int, int], a int) int {
		v, err := inner.Resume(a)
		if err != nil {
			t.Errorf("inner resume: %v", err)
		}
		return y.Yield(v) * 2
	})

	v, err := outer.Resume(10)
	if err != nil {
		t.Fatalf("outer resume: %v", err)
	}
	if v != 11 {
		t.Fatalf("outer yielded %d, want 11", v)
	}
	v, err = outer.Resume(3)
	if err != nil {
		t.Fatalf("outer resume: %v", err)
	}
	if v != 6 {
		t.Fatalf("outer returned %d, want 6", v)
	}
}
