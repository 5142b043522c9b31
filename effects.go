// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// channelDispatcher is the structural interface for channel effect
// operations. DispatchChannel is non-blocking: it returns
// iox.ErrWouldBlock when the channel cannot make progress.
type channelDispatcher interface {
	DispatchChannel() (kont.Resumed, error)
}

// ChanPut is the effect operation for sending a value of type T.
// Perform(ChanPut[T]{Ch: ch, Value: v}) appends v to ch.
type ChanPut[T any] struct {
	kont.Phantom[struct{}]
	Ch    Channel[T]
	Value T
}

// DispatchChannel handles ChanPut. Never would-blocks: the channel is
// unbounded. Putting into a closed channel panics with
// ErrClosedChannel; use TryGetBranch-style probing before a close is
// possible.
func (p ChanPut[T]) DispatchChannel() (kont.Resumed, error) {
	if err := p.Ch.Put(p.Value); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// ChanGet is the effect operation for receiving a value of type T.
// Perform(ChanGet[T]{Ch: ch}) blocks the handler until a value is
// available.
type ChanGet[T any] struct {
	kont.Phantom[T]
	Ch Channel[T]
}

// DispatchChannel handles ChanGet. Non-blocking: returns
// iox.ErrWouldBlock when the channel is open but empty.
func (g ChanGet[T]) DispatchChannel() (kont.Resumed, error) {
	v, err := g.Ch.TryGet()
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ChanTryGet is the effect operation for a non-blocking receive. It
// always resumes immediately: Right(v) on success, Left(err) with
// iox.ErrWouldBlock or ErrClosedChannel otherwise.
type ChanTryGet[T any] struct {
	kont.Phantom[kont.Either[error, T]]
	Ch Channel[T]
}

// DispatchChannel handles ChanTryGet. Never retried by the handler.
func (g ChanTryGet[T]) DispatchChannel() (kont.Resumed, error) {
	v, err := g.Ch.TryGet()
	if err != nil {
		return kont.Left[error, T](err), nil
	}
	return kont.Right[error](v), nil
}

// ChanClose is the effect operation for closing a channel.
// Perform(ChanClose[T]{Ch: ch}) closes ch; idempotent.
type ChanClose[T any] struct {
	kont.Phantom[struct{}]
	Ch Channel[T]
}

// DispatchChannel handles ChanClose. Never blocks.
func (c ChanClose[T]) DispatchChannel() (kont.Resumed, error) {
	c.Ch.Close()
	return struct{}{}, nil
}

// channelHandler implements kont.Handler for channel effects,
// converting non-blocking dispatch into blocking evaluation for
// ExecChan.
type channelHandler[R any] struct{}

// Dispatch implements kont.Handler via structural interface assertion.
// Waits past the iox.ErrWouldBlock boundary.
func (channelHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	cop, ok := op.(channelDispatcher)
	if !ok {
		panic("conc: unhandled effect in channelHandler")
	}
	return dispatchChanWait(cop), true
}

// dispatchChanWait blocks until DispatchChannel succeeds. Inside a
// scheduler task it yields the task between attempts so other tasks
// can produce; elsewhere it backs off with iox.Backoff. Errors other
// than would-block are protocol violations and panic.
func dispatchChanWait(cop channelDispatcher) kont.Resumed {
	var bo iox.Backoff
	for {
		v, err := cop.DispatchChannel()
		if err == nil {
			return v
		}
		if !iox.IsWouldBlock(err) {
			panic(err)
		}
		if s := Current(); s != nil {
			s.Yield()
		} else {
			bo.Wait()
		}
	}
}

// ExecChan runs a Cont-world channel protocol to completion, blocking
// as needed.
func ExecChan[R any](protocol kont.Eff[R]) R {
	return kont.Handle(protocol, channelHandler[R]{})
}

// ExecChanExpr runs an Expr-world channel protocol to completion,
// blocking as needed.
func ExecChanExpr[R any](protocol kont.Expr[R]) R {
	return kont.HandleExpr(protocol, channelHandler[R]{})
}

// PutThen puts a value and then continues with next.
// Fuses Perform(ChanPut) + Then.
func PutThen[T, B any](ch Channel[T], v T, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(ChanPut[T]{Ch: ch, Value: v}), next)
}

// GetBind receives a value and passes it to f.
// Fuses Perform(ChanGet) + Bind.
func GetBind[T, B any](ch Channel[T], f func(T) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(ChanGet[T]{Ch: ch}), f)
}

// TryGetBranch probes the channel and branches: onValue for a received
// value, onErr for would-block or closed.
// Fuses Perform(ChanTryGet) + Bind + Either branch.
func TryGetBranch[T, B any](ch Channel[T], onValue func(T) kont.Eff[B], onErr func(error) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(ChanTryGet[T]{Ch: ch}), func(e kont.Either[error, T]) kont.Eff[B] {
		if e.IsLeft() {
			err, _ := e.GetLeft()
			return onErr(err)
		}
		v, _ := e.GetRight()
		return onValue(v)
	})
}

// CloseDone closes the channel and returns a.
// Fuses Perform(ChanClose) + Then + Pure.
func CloseDone[T, A any](ch Channel[T], a A) kont.Eff[A] {
	return kont.Then(kont.Perform(ChanClose[T]{Ch: ch}), kont.Pure(a))
}
