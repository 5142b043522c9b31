// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import "errors"

var (
	// ErrDeadCoroutine is returned by Resume on a coroutine whose body
	// has run to completion, panicked, or been unwound.
	ErrDeadCoroutine = errors.New("conc: dead coroutine")

	// ErrDeadGenerator is returned by Resume on an exhausted generator.
	ErrDeadGenerator = errors.New("conc: dead generator")

	// ErrNoValue is returned by Value on an empty generator.
	ErrNoValue = errors.New("conc: no value")

	// ErrClosedChannel is returned by Put and Emplace on a closed
	// channel, and by Get and TryGet once a closed channel has been
	// drained.
	ErrClosedChannel = errors.New("conc: closed channel")

	// ErrSchedulerActive is returned by Start while another scheduler
	// is already running; at most one scheduler is active per process.
	ErrSchedulerActive = errors.New("conc: another scheduler already running")
)
