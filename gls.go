// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package conc

import (
	"runtime"
	"sync"
)

// Goroutine-local registry of executing coroutine contexts. The map
// holds one entry per goroutine backing a live coroutine; it is how
// Yield and the scheduler condvars find "myself" without threading a
// handle through every call.
var (
	glsMu sync.RWMutex
	gls   = make(map[uint64]*coroContext)
)

// goid returns the id of the calling goroutine, parsed from the
// runtime.Stack header ("goroutine N [...]:").
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for _, b := range buf[len("goroutine "):n] {
		if b < '0' || b > '9' {
			break
		}
		id = id*10 + uint64(b-'0')
	}
	return id
}

// glsStore registers c as the context executing on the calling
// goroutine and returns the registry key for glsClear.
func glsStore(c *coroContext) uint64 {
	id := goid()
	glsMu.Lock()
	gls[id] = c
	glsMu.Unlock()
	return id
}

// glsClear removes the registration made by glsStore.
func glsClear(id uint64) {
	glsMu.Lock()
	delete(gls, id)
	glsMu.Unlock()
}

// currentContext returns the coroutine context executing on the
// calling goroutine, or nil when called from outside any coroutine.
func currentContext() *coroContext {
	id := goid()
	glsMu.RLock()
	c := gls[id]
	glsMu.RUnlock()
	return c
}
