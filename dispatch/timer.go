// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"sync"
	"time"
)

// Timer - a cancellable delayed action
//
// Stop is idempotent: stopping an already stopped or already fired
// timer is a no-op, never an error
type Timer struct {
	sync.Mutex
	dispatcher *Dispatcher
	timer      *time.Timer
	stopped    bool
	fired      bool
}

// Stop - cancel the timer
// an action already queued but not yet run will not execute
func (t *Timer) Stop() {
	if nil == t {
		return
	}
	t.Lock()
	defer t.Unlock()
	if t.stopped || t.fired {
		return
	}
	t.stopped = true
	t.timer.Stop()
}
