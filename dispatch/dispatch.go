// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"time"

	"github.com/bitmark-inc/logger"
)

// length of the pending action queue
const queueSize = 1000

// Dispatcher - the single cooperative execution context of a node
//
// all protocol decision logic runs as actions posted here, one at a
// time, so the components it serialises need no locking of their own
type Dispatcher struct {
	log   *logger.L
	queue chan func()
	done  chan struct{}
}

// New - create a dispatcher, Run must be started as a background process
func New(name string) *Dispatcher {
	return &Dispatcher{
		log:   logger.New(name),
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Run - process actions until shutdown
// conforms to the background.Process interface
func (d *Dispatcher) Run(args interface{}, shutdown <-chan struct{}) {
	log := d.log
	log.Info("starting…")

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case action := <-d.queue:
			d.execute(action)
		}
	}
	close(d.done)
	log.Info("stopped")
}

// run one action, keeping the loop alive if it panics
func (d *Dispatcher) execute(action func()) {
	defer func() {
		if r := recover(); nil != r {
			d.log.Criticalf("action panic: %v", r)
		}
	}()
	action()
}

// Post - queue an action for execution on the dispatcher
// safe to call from any goroutine; a no-op after shutdown
func (d *Dispatcher) Post(action func()) {
	select {
	case d.queue <- action:
	case <-d.done:
	}
}

// Do - queue an action and wait until it has run
func (d *Dispatcher) Do(action func()) {
	executed := make(chan struct{})
	d.Post(func() {
		action()
		close(executed)
	})
	select {
	case <-executed:
	case <-d.done:
	}
}

// After - schedule an action on the dispatcher after a delay
func (d *Dispatcher) After(delay time.Duration, action func()) *Timer {
	t := &Timer{dispatcher: d}
	t.timer = time.AfterFunc(delay, func() {
		d.Post(func() {
			t.Lock()
			stopped := t.stopped
			t.fired = true
			t.Unlock()
			if !stopped {
				action()
			}
		})
	})
	return t
}
