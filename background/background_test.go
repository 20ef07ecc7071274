// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"testing"
	"time"

	"github.com/escrownet/escrowd/background"
)

// sample background process
type proc struct {
	count int
	done  chan struct{}
}

func (p *proc) Run(args interface{}, shutdown <-chan struct{}) {
	n := args.(int)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(time.Millisecond):
			p.count += n
		}
	}
	close(p.done)
}

func TestStartStop(t *testing.T) {
	p1 := &proc{done: make(chan struct{})}
	p2 := &proc{done: make(chan struct{})}

	processes := background.Processes{p1, p2}
	b := background.Start(processes, 1)

	time.Sleep(20 * time.Millisecond)
	b.Stop()

	select {
	case <-p1.done:
	case <-time.After(time.Second):
		t.Fatal("process one did not finish")
	}
	select {
	case <-p2.done:
	case <-time.After(time.Second):
		t.Fatal("process two did not finish")
	}

	if 0 == p1.count || 0 == p2.count {
		t.Fatalf("processes did not run: %d %d", p1.count, p2.count)
	}
}

func TestStopNil(t *testing.T) {
	var b *background.T
	b.Stop() // must not panic
}
