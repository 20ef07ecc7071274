// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Escrownet Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/escrownet/escrowd/background"
	"github.com/escrownet/escrowd/dispatch"
	"github.com/escrownet/escrowd/fixtures"
)

func startDispatcher(t *testing.T) (*dispatch.Dispatcher, func()) {
	d := dispatch.New(fixtures.LogCategory)
	b := background.Start(background.Processes{d}, nil)
	return d, b.Stop
}

func TestOrdering(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	d, stop := startDispatcher(t)
	defer stop()

	result := []int{}
	for i := 0; i < 5; i++ {
		i := i
		d.Post(func() { result = append(result, i) })
	}
	d.Do(func() {})

	assert.Equal(t, []int{0, 1, 2, 3, 4}, result, "actions ran out of order")
}

func TestTimerFires(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	d, stop := startDispatcher(t)
	defer stop()

	fired := make(chan struct{})
	d.After(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTimerStopIsIdempotent(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	d, stop := startDispatcher(t)
	defer stop()

	fired := false
	timer := d.After(10*time.Millisecond, func() { fired = true })
	timer.Stop()
	timer.Stop() // second stop is a no-op
	timer.Stop()

	time.Sleep(30 * time.Millisecond)
	d.Do(func() {})
	assert.False(t, fired, "stopped timer fired")

	// stopping an already fired timer is also a no-op
	timer = d.After(time.Millisecond, func() {})
	time.Sleep(20 * time.Millisecond)
	timer.Stop()

	// a nil timer can be stopped
	var nilTimer *dispatch.Timer
	nilTimer.Stop()
}

func TestPanicDoesNotKillLoop(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	d, stop := startDispatcher(t)
	defer stop()

	d.Post(func() { panic("boom") })

	survived := false
	d.Do(func() { survived = true })
	assert.True(t, survived, "dispatcher died after panic")
}
