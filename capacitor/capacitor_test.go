// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package capacitor

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/clock/clocktest"
)

func ExampleNew() {
	var (
		c = New()
		w = new(sync.WaitGroup)
	)

	w.Add(1)

	// replaced by the next Submit before the delay elapses
	c.Submit(func() {})

	c.Submit(func() {
		fmt.Println("Discharged")
		w.Done()
	})

	w.Wait()

	// Output:
	// Discharged
}

func TestWithDelay(t *testing.T) {
	assert := assert.New(t)
	c := new(capacitor)

	WithDelay(0)(c)
	assert.Equal(DefaultDelay, c.delay)

	WithDelay(31 * time.Minute)(c)
	assert.Equal(31*time.Minute, c.delay)
}

func TestWithClock(t *testing.T) {
	assert := assert.New(t)
	c := new(capacitor)

	WithClock(nil)(c)
	assert.Equal(clock.System(), c.c)

	f := clocktest.NewFake(time.Time{})
	WithClock(f)(c)
	assert.Equal(f, c.c)
}

func TestSubmitCoalesces(t *testing.T) {
	var (
		assert = assert.New(t)
		f      = clocktest.NewFake(time.Time{})
		c      = New(WithDelay(time.Second), WithClock(f))
		calls  = make(chan int, 10)
	)

	for i := 0; i < 5; i++ {
		i := i
		c.Submit(func() { calls <- i })
	}

	assert.Equal(1, f.Pending())
	f.Add(time.Second)

	select {
	case v := <-calls:
		assert.Equal(4, v)
	case <-time.After(time.Second):
		assert.FailNow("The capacitor did not discharge")
	}

	select {
	case v := <-calls:
		assert.FailNow("Extra call", "value %d", v)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestDischarge(t *testing.T) {
	var (
		assert = assert.New(t)
		f      = clocktest.NewFake(time.Time{})
		c      = New(WithDelay(time.Second), WithClock(f))
		calls  = make(chan struct{}, 10)
	)

	c.Discharge()
	c.Submit(func() { calls <- struct{}{} })
	c.Discharge()

	select {
	case <-calls:
	case <-time.After(time.Second):
		assert.FailNow("Discharge did not run the function")
	}

	assert.Eventually(func() bool { return f.Pending() == 0 }, time.Second, time.Millisecond)
}

func TestCancel(t *testing.T) {
	var (
		assert = assert.New(t)
		f      = clocktest.NewFake(time.Time{})
		c      = New(WithDelay(time.Second), WithClock(f))
		calls  = make(chan struct{}, 10)
	)

	c.Cancel()
	c.Submit(func() { calls <- struct{}{} })
	c.Cancel()
	assert.Eventually(func() bool { return f.Pending() == 0 }, time.Second, time.Millisecond)

	f.Add(time.Second)
	select {
	case <-calls:
		assert.Fail("A canceled function ran")
	case <-time.After(20 * time.Millisecond):
	}

	// a new burst starts a new delay
	c.Submit(func() { calls <- struct{}{} })
	f.Add(time.Second)
	select {
	case <-calls:
	case <-time.After(time.Second):
		assert.FailNow("The capacitor did not discharge after a cancel")
	}
}
