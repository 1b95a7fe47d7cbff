// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package capacitor

import (
	"sync"
	"time"

	"github.com/xmidt-org/rtcore/clock"
)

const (
	// DefaultDelay is the delay used when none is configured
	DefaultDelay = 10 * time.Millisecond
)

// Interface coalesces a burst of submitted functions into a single call.  The first Submit
// after a quiet period starts a delay; every Submit during that delay replaces the pending
// function.  When the delay elapses, only the most recently submitted function runs.
type Interface interface {
	// Submit replaces the pending function, starting a new delay if none is in progress
	Submit(func())

	// Discharge runs the pending function, if any, without waiting for the delay
	Discharge()

	// Cancel drops the pending function, if any
	Cancel()
}

// Option configures a capacitor at construction
type Option func(*capacitor)

// WithDelay sets the delay between the first Submit and the call.  A nonpositive value
// sets DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(c *capacitor) {
		if d > 0 {
			c.delay = d
		} else {
			c.delay = DefaultDelay
		}
	}
}

// WithClock sets the timer service that measures the delay
func WithClock(cl clock.Interface) Option {
	return func(c *capacitor) {
		c.c = clock.OrSystem(cl)
	}
}

// New creates a capacitor with zero or more options
func New(o ...Option) Interface {
	c := &capacitor{
		delay: DefaultDelay,
		c:     clock.System(),
	}

	for _, f := range o {
		f(c)
	}

	return c
}

// charge is a single pending delay.  Its goroutine ends when the timer fires or when
// it is terminated early.
type charge struct {
	lock      sync.Mutex
	f         func()
	timer     clock.Timer
	terminate chan bool
}

func (ch *charge) set(f func()) {
	ch.lock.Lock()
	ch.f = f
	ch.lock.Unlock()
}

func (ch *charge) execute() {
	ch.lock.Lock()
	f := ch.f
	ch.lock.Unlock()

	if f != nil {
		f()
	}
}

func (ch *charge) run(done func()) {
	defer ch.timer.Stop()

	select {
	case <-ch.timer.C():
		// an early termination that raced with the timer decides the outcome
		select {
		case discharge := <-ch.terminate:
			done()
			if discharge {
				ch.execute()
			}

		default:
			done()
			ch.execute()
		}

	case discharge := <-ch.terminate:
		done()
		if discharge {
			ch.execute()
		}
	}
}

type capacitor struct {
	lock    sync.Mutex
	delay   time.Duration
	c       clock.Interface
	current *charge
}

// release produces the closure a charge calls as it finishes.  It clears the current
// charge only if it is still the given one, since Discharge and Cancel clear it eagerly.
func (c *capacitor) release(ch *charge) func() {
	return func() {
		c.lock.Lock()
		if c.current == ch {
			c.current = nil
		}

		c.lock.Unlock()
	}
}

func (c *capacitor) Submit(f func()) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.current != nil {
		c.current.set(f)
		return
	}

	ch := &charge{
		f:         f,
		terminate: make(chan bool, 1),
		timer:     c.c.NewTimer(c.delay),
	}

	c.current = ch
	go ch.run(c.release(ch))
}

func (c *capacitor) terminate(discharge bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.current != nil {
		c.current.terminate <- discharge
		c.current = nil
	}
}

func (c *capacitor) Discharge() {
	c.terminate(true)
}

func (c *capacitor) Cancel() {
	c.terminate(false)
}
