// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package peripheral

import (
	"sync"
	"time"

	"github.com/xmidt-org/rtcore/capacitor"
	"github.com/xmidt-org/rtcore/clock"
)

const (
	// DefaultDebounceDelay is the settling time used when none is configured
	DefaultDebounceDelay = 10 * time.Millisecond
)

// Edge is an accepted change of an input
type Edge struct {
	ID    ID
	Level Level
}

// DebounceOption configures a Debouncer
type DebounceOption func(*debounceOptions)

type debounceOptions struct {
	delay time.Duration
	clock clock.Interface
}

// WithDebounceDelay sets the settling time between a raw change and its confirmation read
func WithDebounceDelay(d time.Duration) DebounceOption {
	return func(o *debounceOptions) {
		o.delay = d
	}
}

// WithDebounceClock sets the timer service for the settling delay
func WithDebounceClock(c clock.Interface) DebounceOption {
	return func(o *debounceOptions) {
		o.clock = c
	}
}

// Debouncer filters glitches on a single input.  Each Sample that observes a level different
// from the accepted one schedules a confirmation read after the settling delay.  Only if that
// read still disagrees with the accepted level is the change accepted and reported.
type Debouncer struct {
	id     ID
	source InputSource
	onEdge func(Edge)
	c      capacitor.Interface

	lock   sync.Mutex
	stable Level
}

// NewDebouncer creates a Debouncer for one input.  The current level of the input is
// taken as the initial accepted level.  onEdge is invoked from the confirming goroutine.
func NewDebouncer(source InputSource, id ID, onEdge func(Edge), o ...DebounceOption) *Debouncer {
	opts := debounceOptions{
		delay: DefaultDebounceDelay,
	}

	for _, f := range o {
		f(&opts)
	}

	return &Debouncer{
		id:     id,
		source: source,
		onEdge: onEdge,
		c: capacitor.New(
			capacitor.WithDelay(opts.delay),
			capacitor.WithClock(opts.clock),
		),
		stable: source.ReadInput(id),
	}
}

// Level returns the accepted level
func (d *Debouncer) Level() Level {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.stable
}

// Sample reads the raw input once
func (d *Debouncer) Sample() {
	raw := d.source.ReadInput(d.id)

	d.lock.Lock()
	changed := raw != d.stable
	d.lock.Unlock()

	if changed {
		d.c.Submit(d.confirm)
	}
}

// Stop drops any pending confirmation
func (d *Debouncer) Stop() {
	d.c.Cancel()
}

func (d *Debouncer) confirm() {
	confirmed := d.source.ReadInput(d.id)

	d.lock.Lock()
	if confirmed == d.stable {
		d.lock.Unlock()
		return
	}

	d.stable = confirmed
	d.lock.Unlock()

	if d.onEdge != nil {
		d.onEdge(Edge{ID: d.id, Level: confirmed})
	}
}
