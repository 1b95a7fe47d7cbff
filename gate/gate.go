// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"sync"

	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/rtcore/xmetrics"
)

// Interface represents a concurrent on/off condition, such as an operating mode that
// one task flips and another task observes.
type Interface interface {
	// Raise opens this gate.  By default, gates are initially open.  Use WithInitiallyClosed
	// to create a gate in the closed state.
	Raise()

	// Lower closes this gate
	Lower()

	// Toggle flips this gate and returns true if the gate is now open
	Toggle() bool

	// IsOpen tests if this gate is open
	IsOpen() bool
}

// Option is a configuration option for a gate Interface
type Option func(*gate)

func WithInitiallyClosed() Option {
	return func(g *gate) {
		g.open = false
	}
}

// WithClosedGauge sets a gauge that is 1 while the gate is closed and 0 while it is open
func WithClosedGauge(gauge xmetrics.Setter) Option {
	return func(g *gate) {
		if gauge != nil {
			g.closedGauge = gauge
		} else {
			g.closedGauge = discard.NewGauge()
		}
	}
}

// New constructs a gate Interface with zero or more options.  By default, the returned
// gate is initially open and has a closed gauge that simply discards all metrics.
func New(options ...Option) Interface {
	g := &gate{
		open:        true,
		closedGauge: discard.NewGauge(),
	}

	for _, o := range options {
		o(g)
	}

	g.update()
	return g
}

// gate is the internal Interface implementation
type gate struct {
	lock        sync.RWMutex
	open        bool
	closedGauge xmetrics.Setter
}

// update must be called under the write lock or during construction
func (g *gate) update() {
	if g.open {
		g.closedGauge.Set(0.0)
	} else {
		g.closedGauge.Set(1.0)
	}
}

func (g *gate) set(open bool) {
	g.lock.Lock()
	if g.open != open {
		g.open = open
		g.update()
	}

	g.lock.Unlock()
}

func (g *gate) Raise() {
	g.set(true)
}

func (g *gate) Lower() {
	g.set(false)
}

func (g *gate) Toggle() bool {
	g.lock.Lock()
	defer g.lock.Unlock()

	g.open = !g.open
	g.update()
	return g.open
}

func (g *gate) IsOpen() bool {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.open
}
