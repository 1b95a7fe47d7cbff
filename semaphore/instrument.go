// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"

	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/rtcore/wait"
	"github.com/xmidt-org/rtcore/xmetrics"
)

// InstrumentOption represents a configurable option for instrumenting a semaphore
type InstrumentOption func(*instrumentedSemaphore)

// WithTakes establishes a metric that counts successful takes.
// If a nil counter is supplied, takes are discarded.
func WithTakes(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedSemaphore) {
		if a != nil {
			i.takes = a
		} else {
			i.takes = discard.NewCounter()
		}
	}
}

// WithGives establishes a metric that counts gives, including gives that were absorbed by
// saturation.  If a nil counter is supplied, gives are discarded.
func WithGives(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedSemaphore) {
		if a != nil {
			i.gives = a
		} else {
			i.gives = discard.NewCounter()
		}
	}
}

// WithFailures establishes a metric that tracks how many takes failed for any reason.
// If a nil counter is supplied, failures are discarded.
func WithFailures(a xmetrics.Adder) InstrumentOption {
	return func(i *instrumentedSemaphore) {
		if a != nil {
			i.failures = a
		} else {
			i.failures = discard.NewCounter()
		}
	}
}

// Instrument decorates an existing semaphore with a set of options.
func Instrument(s Interface, o ...InstrumentOption) Interface {
	if s == nil {
		panic("A semaphore is required")
	}

	is := &instrumentedSemaphore{
		Interface: s,
		takes:     discard.NewCounter(),
		gives:     discard.NewCounter(),
		failures:  discard.NewCounter(),
	}

	for _, f := range o {
		f(is)
	}

	return is
}

type instrumentedSemaphore struct {
	Interface
	takes    xmetrics.Adder
	gives    xmetrics.Adder
	failures xmetrics.Adder
}

func (is *instrumentedSemaphore) Take(ctx context.Context, w wait.Policy) (err error) {
	err = is.Interface.Take(ctx, w)
	if err != nil {
		is.failures.Add(1.0)
	} else {
		is.takes.Add(1.0)
	}

	return
}

func (is *instrumentedSemaphore) TryTake() bool {
	if is.Interface.TryTake() {
		is.takes.Add(1.0)
		return true
	}

	is.failures.Add(1.0)
	return false
}

func (is *instrumentedSemaphore) Give() {
	is.Interface.Give()
	is.gives.Add(1.0)
}
