// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"context"
	"time"
)

// Interface is the timer service used by every blocking primitive.  Timeouts and hold
// delays are always measured through an Interface so that tests can substitute a
// manually advanced clock.
type Interface interface {
	Now() time.Time
	Sleep(time.Duration)
	NewTicker(time.Duration) Ticker
	NewTimer(time.Duration) Timer
}

// Timer fires once on C after its duration.  Reset and Stop report whether the
// timer was still pending.
type Timer interface {
	C() <-chan time.Time
	Reset(time.Duration) bool
	Stop() bool
}

// Ticker fires on C once per period until stopped.  Ticks that are not received
// before the next one are dropped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type systemTimer struct{ *time.Timer }

func (st systemTimer) C() <-chan time.Time { return st.Timer.C }

type systemTicker struct{ *time.Ticker }

func (st systemTicker) C() <-chan time.Time { return st.Ticker.C }

type systemClock struct{}

func (sc systemClock) Now() time.Time {
	return time.Now()
}

func (sc systemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

func (sc systemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

func (sc systemClock) NewTimer(d time.Duration) Timer {
	return systemTimer{time.NewTimer(d)}
}

// System returns a clock backed by the time package
func System() Interface {
	return systemClock{}
}

// OrSystem returns c, or the System clock if c is nil.
func OrSystem(c Interface) Interface {
	if c != nil {
		return c
	}

	return System()
}

// SleepCtx suspends the caller for d, returning early with ctx.Err() if the context is
// canceled first.  A nonpositive duration returns immediately with ctx.Err().
func SleepCtx(ctx context.Context, c Interface, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := OrSystem(c).NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
