// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package clocktest

import (
	"sync"
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/xmidt-org/rtcore/clock"
)

// Fake is a manually advanced clock.Interface backed by a benbjohnson/clock Mock.  Time
// only moves when Add is called, at which point every timer and ticker whose deadline has
// been reached fires in deadline order.
//
// Tests typically start the code under test, use AwaitTimers to wait until that code has
// suspended on a timer, then call Add to release it.
type Fake struct {
	mock *bclock.Mock

	lock    sync.Mutex
	timers  map[*fakeTimer]time.Time
	tickers map[*fakeTicker]bool
	changed chan struct{}
}

var _ clock.Interface = (*Fake)(nil)

// NewFake creates a Fake clock set to the given start time.  A zero start time
// is replaced by a fixed, arbitrary instant so that Now() never returns the zero time.
func NewFake(start time.Time) *Fake {
	if start.IsZero() {
		start = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	}

	m := bclock.NewMock()
	m.Set(start)

	return &Fake{
		mock:    m,
		timers:  make(map[*fakeTimer]time.Time),
		tickers: make(map[*fakeTicker]bool),
		changed: make(chan struct{}),
	}
}

// notify must be called under the lock
func (f *Fake) notify() {
	close(f.changed)
	f.changed = make(chan struct{})
}

func (f *Fake) armTimer(t *fakeTimer, deadline time.Time) {
	f.lock.Lock()
	f.timers[t] = deadline
	f.notify()
	f.lock.Unlock()
}

func (f *Fake) disarmTimer(t *fakeTimer) {
	f.lock.Lock()
	delete(f.timers, t)
	f.notify()
	f.lock.Unlock()
}

func (f *Fake) Now() time.Time {
	return f.mock.Now()
}

// Sleep blocks until the clock has been advanced by at least d.
func (f *Fake) Sleep(d time.Duration) {
	<-f.NewTimer(d).C()
}

func (f *Fake) NewTimer(d time.Duration) clock.Timer {
	var (
		deadline = f.mock.Now().Add(d)
		t        = &fakeTimer{f: f, t: f.mock.Timer(d)}
	)

	f.armTimer(t, deadline)
	return t
}

func (f *Fake) NewTicker(d time.Duration) clock.Ticker {
	if d <= 0 {
		panic("clocktest: non-positive interval for NewTicker")
	}

	t := &fakeTicker{f: f, t: f.mock.Ticker(d)}
	f.lock.Lock()
	f.tickers[t] = true
	f.notify()
	f.lock.Unlock()
	return t
}

// Add advances the clock, firing every timer that expires along the way.  Add must
// only be called from one goroutine at a time.
func (f *Fake) Add(d time.Duration) {
	f.mock.Add(d)

	f.lock.Lock()
	f.notify()
	f.lock.Unlock()
}

// pending must be called under the lock.  Timers that have expired are forgotten.
func (f *Fake) pending(now time.Time) int {
	n := len(f.tickers)
	for t, deadline := range f.timers {
		if deadline.After(now) {
			n++
		} else {
			delete(f.timers, t)
		}
	}

	return n
}

// Pending returns the number of timers and tickers currently waiting to fire.
func (f *Fake) Pending() int {
	now := f.mock.Now()
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.pending(now)
}

// AwaitTimers blocks, in real time, until at least n timers are pending or the timeout elapses.
// It returns true if the condition was met.
func (f *Fake) AwaitTimers(n int, timeout time.Duration) bool {
	expired := time.After(timeout)
	for {
		now := f.mock.Now()
		f.lock.Lock()
		if f.pending(now) >= n {
			f.lock.Unlock()
			return true
		}

		changed := f.changed
		f.lock.Unlock()

		select {
		case <-changed:
		case <-expired:
			return false
		}
	}
}

type fakeTimer struct {
	f *Fake
	t *bclock.Timer
}

func (t *fakeTimer) C() <-chan time.Time {
	return t.t.C
}

func (t *fakeTimer) Stop() bool {
	active := t.t.Stop()
	t.f.disarmTimer(t)
	return active
}

// Reset rearms the timer.  An unread expiration is discarded first, since the mock
// blocks when firing into a full channel.  A nonpositive duration fires on the next Add.
func (t *fakeTimer) Reset(d time.Duration) bool {
	select {
	case <-t.t.C:
	default:
	}

	deadline := t.f.mock.Now().Add(d)
	active := t.t.Reset(d)
	t.f.armTimer(t, deadline)
	return active
}

type fakeTicker struct {
	f *Fake
	t *bclock.Ticker
}

func (t *fakeTicker) C() <-chan time.Time {
	return t.t.C
}

func (t *fakeTicker) Stop() {
	t.t.Stop()
	t.f.lock.Lock()
	delete(t.f.tickers, t)
	t.f.notify()
	t.f.lock.Unlock()
}
