// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package clocktest

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/xmidt-org/rtcore/clock"
)

// Mock verifies exactly which durations a component asks its clock for.  Use Fake
// when timers need to fire.  Only NewTimer has an expectation helper; the other
// methods are rarely asserted on and can be set up with On directly.
type Mock struct {
	mock.Mock
}

var _ clock.Interface = (*Mock)(nil)

func (m *Mock) Now() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func (m *Mock) Sleep(d time.Duration) {
	m.Called(d)
}

func (m *Mock) NewTimer(d time.Duration) clock.Timer {
	args := m.Called(d)
	return args.Get(0).(clock.Timer)
}

func (m *Mock) NewTicker(d time.Duration) clock.Ticker {
	args := m.Called(d)
	return args.Get(0).(clock.Ticker)
}

// OnNewTimer expects a timer of duration d to be requested, answering with t
func (m *Mock) OnNewTimer(d time.Duration, t clock.Timer) *mock.Call {
	return m.On("NewTimer", d).Return(t)
}

// MockTimer is a clock.Timer whose channel is supplied by the test, with
// expectations on Stop and Reset
type MockTimer struct {
	mock.Mock
	c <-chan time.Time
}

var _ clock.Timer = (*MockTimer)(nil)

// NewMockTimer returns a MockTimer that delivers on c
func NewMockTimer(c <-chan time.Time) *MockTimer {
	return &MockTimer{c: c}
}

func (m *MockTimer) C() <-chan time.Time {
	return m.c
}

func (m *MockTimer) Reset(d time.Duration) bool {
	return m.Called(d).Bool(0)
}

func (m *MockTimer) Stop() bool {
	return m.Called().Bool(0)
}

// OnStop expects Stop to be called, reporting whether the timer was still pending
func (m *MockTimer) OnStop(pending bool) *mock.Call {
	return m.On("Stop").Return(pending)
}
