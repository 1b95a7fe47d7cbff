// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/rtcore/clock/clocktest"
	"github.com/xmidt-org/rtcore/wait"
)

func ExampleBinary() {
	const routineCount = 5

	var (
		s     = Binary(true)
		wg    = new(sync.WaitGroup)
		value int
	)

	wg.Add(routineCount)
	for i := 0; i < routineCount; i++ {
		go func() {
			defer wg.Done()
			defer s.Give()
			s.Take(context.Background(), wait.Forever)
			value++
			fmt.Println(value)
		}()
	}

	wg.Wait()

	// Unordered output:
	// 1
	// 2
	// 3
	// 4
	// 5
}

func testNewInvalid(t *testing.T) {
	testData := []struct {
		initial, max int
	}{
		{0, 0},
		{0, -1},
		{-1, 1},
		{2, 1},
	}

	for _, record := range testData {
		t.Run(fmt.Sprintf("initial=%d,max=%d", record.initial, record.max), func(t *testing.T) {
			assert.Panics(t, func() {
				New(record.initial, record.max)
			})
		})
	}
}

func testNewValid(t *testing.T) {
	testData := []struct {
		initial, max int
	}{
		{0, 1},
		{1, 1},
		{0, 5},
		{3, 5},
	}

	for _, record := range testData {
		t.Run(fmt.Sprintf("initial=%d,max=%d", record.initial, record.max), func(t *testing.T) {
			assert := assert.New(t)
			s := New(record.initial, record.max)
			assert.Equal(record.initial, s.Count())
			assert.Equal(record.max, s.Max())
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("Invalid", testNewInvalid)
	t.Run("Valid", testNewValid)
}

func TestBinary(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(1, Binary(true).Count())
	assert.Equal(0, Binary(false).Count())
	assert.Equal(1, Binary(false).Max())
}

func TestGiveSaturates(t *testing.T) {
	assert := assert.New(t)
	s := New(0, 3)

	for i := 0; i < 10; i++ {
		s.Give()
	}

	assert.Equal(3, s.Count())
	for i := 0; i < 3; i++ {
		assert.True(s.TryTake())
	}

	assert.False(s.TryTake())
	assert.Zero(s.Count())
}

func TestTakeNoWait(t *testing.T) {
	var (
		assert = assert.New(t)
		s      = New(1, 1)
	)

	assert.NoError(s.Take(context.Background(), wait.NoWait))
	assert.ErrorIs(s.Take(context.Background(), wait.NoWait), ErrUnavailable)
	assert.ErrorIs(s.Take(context.Background(), wait.Timeout(0)), ErrUnavailable)
	assert.Zero(s.Count())
}

func TestTakeForever(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		s       = New(0, 1)
		result  = make(chan error, 1)
	)

	go func() {
		result <- s.Take(context.Background(), wait.Forever)
	}()

	select {
	case <-result:
		require.FailNow("Take should have blocked")
	case <-time.After(50 * time.Millisecond):
	}

	s.Give()
	select {
	case err := <-result:
		assert.NoError(err)
		assert.Zero(s.Count())
	case <-time.After(time.Second):
		assert.FailNow("Take blocked after Give")
	}
}

func TestTakeTimeout(t *testing.T) {
	var (
		assert = assert.New(t)
		f      = clocktest.NewFake(time.Time{})
		s      = New(0, 1, WithClock(f))
		result = make(chan error, 1)
	)

	go func() {
		result <- s.Take(context.Background(), wait.Timeout(100*time.Millisecond))
	}()

	assert.True(f.AwaitTimers(1, time.Second))
	f.Add(100 * time.Millisecond)

	select {
	case err := <-result:
		assert.ErrorIs(err, wait.ErrTimeout)
	case <-time.After(time.Second):
		assert.FailNow("Take did not time out")
	}

	// a give before expiry wins, and the timer is released
	go func() {
		result <- s.Take(context.Background(), wait.Timeout(100*time.Millisecond))
	}()

	assert.True(f.AwaitTimers(1, time.Second))
	s.Give()
	select {
	case err := <-result:
		assert.NoError(err)
	case <-time.After(time.Second):
		assert.FailNow("Take did not succeed")
	}

	assert.Zero(f.Pending())
}

func TestTakeCanceled(t *testing.T) {
	var (
		assert      = assert.New(t)
		s           = New(0, 1)
		result      = make(chan error, 1)
		ctx, cancel = context.WithCancel(context.Background())
	)

	go func() {
		result <- s.Take(ctx, wait.Forever)
	}()

	cancel()
	select {
	case err := <-result:
		assert.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		assert.FailNow("Take ignored cancellation")
	}

	assert.Zero(s.Count())
}

func TestGiveReleasesOneTaker(t *testing.T) {
	const takers = 3

	var (
		assert      = assert.New(t)
		s           = New(0, takers)
		results     = make(chan error, takers)
		ctx, cancel = context.WithCancel(context.Background())
	)

	defer cancel()
	for i := 0; i < takers; i++ {
		go func() {
			results <- s.Take(ctx, wait.Forever)
		}()
	}

	for i := 0; i < takers; i++ {
		s.Give()
		select {
		case err := <-results:
			assert.NoError(err)
		case <-time.After(time.Second):
			assert.FailNow("Give did not release a taker")
		}

		select {
		case <-results:
			assert.FailNow("Give released more than one taker")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
