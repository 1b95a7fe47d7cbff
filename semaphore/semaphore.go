// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"

	"emperror.dev/errors"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/wait"
)

const (
	// ErrUnavailable is returned by Take under a NoWait policy when the count is zero.
	ErrUnavailable = errors.Sentinel("the semaphore is unavailable")
)

// Interface is a counting semaphore.  The count is always in [0, Max()].  Take consumes
// one unit, suspending according to its wait.Policy when the count is zero, and Give
// produces one unit, saturating at Max().
//
// Unlike a mutex, there is no ownership:  any goroutine may Give, and Give is legal
// without a preceding Take.
type Interface interface {
	// Take decrements the count, honoring the given policy when the count is zero.
	// A NoWait failure is ErrUnavailable, an expired Timeout is wait.ErrTimeout, and a
	// canceled context is ctx.Err().
	Take(context.Context, wait.Policy) error

	// TryTake is a Take with the NoWait policy that reports success as a bool
	TryTake() bool

	// Give increments the count, or does nothing if the count is already Max().
	// If any goroutines are blocked in Take, exactly one of them is released.
	Give()

	// Count returns a snapshot of the current count
	Count() int

	// Max returns the saturation limit
	Max() int
}

// Option configures a semaphore at construction
type Option func(*semaphore)

// WithClock sets the timer service used for Timeout policies.  By default, the
// system clock is used.
func WithClock(c clock.Interface) Option {
	return func(s *semaphore) {
		s.clock = clock.OrSystem(c)
	}
}

// New constructs a counting semaphore with the given initial count and saturation limit.
// A nonpositive max, or an initial count outside [0, max], results in a panic.
func New(initial, max int, o ...Option) Interface {
	if max < 1 {
		panic("The max must be positive")
	}

	if initial < 0 || initial > max {
		panic("The initial count must be in the range [0, max]")
	}

	s := &semaphore{
		tokens: make(chan struct{}, max),
		clock:  clock.System(),
	}

	for i := 0; i < initial; i++ {
		s.tokens <- struct{}{}
	}

	for _, f := range o {
		f(s)
	}

	return s
}

// Binary is syntactic sugar for a semaphore with a max of 1.  The returned semaphore
// starts available if available is true.
func Binary(available bool, o ...Option) Interface {
	if available {
		return New(1, 1, o...)
	}

	return New(0, 1, o...)
}

// semaphore is the internal Interface implementation.  Each unit of count is a token
// in a buffered channel, so blocked takers are released in the order the runtime queued them.
type semaphore struct {
	tokens chan struct{}
	clock  clock.Interface
}

func (s *semaphore) Take(ctx context.Context, w wait.Policy) error {
	if w.IsNoWait() {
		if s.TryTake() {
			return nil
		}

		return ErrUnavailable
	}

	expired, stop := w.Timer(s.clock)
	defer stop()

	select {
	case <-s.tokens:
		return nil

	case <-expired:
		return wait.ErrTimeout

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *semaphore) TryTake() bool {
	select {
	case <-s.tokens:
		return true
	default:
		return false
	}
}

func (s *semaphore) Give() {
	select {
	case s.tokens <- struct{}{}:
	default:
		// saturated
	}
}

func (s *semaphore) Count() int {
	return len(s.tokens)
}

func (s *semaphore) Max() int {
	return cap(s.tokens)
}
