// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package alternation

import (
	"context"

	"emperror.dev/errors"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/semaphore"
	"github.com/xmidt-org/rtcore/wait"
)

const (
	// ErrInvariant indicates that both sides of a Pair are runnable at once, which can only
	// happen when something outside the Pair gave one of its semaphores
	ErrInvariant = errors.Sentinel("both sides of the alternation pair are runnable")
)

// Option configures a Pair at construction
type Option func(*options)

type options struct {
	startB     bool
	clock      clock.Interface
	instrument []semaphore.InstrumentOption
}

// WithStartB makes side B take the first turn.  By default, A goes first.
func WithStartB() Option {
	return func(o *options) {
		o.startB = true
	}
}

// WithClock sets the timer service used by both semaphores
func WithClock(c clock.Interface) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithInstrumentation decorates both semaphores with the given options
func WithInstrumentation(io ...semaphore.InstrumentOption) Option {
	return func(o *options) {
		o.instrument = append(o.instrument, io...)
	}
}

// Pair is two binary semaphores that force strict alternation between two tasks.
// Exactly one of the two is available at any time while both tasks follow the
// take-own, work, give-other protocol.
type Pair struct {
	a, b semaphore.Interface
}

// New creates a Pair where side A is runnable
func New(o ...Option) *Pair {
	opts := options{
		clock: clock.System(),
	}

	for _, f := range o {
		f(&opts)
	}

	var (
		a = semaphore.Binary(!opts.startB, semaphore.WithClock(opts.clock))
		b = semaphore.Binary(opts.startB, semaphore.WithClock(opts.clock))
	)

	if len(opts.instrument) > 0 {
		a = semaphore.Instrument(a, opts.instrument...)
		b = semaphore.Instrument(b, opts.instrument...)
	}

	return &Pair{a: a, b: b}
}

// A returns the side that, by default, goes first
func (p *Pair) A() Side {
	return Side{own: p.a, other: p.b}
}

// B returns the side that, by default, goes second
func (p *Pair) B() Side {
	return Side{own: p.b, other: p.a}
}

// Check verifies that at most one side is runnable
func (p *Pair) Check() error {
	if a, b := p.a.Count(), p.b.Count(); a+b > 1 {
		return errors.WithDetails(ErrInvariant, "a", a, "b", b)
	}

	return nil
}

// Side is one half of a Pair, bound to its own semaphore and its partner's
type Side struct {
	own, other semaphore.Interface
}

// Runnable tests whether this side could take its turn right now
func (s Side) Runnable() bool {
	return s.own.Count() > 0
}

// Turn waits for this side's semaphore according to the policy, runs work, and then
// hands the turn to the other side.  The handoff happens on every exit path of work,
// including errors and panics.  If the wait itself fails, work is not run, no handoff
// occurs, and the wait error is returned.
func (s Side) Turn(ctx context.Context, w wait.Policy, work func() error) error {
	if err := s.own.Take(ctx, w); err != nil {
		return err
	}

	defer s.other.Give()
	if work != nil {
		return work()
	}

	return nil
}
