// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mutex

import (
	"context"
	"strings"
	"sync"

	"emperror.dev/errors"
	"github.com/gammazero/deque"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/wait"
	"github.com/xmidt-org/rtcore/xmetrics"
)

const (
	// ErrNotOwner is returned by Unlock when the caller does not hold the lock
	ErrNotOwner = errors.Sentinel("the caller does not own the mutex")

	// ErrReentrant is returned by Lock when the caller already holds the lock
	ErrReentrant = errors.Sentinel("the mutex is already held by the caller")
)

// Owner identifies a lock holder.  Owners are compared by Name.  Priority only matters
// for a mutex using the Priority policy, where a lower value is more urgent.
type Owner struct {
	Name     string
	Priority int
}

// Policy determines which waiter receives the lock when it is released
type Policy int

const (
	// FIFO grants the lock to waiters in arrival order
	FIFO Policy = iota

	// Priority grants the lock to the most urgent waiter, falling back to arrival
	// order among waiters of equal priority
	Priority
)

func (p Policy) String() string {
	switch p {
	case Priority:
		return "priority"
	default:
		return "fifo"
	}
}

// MarshalText writes the same form that ParsePolicy accepts
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText allows a Policy to be decoded from configuration
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// ParsePolicy produces a Policy from its name, ignoring case.  The empty string is FIFO.
func ParsePolicy(v string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "fifo":
		return FIFO, nil

	case "priority":
		return Priority, nil

	default:
		return FIFO, errors.WithDetails(
			errors.New("invalid mutex policy"),
			"value", v,
		)
	}
}

// Option configures a Mutex at construction
type Option func(*Mutex)

// WithPolicy sets the waiter ordering.  The default is FIFO.
func WithPolicy(p Policy) Option {
	return func(m *Mutex) {
		m.policy = p
	}
}

// WithClock sets the timer service used for Timeout policies
func WithClock(c clock.Interface) Option {
	return func(m *Mutex) {
		m.clock = clock.OrSystem(c)
	}
}

// WithAcquired establishes a counter of successful acquisitions
func WithAcquired(a xmetrics.Adder) Option {
	return func(m *Mutex) {
		if a != nil {
			m.acquired = a
		} else {
			m.acquired = discard.NewCounter()
		}
	}
}

// WithTimeouts establishes a counter of acquisitions that did not complete in time
func WithTimeouts(a xmetrics.Adder) Option {
	return func(m *Mutex) {
		if a != nil {
			m.timeouts = a
		} else {
			m.timeouts = discard.NewCounter()
		}
	}
}

type waiter struct {
	owner Owner
	ready chan struct{}
}

// Mutex is an owned lock with bounded waits.  Unlike sync.Mutex, a Mutex knows who holds it:
// only the owner may unlock it, and ownership passes directly from the releasing owner to the
// next waiter chosen by the Policy, so a newly arriving Lock can never overtake a waiter.
type Mutex struct {
	lock    sync.Mutex
	held    bool
	owner   Owner
	waiters deque.Deque[*waiter]

	policy   Policy
	clock    clock.Interface
	acquired xmetrics.Adder
	timeouts xmetrics.Adder
}

// New creates an unlocked Mutex
func New(o ...Option) *Mutex {
	m := &Mutex{
		clock:    clock.System(),
		acquired: discard.NewCounter(),
		timeouts: discard.NewCounter(),
	}

	for _, f := range o {
		f(m)
	}

	return m
}

// enqueue must be called under the lock
func (m *Mutex) enqueue(wt *waiter) {
	if m.policy == Priority {
		if i := m.waiters.Index(func(other *waiter) bool {
			return other.owner.Priority > wt.owner.Priority
		}); i >= 0 {
			m.waiters.Insert(i, wt)
			return
		}
	}

	m.waiters.PushBack(wt)
}

// Lock acquires this mutex on behalf of owner.  When the mutex is held by someone else,
// the wait policy applies: NoWait fails immediately with wait.ErrTimeout, Timeout waits at
// most its duration before returning wait.ErrTimeout, and Forever waits until the lock is
// granted or the context is canceled.  A Lock by the current owner returns ErrReentrant.
func (m *Mutex) Lock(ctx context.Context, owner Owner, w wait.Policy) error {
	m.lock.Lock()
	switch {
	case !m.held:
		m.held = true
		m.owner = owner
		m.lock.Unlock()
		m.acquired.Add(1.0)
		return nil

	case m.owner.Name == owner.Name:
		m.lock.Unlock()
		return errors.WithDetails(ErrReentrant, "owner", owner.Name)

	case w.IsNoWait():
		m.lock.Unlock()
		m.timeouts.Add(1.0)
		return wait.ErrTimeout
	}

	wt := &waiter{
		owner: owner,
		ready: make(chan struct{}, 1),
	}

	m.enqueue(wt)
	m.lock.Unlock()

	expired, stop := w.Timer(m.clock)
	defer stop()

	var err error
	select {
	case <-wt.ready:
		m.acquired.Add(1.0)
		return nil

	case <-expired:
		err = wait.ErrTimeout

	case <-ctx.Done():
		err = ctx.Err()
	}

	m.lock.Lock()
	i := m.waiters.Index(func(other *waiter) bool {
		return other == wt
	})

	if i < 0 {
		// ownership was handed to us concurrently with the expiry
		m.lock.Unlock()
		m.acquired.Add(1.0)
		return nil
	}

	m.waiters.Remove(i)
	m.lock.Unlock()
	m.timeouts.Add(1.0)
	return err
}

// Unlock releases this mutex, handing it to the next waiter if there is one.
// ErrNotOwner is returned if owner does not hold the lock.
func (m *Mutex) Unlock(owner Owner) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.held || m.owner.Name != owner.Name {
		return errors.WithDetails(ErrNotOwner, "owner", owner.Name)
	}

	if m.waiters.Len() == 0 {
		m.held = false
		m.owner = Owner{}
		return nil
	}

	next := m.waiters.PopFront()
	m.owner = next.owner
	next.ready <- struct{}{}
	return nil
}

// Owner returns the current holder, if any
func (m *Mutex) Owner() (Owner, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.owner, m.held
}

// Waiting returns the number of goroutines blocked in Lock
func (m *Mutex) Waiting() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.waiters.Len()
}

// Do runs f while holding the lock.  The lock is released on every exit path of f,
// including a panic.  If the release itself fails, lock discipline has been broken
// (someone else unlocked on our behalf) and Do panics.
func (m *Mutex) Do(ctx context.Context, owner Owner, w wait.Policy, f func() error) error {
	if err := m.Lock(ctx, owner, w); err != nil {
		return err
	}

	defer func() {
		if err := m.Unlock(owner); err != nil {
			panic(err)
		}
	}()

	return f()
}
