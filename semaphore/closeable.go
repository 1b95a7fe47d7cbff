// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package semaphore

import (
	"context"
	"io"
	"sync/atomic"

	"emperror.dev/errors"
	"github.com/xmidt-org/rtcore/wait"
)

const (
	// ErrClosed is returned when a closeable semaphore has been closed
	ErrClosed = errors.Sentinel("the semaphore has been closed")
)

// Closeable represents a semaphore than can be closed.  Once closed, a semaphore cannot be reopened.
//
// Any goroutines blocked in Take when a Closeable is closed will receive ErrClosed.  Subsequent
// takes also return ErrClosed, and Give becomes a noop.  Close is idempotent, returning ErrClosed
// after the first call.
type Closeable interface {
	io.Closer
	Interface

	// Closed returns a channel that is closed when this semaphore has been closed.
	// This channel has similar use cases to context.Done().
	Closed() <-chan struct{}
}

// NewCloseable returns a semaphore which honors close-once semantics.  Tasks that must be
// released from a Take during shutdown, independently of any context, use a Closeable.
func NewCloseable(initial, max int, o ...Option) Closeable {
	return &closeable{
		semaphore: New(initial, max, o...).(*semaphore),
		closed:    make(chan struct{}),
	}
}

type closeable struct {
	*semaphore

	state  atomic.Bool
	closed chan struct{}
}

func (cs *closeable) Close() error {
	if cs.state.CompareAndSwap(false, true) {
		close(cs.closed)
		return nil
	}

	return ErrClosed
}

func (cs *closeable) Closed() <-chan struct{} {
	return cs.closed
}

// recheck puts a just-received token back if a close raced with the receive
func (cs *closeable) recheck() error {
	if cs.state.Load() {
		cs.semaphore.Give()
		return ErrClosed
	}

	return nil
}

func (cs *closeable) Take(ctx context.Context, w wait.Policy) error {
	if cs.state.Load() {
		return ErrClosed
	}

	if w.IsNoWait() {
		if !cs.semaphore.TryTake() {
			return ErrUnavailable
		}

		return cs.recheck()
	}

	expired, stop := w.Timer(cs.clock)
	defer stop()

	select {
	case <-cs.tokens:
		return cs.recheck()

	case <-expired:
		return wait.ErrTimeout

	case <-ctx.Done():
		return ctx.Err()

	case <-cs.closed:
		return ErrClosed
	}
}

func (cs *closeable) TryTake() bool {
	return cs.Take(context.Background(), wait.NoWait) == nil
}

func (cs *closeable) Give() {
	if !cs.state.Load() {
		cs.semaphore.Give()
	}
}
