// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package queue

import (
	"context"

	"emperror.dev/errors"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/wait"
	"github.com/xmidt-org/rtcore/xmetrics"
)

const (
	// ErrQueueFull is returned by a NoWait Put when every slot is occupied
	ErrQueueFull = errors.Sentinel("the queue is full")

	// ErrQueueEmpty is returned by a NoWait Get when no item is queued
	ErrQueueEmpty = errors.Sentinel("the queue is empty")

	// ErrCapacityExceeded is returned when an item does not fit into a slot, or when
	// a destination buffer cannot hold a slot
	ErrCapacityExceeded = errors.Sentinel("the item exceeds the slot size")
)

// Option configures a Queue at construction
type Option func(*Queue)

// WithClock sets the timer service used for Timeout policies
func WithClock(c clock.Interface) Option {
	return func(q *Queue) {
		q.clock = clock.OrSystem(c)
	}
}

// WithDepth establishes a gauge that tracks the number of queued items.
// A nil gauge discards depth updates.
func WithDepth(s xmetrics.Setter) Option {
	return func(q *Queue) {
		if s != nil {
			q.depth = s
		} else {
			q.depth = discard.NewGauge()
		}
	}
}

// WithPuts establishes a counter of successful puts
func WithPuts(a xmetrics.Adder) Option {
	return func(q *Queue) {
		if a != nil {
			q.puts = a
		} else {
			q.puts = discard.NewCounter()
		}
	}
}

// WithGets establishes a counter of successful gets
func WithGets(a xmetrics.Adder) Option {
	return func(q *Queue) {
		if a != nil {
			q.gets = a
		} else {
			q.gets = discard.NewCounter()
		}
	}
}

// WithFailures establishes a counter of puts and gets that did not complete for any reason
func WithFailures(a xmetrics.Adder) Option {
	return func(q *Queue) {
		if a != nil {
			q.failures = a
		} else {
			q.failures = discard.NewCounter()
		}
	}
}

// WithPurged establishes a counter of items dropped by Purge
func WithPurged(a xmetrics.Adder) Option {
	return func(q *Queue) {
		if a != nil {
			q.purged = a
		} else {
			q.purged = discard.NewCounter()
		}
	}
}

// Queue is a bounded FIFO of fixed-size items.  Storage is allocated once, at construction:
// each of the capacity slots cycles between the free list and the used list, so the queue
// never grows and never allocates on Put.
//
// Blocked putters wait on the free list and blocked getters wait on the used list.  Both are
// channels, so a Put wakes exactly one getter and a Get wakes exactly one putter.
type Queue struct {
	itemSize int
	free     chan []byte
	used     chan []byte
	clock    clock.Interface

	depth    xmetrics.Setter
	puts     xmetrics.Adder
	gets     xmetrics.Adder
	failures xmetrics.Adder
	purged   xmetrics.Adder
}

// New creates a Queue holding at most capacity items of exactly itemSize bytes each.
func New(capacity, itemSize int, o ...Option) (*Queue, error) {
	if capacity < 1 {
		return nil, errors.WithDetails(
			errors.New("the queue capacity must be positive"),
			"capacity", capacity,
		)
	}

	if itemSize < 1 {
		return nil, errors.WithDetails(
			errors.New("the queue item size must be positive"),
			"itemSize", itemSize,
		)
	}

	q := &Queue{
		itemSize: itemSize,
		free:     make(chan []byte, capacity),
		used:     make(chan []byte, capacity),
		clock:    clock.System(),
		depth:    discard.NewGauge(),
		puts:     discard.NewCounter(),
		gets:     discard.NewCounter(),
		failures: discard.NewCounter(),
		purged:   discard.NewCounter(),
	}

	storage := make([]byte, capacity*itemSize)
	for i := 0; i < capacity; i++ {
		q.free <- storage[i*itemSize : (i+1)*itemSize : (i+1)*itemSize]
	}

	for _, f := range o {
		f(q)
	}

	return q, nil
}

// Cap returns the maximum number of items this queue can hold
func (q *Queue) Cap() int {
	return cap(q.used)
}

// ItemSize returns the fixed size, in bytes, of every item
func (q *Queue) ItemSize() int {
	return q.itemSize
}

// Len returns a snapshot of the number of queued items
func (q *Queue) Len() int {
	return len(q.used)
}

// Free returns a snapshot of the number of unoccupied slots
func (q *Queue) Free() int {
	return len(q.free)
}

func (q *Queue) updateDepth() {
	q.depth.Set(float64(len(q.used)))
}

// acquire obtains a slot from src according to the wait policy
func (q *Queue) acquire(ctx context.Context, src <-chan []byte, w wait.Policy, unavailable error) ([]byte, error) {
	if w.IsNoWait() {
		select {
		case slot := <-src:
			return slot, nil
		default:
			return nil, unavailable
		}
	}

	expired, stop := w.Timer(q.clock)
	defer stop()

	select {
	case slot := <-src:
		return slot, nil

	case <-expired:
		return nil, wait.ErrTimeout

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put copies item into the tail of the queue.  Items shorter than ItemSize are zero-padded.
// An item longer than ItemSize is rejected with ErrCapacityExceeded without touching the
// queue.  When the queue is full, the wait policy decides whether Put fails with ErrQueueFull,
// waits up to a timeout, or waits forever.
func (q *Queue) Put(ctx context.Context, item []byte, w wait.Policy) error {
	if len(item) > q.itemSize {
		q.failures.Add(1.0)
		return errors.WithDetails(
			ErrCapacityExceeded,
			"length", len(item),
			"itemSize", q.itemSize,
		)
	}

	slot, err := q.acquire(ctx, q.free, w, ErrQueueFull)
	if err != nil {
		q.failures.Add(1.0)
		return err
	}

	n := copy(slot, item)
	clear(slot[n:])

	// never blocks: there are only Cap() slots in circulation
	q.used <- slot
	q.puts.Add(1.0)
	q.updateDepth()
	return nil
}

// GetInto removes the head item, copying it into dst.  dst must be at least ItemSize bytes.
func (q *Queue) GetInto(ctx context.Context, dst []byte, w wait.Policy) error {
	if len(dst) < q.itemSize {
		q.failures.Add(1.0)
		return errors.WithDetails(
			ErrCapacityExceeded,
			"length", len(dst),
			"itemSize", q.itemSize,
		)
	}

	slot, err := q.acquire(ctx, q.used, w, ErrQueueEmpty)
	if err != nil {
		q.failures.Add(1.0)
		return err
	}

	copy(dst, slot)
	q.free <- slot
	q.gets.Add(1.0)
	q.updateDepth()
	return nil
}

// Get removes the head item and returns a copy of it, exactly ItemSize bytes long
func (q *Queue) Get(ctx context.Context, w wait.Policy) ([]byte, error) {
	item := make([]byte, q.itemSize)
	if err := q.GetInto(ctx, item, w); err != nil {
		return nil, err
	}

	return item, nil
}

// Purge discards every queued item, returning how many were dropped.  The freed slots
// release any putters blocked on a full queue.
func (q *Queue) Purge() (count int) {
	defer func() {
		if count > 0 {
			q.purged.Add(float64(count))
			q.updateDepth()
		}
	}()

	for {
		select {
		case slot := <-q.used:
			q.free <- slot
			count++
		default:
			return
		}
	}
}

// PutLatest enqueues item without waiting.  Whenever the queue is full, its contents are
// purged and the put is retried, so the newest data always wins.  The total number of items
// purged is returned.
func (q *Queue) PutLatest(ctx context.Context, item []byte) (purged int, err error) {
	for {
		err = q.Put(ctx, item, wait.NoWait)
		if !errors.Is(err, ErrQueueFull) {
			return
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return purged, ctxErr
		}

		purged += q.Purge()
	}
}
