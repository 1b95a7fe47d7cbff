// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package peripheral

import (
	"bufio"
	"context"
	"io"
	"sync"

	"emperror.dev/errors"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/xmidt-org/rtcore/queue"
	"github.com/xmidt-org/rtcore/wait"
	"github.com/xmidt-org/rtcore/xmetrics"
	"go.uber.org/zap"
)

// FramerOption configures a Framer
type FramerOption func(*Framer)

// WithFramerLogger sets the logger for dropped lines
func WithFramerLogger(l *zap.Logger) FramerOption {
	return func(f *Framer) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithDropped establishes a counter of lines dropped because the queue was full
func WithDropped(a xmetrics.Adder) FramerOption {
	return func(f *Framer) {
		if a != nil {
			f.dropped = a
		} else {
			f.dropped = discard.NewCounter()
		}
	}
}

// Framer splits a byte stream into lines and queues each one.  A line ends at '\n' or '\r';
// terminators that would produce an empty line are ignored.  Lines are truncated so that
// they fit in a queue slot with at least one trailing zero byte.  Lines are queued without
// waiting, so a full queue drops the line.
//
// The source is read by a single background goroutine, started by the first call to Run.
// Run returns as soon as its context is canceled, even while that read is blocked, and a
// byte read while no Run is active is held for the next Run.
type Framer struct {
	source  *bufio.Reader
	q       *queue.Queue
	logger  *zap.Logger
	dropped xmetrics.Adder

	line []byte

	pumpOnce sync.Once
	received chan byte
	readErr  error
}

// NewFramer creates a Framer reading from source and writing to q
func NewFramer(source io.Reader, q *queue.Queue, o ...FramerOption) *Framer {
	f := &Framer{
		source:   bufio.NewReader(source),
		q:        q,
		logger:   zap.NewNop(),
		dropped:  discard.NewCounter(),
		line:     make([]byte, 0, q.ItemSize()),
		received: make(chan byte),
	}

	for _, fo := range o {
		fo(f)
	}

	return f
}

// Feed processes a single received byte
func (f *Framer) Feed(ctx context.Context, c byte) error {
	switch {
	case c == '\n' || c == '\r':
		if len(f.line) == 0 {
			return nil
		}

		err := f.q.Put(ctx, f.line, wait.NoWait)
		f.line = f.line[:0]
		if errors.Is(err, queue.ErrQueueFull) {
			f.dropped.Add(1.0)
			f.logger.Debug("line dropped", zap.Error(err))
			return nil
		}

		return err

	case len(f.line) < f.q.ItemSize()-1:
		f.line = append(f.line, c)
	}

	// beyond the slot size, characters are discarded
	return nil
}

// pump moves bytes from the source onto the received channel.  readErr is set before
// the channel is closed.
func (f *Framer) pump() {
	defer close(f.received)
	for {
		c, err := f.source.ReadByte()
		if err != nil {
			f.readErr = err
			return
		}

		f.received <- c
	}
}

// Run reads the source until it is exhausted or the context is canceled.
// Reaching the end of the source is not an error.
func (f *Framer) Run(ctx context.Context) error {
	f.pumpOnce.Do(func() {
		go f.pump()
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case c, ok := <-f.received:
			if !ok {
				if errors.Is(f.readErr, io.EOF) {
					return nil
				}

				return f.readErr
			}

			if err := f.Feed(ctx, c); err != nil {
				return err
			}
		}
	}
}
