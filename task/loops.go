// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"bytes"
	"context"
	"io"
	"time"

	"emperror.dev/errors"
	"github.com/xmidt-org/rtcore/alternation"
	"github.com/xmidt-org/rtcore/gate"
	"github.com/xmidt-org/rtcore/mutex"
	"github.com/xmidt-org/rtcore/peripheral"
	"github.com/xmidt-org/rtcore/queue"
	"github.com/xmidt-org/rtcore/wait"
	"go.uber.org/zap"
)

// Relay forwards items from one queue to another.  Each item is taken from in, waiting
// forever, optionally transformed by process, held for the given duration, and then put
// to out without waiting.  When out is full, the item is dropped.  A process error skips
// the item.
func Relay(in, out *queue.Queue, process func([]byte) ([]byte, error), hold time.Duration) Loop {
	return func(ctx context.Context, t *Task) error {
		item := make([]byte, in.ItemSize())
		for {
			if err := in.GetInto(ctx, item, wait.Forever); err != nil {
				return err
			}

			next := item
			if process != nil {
				var err error
				if next, err = process(item); err != nil {
					t.Logger().Warn("item skipped", zap.Error(err))
					continue
				}
			}

			if err := t.Sleep(ctx, hold); err != nil {
				return err
			}

			err := out.Put(ctx, next, wait.NoWait)
			switch {
			case errors.Is(err, queue.ErrQueueFull):
				t.Logger().Debug("item dropped", zap.Error(err))

			case err != nil:
				return err
			}
		}
	}
}

// Alternate runs side's turns forever.  During each turn, work runs first and then the
// turn is held for the given duration before passing to the other side.
func Alternate(side alternation.Side, hold time.Duration, work func(context.Context) error) Loop {
	return func(ctx context.Context, t *Task) error {
		for {
			err := side.Turn(ctx, wait.Forever, func() error {
				if work != nil {
					if err := work(ctx); err != nil {
						return err
					}
				}

				return t.Sleep(ctx, hold)
			})

			if err != nil {
				return err
			}
		}
	}
}

// Contend repeatedly increments a shared counter.  Each round locks with the lockWait
// timeout, increments the counter, holds the lock for the given duration, and unlocks.
// A round whose lock times out is skipped.  The task's name and priority are its
// mutex identity.
func Contend(counter *mutex.Guarded[int], lockWait, hold time.Duration) Loop {
	return func(ctx context.Context, t *Task) error {
		owner := mutex.Owner{Name: t.Name, Priority: t.Priority}
		for {
			err := counter.Update(ctx, owner, wait.Timeout(lockWait), func(v *int) error {
				*v++
				t.Logger().Info("counter incremented", zap.Int("value", *v))
				return t.Sleep(ctx, hold)
			})

			switch {
			case errors.Is(err, wait.ErrTimeout):
				t.Logger().Warn("lock timed out", zap.Duration("wait", lockWait))

			case err != nil:
				return err
			}
		}
	}
}

// Echo writes each line taken from q back to out, prefixed with "Echo: " and terminated
// with CRLF.  Any greeting lines are written once, at the start.
func Echo(q *queue.Queue, out io.Writer, greeting ...string) Loop {
	return func(ctx context.Context, t *Task) error {
		for _, g := range greeting {
			if _, err := io.WriteString(out, g+"\r\n"); err != nil {
				return err
			}
		}

		var (
			item = make([]byte, q.ItemSize())
			line bytes.Buffer
		)

		for {
			if err := q.GetInto(ctx, item, wait.Forever); err != nil {
				return err
			}

			text := item
			if i := bytes.IndexByte(item, 0); i >= 0 {
				text = item[:i]
			}

			line.Reset()
			line.WriteString("Echo: ")
			line.Write(text)
			line.WriteString("\r\n")
			if _, err := out.Write(line.Bytes()); err != nil {
				return err
			}
		}
	}
}

// Rotate toggles outputs one at a time, in sequence, once per period while mode is open.
// While mode is closed, every output is driven low and the sequence restarts from the
// first output.
func Rotate(out peripheral.OutputSink, ids []peripheral.ID, mode gate.Interface, period time.Duration) Loop {
	return func(ctx context.Context, t *Task) error {
		ticker := t.Clock().NewTicker(period)
		defer ticker.Stop()

		var (
			next    int
			lowered bool
		)

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			case <-ticker.C():
			}

			if len(ids) == 0 {
				continue
			}

			if mode.IsOpen() {
				out.ToggleOutput(ids[next])
				next = (next + 1) % len(ids)
				lowered = false
			} else if !lowered {
				for _, id := range ids {
					out.SetOutput(id, peripheral.Low)
				}

				next = 0
				lowered = true
			}
		}
	}
}

// Poll samples a debounced input once per period
func Poll(d *peripheral.Debouncer, period time.Duration) Loop {
	return func(ctx context.Context, t *Task) error {
		ticker := t.Clock().NewTicker(period)
		defer ticker.Stop()
		defer d.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			case <-ticker.C():
				d.Sample()
			}
		}
	}
}

// Frame runs a line framer as a task
func Frame(f *peripheral.Framer) Loop {
	return func(ctx context.Context, t *Task) error {
		if err := f.Run(ctx); err != nil {
			return err
		}

		t.Logger().Info("input exhausted")
		return nil
	}
}
