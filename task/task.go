// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/xmidt-org/rtcore/clock"
	"go.uber.org/zap"
)

// Loop is the body of a task.  It runs until the context is canceled, which is the
// cooperative stop signal, and should return ctx.Err() at that point.  Any other
// non-nil error is a failure, and the task is restarted.
type Loop func(ctx context.Context, t *Task) error

// Task is a long-lived, named unit of work with a nominal priority.  Lower priority
// values are more urgent.
type Task struct {
	Name     string
	Priority int
	Loop     Loop

	logger *zap.Logger
	clock  clock.Interface
	run    ksuid.KSUID
}

// Logger returns this task's logger.  Once started, the logger carries the task name,
// priority, and run id.
func (t *Task) Logger() *zap.Logger {
	if t.logger != nil {
		return t.logger
	}

	return zap.NewNop()
}

// Clock returns the timer service this task should use for hold delays
func (t *Task) Clock() clock.Interface {
	return clock.OrSystem(t.clock)
}

// Run returns the identifier of the Set run that started this task.  It is the zero
// KSUID until the task is started.
func (t *Task) Run() ksuid.KSUID {
	return t.run
}

// Sleep suspends the task for d or until ctx is canceled
func (t *Task) Sleep(ctx context.Context, d time.Duration) error {
	return clock.SleepCtx(ctx, t.Clock(), d)
}
