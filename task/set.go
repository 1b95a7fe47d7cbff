// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/segmentio/ksuid"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/logging"
	"github.com/xmidt-org/rtcore/wait"
	"github.com/xmidt-org/rtcore/xmetrics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// ErrNotReady is returned when initialization fails, or when Start is called
	// before a successful Init
	ErrNotReady = errors.Sentinel("the task set is not ready")

	// ErrStarted is returned when the task set is modified or started after Start
	ErrStarted = errors.Sentinel("the task set has already been started")

	// DefaultBackoff is the delay before a failed task is restarted
	DefaultBackoff = time.Second
)

// Initializer is a single initialization step, such as a device readiness check
type Initializer func() error

// Option configures a Set
type Option func(*Set)

// WithLogger sets the parent logger of every task.  By default, sallust.Default() is used.
func WithLogger(l *zap.Logger) Option {
	return func(s *Set) {
		s.logger = logging.OrDefault(l)
	}
}

// WithClock sets the timer service handed to every task
func WithClock(c clock.Interface) Option {
	return func(s *Set) {
		s.clock = clock.OrSystem(c)
	}
}

// WithBackoff sets the delay before a failed task is restarted.  A nonpositive value
// sets DefaultBackoff.
func WithBackoff(d time.Duration) Option {
	return func(s *Set) {
		if d > 0 {
			s.backoff = d
		} else {
			s.backoff = DefaultBackoff
		}
	}
}

// WithRestarts establishes a counter of task restarts
func WithRestarts(a xmetrics.Adder) Option {
	return func(s *Set) {
		if a != nil {
			s.restarts = a
		} else {
			s.restarts = discard.NewCounter()
		}
	}
}

// Set is the fixed collection of tasks making up an application.  Tasks are declared
// with Add, the environment is checked with Init, and then every task is started at once
// with Start.  Stop cancels the shared context that every task's suspension points observe.
type Set struct {
	logger   *zap.Logger
	clock    clock.Interface
	backoff  time.Duration
	restarts xmetrics.Adder

	lock    sync.Mutex
	tasks   []*Task
	names   map[string]bool
	ready   bool
	started bool
	run     ksuid.KSUID
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
}

// NewSet creates an empty task set
func NewSet(o ...Option) *Set {
	s := &Set{
		logger:   logging.DefaultLogger(),
		clock:    clock.System(),
		backoff:  DefaultBackoff,
		restarts: discard.NewCounter(),
		names:    make(map[string]bool),
		done:     make(chan struct{}),
	}

	for _, f := range o {
		f(s)
	}

	return s
}

// Add declares tasks.  Each task needs a unique, nonempty name and a loop.
// Tasks cannot be added once the set has been started.
func (s *Set) Add(tasks ...*Task) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.started {
		return ErrStarted
	}

	for _, t := range tasks {
		switch {
		case t == nil || t.Loop == nil:
			return errors.New("a task requires a loop")

		case len(t.Name) == 0:
			return errors.New("a task requires a name")

		case s.names[t.Name]:
			return errors.WithDetails(errors.New("duplicate task"), "task", t.Name)
		}

		s.names[t.Name] = true
		s.tasks = append(s.tasks, t)
	}

	return nil
}

// Tasks returns the declared tasks in declaration order
func (s *Set) Tasks() []*Task {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]*Task(nil), s.tasks...)
}

// Len returns the number of declared tasks
func (s *Set) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.tasks)
}

// Run returns the identifier of this set's run, assigned by Start
func (s *Set) Run() ksuid.KSUID {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.run
}

// Init runs every initializer, even after a failure.  If any of them fail, the combined
// error also matches ErrNotReady, and the set cannot be started.
func (s *Set) Init(initializers ...Initializer) error {
	var err error
	for _, i := range initializers {
		err = multierr.Append(err, i())
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.started {
		return ErrStarted
	}

	if err != nil {
		s.ready = false
		s.logger.Error("initialization failed", zap.Error(err))
		return multierr.Append(ErrNotReady, err)
	}

	s.ready = true
	return nil
}

// Start launches every task in priority order, lower values first, with ties broken by
// declaration order.  The given context is the parent of the shared stop context.
func (s *Set) Start(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	switch {
	case s.started:
		return ErrStarted

	case !s.ready:
		return ErrNotReady
	}

	s.started = true
	s.run = ksuid.New()

	ordered := append([]*Task(nil), s.tasks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(len(ordered))
	for _, t := range ordered {
		t.run = s.run
		t.clock = s.clock
		t.logger = s.logger.With(
			zap.String("task", t.Name),
			zap.Int("priority", t.Priority),
			zap.Stringer("run", s.run),
		)

		t.logger.Info("starting task")
		go s.supervise(ctx, t)
	}

	go func() {
		s.wg.Wait()
		close(s.done)
	}()

	return nil
}

// invoke runs the task's loop once, turning a panic into an error
func (s *Set) invoke(ctx context.Context, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.WithDetails(fmt.Errorf("task panicked: %v", r), "task", t.Name)
		}
	}()

	return t.Loop(logging.WithLogger(ctx, t.logger), t)
}

func (s *Set) supervise(ctx context.Context, t *Task) {
	defer s.wg.Done()
	for {
		err := s.invoke(ctx, t)
		if err == nil || ctx.Err() != nil {
			t.logger.Info("task exited", zap.Error(err))
			return
		}

		t.logger.Error("task failed", zap.Error(err), zap.Duration("backoff", s.backoff))
		s.restarts.Add(1.0)
		if clock.SleepCtx(ctx, s.clock, s.backoff) != nil {
			t.logger.Info("task exited")
			return
		}
	}
}

// Done returns a channel that is closed once every started task has returned
func (s *Set) Done() <-chan struct{} {
	return s.done
}

// Stop signals every task to stop and waits up to timeout, measured on the system clock,
// for them to return.  wait.ErrTimeout is returned if some tasks are still running.
// Stopping a set that was never started does nothing.
func (s *Set) Stop(timeout time.Duration) error {
	s.lock.Lock()
	cancel := s.cancel
	s.lock.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-s.done:
		return nil
	case <-t.C:
		s.logger.Warn("tasks did not stop in time", zap.Duration("timeout", timeout))
		return wait.ErrTimeout
	}
}
