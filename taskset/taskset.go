// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"context"
	"io"
	"strconv"
	"time"

	"emperror.dev/errors"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/rtcore/alternation"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/gate"
	"github.com/xmidt-org/rtcore/logging"
	"github.com/xmidt-org/rtcore/message"
	"github.com/xmidt-org/rtcore/mutex"
	"github.com/xmidt-org/rtcore/peripheral"
	"github.com/xmidt-org/rtcore/queue"
	"github.com/xmidt-org/rtcore/task"
	"github.com/xmidt-org/rtcore/wait"
	"go.uber.org/zap"
)

const (
	// ErrMissingPeripheral is reported by Init when an enabled group of tasks has no
	// device to drive
	ErrMissingPeripheral = errors.Sentinel("a required peripheral is not configured")
)

// Queue names, which are also the values of the queue metric label
const (
	MessageQueueName = "mqueue"
	RelayForward     = "relay_ab"
	RelayBackward    = "relay_ba"
	UARTQueueName    = "uart"
)

// Peripherals are the devices driven by the task set.  Any of them may be nil, in which
// case the groups that need them fail initialization.
type Peripherals struct {
	Outputs  peripheral.OutputSink
	Inputs   peripheral.InputSource
	Readiers []peripheral.Readier
	UARTIn   io.Reader
	UARTOut  io.Writer
}

// Dependencies are everything New needs besides the Options
type Dependencies struct {
	Peripherals

	// Logger is the parent of every task's logger.  If unset, sallust.Default() is used.
	Logger *zap.Logger

	// Clock is the timer service for every primitive and task.  If unset, the system clock is used.
	Clock clock.Interface

	// Measures receives the task set's metrics.  If unset, metrics are discarded.
	Measures *Measures
}

// TaskSet is the assembled, fixed set of tasks along with the primitives they share
type TaskSet struct {
	*task.Set

	stopTimeout  time.Duration
	initializers []task.Initializer
	queues       map[string]*queue.Queue
	counter      *mutex.Guarded[int]
	mode         gate.Interface
}

// Init checks every peripheral.  The task set can only be started after Init succeeds.
func (ts *TaskSet) Init() error {
	return ts.Set.Init(ts.initializers...)
}

// Shutdown stops every task, waiting at most the configured stop timeout
func (ts *TaskSet) Shutdown() error {
	return ts.Set.Stop(ts.stopTimeout)
}

// Queue returns the named queue, or nil if its group is disabled
func (ts *TaskSet) Queue(name string) *queue.Queue {
	return ts.queues[name]
}

// Counter returns the shared counter the contenders increment, or nil if that group is disabled
func (ts *TaskSet) Counter() *mutex.Guarded[int] {
	return ts.counter
}

// Mode returns the gate that switches the output rotation, or nil if that group is disabled
func (ts *TaskSet) Mode() gate.Interface {
	return ts.mode
}

type builder struct {
	o      Options
	d      Dependencies
	logger *zap.Logger
	clock  clock.Interface
	m      *Measures
	codec  message.Codec
	ts     *TaskSet
}

// New declares every enabled group of tasks.  Nothing is started.
func New(o Options, d Dependencies) (*TaskSet, error) {
	b := &builder{
		o:      o,
		d:      d,
		logger: logging.OrDefault(d.Logger),
		clock:  clock.OrSystem(d.Clock),
		m:      d.Measures,
		codec:  message.Codec{Format: message.Msgpack},
	}

	if b.m == nil {
		b.m = NewMeasures(provider.NewDiscardProvider())
	}

	b.ts = &TaskSet{
		Set: task.NewSet(
			task.WithLogger(b.logger),
			task.WithClock(b.clock),
			task.WithBackoff(o.Backoff),
			task.WithRestarts(b.m.Restarts),
		),
		stopTimeout: o.StopTimeout,
		queues:      make(map[string]*queue.Queue),
	}

	if b.ts.stopTimeout <= 0 {
		b.ts.stopTimeout = DefaultOptions().StopTimeout
	}

	for _, r := range d.Readiers {
		b.ts.initializers = append(b.ts.initializers, r.Ready)
	}

	for _, f := range []func() error{
		b.alternation,
		b.messageQueue,
		b.relay,
		b.contention,
		b.uart,
		b.rotation,
	} {
		if err := f(); err != nil {
			return nil, err
		}
	}

	return b.ts, nil
}

// require records an initialization failure for a group whose peripheral is missing.
// It returns true if the peripheral is present.
func (b *builder) require(present bool, group, what string) bool {
	if !present {
		b.ts.initializers = append(b.ts.initializers, func() error {
			return errors.WithDetails(ErrMissingPeripheral, "group", group, "peripheral", what)
		})
	}

	return present
}

func (b *builder) newQueue(name string, capacity, itemSize int) (*queue.Queue, error) {
	q, err := queue.New(
		capacity,
		itemSize,
		queue.WithClock(b.clock),
		queue.WithPuts(b.m.QueuePuts.With(QueueLabel, name)),
		queue.WithGets(b.m.QueueGets.With(QueueLabel, name)),
		queue.WithFailures(b.m.QueueFailures.With(QueueLabel, name)),
		queue.WithPurged(b.m.QueuePurged.With(QueueLabel, name)),
		queue.WithDepth(b.m.QueueDepth.With(QueueLabel, name)),
	)

	if err != nil {
		return nil, errors.WrapWithDetails(err, "unable to create queue", "queue", name)
	}

	b.ts.queues[name] = q
	return q, nil
}

// turn counts each turn taken by one side of a pair
func (b *builder) turn(pair, side string, work func(context.Context) error) func(context.Context) error {
	turns := b.m.Turns.With(PairLabel, pair, SideLabel, side)
	return func(ctx context.Context) error {
		turns.Add(1.0)
		return work(ctx)
	}
}

func (b *builder) alternation() error {
	a := b.o.Alternation
	if a.Disabled || !b.require(b.d.Outputs != nil, "alternation", "outputs") {
		return nil
	}

	hello := func(output int) func(context.Context) error {
		return func(ctx context.Context) error {
			b.d.Outputs.ToggleOutput(peripheral.ID(output))
			logging.GetLogger(ctx).Info("hello world", zap.Int("output", output))
			return nil
		}
	}

	pair := alternation.New(alternation.WithClock(b.clock))
	return b.ts.Add(
		&task.Task{
			Name:     "thread_a",
			Priority: a.Priority,
			Loop:     task.Alternate(pair.A(), a.Hold, b.turn("alternation", "a", hello(a.OutputA))),
		},
		&task.Task{
			Name:     "thread_b",
			Priority: a.Priority,
			Loop:     task.Alternate(pair.B(), a.Hold, b.turn("alternation", "b", hello(a.OutputB))),
		},
	)
}

func (b *builder) messageQueue() error {
	mq := b.o.MessageQueue
	if mq.Disabled {
		return nil
	}

	q, err := b.newQueue(MessageQueueName, mq.Capacity, mq.ItemSize)
	if err != nil {
		return err
	}

	var seq uint32
	send := func(ctx context.Context) error {
		seq++
		item, err := b.codec.Marshal(message.Item{Seq: seq, Value: mq.Value, Origin: "sender"}, q.ItemSize())
		if err != nil {
			return err
		}

		purged, err := q.PutLatest(ctx, item)
		if err != nil {
			return err
		}

		logging.GetLogger(ctx).Info("item added to queue", zap.Uint32("seq", seq), zap.Int("purged", purged))
		return nil
	}

	receive := func(ctx context.Context) error {
		slot, err := q.Get(ctx, wait.Forever)
		if err != nil {
			return err
		}

		item, err := b.codec.Decode(slot)
		if err != nil {
			return err
		}

		logging.GetLogger(ctx).Info("item received", zap.Uint32("seq", item.Seq), zap.Uint32("value", item.Value))
		return nil
	}

	pair := alternation.New(alternation.WithClock(b.clock))
	return b.ts.Add(
		&task.Task{
			Name:     "sender",
			Priority: mq.Priority,
			Loop:     task.Alternate(pair.A(), mq.Hold, b.turn(MessageQueueName, "a", send)),
		},
		&task.Task{
			Name:     "reader",
			Priority: mq.Priority,
			Loop:     task.Alternate(pair.B(), mq.Hold, b.turn(MessageQueueName, "b", receive)),
		},
	)
}

// forward returns the relay step that stamps an item with the forwarding task and
// advances its sequence number
func (b *builder) forward(name string) func([]byte) ([]byte, error) {
	return func(slot []byte) ([]byte, error) {
		item, err := b.codec.Decode(slot)
		if err != nil {
			return nil, err
		}

		item.Seq++
		item.Origin = name
		return b.codec.Marshal(item, len(slot))
	}
}

func (b *builder) relay() error {
	r := b.o.Relay
	if r.Disabled {
		return nil
	}

	ab, err := b.newQueue(RelayForward, r.Capacity, r.ItemSize)
	if err != nil {
		return err
	}

	ba, err := b.newQueue(RelayBackward, r.Capacity, r.ItemSize)
	if err != nil {
		return err
	}

	seed, err := b.codec.Marshal(message.Item{Value: 1, Origin: "seed"}, r.ItemSize)
	if err != nil {
		return err
	}

	if err := ab.Put(context.Background(), seed, wait.NoWait); err != nil {
		return err
	}

	return b.ts.Add(
		&task.Task{
			Name:     "relay_a",
			Priority: r.Priority,
			Loop:     task.Relay(ab, ba, b.forward("relay_a"), r.Hold),
		},
		&task.Task{
			Name:     "relay_b",
			Priority: r.Priority,
			Loop:     task.Relay(ba, ab, b.forward("relay_b"), r.Hold),
		},
	)
}

func (b *builder) contention() error {
	c := b.o.Contention
	if c.Disabled {
		return nil
	}

	m := mutex.New(
		mutex.WithPolicy(c.Policy),
		mutex.WithClock(b.clock),
		mutex.WithAcquired(b.m.MutexAcquired.With(MutexLabel, "counter")),
		mutex.WithTimeouts(b.m.MutexTimeouts.With(MutexLabel, "counter")),
	)

	b.ts.counter = mutex.NewGuarded(m, 0)
	return b.ts.Add(
		&task.Task{
			Name:     "contender_a",
			Priority: c.priority(0),
			Loop:     task.Contend(b.ts.counter, c.LockWait, c.Hold),
		},
		&task.Task{
			Name:     "contender_b",
			Priority: c.priority(1),
			Loop:     task.Contend(b.ts.counter, c.LockWait, c.Hold),
		},
	)
}

func (b *builder) uart() error {
	u := b.o.UART
	if u.Disabled {
		return nil
	}

	in := b.require(b.d.UARTIn != nil, "uart", "input")
	out := b.require(b.d.UARTOut != nil, "uart", "output")
	if !in || !out {
		return nil
	}

	q, err := b.newQueue(UARTQueueName, u.Capacity, u.LineSize)
	if err != nil {
		return err
	}

	framer := peripheral.NewFramer(
		b.d.UARTIn,
		q,
		peripheral.WithFramerLogger(b.logger.With(zap.String("queue", UARTQueueName))),
		peripheral.WithDropped(b.m.LinesDropped),
	)

	return b.ts.Add(
		&task.Task{
			Name:     "uart_rx",
			Priority: u.Priority,
			Loop:     task.Frame(framer),
		},
		&task.Task{
			Name:     "uart_echo",
			Priority: u.Priority,
			Loop:     task.Echo(q, b.d.UARTOut, u.Greeting...),
		},
	)
}

func (b *builder) rotation() error {
	r := b.o.Rotation
	if r.Disabled {
		return nil
	}

	outputs := b.require(b.d.Outputs != nil, "rotation", "outputs")
	inputs := b.require(b.d.Inputs != nil, "rotation", "inputs")
	if !outputs || !inputs {
		return nil
	}

	if r.Period <= 0 || r.PollPeriod <= 0 {
		return errors.WithDetails(
			errors.New("rotation periods must be positive"),
			"period", r.Period,
			"pollPeriod", r.PollPeriod,
		)
	}

	ids := make([]peripheral.ID, 0, len(r.Outputs))
	for _, o := range r.Outputs {
		ids = append(ids, peripheral.ID(o))
	}

	gateOptions := []gate.Option{gate.WithClosedGauge(b.m.ModeClosed)}
	if !r.InitiallyOn {
		gateOptions = append(gateOptions, gate.WithInitiallyClosed())
	}

	b.ts.mode = gate.New(gateOptions...)

	var (
		mode   = b.ts.mode
		edges  = b.m.Edges.With(InputLabel, strconv.Itoa(r.Button))
		logger = b.logger.With(zap.Int("input", r.Button))
	)

	// the button is active-low
	debouncer := peripheral.NewDebouncer(
		b.d.Inputs,
		peripheral.ID(r.Button),
		func(e peripheral.Edge) {
			edges.Add(1.0)
			if e.Level == peripheral.Low {
				logger.Info("button pressed", zap.Bool("rotating", mode.Toggle()))
			}
		},
		peripheral.WithDebounceDelay(r.DebounceDelay),
		peripheral.WithDebounceClock(b.clock),
	)

	return b.ts.Add(
		&task.Task{
			Name:     "rotate",
			Priority: r.Priority,
			Loop:     task.Rotate(b.d.Outputs, ids, mode, r.Period),
		},
		&task.Task{
			Name:     "button",
			Priority: r.Priority,
			Loop:     task.Poll(debouncer, r.PollPeriod),
		},
	)
}
