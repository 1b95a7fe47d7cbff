// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/rtcore/clock/clocktest"
	"github.com/xmidt-org/rtcore/message"
	"github.com/xmidt-org/rtcore/mutex"
	"github.com/xmidt-org/rtcore/peripheral"
	"github.com/xmidt-org/rtcore/peripheral/sim"
	"github.com/xmidt-org/rtcore/task"
	"github.com/xmidt-org/rtcore/wait"
	"github.com/xmidt-org/rtcore/xmetrics"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// allDisabled returns the default options with every group turned off
func allDisabled() Options {
	o := DefaultOptions()
	o.Alternation.Disabled = true
	o.MessageQueue.Disabled = true
	o.Relay.Disabled = true
	o.Contention.Disabled = true
	o.UART.Disabled = true
	o.Rotation.Disabled = true
	return o
}

func newTestBoard() *sim.Board {
	return sim.New(sim.WithInputs(map[peripheral.ID]peripheral.Level{
		0: peripheral.High,
	}))
}

func taskNames(ts *TaskSet) []string {
	var names []string
	for _, t := range ts.Tasks() {
		names = append(names, t.Name)
	}

	return names
}

func TestDefaultOutputsDisjoint(t *testing.T) {
	var (
		assert = assert.New(t)
		o      = DefaultOptions()
	)

	assert.NotEqual(o.Alternation.OutputA, o.Alternation.OutputB)
	for _, id := range o.Rotation.Outputs {
		assert.NotEqual(o.Alternation.OutputA, id)
		assert.NotEqual(o.Alternation.OutputB, id)
	}
}

func TestNewDefault(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		board   = newTestBoard()
	)

	ts, err := New(DefaultOptions(), Dependencies{
		Peripherals: SimulatedPeripherals(board, strings.NewReader(""), io.Discard),
		Logger:      zap.NewNop(),
	})

	require.NoError(err)
	require.NotNil(ts)

	assert.Equal(
		[]string{
			"thread_a", "thread_b",
			"sender", "reader",
			"relay_a", "relay_b",
			"contender_a", "contender_b",
			"uart_rx", "uart_echo",
			"rotate", "button",
		},
		taskNames(ts),
	)

	for _, name := range []string{MessageQueueName, RelayForward, RelayBackward, UARTQueueName} {
		assert.NotNil(ts.Queue(name), name)
	}

	assert.Equal(1, ts.Queue(RelayForward).Len())
	assert.Zero(ts.Queue(RelayBackward).Len())
	assert.Equal(DefaultLineSize, ts.Queue(UARTQueueName).ItemSize())
	assert.NotNil(ts.Counter())
	require.NotNil(ts.Mode())
	assert.False(ts.Mode().IsOpen())
	assert.NoError(ts.Init())
}

func TestNewAllDisabled(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	ts, err := New(allDisabled(), Dependencies{})
	require.NoError(err)
	assert.Zero(ts.Len())
	assert.Nil(ts.Counter())
	assert.Nil(ts.Mode())
	assert.Nil(ts.Queue(RelayForward))
	assert.NoError(ts.Init())
}

func TestNewInvalid(t *testing.T) {
	testData := []func(*Options){
		func(o *Options) { o.Relay.Disabled = false; o.Relay.Capacity = 0 },
		func(o *Options) { o.Relay.Disabled = false; o.Relay.ItemSize = 4 },
		func(o *Options) { o.MessageQueue.Disabled = false; o.MessageQueue.ItemSize = -1 },
		func(o *Options) { o.Rotation.Disabled = false; o.Rotation.Period = 0 },
	}

	for i, modify := range testData {
		o := allDisabled()
		modify(&o)

		board := newTestBoard()
		ts, err := New(o, Dependencies{
			Peripherals: SimulatedPeripherals(board, nil, nil),
		})

		assert.Error(t, err, "case %d", i)
		assert.Nil(t, ts, "case %d", i)
	}
}

func TestInitNotReady(t *testing.T) {
	t.Run("MissingPeripherals", func(t *testing.T) {
		var (
			assert  = assert.New(t)
			require = require.New(t)
		)

		ts, err := New(DefaultOptions(), Dependencies{Logger: zap.NewNop()})
		require.NoError(err)

		// only the groups that need no devices are declared
		assert.Equal(
			[]string{"sender", "reader", "relay_a", "relay_b", "contender_a", "contender_b"},
			taskNames(ts),
		)

		err = ts.Init()
		assert.ErrorIs(err, task.ErrNotReady)
		assert.ErrorIs(err, ErrMissingPeripheral)
		assert.ErrorIs(ts.Start(context.Background()), task.ErrNotReady)
	})

	t.Run("DeviceNotReady", func(t *testing.T) {
		var (
			assert  = assert.New(t)
			require = require.New(t)
			board   = newTestBoard()
		)

		board.SetReady(false)
		ts, err := New(allDisabled(), Dependencies{
			Peripherals: SimulatedPeripherals(board, nil, nil),
			Logger:      zap.NewNop(),
		})

		require.NoError(err)
		err = ts.Init()
		assert.ErrorIs(err, task.ErrNotReady)
		assert.ErrorIs(err, sim.ErrNotReady)
	})
}

func findSample(samples []xmetrics.Sample, name string) (float64, bool) {
	for _, s := range samples {
		if s.Name == name {
			return s.Value, true
		}
	}

	return 0.0, false
}

func TestRelayRuns(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	r, err := xmetrics.NewRegistry(&xmetrics.Options{DisableGoCollector: true}, Metrics)
	require.NoError(err)

	o := allDisabled()
	o.Relay.Disabled = false
	o.Relay.Hold = time.Millisecond

	ts, err := New(o, Dependencies{
		Logger:   zap.NewNop(),
		Measures: NewMeasures(r),
	})

	require.NoError(err)
	require.NoError(ts.Init())
	require.NoError(ts.Start(context.Background()))

	require.Eventually(func() bool {
		samples, err := xmetrics.Snapshot(r, "rtcore_core_queue_gets")
		if err != nil {
			return false
		}

		v, ok := findSample(samples, "rtcore_core_queue_gets{queue=relay_ba}")
		return ok && v >= 3.0
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(ts.Shutdown())

	// at most one item circulates; an item held by a stopped relay is gone
	assert.LessOrEqual(ts.Queue(RelayForward).Len()+ts.Queue(RelayBackward).Len(), 1)

	samples, err := xmetrics.Snapshot(r, "rtcore_core_queue_puts")
	require.NoError(err)
	puts, ok := findSample(samples, "rtcore_core_queue_puts{queue=relay_ab}")
	assert.True(ok)
	assert.GreaterOrEqual(puts, 3.0)
}

func TestForward(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
		b       = &builder{codec: message.Codec{Format: message.Msgpack}}
	)

	slot, err := b.codec.Marshal(message.Item{Seq: 4, Value: 9, Origin: "seed"}, DefaultItemSize)
	require.NoError(err)

	next, err := b.forward("relay_a")(slot)
	require.NoError(err)
	assert.Len(next, DefaultItemSize)

	item, err := b.codec.Decode(next)
	require.NoError(err)
	assert.Equal(message.Item{Seq: 5, Value: 9, Origin: "relay_a"}, item)

	_, err = b.forward("relay_a")([]byte{0xc1, 0, 0, 0})
	assert.Error(err)
}

func TestContentionRuns(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		core, logs = observer.New(zapcore.InfoLevel)
	)

	o := allDisabled()
	o.Contention.Disabled = false
	o.Contention.Policy = mutex.Priority
	o.Contention.Hold = time.Millisecond
	o.Contention.Priorities = []int{1, 2}

	ts, err := New(o, Dependencies{Logger: zap.New(core)})
	require.NoError(err)
	require.NoError(ts.Init())
	require.NoError(ts.Start(context.Background()))

	require.Eventually(func() bool {
		return logs.FilterMessage("counter incremented").FilterField(zap.String("task", "contender_b")).Len() > 0 &&
			logs.FilterMessage("counter incremented").FilterField(zap.String("task", "contender_a")).Len() > 0
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(ts.Shutdown())

	v, err := ts.Counter().Load(context.Background(), mutex.Owner{Name: "test"}, wait.NoWait)
	require.NoError(err)
	assert.Equal(logs.FilterMessage("counter incremented").Len(), v)
}

func TestRotationButton(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		fake  = clocktest.NewFake(time.Time{})
		board = newTestBoard()
	)

	o := allDisabled()
	o.Rotation.Disabled = false
	o.Rotation.Outputs = []int{0, 1}

	ts, err := New(o, Dependencies{
		Peripherals: SimulatedPeripherals(board, nil, nil),
		Logger:      zap.NewNop(),
		Clock:       fake,
	})

	require.NoError(err)
	require.NoError(ts.Init())
	require.NoError(ts.Start(context.Background()))

	// both tickers are running
	require.True(fake.AwaitTimers(2, time.Second))

	// press the active-low button: the next poll schedules a confirmation read
	board.SetInput(0, peripheral.Low)
	fake.Add(o.Rotation.PollPeriod)
	require.True(fake.AwaitTimers(3, time.Second))
	fake.Add(o.Rotation.DebounceDelay)

	require.Eventually(ts.Mode().IsOpen, time.Second, time.Millisecond)

	fake.Add(o.Rotation.Period)
	require.Eventually(func() bool {
		return board.Output(0) == peripheral.High
	}, time.Second, time.Millisecond)

	require.NoError(ts.Shutdown())
	assert.Equal(peripheral.Low, board.Output(1))
}
