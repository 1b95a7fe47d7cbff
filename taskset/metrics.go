// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/rtcore/xmetrics"
)

const (
	QueuePutsCounter     = "queue_puts"
	QueueGetsCounter     = "queue_gets"
	QueueFailuresCounter = "queue_failures"
	QueuePurgedCounter   = "queue_purged"
	QueueDepthGauge      = "queue_depth"
	MutexAcquiredCounter = "mutex_acquired"
	MutexTimeoutsCounter = "mutex_timeouts"
	TurnsCounter         = "alternation_turns"
	TaskRestartsCounter  = "task_restarts"
	LinesDroppedCounter  = "uart_lines_dropped"
	EdgesCounter         = "input_edges"
	ModeClosedGauge      = "rotation_closed"

	QueueLabel = "queue"
	MutexLabel = "mutex"
	PairLabel  = "pair"
	SideLabel  = "side"
	InputLabel = "input"
)

// Metrics is the taskset module function that describes every metric the task set updates
func Metrics() []xmetrics.Metric {
	return []xmetrics.Metric{
		{
			Name:       QueuePutsCounter,
			Type:       xmetrics.CounterType,
			Help:       "The number of items added to a queue",
			LabelNames: []string{QueueLabel},
		},
		{
			Name:       QueueGetsCounter,
			Type:       xmetrics.CounterType,
			Help:       "The number of items removed from a queue",
			LabelNames: []string{QueueLabel},
		},
		{
			Name:       QueueFailuresCounter,
			Type:       xmetrics.CounterType,
			Help:       "The number of failed queue operations",
			LabelNames: []string{QueueLabel},
		},
		{
			Name:       QueuePurgedCounter,
			Type:       xmetrics.CounterType,
			Help:       "The number of items discarded by a purge",
			LabelNames: []string{QueueLabel},
		},
		{
			Name:       QueueDepthGauge,
			Type:       xmetrics.GaugeType,
			Help:       "The number of items currently in a queue",
			LabelNames: []string{QueueLabel},
		},
		{
			Name:       MutexAcquiredCounter,
			Type:       xmetrics.CounterType,
			LabelNames: []string{MutexLabel},
		},
		{
			Name:       MutexTimeoutsCounter,
			Type:       xmetrics.CounterType,
			LabelNames: []string{MutexLabel},
		},
		{
			Name:       TurnsCounter,
			Type:       xmetrics.CounterType,
			Help:       "The number of turns taken by one side of an alternation pair",
			LabelNames: []string{PairLabel, SideLabel},
		},
		{
			Name: TaskRestartsCounter,
			Type: xmetrics.CounterType,
		},
		{
			Name: LinesDroppedCounter,
			Type: xmetrics.CounterType,
			Help: "The number of received lines dropped because the line queue was full",
		},
		{
			Name:       EdgesCounter,
			Type:       xmetrics.CounterType,
			Help:       "The number of debounced input changes",
			LabelNames: []string{InputLabel},
		},
		{
			Name: ModeClosedGauge,
			Type: xmetrics.GaugeType,
			Help: "Indicates whether the output rotation is off (1.0) or on (0.0)",
		},
	}
}

// Measures holds the metric objects used by the task set.  Labeled metrics must
// have their labels supplied via With before use.
type Measures struct {
	QueuePuts     metrics.Counter
	QueueGets     metrics.Counter
	QueueFailures metrics.Counter
	QueuePurged   metrics.Counter
	QueueDepth    metrics.Gauge
	MutexAcquired metrics.Counter
	MutexTimeouts metrics.Counter
	Turns         metrics.Counter
	Restarts      xmetrics.Adder
	LinesDropped  xmetrics.Adder
	Edges         metrics.Counter
	ModeClosed    xmetrics.Setter
}

// NewMeasures constructs a Measures given a go-kit metrics Provider
func NewMeasures(p provider.Provider) *Measures {
	return &Measures{
		QueuePuts:     p.NewCounter(QueuePutsCounter),
		QueueGets:     p.NewCounter(QueueGetsCounter),
		QueueFailures: p.NewCounter(QueueFailuresCounter),
		QueuePurged:   p.NewCounter(QueuePurgedCounter),
		QueueDepth:    p.NewGauge(QueueDepthGauge),
		MutexAcquired: p.NewCounter(MutexAcquiredCounter),
		MutexTimeouts: p.NewCounter(MutexTimeoutsCounter),
		Turns:         p.NewCounter(TurnsCounter),
		Restarts:      p.NewCounter(TaskRestartsCounter),
		LinesDropped:  p.NewCounter(LinesDroppedCounter),
		Edges:         p.NewCounter(EdgesCounter),
		ModeClosed:    p.NewGauge(ModeClosedGauge),
	}
}
