// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"time"

	"github.com/xmidt-org/rtcore/mutex"
)

const (
	// DefaultPriority is the priority given to every task that does not configure one
	DefaultPriority = 7

	DefaultHold          = 500 * time.Millisecond
	DefaultCapacity      = 10
	DefaultItemSize      = 64
	DefaultLineSize      = 32
	DefaultLockWait      = 2 * time.Second
	DefaultLockHold      = time.Second
	DefaultRotatePeriod  = 100 * time.Millisecond
	DefaultPollPeriod    = 10 * time.Millisecond
	DefaultDebounceDelay = 10 * time.Millisecond
)

// Alternation configures two tasks that take strict turns toggling one output each
type Alternation struct {
	Disabled bool
	Priority int
	Hold     time.Duration
	OutputA  int
	OutputB  int
}

// MessageQueue configures a sender and a reader that alternate over one queue.  The
// sender never blocks: when the queue is full, it is purged in favor of the newest item.
type MessageQueue struct {
	Disabled bool
	Priority int
	Hold     time.Duration
	Capacity int
	ItemSize int
	Value    uint32
}

// Relay configures two tasks that pass an item back and forth over a pair of queues.
// The first queue is seeded with a single item.
type Relay struct {
	Disabled bool
	Priority int
	Hold     time.Duration
	Capacity int
	ItemSize int
}

// Contention configures two tasks competing for a lock around a shared counter
type Contention struct {
	Disabled bool
	Policy   mutex.Policy
	LockWait time.Duration
	Hold     time.Duration

	// Priorities are the priorities of the first and second contender
	Priorities []int
}

// UART configures the line echo over the serial input and output
type UART struct {
	Disabled bool
	Priority int
	Capacity int
	LineSize int
	Greeting []string
}

// Rotation configures outputs toggled in sequence while a mode is on.  The mode is
// flipped each time the active-low button is pressed.
type Rotation struct {
	Disabled      bool
	Priority      int
	Outputs       []int
	Period        time.Duration
	Button        int
	PollPeriod    time.Duration
	DebounceDelay time.Duration
	InitiallyOn   bool
}

// Board configures a simulated board.  Inputs maps input ids onto their initial levels.
// Levels are given as high/low, on/off, or anything that converts to a boolean.
type Board struct {
	History int
	Inputs  map[string]interface{}
}

// Options describes the whole task set.  Each group of tasks can be disabled individually.
type Options struct {
	Alternation  Alternation
	MessageQueue MessageQueue
	Relay        Relay
	Contention   Contention
	UART         UART
	Rotation     Rotation

	// Board configures the simulated board used when no hardware is supplied
	Board Board

	// Backoff is the delay before a failed task is restarted
	Backoff time.Duration

	// StopTimeout bounds how long stopping waits for every task to return
	StopTimeout time.Duration
}

// DefaultOptions returns the stock task set, with every group enabled
func DefaultOptions() Options {
	return Options{
		Alternation: Alternation{
			Priority: DefaultPriority,
			Hold:     DefaultHold,
			OutputA:  4,
			OutputB:  5,
		},
		MessageQueue: MessageQueue{
			Priority: DefaultPriority,
			Hold:     DefaultHold,
			Capacity: DefaultCapacity,
			ItemSize: DefaultItemSize,
			Value:    1,
		},
		Relay: Relay{
			Priority: DefaultPriority,
			Hold:     DefaultHold,
			Capacity: DefaultCapacity,
			ItemSize: DefaultItemSize,
		},
		Contention: Contention{
			Policy:     mutex.FIFO,
			LockWait:   DefaultLockWait,
			Hold:       DefaultLockHold,
			Priorities: []int{DefaultPriority, DefaultPriority},
		},
		UART: UART{
			Priority: DefaultPriority,
			Capacity: DefaultCapacity,
			LineSize: DefaultLineSize,
			Greeting: []string{
				"Hello! I'm your echo bot.",
				"Tell me something and press enter:",
			},
		},
		Rotation: Rotation{
			Priority:      DefaultPriority,
			Outputs:       []int{0, 1, 2, 3},
			Period:        DefaultRotatePeriod,
			Button:        0,
			PollPeriod:    DefaultPollPeriod,
			DebounceDelay: DefaultDebounceDelay,
		},
		Board: Board{
			History: 1000,
			Inputs: map[string]interface{}{
				"0": "high",
			},
		},
		Backoff:     time.Second,
		StopTimeout: 5 * time.Second,
	}
}

// priority returns the priority of the i-th contender
func (c Contention) priority(i int) int {
	if i < len(c.Priorities) {
		return c.Priorities[i]
	}

	return DefaultPriority
}
