// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/peripheral"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// ErrNotReady is returned by Ready for a board that has been marked unavailable
	ErrNotReady = errors.Sentinel("the simulated board is not ready")
)

// Change is a single recorded output transition
type Change struct {
	At    time.Time
	ID    peripheral.ID
	Level peripheral.Level
}

// Option configures a Board
type Option func(*Board)

// WithClock sets the clock used to timestamp changes
func WithClock(c clock.Interface) Option {
	return func(b *Board) {
		b.clock = clock.OrSystem(c)
	}
}

// WithLogger logs every output transition at debug level
func WithLogger(l *zap.Logger) Option {
	return func(b *Board) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithInputs sets initial input levels
func WithInputs(levels map[peripheral.ID]peripheral.Level) Option {
	return func(b *Board) {
		maps.Copy(b.inputs, levels)
	}
}

// WithHistory bounds the change log.  Older changes are discarded once the bound is reached.
// A nonpositive value keeps every change.
func WithHistory(n int) Option {
	return func(b *Board) {
		b.history = n
	}
}

// Board is an in-memory board.  Outputs start low and every transition is recorded.
// Inputs are set by tests or by configuration.
type Board struct {
	lock     sync.Mutex
	clock    clock.Interface
	logger   *zap.Logger
	history  int
	notReady error

	outputs map[peripheral.ID]peripheral.Level
	inputs  map[peripheral.ID]peripheral.Level
	changes []Change
}

var (
	_ peripheral.OutputSink  = (*Board)(nil)
	_ peripheral.InputSource = (*Board)(nil)
	_ peripheral.Readier     = (*Board)(nil)
)

// New creates a ready Board
func New(o ...Option) *Board {
	b := &Board{
		clock:   clock.System(),
		logger:  zap.NewNop(),
		outputs: make(map[peripheral.ID]peripheral.Level),
		inputs:  make(map[peripheral.ID]peripheral.Level),
	}

	for _, f := range o {
		f(b)
	}

	return b
}

// record must be called under the lock
func (b *Board) record(id peripheral.ID, l peripheral.Level) {
	b.outputs[id] = l
	b.changes = append(b.changes, Change{At: b.clock.Now(), ID: id, Level: l})
	if b.history > 0 && len(b.changes) > b.history {
		b.changes = slices.Delete(b.changes, 0, len(b.changes)-b.history)
	}

	b.logger.Debug("output", zap.Int("id", int(id)), zap.Stringer("level", l))
}

func (b *Board) SetOutput(id peripheral.ID, l peripheral.Level) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if current, ok := b.outputs[id]; !ok || current != l {
		b.record(id, l)
	}
}

func (b *Board) ToggleOutput(id peripheral.ID) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.record(id, b.outputs[id].Not())
}

// Output returns the current level of an output.  Outputs never driven are low.
func (b *Board) Output(id peripheral.ID) peripheral.Level {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.outputs[id]
}

// Outputs returns the ids of every output driven so far, in ascending order
func (b *Board) Outputs() []peripheral.ID {
	b.lock.Lock()
	ids := maps.Keys(b.outputs)
	b.lock.Unlock()

	slices.Sort(ids)
	return ids
}

// Changes returns a copy of the change log, oldest first
func (b *Board) Changes() []Change {
	b.lock.Lock()
	defer b.lock.Unlock()
	return slices.Clone(b.changes)
}

// SetInput changes the raw level of an input
func (b *Board) SetInput(id peripheral.ID, l peripheral.Level) {
	b.lock.Lock()
	b.inputs[id] = l
	b.lock.Unlock()
}

func (b *Board) ReadInput(id peripheral.ID) peripheral.Level {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.inputs[id]
}

// SetReady marks the board ready or not
func (b *Board) SetReady(ready bool) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if ready {
		b.notReady = nil
	} else {
		b.notReady = ErrNotReady
	}
}

func (b *Board) Ready() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.notReady
}
