// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package peripheral

import (
	"sync"

	"emperror.dev/errors"
)

var errNotReady = errors.New("expected")

// testInput is a settable InputSource
type testInput struct {
	lock   sync.Mutex
	levels map[ID]Level
	reads  int
}

func newTestInput() *testInput {
	return &testInput{levels: make(map[ID]Level)}
}

func (ti *testInput) set(id ID, l Level) {
	ti.lock.Lock()
	ti.levels[id] = l
	ti.lock.Unlock()
}

func (ti *testInput) ReadInput(id ID) Level {
	ti.lock.Lock()
	defer ti.lock.Unlock()
	ti.reads++
	return ti.levels[id]
}
