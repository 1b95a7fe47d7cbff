// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mutex

import (
	"context"

	"github.com/xmidt-org/rtcore/wait"
)

// Guarded is a value that can only be read or modified while holding its Mutex
type Guarded[T any] struct {
	m     *Mutex
	value T
}

// NewGuarded associates an initial value with a mutex.  A nil mutex results in a panic.
func NewGuarded[T any](m *Mutex, initial T) *Guarded[T] {
	if m == nil {
		panic("A mutex is required")
	}

	return &Guarded[T]{
		m:     m,
		value: initial,
	}
}

// Mutex returns the lock protecting this value
func (g *Guarded[T]) Mutex() *Mutex {
	return g.m
}

// Update invokes f with a pointer to the value while holding the lock.  The pointer
// must not escape f.
func (g *Guarded[T]) Update(ctx context.Context, owner Owner, w wait.Policy, f func(*T) error) error {
	return g.m.Do(ctx, owner, w, func() error {
		return f(&g.value)
	})
}

// Load returns a copy of the value, read under the lock
func (g *Guarded[T]) Load(ctx context.Context, owner Owner, w wait.Policy) (v T, err error) {
	err = g.m.Do(ctx, owner, w, func() error {
		v = g.value
		return nil
	})

	return
}
