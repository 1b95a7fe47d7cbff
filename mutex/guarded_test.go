// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package mutex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xmidt-org/rtcore/wait"
)

func TestNewGuarded(t *testing.T) {
	assert := assert.New(t)
	assert.Panics(func() {
		NewGuarded[int](nil, 0)
	})

	m := New()
	g := NewGuarded(m, 7)
	assert.Same(m, g.Mutex())
}

func TestGuarded(t *testing.T) {
	var (
		assert = assert.New(t)
		ctx    = context.Background()
		g      = NewGuarded(New(), 0)
	)

	for i := 0; i < 3; i++ {
		assert.NoError(g.Update(ctx, ownerX, wait.Forever, func(v *int) error {
			*v++
			return nil
		}))
	}

	v, err := g.Load(ctx, ownerY, wait.NoWait)
	assert.NoError(err)
	assert.Equal(3, v)

	assert.NoError(g.Mutex().Lock(ctx, ownerZ, wait.NoWait))
	_, err = g.Load(ctx, ownerY, wait.NoWait)
	assert.ErrorIs(err, wait.ErrTimeout)

	assert.Equal(errExpected, func() error {
		assert.NoError(g.Mutex().Unlock(ownerZ))
		return g.Update(ctx, ownerX, wait.NoWait, func(*int) error {
			return errExpected
		})
	}())
}
