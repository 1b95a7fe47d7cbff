// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"sync"
	"testing"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		assert := assert.New(t)
		g := New(WithClosedGauge(nil))
		assert.True(g.IsOpen())
	})

	t.Run("InitiallyClosed", func(t *testing.T) {
		var (
			assert = assert.New(t)
			gauge  = generic.NewGauge("closed")
			g      = New(WithInitiallyClosed(), WithClosedGauge(gauge))
		)

		assert.False(g.IsOpen())
		assert.Equal(1.0, gauge.Value())
	})
}

func TestRaiseLower(t *testing.T) {
	var (
		assert = assert.New(t)
		gauge  = generic.NewGauge("closed")
		g      = New(WithClosedGauge(gauge))
	)

	assert.Zero(gauge.Value())
	g.Raise()
	assert.True(g.IsOpen())

	g.Lower()
	assert.False(g.IsOpen())
	assert.Equal(1.0, gauge.Value())

	g.Lower()
	assert.False(g.IsOpen())

	g.Raise()
	assert.True(g.IsOpen())
	assert.Zero(gauge.Value())
}

func TestToggle(t *testing.T) {
	var (
		assert = assert.New(t)
		gauge  = generic.NewGauge("closed")
		g      = New(WithClosedGauge(gauge))
	)

	assert.False(g.Toggle())
	assert.Equal(1.0, gauge.Value())
	assert.True(g.Toggle())
	assert.Zero(gauge.Value())

	// an even number of concurrent toggles leaves the gate where it started
	var wg sync.WaitGroup
	wg.Add(100)
	for i := 0; i < 100; i++ {
		go func() {
			defer wg.Done()
			g.Toggle()
		}()
	}

	wg.Wait()
	assert.True(g.IsOpen())
}
