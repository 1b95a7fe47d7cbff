// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"testing"

	"emperror.dev/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModule() []Metric {
	return []Metric{
		{Name: "puts", Type: CounterType, LabelNames: []string{"queue"}},
		{Name: "depth", Type: GaugeType, LabelNames: []string{"queue"}},
		{Name: "latency", Type: HistogramType, Buckets: []float64{0.1, 1}},
	}
}

func TestNewCollector(t *testing.T) {
	assert := assert.New(t)

	_, err := NewCollector("a", "b", Metric{Type: CounterType})
	assert.Error(err)

	_, err = NewCollector("a", "b", Metric{Name: "x", Type: "nosuch"})
	assert.Error(err)

	for _, m := range testModule() {
		c, err := NewCollector("a", "b", m)
		assert.NoError(err)
		assert.NotNil(c)
	}
}

func TestNewRegistry(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		assert := assert.New(t)
		r, err := NewRegistry(nil)
		assert.NoError(err)
		assert.NotNil(r)

		families, err := r.Gather()
		assert.NoError(err)
		assert.NotEmpty(families)
	})

	t.Run("Duplicate", func(t *testing.T) {
		assert := assert.New(t)
		r, err := NewRegistry(&Options{DisableGoCollector: true}, testModule, testModule)
		assert.Error(err)
		assert.Nil(r)
	})

	t.Run("BadMetric", func(t *testing.T) {
		assert := assert.New(t)
		r, err := NewRegistry(nil, func() []Metric {
			return []Metric{{Name: "bad", Type: "nosuch"}}
		})

		assert.Error(err)
		assert.Nil(r)
	})
}

func TestRegistryProvider(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	r, err := NewRegistry(&Options{Namespace: "ns", Subsystem: "ss", Pedantic: true, DisableGoCollector: true}, testModule)
	require.NoError(err)

	r.NewCounter("puts").With("queue", "q1").Add(2)
	r.NewCounter("puts").With("queue", "q1").Add(1)
	r.NewGauge("depth").With("queue", "q1").Set(7)
	r.NewCounter("adhoc").Add(1)
	r.NewHistogram("latency", 0).Observe(0.5)
	r.Stop()

	assert.Panics(func() {
		r.NewGauge("puts")
	})

	assert.Panics(func() {
		r.NewCounter("latency")
	})

	assert.Panics(func() {
		r.NewHistogram("depth", 0)
	})

	samples, err := Snapshot(r, "ns_ss_")
	require.NoError(err)
	assert.Equal(
		[]Sample{
			{Name: "ns_ss_adhoc", Value: 1},
			{Name: "ns_ss_depth{queue=q1}", Value: 7},
			{Name: "ns_ss_puts{queue=q1}", Value: 3},
		},
		samples,
	)
}

func TestSnapshotError(t *testing.T) {
	assert := assert.New(t)
	samples, err := Snapshot(prometheus.GathererFunc(func() ([]*dto.MetricFamily, error) {
		return nil, errors.New("expected")
	}), "")

	assert.Error(err)
	assert.Empty(samples)
}
