// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xmetrics

import (
	"fmt"
	"sync"

	"emperror.dev/errors"
	"github.com/go-kit/kit/metrics"
	gokitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the core abstraction for this package.  It is a Prometheus registry and a go-kit metrics.Provider all in one.
//
// For any metric preregistered through a Module, the Provider methods return a go-kit wrapper around that metric,
// including its label names.  Ad hoc metrics are created without labels and cached for subsequent calls.
type Registry interface {
	provider.Provider
	prometheus.Gatherer
	prometheus.Registerer
}

// registry is the internal Registry implementation
type registry struct {
	*prometheus.Registry

	namespace string
	subsystem string

	lock  sync.Mutex
	cache map[string]prometheus.Collector
}

// NewRegistry creates a Registry, preregistering every metric the modules describe.
// Duplicate metric names are an error.
func NewRegistry(o *Options, modules ...Module) (Registry, error) {
	r := &registry{
		namespace: o.namespace(),
		subsystem: o.subsystem(),
		cache:     make(map[string]prometheus.Collector),
	}

	if o.pedantic() {
		r.Registry = prometheus.NewPedanticRegistry()
	} else {
		r.Registry = prometheus.NewRegistry()
	}

	if !o.disableGoCollector() {
		r.Registry.MustRegister(collectors.NewGoCollector())
	}

	for _, mf := range modules {
		for _, m := range mf() {
			if _, ok := r.cache[m.Name]; ok {
				return nil, errors.WithDetails(
					errors.New("duplicate metric"),
					"name", m.Name,
				)
			}

			c, err := NewCollector(r.namespace, r.subsystem, m)
			if err != nil {
				return nil, err
			}

			if err := r.Registry.Register(c); err != nil {
				return nil, errors.WrapWithDetails(err, "Error while preregistering metric", "name", m.Name)
			}

			r.cache[m.Name] = c
		}
	}

	return r, nil
}

// collector returns the cached collector for name, creating and registering an
// unlabeled one of the given type if necessary
func (r *registry) collector(name, metricType string) prometheus.Collector {
	r.lock.Lock()
	defer r.lock.Unlock()

	if existing, ok := r.cache[name]; ok {
		return existing
	}

	c, err := NewCollector(r.namespace, r.subsystem, Metric{Name: name, Type: metricType})
	if err != nil {
		panic(err)
	}

	if err := r.Registry.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			c = already.ExistingCollector
		} else {
			panic(err)
		}
	}

	r.cache[name] = c
	return c
}

func (r *registry) NewCounter(name string) metrics.Counter {
	if vec, ok := r.collector(name, CounterType).(*prometheus.CounterVec); ok {
		return gokitprometheus.NewCounter(vec)
	}

	panic(fmt.Errorf("The metric %s is not a counter", name))
}

func (r *registry) NewGauge(name string) metrics.Gauge {
	if vec, ok := r.collector(name, GaugeType).(*prometheus.GaugeVec); ok {
		return gokitprometheus.NewGauge(vec)
	}

	panic(fmt.Errorf("The metric %s is not a gauge", name))
}

func (r *registry) NewHistogram(name string, _ int) metrics.Histogram {
	if vec, ok := r.collector(name, HistogramType).(*prometheus.HistogramVec); ok {
		return gokitprometheus.NewHistogram(vec)
	}

	panic(fmt.Errorf("The metric %s is not a histogram", name))
}

func (r *registry) Stop() {
}
