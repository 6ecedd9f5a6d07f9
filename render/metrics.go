// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts status renders. A nil *Metrics records nothing.
type Metrics struct {
	renders   *prometheus.CounterVec
	coalesced prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secretballot",
			Name:      "status_renders_total",
			Help:      "Public status edits attempted, by outcome",
		}, []string{"outcome"}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "secretballot",
			Name:      "status_renders_coalesced_total",
			Help:      "Render requests replaced by a newer request before starting",
		}),
	}

	err := errors.Join(
		registerer.Register(m.renders),
		registerer.Register(m.coalesced),
	)
	return m, err
}

func (m *Metrics) rendered(outcome string) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(outcome).Inc()
}

func (m *Metrics) coalesce() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
}
