// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/danielhkuo/secretballot/models"
)

// Metrics tracks vote lifecycle counts. A nil *Metrics records nothing.
type Metrics struct {
	started   prometheus.Counter
	rejected  *prometheus.CounterVec
	finalized *prometheus.CounterVec
	choices   prometheus.Counter
	active    prometheus.Gauge
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "secretballot",
			Name:      "votes_started_total",
			Help:      "Votes that passed fanout and went live",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secretballot",
			Name:      "vote_rejections_total",
			Help:      "StartVote and RecordChoice rejections, by reason",
		}, []string{"reason"}),
		finalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secretballot",
			Name:      "votes_finalized_total",
			Help:      "Finalized votes, by trigger and result",
		}, []string{"reason", "result"}),
		choices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "secretballot",
			Name:      "choices_recorded_total",
			Help:      "Ballot choices accepted",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "secretballot",
			Name:      "active_votes",
			Help:      "Votes currently open",
		}),
	}

	err := errors.Join(
		registerer.Register(m.started),
		registerer.Register(m.rejected),
		registerer.Register(m.finalized),
		registerer.Register(m.choices),
		registerer.Register(m.active),
	)
	return m, err
}

func (m *Metrics) voteStarted() {
	if m == nil {
		return
	}
	m.started.Inc()
	m.active.Inc()
}

func (m *Metrics) reject(err error) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(kind(err)).Inc()
}

func (m *Metrics) voteFinalized(reason models.FinalizeReason, result models.Result) {
	if m == nil {
		return
	}
	m.finalized.WithLabelValues(string(reason), string(result)).Inc()
	m.active.Dec()
}

func (m *Metrics) choiceRecorded() {
	if m == nil {
		return
	}
	m.choices.Inc()
}
