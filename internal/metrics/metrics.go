// Package metrics holds the Prometheus collectors of the rate loader.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Cycle outcomes.
const (
	OutcomeDone    = "done"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
)

// Metrics is the set of collectors updated by fetch cycles.
type Metrics struct {
	CyclesTotal          *prometheus.CounterVec
	RecordsInserted      *prometheus.CounterVec
	RecordsDuplicate     *prometheus.CounterVec
	RecordsNotFound      *prometheus.CounterVec
	CycleDurationSeconds *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_rate_cycles_total",
				Help: "Fetch cycles by autoload method and outcome",
			},
			[]string{"method", "outcome"},
		),
		RecordsInserted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_rate_records_inserted_total",
				Help: "Rates stored by autoload method",
			},
			[]string{"method"},
		),
		RecordsDuplicate: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_rate_records_duplicate_total",
				Help: "Fetched rates skipped because they were already stored",
			},
			[]string{"method"},
		),
		RecordsNotFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_rate_records_not_found_total",
				Help: "Requested tickers the upstream did not return",
			},
			[]string{"method"},
		),
		CycleDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "currency_rate_cycle_duration_seconds",
				Help:    "Duration of fetch cycles",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	collectors := []prometheus.Collector{
		m.CyclesTotal,
		m.RecordsInserted,
		m.RecordsDuplicate,
		m.RecordsNotFound,
		m.CycleDurationSeconds,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// ObserveCycle records a finished cycle.
func (m *Metrics) ObserveCycle(method, outcome string, seconds float64) {
	m.CyclesTotal.WithLabelValues(method, outcome).Inc()
	m.CycleDurationSeconds.WithLabelValues(method).Observe(seconds)
}
