package observability

import (
	"context"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by engine hooks.
type Metrics struct {
	Steps    *prometheus.CounterVec
	Halts    *prometheus.CounterVec
	Faults   *prometheus.CounterVec
	RunSteps *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utm_steps_total",
				Help: "Total number of executed transitions",
			},
			[]string{"variant"},
		),
		Halts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utm_halts_total",
				Help: "Total number of halted runs by outcome",
			},
			[]string{"variant", "outcome"},
		),
		Faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utm_faults_total",
				Help: "Total number of aborted runs",
			},
			[]string{"variant"},
		),
		RunSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "utm_run_steps",
				Help:    "Steps taken by halted runs",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"variant"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Steps, m.Halts, m.Faults, m.RunSteps)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.Variant.String()).Inc()
		},
		OnHalt: func(_ context.Context, e *domain.HaltEvent) {
			m.Halts.WithLabelValues(e.Variant.String(), e.Outcome.String()).Inc()
			m.RunSteps.WithLabelValues(e.Variant.String()).Observe(float64(e.Steps))
		},
		OnFault: func(_ context.Context, e *domain.FaultEvent) {
			m.Faults.WithLabelValues(e.Variant.String()).Inc()
		},
	}
}
