package observability

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of intake_engine_calls_total.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the collectors fed by the controller hooks.
type Metrics struct {
	Transitions  *prometheus.CounterVec
	EngineCalls  *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_transitions_total",
				Help: "Total number of workflow state transitions",
			},
			[]string{"from", "to"},
		),
		EngineCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_engine_calls_total",
				Help: "Total number of workflow engine calls",
			},
			[]string{"operation", "category", "outcome"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intake_engine_call_duration_seconds",
				Help:    "Duration of workflow engine calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.EngineCalls, m.CallDuration)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnEngineCall: func(_ context.Context, e *domain.EngineCallEvent) {
			outcome := OutcomeOK
			if e.Err != nil {
				outcome = OutcomeError
			}
			m.EngineCalls.WithLabelValues(e.Operation, string(e.Category), outcome).Inc()
			m.CallDuration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
		},
	}
}
