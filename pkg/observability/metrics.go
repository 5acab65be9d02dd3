package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/streamblocks/actormachine/pkg/domain"
)

const namespace = "actormachine"

// Metrics holds the collectors registered for one registry.
type Metrics struct {
	GraphsBuilt    *prometheus.CounterVec
	GraphStates    *prometheus.GaugeVec
	PrunedStates   *prometheus.CounterVec
	DispatchSize   *prometheus.GaugeVec
	Steps          *prometheus.CounterVec
	StepEvaluation *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		GraphsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graphs_built_total",
				Help:      "Total number of controller graphs built",
			},
			[]string{"actor"},
		),
		GraphStates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_states",
				Help:      "Reachable states of the latest controller graph",
			},
			[]string{"actor"},
		),
		PrunedStates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pruned_states_total",
				Help:      "Total number of unreachable states pruned",
			},
			[]string{"actor"},
		),
		DispatchSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dispatch_size",
				Help:      "Size of the latest projected dispatch structure",
			},
			[]string{"actor", "strategy"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Total number of instance steps by outcome",
			},
			[]string{"actor", "strategy", "outcome"},
		),
		StepEvaluation: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_condition_evaluations",
				Help:      "Condition evaluations needed to reach one decision",
				Buckets:   prometheus.LinearBuckets(0, 2, 10),
			},
			[]string{"strategy"},
		),
	}

	reg.MustRegister(m.GraphsBuilt, m.GraphStates, m.PrunedStates, m.DispatchSize, m.Steps, m.StepEvaluation)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGraphBuilt: func(e *domain.GraphEvent) {
			m.GraphsBuilt.WithLabelValues(e.Actor).Inc()
			m.GraphStates.WithLabelValues(e.Actor).Set(float64(e.States))
		},
		OnStatePruned: func(e *domain.GraphEvent) {
			m.PrunedStates.WithLabelValues(e.Actor).Inc()
		},
		OnProjected: func(e *domain.ProjectionEvent) {
			m.DispatchSize.WithLabelValues(e.Actor, e.Strategy).Set(float64(e.Size))
		},
		OnFire: func(_ context.Context, e *domain.StepEvent) {
			m.step(e, "fire")
		},
		OnStall: func(_ context.Context, e *domain.StepEvent) {
			m.step(e, "stall")
		},
	}
}

func (m *Metrics) step(e *domain.StepEvent, outcome string) {
	m.Steps.WithLabelValues(e.Actor, e.Strategy, outcome).Inc()
	m.StepEvaluation.WithLabelValues(e.Strategy).Observe(float64(e.Evaluations))
}
