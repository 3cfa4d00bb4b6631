package observability

import (
	"context"

	"github.com/aretw0/augtree/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of augtree_commands_total.
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeQuery     = "query"
)

// Status label values of augtree_runs_total.
const (
	StatusCommitted = "committed"
	StatusFailed    = "failed"
)

// Metrics records command and run outcomes.
type Metrics struct {
	Commands *prometheus.CounterVec
	Runs     *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "augtree_commands_total",
				Help: "Total number of executed commands",
			},
			[]string{"command", "outcome"},
		),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "augtree_runs_total",
				Help: "Total number of finished runs",
			},
			[]string{"status"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "augtree_run_duration_seconds",
				Help:    "Duration of runs, commit included",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	for _, c := range []prometheus.Collector{m.Commands, m.Runs, m.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommandDone: func(ctx context.Context, e *domain.CommandEvent) {
			m.Commands.WithLabelValues(string(e.Command), outcome(e.Result)).Inc()
		},
		OnCommit: func(ctx context.Context, e *domain.RunEvent) {
			m.Runs.WithLabelValues(StatusCommitted).Inc()
			m.Duration.Observe(e.Duration.Seconds())
		},
		OnFailure: func(ctx context.Context, e *domain.RunEvent) {
			m.Runs.WithLabelValues(StatusFailed).Inc()
			m.Duration.Observe(e.Duration.Seconds())
		},
	}
}

func outcome(r *domain.Result) string {
	if r == nil || r.Kind != domain.ResultChanged {
		return OutcomeQuery
	}
	if r.Changed {
		return OutcomeChanged
	}
	return OutcomeUnchanged
}
