package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the governance engine.
type Metrics struct {
	QueriesExecuted   *prometheus.CounterVec
	QueryDuration     prometheus.Histogram
	ApprovalDecisions *prometheus.CounterVec
	BudgetExhaustions prometheus.Counter
	RecordsSuppressed prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		QueriesExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veil_queries_executed_total",
			Help: "Total research queries executed, partitioned by cache outcome",
		}, []string{"cache"}),
		QueryDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "veil_query_duration_seconds",
			Help:    "End-to-end research query execution time",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		ApprovalDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "veil_approval_decisions_total",
			Help: "Total approval decisions recorded, partitioned by outcome",
		}, []string{"status"}),
		BudgetExhaustions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veil_budget_exhaustions_total",
			Help: "Total executions refused because a privacy budget was exhausted",
		}),
		RecordsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veil_records_suppressed_total",
			Help: "Total records suppressed to preserve k-anonymity",
		}),
	}
}

// ObserveExecution records one query execution.
func (m *Metrics) ObserveExecution(seconds float64, cacheHit bool) {
	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	m.QueriesExecuted.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(seconds)
}

// ObserveDecision records one approval decision by outcome.
func (m *Metrics) ObserveDecision(status string) {
	m.ApprovalDecisions.WithLabelValues(status).Inc()
}
