// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	TransactionsIngested prometheus.Counter
	RecordsSkipped       prometheus.Counter
	MalformedAmounts     prometheus.Counter

	// Scoring metrics
	WalletsScored     prometheus.Gauge
	ScoringRunsTotal  *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	ScoreDistribution prometheus.Histogram

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "credit_scorer"
	}

	return &Metrics{
		TransactionsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "transactions_ingested_total",
			Help:      "Total number of transactions accepted from exports",
		}),
		RecordsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_skipped_total",
			Help:      "Total number of export records dropped for missing wallet or action",
		}),
		MalformedAmounts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "malformed_amounts_total",
			Help:      "Total number of transactions whose amount or price failed to parse",
		}),

		WalletsScored: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "wallets_scored",
			Help:      "Number of wallets in the latest scored snapshot",
		}),
		ScoringRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "runs_total",
			Help:      "Total number of scoring runs by status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "run_duration_seconds",
			Help:      "Scoring run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		ScoreDistribution: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "credit_score",
			Help:      "Distribution of credit scores in the latest run",
			Buckets:   []float64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000},
		}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by endpoint and status",
		}, []string{"endpoint", "status"}),
	}
}

// RecordRun records one completed scoring run.
func (m *Metrics) RecordRun(status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ScoringRunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(durationSeconds)
}

// RecordIngestion records ingestion counts for one run.
func (m *Metrics) RecordIngestion(accepted, skipped int) {
	if m == nil {
		return
	}
	m.TransactionsIngested.Add(float64(accepted))
	m.RecordsSkipped.Add(float64(skipped))
}

// RecordScores records the score distribution of one run.
func (m *Metrics) RecordScores(scores []int) {
	if m == nil {
		return
	}
	m.WalletsScored.Set(float64(len(scores)))
	for _, s := range scores {
		m.ScoreDistribution.Observe(float64(s))
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
