// Package metrics exposes Prometheus instruments for import runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crmimport"

// Outcome labels for finished imports.
const (
	OutcomeSuccess    = "success"
	OutcomeParse      = "parse_error"
	OutcomeValidation = "validation_error"
	OutcomeCommit     = "commit_error"
	OutcomeRejected   = "rejected"
)

// Registry holds every collector served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Import attempts by schema and outcome.",
		},
		[]string{"schema", "outcome"},
	)

	rowsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_inserted_total",
			Help:      "Records committed by schema.",
		},
		[]string{"schema"},
	)

	commitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "commit_duration_seconds",
			Help:      "Time spent in a batch write.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"schema"},
	)

	batchRows = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_rows",
			Help:      "Data rows per import file.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"schema"},
	)

	importsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "imports_in_flight",
		Help:      "Imports currently holding a commit slot.",
	})
)

func init() {
	Registry.MustRegister(
		importsTotal,
		rowsInserted,
		commitDuration,
		batchRows,
		importsInFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveImport records a finished import attempt.
func ObserveImport(schema, outcome string, rows int) {
	importsTotal.WithLabelValues(schema, outcome).Inc()
	if outcome != OutcomeParse && outcome != OutcomeRejected {
		batchRows.WithLabelValues(schema).Observe(float64(rows))
	}
}

// ObserveCommit records one batch write and, on success, the inserted count.
func ObserveCommit(schema string, inserted int, d time.Duration) {
	commitDuration.WithLabelValues(schema).Observe(d.Seconds())
	if inserted > 0 {
		rowsInserted.WithLabelValues(schema).Add(float64(inserted))
	}
}

// TrackInFlight increments the in-flight gauge and returns its decrement.
func TrackInFlight() func() {
	importsInFlight.Inc()
	return importsInFlight.Dec
}
