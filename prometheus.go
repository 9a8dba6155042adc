package vecdex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compile-time check to ensure PrometheusMetricsCollector satisfies MetricsCollector.
var _ MetricsCollector = (*PrometheusMetricsCollector)(nil)

// PrometheusMetricsCollector implements MetricsCollector on top of
// prometheus counters and histograms.
type PrometheusMetricsCollector struct {
	operations   *prometheus.CounterVec
	durations    *prometheus.HistogramVec
	batchEntries prometheus.Counter
	batchFailed  prometheus.Counter
	reclaimed    prometheus.Counter
}

// NewPrometheusMetricsCollector registers the vecdex metric family with reg
// and returns a collector recording into it. A nil reg uses the default
// registerer. Registering twice with the same registerer panics, as usual
// for prometheus; give each index its own registry when embedding several
// in one process.
func NewPrometheusMetricsCollector(reg prometheus.Registerer) *PrometheusMetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetricsCollector{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vecdex",
				Name:      "operations_total",
				Help:      "Total number of index operations by outcome",
			},
			[]string{"op", "status"},
		),
		durations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vecdex",
				Name:      "operation_duration_seconds",
				Help:      "Duration of index operations in seconds",
				// In-memory operations sit well below the default buckets.
				Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"op"},
		),
		batchEntries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vecdex",
			Name:      "batch_entries_total",
			Help:      "Total number of entries submitted through batch inserts",
		}),
		batchFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vecdex",
			Name:      "batch_entries_failed_total",
			Help:      "Total number of batch entries that failed to insert",
		}),
		reclaimed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "vecdex",
			Name:      "compact_reclaimed_total",
			Help:      "Total number of tombstoned vectors reclaimed by compaction",
		}),
	}
}

func (p *PrometheusMetricsCollector) record(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.operations.WithLabelValues(op, status).Inc()
	p.durations.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordInsert implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordInsert(duration time.Duration, err error) {
	p.record("insert", duration, err)
}

// RecordBatchInsert implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordBatchInsert(count, failed int, duration time.Duration) {
	status := "ok"
	if failed > 0 {
		status = "partial"
	}
	p.operations.WithLabelValues("batch_insert", status).Inc()
	p.durations.WithLabelValues("batch_insert").Observe(duration.Seconds())
	p.batchEntries.Add(float64(count))
	p.batchFailed.Add(float64(failed))
}

// RecordSearch implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordSearch(k int, duration time.Duration, err error) {
	p.record("search", duration, err)
}

// RecordDelete implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordDelete(duration time.Duration, err error) {
	p.record("delete", duration, err)
}

// RecordCompact implements MetricsCollector.
func (p *PrometheusMetricsCollector) RecordCompact(reclaimed int, duration time.Duration, err error) {
	p.record("compact", duration, err)
	if err == nil {
		p.reclaimed.Add(float64(reclaimed))
	}
}
