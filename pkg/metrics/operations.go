package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "devicemove"

// OperationMetrics instruments coordinator operations.
type OperationMetrics struct {
	duration *prometheus.HistogramVec
	results  *prometheus.CounterVec
	reported *prometheus.GaugeVec
}

// NewOperationMetrics registers the operation metrics on reg. A nil registerer
// yields a no-op recorder.
func NewOperationMetrics(reg prometheus.Registerer) *OperationMetrics {
	if reg == nil {
		return &OperationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of coordinator operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_results_total",
		Help:      "Coordinator operation outcomes by error code.",
	}, []string{"operation", "code"})
	reported := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reported_percent",
		Help:      "Most recent reported completion percent by migration day.",
	}, []string{"day"})
	reg.MustRegister(duration, results, reported)
	return &OperationMetrics{duration: duration, results: results, reported: reported}
}

// Observe records one finished operation. code is "OK" on success.
func (o *OperationMetrics) Observe(operation, code string, elapsed time.Duration) {
	if o == nil || o.duration == nil {
		return
	}
	operation = normalizeLabel(operation)
	o.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	o.results.WithLabelValues(operation, normalizeLabel(code)).Inc()
}

// SetReportedPercent publishes the presented percent for a day label.
func (o *OperationMetrics) SetReportedPercent(day string, percent float64) {
	if o == nil || o.reported == nil {
		return
	}
	o.reported.WithLabelValues(normalizeLabel(day)).Set(percent)
}
