package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewJobMetrics(reg)
	job := "daily-rollup"
	metrics.ObserveDuration(job, 250*time.Millisecond)
	metrics.IncSuccess(job)
	metrics.IncFailure(job)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "devicemove_job_success_total", "job", job)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	got, err = fetchCounterValue(mfs, "devicemove_job_failure_total", "job", job)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	sum, err := fetchHistogramSum(mfs, "devicemove_job_duration_seconds", "job", job)
	require.NoError(t, err)
	assert.Greater(t, sum, 0.0)
}

func TestOperationMetricsRecordsOutcomeCodes(t *testing.T) {
	reg := prometheus.NewRegistry()
	ops := NewOperationMetrics(reg)
	ops.Observe("record_storage_snapshot", "OK", 10*time.Millisecond)
	ops.Observe("record_storage_snapshot", "STATE_CONFLICT", 5*time.Millisecond)
	ops.Observe("record_storage_snapshot", "OK", 5*time.Millisecond)
	ops.SetReportedPercent("4", 28.01)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "devicemove_operation_results_total", "code", "OK")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "devicemove_operation_results_total", "code", "STATE_CONFLICT")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	mf := findMetricFamily(mfs, "devicemove_reported_percent")
	require.NotNil(t, mf)
	assert.InDelta(t, 28.01, mf.GetMetric()[0].GetGauge().GetValue(), 0.0001)
}

func TestNilRegistererIsNoop(t *testing.T) {
	ops := NewOperationMetrics(nil)
	ops.Observe("x", "OK", time.Second)
	ops.SetReportedPercent("1", 0)

	var jobs *JobMetrics
	jobs.IncSuccess("x")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
