package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStage("item", 20*time.Millisecond, 3, 1)
	m.AddExcluded(2)
	m.AddCorrections("sex", 4)
	m.AddCorrections("grade", 0)
	m.IncrementRun("success")
	m.IncrementNotifierFailure("async", "buffer_full")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.StageRecords.WithLabelValues("item", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRecords.WithLabelValues("item", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ExcludedRecords))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Corrections.WithLabelValues("sex")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotifierFailures.WithLabelValues("async", "buffer_full")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveStage("item", time.Second, 1, 1)
		m.AddExcluded(1)
		m.AddCorrections("sex", 1)
		m.IncrementRun("failure")
		m.IncrementNotifierFailure("redis", "error")
	})
}
