package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the validation pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Stage latencies by stage name
	StageLatency *prometheus.HistogramVec

	// Records leaving each stage by validity
	StageRecords *prometheus.CounterVec

	// Records dropped by the site-morphology stage
	ExcludedRecords prometheus.Counter

	// Auto-corrections by field
	Corrections *prometheus.CounterVec

	// Pipeline runs by outcome
	Runs *prometheus.CounterVec

	// Progress events dropped or failed by notifier
	NotifierFailures *prometheus.CounterVec
}

// New creates the pipeline metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_edits_stage_duration_seconds",
			Help:    "Duration of each validation stage over a whole batch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"stage"}), // stage: "item", "combination", "site-morphology"

		StageRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_edits_stage_records_total",
			Help: "Records leaving each stage by validity",
		}, []string{"stage", "valid"}),

		ExcludedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "registry_edits_site_morphology_excluded_total",
			Help: "Records matching no site-morphology rule",
		}),

		Corrections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_edits_corrections_total",
			Help: "Auto-corrections applied by field",
		}, []string{"field"}),

		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_edits_runs_total",
			Help: "Pipeline runs by outcome",
		}, []string{"outcome"}), // outcome: "success", "failure"

		NotifierFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_edits_notifier_failures_total",
			Help: "Progress events that were dropped or failed to publish",
		}, []string{"notifier", "reason"}),
	}
}

// ObserveStage records one stage's duration and the validity of its output.
func (m *Metrics) ObserveStage(stage string, d time.Duration, valid, invalid int) {
	if m == nil {
		return
	}
	m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	m.StageRecords.WithLabelValues(stage, "true").Add(float64(valid))
	m.StageRecords.WithLabelValues(stage, "false").Add(float64(invalid))
}

// AddExcluded records records dropped by the site-morphology stage.
func (m *Metrics) AddExcluded(n int) {
	if m != nil && n > 0 {
		m.ExcludedRecords.Add(float64(n))
	}
}

// AddCorrections records applied corrections for a field.
func (m *Metrics) AddCorrections(field string, n int) {
	if m != nil && n > 0 {
		m.Corrections.WithLabelValues(field).Add(float64(n))
	}
}

// IncrementRun records a pipeline outcome.
func (m *Metrics) IncrementRun(outcome string) {
	if m != nil {
		m.Runs.WithLabelValues(outcome).Inc()
	}
}

// IncrementNotifierFailure records a dropped or failed progress event.
func (m *Metrics) IncrementNotifierFailure(notifier, reason string) {
	if m != nil {
		m.NotifierFailures.WithLabelValues(notifier, reason).Inc()
	}
}
