package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/metrics"
)

// MockNotifier is a mock implementation of the ProgressNotifier interface
type MockNotifier struct {
	mock.Mock
	mu     sync.Mutex
	events []domain.ProgressEvent
}

func (m *MockNotifier) Notify(ctx context.Context, event domain.ProgressEvent) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotifier) sequence() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = string(e.Severity) + " " + e.Message
	}
	return out
}

func newTestPipeline(t *testing.T, notifier domain.ProgressNotifier, m *metrics.Metrics) *Pipeline {
	t.Helper()
	p, err := NewPipeline(testRegistry(), PipelineOptions{
		Workers:  4,
		MemoSize: 128,
		Notifier: notifier,
		Metrics:  m,
	}, testLogger())
	require.NoError(t, err)
	return p
}

func TestPipeline_Run(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(e domain.ProgressEvent) bool {
		return e.JobID == "job-1"
	})).Return(nil)

	m := metrics.New(prometheus.NewRegistry())
	p := newTestPipeline(t, notifier, m)

	clean := cleanRecord("R1")
	badSex := withField(withField(cleanRecord("R2"), domain.FieldSex, "Female"), domain.FieldTopography, "C61")
	noRule := withField(cleanRecord("R3"), domain.FieldTopography, "C99")

	report, err := p.Execute(context.Background(), "job-1", []*domain.Record{clean, badSex, noRule})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"info Running validations...",
		"info Running individual item validations...",
		"success Completed individual item edits (1/3).",
		"info Running data combination validations...",
		"success Completed data combination edits (2/3).",
		"info Running site-morphology validations...",
		"success Completed site-morphology edits (3/3).",
		"success All validations completed successfully.",
	}, notifier.sequence())
	notifier.AssertExpectations(t)

	assert.True(t, report.Reached(StateDone))
	assert.Equal(t, "done", report.State)
	assert.Equal(t, 3, report.Input)
	assert.Equal(t, 2, report.Retained)
	assert.Equal(t, 1, report.Invalid)
	require.Len(t, report.Records, 2)
	assert.True(t, report.Records[0].IsValid)
	assert.False(t, report.Records[1].IsValid)
	assert.True(t, hasMessage(report.Records[1], "combination: Site C61 not possible for sex Female"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExcludedRecords))
}

func TestPipeline_RunFailure(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	p := newTestPipeline(t, notifier, nil)

	report, err := p.Execute(context.Background(), "job-2", []*domain.Record{cleanRecord("R1"), nil})
	require.Error(t, err)

	var perr *domain.PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.ErrInvalidInput, perr.Code)
	assert.Equal(t, StageItem, perr.Stage)
	assert.Equal(t, "job-2", perr.JobID)

	assert.Equal(t, "start", report.State)
	assert.False(t, report.Reached(StateItemValidated))
	assert.NotEmpty(t, report.Error)

	seq := notifier.sequence()
	require.Len(t, seq, 3)
	assert.Equal(t, "error Validation failed: "+err.Error(), seq[2])

	records, err := p.Run(context.Background(), "job-2", []*domain.Record{nil})
	assert.Error(t, err)
	assert.Nil(t, records)
}

func TestPipeline_NotifierErrorsDoNotAbort(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("socket closed"))
	p := newTestPipeline(t, notifier, nil)

	records, err := p.Run(context.Background(), "job-3", []*domain.Record{cleanRecord("R1")})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsValid)
	notifier.AssertNumberOfCalls(t, "Notify", 8)
}

func TestPipeline_WithoutNotifier(t *testing.T) {
	p := newTestPipeline(t, nil, nil)
	records, err := p.Run(context.Background(), "job-4", []*domain.Record{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPipeline_Deterministic(t *testing.T) {
	build := func() []*domain.Record {
		return []*domain.Record{
			cleanRecord("R1"),
			withField(cleanRecord("R2"), domain.FieldGrade, "9"),
			withField(cleanRecord("R3"), domain.FieldHistology, "8140/3"),
		}
	}
	p := newTestPipeline(t, nil, nil)

	first, err := p.Run(context.Background(), "a", build())
	require.NoError(t, err)
	second, err := p.Run(context.Background(), "b", build())
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ValidationResults, second[i].ValidationResults)
		assert.Equal(t, first[i].IsValid, second[i].IsValid)
	}
}

func TestPipeline_AutoCorrectThenValidate(t *testing.T) {
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)
	m := metrics.New(prometheus.NewRegistry())
	p := newTestPipeline(t, notifier, m)

	rec := cleanRecord("R1")
	rec.Set(domain.FieldSex, "m")
	rec.Set(domain.FieldHistology, "Transitional cell carcinma, NOS")

	corrected, log, err := p.AutoCorrect(context.Background(), "job-5", []*domain.Record{rec}, 0.7)
	require.NoError(t, err)
	assert.Equal(t, 2, log.Total())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Corrections.WithLabelValues(domain.CorrectionSex)))

	seq := notifier.sequence()
	require.Len(t, seq, 2)
	assert.Equal(t, "success Auto-correction completed: 2 corrections.", seq[1])

	records, err := p.Run(context.Background(), "job-5", corrected)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsValid, "%v", records[0].ValidationResults)
}

func TestPipeline_Cancelled(t *testing.T) {
	p := newTestPipeline(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "job-6", []*domain.Record{cleanRecord("R1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func spanAttribute(span sdktrace.ReadOnlySpan, key string) attribute.Value {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func spanNames(spans []sdktrace.ReadOnlySpan) []string {
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name()
	}
	return names
}

func newTracedPipeline(t *testing.T) (*Pipeline, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	p, err := NewPipeline(testRegistry(), PipelineOptions{Workers: 2, TracerProvider: tp}, testLogger())
	require.NoError(t, err)
	return p, recorder
}

func TestPipeline_Spans(t *testing.T) {
	p, recorder := newTracedPipeline(t)

	_, err := p.Execute(context.Background(), "job-7", []*domain.Record{cleanRecord("R1"), withField(cleanRecord("R2"), domain.FieldSex, "X")})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Equal(t, []string{
		"pipeline.stage.item",
		"pipeline.stage.combination",
		"pipeline.stage.site-morphology",
		"pipeline.run",
	}, spanNames(spans))

	run := spans[3]
	assert.Equal(t, "job-7", spanAttribute(run, "job.id").AsString())
	assert.Equal(t, int64(2), spanAttribute(run, "records.input").AsInt64())
	assert.Equal(t, int64(2), spanAttribute(run, "records.retained").AsInt64())
	assert.Equal(t, int64(1), spanAttribute(run, "records.invalid").AsInt64())
	assert.Equal(t, otelcodes.Unset, run.Status().Code)

	for _, stage := range spans[:3] {
		assert.Equal(t, run.SpanContext().SpanID(), stage.Parent().SpanID(), stage.Name())
		assert.Equal(t, run.SpanContext().TraceID(), stage.SpanContext().TraceID())
	}
	assert.Equal(t, StageCombination, spanAttribute(spans[1], "stage").AsString())
}

func TestPipeline_SpansOnFailure(t *testing.T) {
	p, recorder := newTracedPipeline(t)

	_, err := p.Execute(context.Background(), "job-8", []*domain.Record{nil})
	require.Error(t, err)

	spans := recorder.Ended()
	require.Equal(t, []string{"pipeline.stage.item", "pipeline.run"}, spanNames(spans))
	for _, span := range spans {
		assert.Equal(t, otelcodes.Error, span.Status().Code, span.Name())
	}
	assert.Equal(t, err.Error(), spans[1].Status().Description)
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestPipeline_AutoCorrectSpan(t *testing.T) {
	p, recorder := newTracedPipeline(t)

	rec := withField(cleanRecord("R1"), domain.FieldSex, "m")
	_, _, err := p.AutoCorrect(context.Background(), "job-9", []*domain.Record{rec}, 0.7)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pipeline.autocorrect", spans[0].Name())
	assert.Equal(t, int64(1), spanAttribute(spans[0], "corrections").AsInt64())
	assert.Equal(t, 0.7, spanAttribute(spans[0], "threshold").AsFloat64())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "item_validated", StateItemValidated.String())
	assert.Equal(t, "site_morphology_validated", StateSiteMorphologyValidated.String())
	assert.Equal(t, "state(42)", State(42).String())
}
