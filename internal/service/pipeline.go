package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/metrics"
	"github.com/cancer-registry-edits/pkg/codes"
	"github.com/cancer-registry-edits/pkg/fuzzy"
)

const tracerName = "github.com/cancer-registry-edits/internal/service"

// State is the position of a run in the validation sequence
type State int

const (
	StateStart State = iota
	StateItemValidated
	StateCombinationValidated
	StateSiteMorphologyValidated
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateItemValidated:
		return "item_validated"
	case StateCombinationValidated:
		return "combination_validated"
	case StateSiteMorphologyValidated:
		return "site_morphology_validated"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RunReport summarizes one pipeline run
type RunReport struct {
	JobID      string           `json:"validation_id"`
	State      string           `json:"state"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Input      int              `json:"input_records"`
	Retained   int              `json:"retained_records"`
	Invalid    int              `json:"invalid_records"`
	Error      string           `json:"error,omitempty"`
	Records    []*domain.Record `json:"records"`

	state State
}

// Reached reports whether the run got at least as far as s
func (r *RunReport) Reached(s State) bool { return r.state >= s }

func (r *RunReport) advance(s State) {
	r.state = s
	r.State = s.String()
}

// stageStep binds a stage validator to its progress wording
type stageStep struct {
	validator domain.StageValidator
	label     string
	reached   State
}

// Pipeline runs the three validation stages in order and reports progress
type Pipeline struct {
	steps     []stageStep
	corrector *AutoCorrector
	notifier  domain.ProgressNotifier
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *logrus.Logger
}

// PipelineOptions carries the optional collaborators of a pipeline
type PipelineOptions struct {
	Workers  int
	MemoSize int
	Notifier domain.ProgressNotifier
	Metrics  *metrics.Metrics
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
}

// NewPipeline wires the stage validators and the auto-corrector over one registry
func NewPipeline(registry *codes.Registry, opts PipelineOptions, logger *logrus.Logger) (*Pipeline, error) {
	matcher, err := fuzzy.NewMatcher(opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create fuzzy matcher: %w", err)
	}

	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	p := &Pipeline{
		corrector: NewAutoCorrector(registry, matcher, opts.Workers, logger),
		notifier:  opts.Notifier,
		metrics:   opts.Metrics,
		tracer:    tp.Tracer(tracerName),
		logger:    logger,
	}
	p.steps = []stageStep{
		{validator: NewItemValidator(registry, opts.Workers, logger), label: "individual item", reached: StateItemValidated},
		{validator: NewCombinationValidator(opts.Workers, logger), label: "data combination", reached: StateCombinationValidated},
		{validator: NewSiteMorphologyValidator(opts.Workers, logger), label: "site-morphology", reached: StateSiteMorphologyValidated},
	}
	return p, nil
}

// Run validates the batch and returns the annotated records that survived every stage
func (p *Pipeline) Run(ctx context.Context, jobID string, records []*domain.Record) ([]*domain.Record, error) {
	report, err := p.Execute(ctx, jobID, records)
	if err != nil {
		return nil, err
	}
	return report.Records, nil
}

// Execute is Run that also returns the report of the run.
// On failure the report holds the state reached and the error text.
func (p *Pipeline) Execute(ctx context.Context, jobID string, records []*domain.Record) (*RunReport, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("job.id", jobID),
		attribute.Int("records.input", len(records)),
	))
	defer span.End()

	report := &RunReport{JobID: jobID, StartedAt: time.Now().UTC(), Input: len(records)}
	report.advance(StateStart)

	logger := p.logger.WithField("job_id", jobID)
	logger.WithField("records", len(records)).Info("Starting validation run")
	p.notify(ctx, jobID, "Running validations...", domain.SeverityInfo)

	current := records
	for i, step := range p.steps {
		p.notify(ctx, jobID, fmt.Sprintf("Running %s validations...", step.label), domain.SeverityInfo)

		next, err := p.runStage(ctx, jobID, step.validator, current)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return p.fail(ctx, report, err), err
		}
		if dropped := len(current) - len(next); dropped > 0 {
			p.metrics.AddExcluded(dropped)
		}
		current = next
		report.advance(step.reached)

		p.notify(ctx, jobID, fmt.Sprintf("Completed %s edits (%d/%d).", step.label, i+1, len(p.steps)), domain.SeveritySuccess)
	}

	report.advance(StateDone)
	report.FinishedAt = time.Now().UTC()
	report.Records = current
	report.Retained = len(current)
	for _, rec := range current {
		if !rec.IsValid {
			report.Invalid++
		}
	}

	span.SetAttributes(
		attribute.Int("records.retained", report.Retained),
		attribute.Int("records.invalid", report.Invalid),
	)
	p.metrics.IncrementRun("success")
	logger.WithFields(logrus.Fields{
		"retained": report.Retained,
		"invalid":  report.Invalid,
		"duration": report.FinishedAt.Sub(report.StartedAt),
	}).Info("Validation run completed")

	p.notify(ctx, jobID, "All validations completed successfully.", domain.SeveritySuccess)
	return report, nil
}

func (p *Pipeline) runStage(ctx context.Context, jobID string, stage domain.StageValidator, records []*domain.Record) ([]*domain.Record, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.stage."+stage.Name(), trace.WithAttributes(
		attribute.String("stage", stage.Name()),
		attribute.Int("records", len(records)),
	))
	defer span.End()

	start := time.Now()
	out, err := stage.Validate(ctx, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, domain.NewStageError(stage.Name(), jobID, err)
	}

	valid := 0
	for _, rec := range out {
		if rec.IsValid {
			valid++
		}
	}
	p.metrics.ObserveStage(stage.Name(), time.Since(start), valid, len(out)-valid)
	return out, nil
}

func (p *Pipeline) fail(ctx context.Context, report *RunReport, err error) *RunReport {
	report.FinishedAt = time.Now().UTC()
	report.Error = err.Error()

	p.metrics.IncrementRun("failure")
	p.logger.WithError(err).WithFields(logrus.Fields{
		"job_id": report.JobID,
		"state":  report.State,
	}).Error("Validation run failed")

	p.notify(ctx, report.JobID, fmt.Sprintf("Validation failed: %v", err), domain.SeverityError)
	return report
}

// AutoCorrect repairs the batch in place and reports progress on the job's channel
func (p *Pipeline) AutoCorrect(ctx context.Context, jobID string, records []*domain.Record, threshold float64) ([]*domain.Record, domain.CorrectionLog, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.autocorrect", trace.WithAttributes(
		attribute.String("job.id", jobID),
		attribute.Int("records", len(records)),
		attribute.Float64("threshold", threshold),
	))
	defer span.End()

	p.notify(ctx, jobID, "Running auto-correction...", domain.SeverityInfo)

	corrected, log, err := p.corrector.Correct(ctx, records, threshold)
	if err != nil {
		err = domain.NewStageError("autocorrect", jobID, err)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		p.notify(ctx, jobID, fmt.Sprintf("Auto-correction failed: %v", err), domain.SeverityError)
		return nil, nil, err
	}

	for field, entries := range log {
		p.metrics.AddCorrections(field, len(entries))
	}
	span.SetAttributes(attribute.Int("corrections", log.Total()))

	p.notify(ctx, jobID, fmt.Sprintf("Auto-correction completed: %d corrections.", log.Total()), domain.SeveritySuccess)
	return corrected, log, nil
}

// notify never fails the run; sink errors are only logged
func (p *Pipeline) notify(ctx context.Context, jobID, message string, severity domain.Severity) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, domain.NewProgressEvent(jobID, message, severity)); err != nil {
		p.logger.WithError(err).WithField("job_id", jobID).Warn("Progress notification failed")
	}
}
