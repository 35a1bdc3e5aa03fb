package domain

import (
	"context"
	"time"
)

// Severity classifies a progress event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// ProgressEvent is a single progress notification for a job
type ProgressEvent struct {
	JobID     string    `json:"job_id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewProgressEvent creates a progress event stamped with the current time
func NewProgressEvent(jobID, message string, severity Severity) ProgressEvent {
	return ProgressEvent{
		JobID:     jobID,
		Message:   message,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
	}
}

// ProgressNotifier is a sink for progress events keyed by job id.
// Implementations must not block the pipeline for long.
type ProgressNotifier interface {
	Notify(ctx context.Context, event ProgressEvent) error
}

// ProgressNotifierFunc adapts a function to the ProgressNotifier interface
type ProgressNotifierFunc func(ctx context.Context, event ProgressEvent) error

// Notify calls f(ctx, event)
func (f ProgressNotifierFunc) Notify(ctx context.Context, event ProgressEvent) error {
	return f(ctx, event)
}
