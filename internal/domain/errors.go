package domain

import (
	"errors"
	"fmt"
	"time"
)

// PipelineError represents a standardized error raised by the pipeline or its surfaces
type PipelineError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	JobID     string    `json:"job_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s (stage %s)", e.Code, e.Message, e.Stage)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *PipelineError) Unwrap() error {
	return e.cause
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrDictionary     = "DICTIONARY_ERROR"
	ErrStageFailed    = "STAGE_FAILED"
	ErrNotifier       = "NOTIFIER_ERROR"
	ErrRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrNotFound       = "NOT_FOUND"
)

// ValidationError represents malformed input
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewPipelineError creates a new PipelineError with timestamp
func NewPipelineError(code, message, details, jobID string) *PipelineError {
	return &PipelineError{
		Code:      code,
		Message:   message,
		Details:   details,
		JobID:     jobID,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageError wraps a failure that aborted a whole stage
func NewStageError(stage, jobID string, cause error) *PipelineError {
	code := ErrStageFailed
	var verr *ValidationError
	if errors.As(cause, &verr) {
		code = ErrInvalidInput
	}
	return &PipelineError{
		Code:      code,
		Message:   cause.Error(),
		Stage:     stage,
		JobID:     jobID,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
