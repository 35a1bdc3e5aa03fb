package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/middleware"
)

// datasetRequest is the body of the autocorrect and validation endpoints
type datasetRequest struct {
	Dataset   []*domain.Record `json:"dataset"`
	Threshold *float64         `json:"threshold,omitempty"`
}

func (s *Server) bindDataset(c *gin.Context) ([]*domain.Record, *datasetRequest, bool) {
	var req datasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var (
			verr     *domain.ValidationError
			tooLarge *http.MaxBytesError
		)
		if !errors.As(err, &verr) && !errors.As(err, &tooLarge) {
			err = domain.NewValidationError("body", "malformed JSON: "+err.Error(), nil)
		}
		s.respondError(c, err)
		return nil, nil, false
	}
	if len(req.Dataset) == 0 {
		s.respondError(c, domain.NewPipelineError(domain.ErrInvalidInput, "Dataset is required.", "", ""))
		return nil, nil, false
	}
	for i, rec := range req.Dataset {
		if rec == nil {
			s.respondError(c, domain.NewValidationError("dataset", fmt.Sprintf("record %d is null", i), nil))
			return nil, nil, false
		}
	}
	return req.Dataset, &req, true
}

// handleAutoCorrect repairs near-miss codes and returns the corrected batch
func (s *Server) handleAutoCorrect(c *gin.Context) {
	dataset, req, ok := s.bindDataset(c)
	if !ok {
		return
	}

	threshold := s.configManager.GetConfig().Correction.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		s.respondError(c, domain.NewValidationError("threshold", "must be between 0 and 1", threshold))
		return
	}

	// Auto-correction is synchronous and never stored as a job, so nothing
	// else would release its hub group.
	jobID := uuid.New().String()
	if s.deps.Hub != nil {
		defer s.deps.Hub.Forget(jobID)
	}
	corrected, corrections, err := s.deps.Pipeline.AutoCorrect(c.Request.Context(), jobID, dataset, threshold)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"corrected_data": corrected,
		"corrections":    corrections,
	})
}

// handleStartValidation accepts a batch and validates it in the background.
// Progress is streamed on the job's WebSocket group.
func (s *Server) handleStartValidation(c *gin.Context) {
	dataset, _, ok := s.bindDataset(c)
	if !ok {
		return
	}

	validationID := uuid.New().String()
	s.jobs.create(validationID)

	s.running.Add(1)
	go s.runValidation(validationID, dataset)

	s.logger.WithFields(logrus.Fields{
		"validation_id":  validationID,
		"records":        len(dataset),
		"correlation_id": c.GetString(middleware.CorrelationIDKey),
	}).Info("Validation job accepted")

	c.JSON(http.StatusAccepted, gin.H{
		"validation_id": validationID,
		"results":       []interface{}{},
	})
}

func (s *Server) runValidation(id string, dataset []*domain.Record) {
	defer s.running.Done()
	defer func() {
		if s.deps.Hub != nil {
			s.deps.Hub.Finish(id)
		}
	}()

	s.jobs.update(id, func(j *Job) { j.Status = JobRunning })

	report, err := s.deps.Pipeline.Execute(s.jobCtx, id, dataset)
	s.jobs.update(id, func(j *Job) {
		j.Report = report
		if err != nil {
			j.Status = JobFailed
			j.Error = err.Error()
			return
		}
		j.Status = JobCompleted
	})
}

// handleGetValidation returns the state and, once finished, the report of a job
func (s *Server) handleGetValidation(c *gin.Context) {
	id := c.Param("id")
	job, ok := s.jobs.get(id)
	if !ok {
		s.respondError(c, domain.NewPipelineError(domain.ErrNotFound, "Validation not found", "", id))
		return
	}
	c.JSON(http.StatusOK, job)
}

// handleGetCodes lists the entries of one dictionary
func (s *Server) handleGetCodes(c *gin.Context) {
	name := c.Param("table")
	dict, ok := s.deps.Registry.Table(name)
	if !ok {
		s.respondError(c, domain.NewPipelineError(domain.ErrNotFound, fmt.Sprintf("Unknown code table %q", name), "", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"table":   dict.Name(),
		"count":   dict.Len(),
		"entries": dict.Entries(),
	})
}

// handleProgressSocket streams a job's progress events over a WebSocket
func (s *Server) handleProgressSocket(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.jobs.get(id); !ok || s.deps.Hub == nil {
		s.respondError(c, domain.NewPipelineError(domain.ErrNotFound, "Validation not found", "", id))
		return
	}
	if err := s.deps.Hub.ServeWS(c.Writer, c.Request, id); err != nil {
		s.logger.WithError(err).WithField("validation_id", id).Debug("Progress socket closed")
	}
}

// respondError maps typed errors onto HTTP statuses
func (s *Server) respondError(c *gin.Context, err error) {
	var (
		perr     *domain.PipelineError
		verr     *domain.ValidationError
		tooLarge *http.MaxBytesError
	)

	status := http.StatusInternalServerError
	body := domain.NewPipelineError(domain.ErrInternalServer, "Internal server error", "", "")

	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		body = domain.NewPipelineError(domain.ErrInvalidInput, "Request body too large",
			fmt.Sprintf("limit is %d bytes", tooLarge.Limit), "")
	case errors.As(err, &perr):
		body = perr
		status = statusFor(perr.Code)
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body = domain.NewPipelineError(domain.ErrInvalidInput, verr.Error(), "", "")
	}

	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("correlation_id", c.GetString(middleware.CorrelationIDKey)).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":          body,
		"correlation_id": c.GetString(middleware.CorrelationIDKey),
	})
}

func statusFor(code string) int {
	switch code {
	case domain.ErrInvalidInput:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
