// Package progress delivers pipeline progress events to logs, Redis channels,
// WebSocket subscribers and terminal progress bars.
package progress

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
)

// Message is the wire form of an event sent to remote subscribers
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Encode renders an event as {"type": ..., "message": ...}
func Encode(event domain.ProgressEvent) ([]byte, error) {
	return json.Marshal(Message{Type: string(event.Severity), Message: event.Message})
}

// Group returns the channel group name for a job
func Group(prefix, jobID string) string {
	return prefix + jobID
}

// LogNotifier writes every event to the logger
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the event at a level matching its severity
func (n *LogNotifier) Notify(_ context.Context, event domain.ProgressEvent) error {
	entry := n.logger.WithFields(logrus.Fields{
		"job_id":   event.JobID,
		"severity": event.Severity,
	})
	if event.Severity == domain.SeverityError {
		entry.Error(event.Message)
	} else {
		entry.Info(event.Message)
	}
	return nil
}

// Multi fans an event out to every notifier. All notifiers are called even
// when one fails; the failures are joined.
type Multi []domain.ProgressNotifier

// Notify delivers the event to each notifier in order
func (m Multi) Notify(ctx context.Context, event domain.ProgressEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
