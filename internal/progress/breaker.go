package progress

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/cancer-registry-edits/internal/domain"
)

// BreakerNotifier stops calling a failing remote notifier for a while,
// so a broken sink costs nothing per event while the breaker is open.
type BreakerNotifier struct {
	next    domain.ProgressNotifier
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerNotifier wraps next with a circuit breaker
func NewBreakerNotifier(name string, next domain.ProgressNotifier, cfg domain.BreakerConfig, logger *logrus.Logger) *BreakerNotifier {
	minRequests := cfg.MinRequests
	failureRatio := cfg.FailureRatio

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests == 0 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && ratio >= failureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Notifier circuit breaker changed state")
		},
	})

	return &BreakerNotifier{next: next, breaker: breaker}
}

// Notify forwards the event unless the breaker is open
func (n *BreakerNotifier) Notify(ctx context.Context, event domain.ProgressEvent) error {
	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.next.Notify(ctx, event)
	})
	if err != nil {
		return fmt.Errorf("notifier %s: %w", n.breaker.Name(), err)
	}
	return nil
}

// State returns the breaker state
func (n *BreakerNotifier) State() gobreaker.State {
	return n.breaker.State()
}
