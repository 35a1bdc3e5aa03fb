package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cancer-registry-edits/internal/domain"
)

// Stage names used in errors, logs and metrics
const (
	StageItem           = "item"
	StageCombination    = "combination"
	StageSiteMorphology = "site-morphology"
)

// ruleContext accumulates the outcome of every rule evaluated against one record.
// Validity only moves from true to false.
type ruleContext struct {
	valid    bool
	messages []string
}

func newRuleContext(rec *domain.Record) *ruleContext {
	return &ruleContext{
		valid:    rec.IsValid,
		messages: append([]string(nil), rec.ValidationResults...),
	}
}

func (c *ruleContext) pass(format string, args ...interface{}) {
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

func (c *ruleContext) fail(field, format string, args ...interface{}) {
	c.valid = false
	c.messages = append(c.messages, field+": "+fmt.Sprintf(format, args...))
}

// note records a problem with the record's data that is not a plausibility
// failure. Validity is left alone.
func (c *ruleContext) note(field, format string, args ...interface{}) {
	c.messages = append(c.messages, field+": "+fmt.Sprintf(format, args...))
}

// commit writes the accumulated outcome back to the record
func (c *ruleContext) commit(rec *domain.Record) {
	rec.IsValid = c.valid
	if c.messages == nil {
		c.messages = []string{}
	}
	rec.ValidationResults = c.messages
}

// NormalizeHistology strips the behavior suffix, "8000/3" becomes "8000"
func NormalizeHistology(code string) string {
	if i := strings.IndexByte(code, '/'); i >= 0 {
		return code[:i]
	}
	return code
}

// forEachRecord runs fn for every record with at most workers goroutines.
// A nil record fails the batch before any work starts. A panic inside fn is
// returned as an error.
func forEachRecord(ctx context.Context, workers int, records []*domain.Record, fn func(i int, rec *domain.Record) error) error {
	for i, rec := range records {
		if rec == nil {
			return domain.NewValidationError("dataset", fmt.Sprintf("record %d is null", i), nil)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		i, rec := i, rec
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("rule evaluation panicked on record %s: %v", rec.ID(), r)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i, rec)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
