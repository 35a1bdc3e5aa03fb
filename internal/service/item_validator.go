package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/pkg/codes"
)

// itemCheck validates one field by exact dictionary membership
type itemCheck struct {
	field   string
	label   string
	isValid func(r *codes.Registry, value string) bool
}

// itemChecks run in this order for every record. Sex, behavior and grade
// values are descriptions of their tables, topography and histology are codes.
var itemChecks = []itemCheck{
	{field: domain.FieldSex, label: "sex", isValid: func(r *codes.Registry, v string) bool { return r.Sex.HasDescription(v) }},
	{field: domain.FieldBehavior, label: "behavior", isValid: func(r *codes.Registry, v string) bool { return r.Behavior.HasDescription(v) }},
	{field: domain.FieldGrade, label: "grade", isValid: func(r *codes.Registry, v string) bool { return r.Grade.HasDescription(v) }},
	{field: domain.FieldTopography, label: "topography", isValid: func(r *codes.Registry, v string) bool { return r.Topography.HasCode(v) }},
	{field: domain.FieldHistology, label: "histology", isValid: func(r *codes.Registry, v string) bool { return r.Morphology.HasCode(v) }},
}

// ItemValidator checks each coded field on its own against the dictionaries
type ItemValidator struct {
	registry *codes.Registry
	workers  int
	logger   *logrus.Logger
}

// NewItemValidator creates the individual item validator
func NewItemValidator(registry *codes.Registry, workers int, logger *logrus.Logger) *ItemValidator {
	return &ItemValidator{registry: registry, workers: workers, logger: logger}
}

// Name returns the stage name
func (v *ItemValidator) Name() string { return StageItem }

// Validate resets every record's validity and messages, then checks each coded field
func (v *ItemValidator) Validate(ctx context.Context, records []*domain.Record) ([]*domain.Record, error) {
	v.logger.WithField("records", len(records)).Info("Starting individual item validations")

	err := forEachRecord(ctx, v.workers, records, func(i int, rec *domain.Record) error {
		v.logger.WithFields(logrus.Fields{
			"record": rec.ID(),
			"index":  i + 1,
			"total":  len(records),
		}).Debug("Validating record")

		rc := &ruleContext{valid: true}
		for _, check := range itemChecks {
			value := rec.Get(check.field)
			if check.isValid(v.registry, value) {
				rc.pass("Valid %s code: %s", check.label, value)
			} else {
				rc.fail(check.label, "Invalid %s code: %s", check.label, value)
			}
		}
		rc.commit(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	v.logger.Info("Completed individual item validations")
	return records, nil
}
