package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
)

// SiteMorphologyValidator checks histology against the sites it may occur at.
// Records whose topography appears in no rule are excluded from the output.
type SiteMorphologyValidator struct {
	rules   []siteMorphologyRule
	bySite  map[string][]int
	workers int
	logger  *logrus.Logger
}

// NewSiteMorphologyValidator creates the site-morphology validator over the built-in matrix
func NewSiteMorphologyValidator(workers int, logger *logrus.Logger) *SiteMorphologyValidator {
	return newSiteMorphologyValidator(siteMorphologyRules, workers, logger)
}

func newSiteMorphologyValidator(rules []siteMorphologyRule, workers int, logger *logrus.Logger) *SiteMorphologyValidator {
	bySite := make(map[string][]int)
	for i, rule := range rules {
		for _, site := range rule.sites {
			// a site listed twice in one rule still applies it once
			if idx := bySite[site]; len(idx) > 0 && idx[len(idx)-1] == i {
				continue
			}
			bySite[site] = append(bySite[site], i)
		}
	}
	return &SiteMorphologyValidator{rules: rules, bySite: bySite, workers: workers, logger: logger}
}

// Name returns the stage name
func (v *SiteMorphologyValidator) Name() string { return StageSiteMorphology }

// RuleCount returns the number of tumour-family rules in the matrix
func (v *SiteMorphologyValidator) RuleCount() int { return len(v.rules) }

// Validate evaluates every rule whose site set holds the record's topography.
// The output keeps input order and holds only records that matched a rule.
func (v *SiteMorphologyValidator) Validate(ctx context.Context, records []*domain.Record) ([]*domain.Record, error) {
	v.logger.WithField("records", len(records)).Info("Starting site-morphology validations")

	matched := make([]bool, len(records))
	err := forEachRecord(ctx, v.workers, records, func(i int, rec *domain.Record) error {
		site := rec.Get(domain.FieldTopography)
		applicable := v.bySite[site]
		if len(applicable) == 0 {
			return nil
		}
		matched[i] = true

		histology := NormalizeHistology(rec.Get(domain.FieldHistology))
		rc := newRuleContext(rec)
		for _, idx := range applicable {
			if contains(v.rules[idx].morphologies, histology) {
				rc.pass("Valid site-morphology combination: %s, %s", site, histology)
			} else {
				rc.fail("site-morphology", "Histology %s is not valid for site %s", histology, site)
			}
		}
		rc.commit(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([]*domain.Record, 0, len(records))
	for i, rec := range records {
		if matched[i] {
			results = append(results, rec)
		}
	}

	v.logger.WithFields(logrus.Fields{
		"records":  len(records),
		"retained": len(results),
		"excluded": len(records) - len(results),
	}).Info("Completed site-morphology validations")

	return results, nil
}
