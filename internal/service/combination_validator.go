package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
)

// recordFacts is the read-only view of a record that combination rules see
type recordFacts struct {
	age           *int
	site          string
	histology     string // normalized
	sex           string
	behavior      string
	grade         string
	basis         string
	birthDate     string
	incidenceDate string
}

func factsFor(rec *domain.Record) *recordFacts {
	return &recordFacts{
		age:           rec.AgeAtIncidence,
		site:          rec.Get(domain.FieldTopography),
		histology:     NormalizeHistology(rec.Get(domain.FieldHistology)),
		sex:           rec.Get(domain.FieldSex),
		behavior:      rec.Get(domain.FieldBehavior),
		grade:         rec.Get(domain.FieldGrade),
		basis:         rec.Get(domain.FieldBasisOfDiagnosis),
		birthDate:     rec.Get(domain.FieldBirthDate),
		incidenceDate: rec.Get(domain.FieldDateOfIncidence),
	}
}

// CombinationRule is one family of cross-field checks. Each applicable check
// in the family records exactly one pass or fail message.
type CombinationRule struct {
	Code      string
	Name      string
	Evaluator func(f *recordFacts, rc *ruleContext)
}

// CombinationValidator checks medically plausible relationships between fields
type CombinationValidator struct {
	rules   []*CombinationRule
	workers int
	logger  *logrus.Logger
}

// NewCombinationValidator creates the data combination validator
func NewCombinationValidator(workers int, logger *logrus.Logger) *CombinationValidator {
	v := &CombinationValidator{workers: workers, logger: logger}
	v.initializeRules()
	return v
}

// Name returns the stage name
func (v *CombinationValidator) Name() string { return StageCombination }

// RuleCodes returns the rule families in evaluation order
func (v *CombinationValidator) RuleCodes() []string {
	out := make([]string, len(v.rules))
	for i, r := range v.rules {
		out[i] = r.Code
	}
	return out
}

// Validate derives the age at incidence and evaluates every rule family.
// Coded fields are never modified.
func (v *CombinationValidator) Validate(ctx context.Context, records []*domain.Record) ([]*domain.Record, error) {
	v.logger.WithField("records", len(records)).Info("Starting data combination validations")

	err := forEachRecord(ctx, v.workers, records, func(i int, rec *domain.Record) error {
		v.updateAge(rec)

		facts := factsFor(rec)
		rc := newRuleContext(rec)
		for _, rule := range v.rules {
			rule.Evaluator(facts, rc)
		}
		rc.commit(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	v.logger.Info("Completed data combination validations")
	return records, nil
}

// updateAge recomputes the age when both dates are present; an unparsable date clears it
func (v *CombinationValidator) updateAge(rec *domain.Record) {
	birth, incidence := rec.Get(domain.FieldBirthDate), rec.Get(domain.FieldDateOfIncidence)
	if birth == "" || incidence == "" {
		return
	}
	age, err := AgeAtIncidence(birth, incidence)
	if err != nil {
		v.logger.WithError(err).WithField("record", rec.ID()).Debug("Could not calculate age at incidence")
		rec.AgeAtIncidence = nil
		return
	}
	rec.AgeAtIncidence = &age
}

func (v *CombinationValidator) initializeRules() {
	v.addRule("CHILDHOOD_GROUP", "Childhood tumour diagnostic group age range", evaluateChildhoodGroups)
	v.addRule("ADULT_AGE", "Unlikely combinations above age 15", evaluateAdultAge)
	v.addRule("AGE_SITE", "Age range for site and histology", evaluateAgeSite)
	v.addRule("SEX_HISTOLOGY", "Histological family for sex", evaluateSexHistology)
	v.addRule("SEX_SITE", "Site for sex", evaluateSexSite)
	v.addRule("BEHAVIOR_SITE", "Behavior for site", evaluateBehaviorSite)
	v.addRule("BEHAVIOR_HISTOLOGY", "Behavior for histology", evaluateBehaviorHistology)
	v.addRule("GRADE_HISTOLOGY", "Grade for histology", evaluateGradeHistology)
	v.addRule("BASIS_HISTOLOGY", "Basis of diagnosis for histology", evaluateBasisHistology)
	v.addRule("DATE_ORDER", "Incidence after birth", evaluateDateOrder)
}

func (v *CombinationValidator) addRule(code, name string, evaluator func(f *recordFacts, rc *ruleContext)) {
	v.rules = append(v.rules, &CombinationRule{Code: code, Name: name, Evaluator: evaluator})
}

func evaluateChildhoodGroups(f *recordFacts, rc *ruleContext) {
	if f.age == nil {
		return
	}
	age := *f.age
	for _, group := range childhoodGroups {
		if !contains(group.histologies, f.histology) {
			continue
		}
		if group.ages.contains(age) {
			rc.pass("Valid diagnostic group: %s (%s)", f.histology, group.name)
		} else {
			rc.fail("histology", "Histology %s unlikely for age %d (expected age range: %s)", f.histology, age, group.ages)
		}
	}
}

// evaluateAdultAge runs once per record when the age is above 15
func evaluateAdultAge(f *recordFacts, rc *ruleContext) {
	if f.age == nil || *f.age <= adultAgeThreshold {
		return
	}
	age := *f.age

	if age < 40 && strings.HasPrefix(f.site, "C61") && strings.HasPrefix(f.histology, "814") {
		rc.fail("combination", "Age < 40 with site C61 and histology 814_ is unlikely")
	} else {
		rc.pass("Valid age/histology combination: %s", f.histology)
	}

	if age < 20 && contains(under20Sites, f.site) {
		rc.fail("combination", "Age < 20 with site %s is unlikely", f.site)
	} else {
		rc.pass("Valid age/topography combination: %s", f.site)
	}

	if n, err := strconv.Atoi(f.histology); age < 20 && strings.HasPrefix(f.site, "C17") && err == nil && n < 9590 {
		rc.fail("combination", "Age < 20 with site %s and histology %s is unlikely", f.site, f.histology)
	} else {
		rc.pass("Valid age/histology combination: %s", f.histology)
	}

	if age < 20 && contains(under20NonCarcinoidSites, f.site) && !strings.HasPrefix(f.histology, "824") {
		rc.fail("combination", "Age < 20 with site %s and histology %s is unlikely", f.site, f.histology)
	} else {
		rc.pass("Valid age/site/histology combination: %s, %s", f.site, f.histology)
	}

	if age > 45 && strings.HasPrefix(f.site, "C58") && f.histology == "9100" {
		rc.fail("combination", "Age > 45 with site C58 and histology 9100 is unlikely")
	} else {
		rc.pass("Valid age/site/histology combination: %s, %s", f.site, f.histology)
	}

	if age <= 25 && contains(youngAdultHistologies, f.histology) {
		rc.fail("combination", "Age <= 25 with histology %s is unlikely", f.histology)
	} else {
		rc.pass("Valid age/histology combination: %s", f.histology)
	}

	if contains(childhoodOnlyHistologies, f.histology) {
		rc.fail("combination", "Age > 15 with histology %s is unlikely", f.histology)
	} else {
		rc.pass("Valid age/histology combination: %s", f.histology)
	}
}

func evaluateAgeSite(f *recordFacts, rc *ruleContext) {
	if f.age == nil || f.site == "" {
		return
	}
	for _, rule := range ageSiteRules {
		if !strings.HasPrefix(f.site, rule.sitePrefix) || !rule.matchesHistology(f.histology) {
			continue
		}
		if rule.ages.contains(*f.age) {
			rc.pass("Valid age/site combination: %s, %s", f.site, f.histology)
		} else {
			rc.fail("combination", "Site %s and histology %s unlikely for age %d (expected age range: %s)",
				f.site, f.histology, *f.age, rule.ages)
		}
	}
}

func evaluateSexHistology(f *recordFacts, rc *ruleContext) {
	if f.sex == "" || len(f.histology) < 2 {
		return
	}
	family := f.histology[:2]
	for _, rule := range sexHistologyRules {
		if f.sex == rule.sex && contains(rule.families, family) {
			rc.fail("combination", "Histological family %s is unlikely for sex %s", family, f.sex)
		} else {
			rc.pass("Valid sex/histology combination: %s, %s", f.sex, f.histology)
		}
	}
}

func evaluateSexSite(f *recordFacts, rc *ruleContext) {
	if f.sex == "" || f.site == "" {
		return
	}
	for _, rule := range sexSiteRules {
		if f.sex == rule.sex && contains(rule.sites, f.site) {
			rc.fail("combination", "Site %s not possible for sex %s", f.site, f.sex)
		} else {
			rc.pass("Valid sex/site combination: %s, %s", f.sex, f.site)
		}
	}
}

// evaluateExclusions fails when key holds a rule's value and member is in the rule's set
func evaluateExclusions(rc *ruleContext, rules []valueSetRule, key, member, keyLabel, memberLabel string) {
	if key == "" || member == "" {
		return
	}
	for _, rule := range rules {
		if key == rule.value && contains(rule.set, member) {
			rc.fail("combination", "%s %s unlikely with %s %s", keyLabel, key, memberLabel, member)
		} else {
			rc.pass("Valid %s/%s combination: %s, %s", strings.ToLower(keyLabel), memberLabel, key, member)
		}
	}
}

func evaluateBehaviorSite(f *recordFacts, rc *ruleContext) {
	evaluateExclusions(rc, behaviorSiteRules, f.behavior, f.site, "Behavior", "site")
}

func evaluateBehaviorHistology(f *recordFacts, rc *ruleContext) {
	evaluateExclusions(rc, behaviorHistologyRules, f.behavior, f.histology, "Behavior", "histology")
}

func evaluateGradeHistology(f *recordFacts, rc *ruleContext) {
	evaluateExclusions(rc, gradeHistologyRules, f.grade, f.histology, "Grade", "histology")
}

func evaluateBasisHistology(f *recordFacts, rc *ruleContext) {
	evaluateExclusions(rc, basisHistologyRules, f.basis, f.histology, "Basis of diagnosis", "histology")
}

func evaluateDateOrder(f *recordFacts, rc *ruleContext) {
	if f.birthDate == "" || f.incidenceDate == "" {
		return
	}
	birth, err := ParseRegistryDate(f.birthDate)
	if err != nil {
		rc.note("combination", "Date parsing error: %v", err)
		return
	}
	incidence, err := ParseRegistryDate(f.incidenceDate)
	if err != nil {
		rc.note("combination", "Date parsing error: %v", err)
		return
	}
	if !incidence.After(birth) {
		rc.fail("combination", "Date of incidence cannot be on or before the birth date")
		return
	}
	rc.pass("Valid incidence date: %s", f.incidenceDate)
}
