package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/pkg/codes"
	"github.com/cancer-registry-edits/pkg/fuzzy"
)

// exactConfidence is reported for corrections made by exact lookup
const exactConfidence = 1.0

var (
	maleVariants   = map[string]bool{"male": true, "m": true, "1": true}
	femaleVariants = map[string]bool{"female": true, "f": true, "0": true}
)

// AutoCorrector repairs near-miss codes before validation
type AutoCorrector struct {
	registry   *codes.Registry
	matcher    *fuzzy.Matcher
	morphology *fuzzy.CandidateSet
	topography *fuzzy.CandidateSet
	workers    int
	logger     *logrus.Logger
}

// NewAutoCorrector creates an auto-corrector over the registry's descriptions
func NewAutoCorrector(registry *codes.Registry, matcher *fuzzy.Matcher, workers int, logger *logrus.Logger) *AutoCorrector {
	if matcher == nil {
		matcher, _ = fuzzy.NewMatcher(0)
	}
	return &AutoCorrector{
		registry:   registry,
		matcher:    matcher,
		morphology: candidateSet(registry.Morphology),
		topography: candidateSet(registry.Topography),
		workers:    workers,
		logger:     logger,
	}
}

// candidateSet names the set after the dictionary content so a shared memo
// never serves results computed against another version of the table.
func candidateSet(dict *codes.Dictionary) *fuzzy.CandidateSet {
	return fuzzy.NewCandidateSet(dict.Name()+"@"+dict.Digest(), dict.Descriptions())
}

// Correct rewrites histology, topography, sex, behavior and grade values in place
// and returns one correction entry per changed field.
func (a *AutoCorrector) Correct(ctx context.Context, records []*domain.Record, threshold float64) ([]*domain.Record, domain.CorrectionLog, error) {
	a.logger.WithFields(logrus.Fields{
		"records":   len(records),
		"threshold": threshold,
	}).Info("Starting auto-correction of codes")

	perRecord := make([][]domain.CorrectionEntry, len(records))
	err := forEachRecord(ctx, a.workers, records, func(i int, rec *domain.Record) error {
		perRecord[i] = a.correctRecord(rec, threshold)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log := domain.NewCorrectionLog()
	for _, entries := range perRecord {
		for _, entry := range entries {
			log.Add(entry)
		}
	}

	a.logCorrections(log)
	a.logger.WithField("corrections", log.Total()).Info("Completed auto-correction of codes")
	return records, log, nil
}

func (a *AutoCorrector) correctRecord(rec *domain.Record, threshold float64) []domain.CorrectionEntry {
	var entries []domain.CorrectionEntry
	record := func(field, key, original, corrected string, confidence float64) {
		rec.Set(key, corrected)
		entries = append(entries, domain.CorrectionEntry{
			ID:             rec.ID(),
			Field:          field,
			OriginalValue:  original,
			CorrectedValue: corrected,
			Confidence:     confidence,
		})
	}

	if histology := strings.TrimSpace(rec.Get(domain.FieldHistology)); histology != "" {
		if code, confidence, ok := a.correctHistology(histology, threshold); ok {
			record(domain.CorrectionHistology, domain.FieldHistology, histology, code, confidence)
		}
	}

	if topography := strings.TrimSpace(rec.Get(domain.FieldTopography)); topography != "" {
		if code, confidence, ok := a.correctTopography(topography, threshold); ok {
			record(domain.CorrectionTopography, domain.FieldTopography, topography, code, confidence)
		}
	}

	if sex := strings.TrimSpace(rec.Get(domain.FieldSex)); sex != "" {
		if corrected := a.correctSex(sex); corrected != sex {
			record(domain.CorrectionSex, domain.FieldSex, sex, corrected, exactConfidence)
		}
	}

	if behavior := strings.TrimSpace(rec.Get(domain.FieldBehavior)); behavior != "" {
		if corrected, ok := a.registry.Behavior.Lookup(capitalize(behavior)); ok && corrected != behavior {
			record(domain.CorrectionBehavior, domain.FieldBehavior, behavior, corrected, exactConfidence)
		}
	}

	if grade := strings.TrimSpace(rec.Get(domain.FieldGrade)); grade != "" {
		if corrected, ok := a.registry.Grade.Lookup(strings.ToUpper(grade)); ok && corrected != grade {
			record(domain.CorrectionGrade, domain.FieldGrade, grade, corrected, exactConfidence)
		}
	}

	return entries
}

// correctHistology maps free-text morphology to its code. Values that are
// already a code or an exact description are left alone.
func (a *AutoCorrector) correctHistology(value string, threshold float64) (string, float64, bool) {
	dict := a.registry.Morphology
	if dict.HasCode(value) || dict.HasDescription(value) {
		return "", 0, false
	}
	match := a.matcher.Best(value, a.morphology, threshold)
	if !match.OK {
		return "", 0, false
	}
	code, ok := dict.CodeFor(match.Value)
	return code, match.Confidence, ok
}

// correctTopography matches the whole value first, then each word on its own,
// keeping the best scoring word.
func (a *AutoCorrector) correctTopography(value string, threshold float64) (string, float64, bool) {
	dict := a.registry.Topography
	if dict.HasCode(value) {
		return "", 0, false
	}

	match := a.matcher.Best(value, a.topography, threshold)
	if !match.OK {
		for _, word := range strings.Fields(value) {
			candidate := a.matcher.Best(word, a.topography, threshold)
			if candidate.OK && candidate.Confidence > match.Confidence {
				match = candidate
			}
		}
	}
	if !match.OK {
		return "", 0, false
	}

	code, ok := dict.CodeFor(match.Value)
	return code, match.Confidence, ok
}

func (a *AutoCorrector) correctSex(value string) string {
	normalized := strings.ToLower(value)
	var key string
	switch {
	case maleVariants[normalized]:
		key = "male"
	case femaleVariants[normalized]:
		key = "female"
	default:
		return value
	}
	if canonical, ok := a.registry.Sex.Lookup(key); ok {
		return canonical
	}
	return value
}

// logCorrections writes a summary of every applied correction, grouped by field
func (a *AutoCorrector) logCorrections(log domain.CorrectionLog) {
	for _, field := range domain.CorrectionFields {
		entries := log[field]
		if len(entries) == 0 {
			continue
		}
		a.logger.WithFields(logrus.Fields{
			"field": field,
			"count": len(entries),
		}).Info(fmt.Sprintf("%s corrections applied", capitalize(field)))
		for _, e := range entries {
			a.logger.WithFields(logrus.Fields{
				"record":     e.ID,
				"field":      field,
				"original":   e.OriginalValue,
				"corrected":  e.CorrectedValue,
				"confidence": e.Confidence,
			}).Info("Correction applied")
		}
	}
}

// capitalize upper-cases the first letter and lower-cases the rest
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
