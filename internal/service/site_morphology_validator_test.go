package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancer-registry-edits/internal/domain"
)

func TestSiteMorphologyValidator_Matrix(t *testing.T) {
	validator := NewSiteMorphologyValidator(1, testLogger())
	assert.Equal(t, 43, validator.RuleCount())
}

func TestSiteMorphologyValidator_Validate(t *testing.T) {
	ctx := context.Background()
	validator := NewSiteMorphologyValidator(4, testLogger())

	matching := cleanRecord("S1")
	mismatched := withField(cleanRecord("S2"), domain.FieldHistology, "8140/3")
	unknownSite := withField(cleanRecord("S3"), domain.FieldTopography, "C99")
	alsoMatching := cleanRecord("S4")

	input := []*domain.Record{matching, mismatched, unknownSite, alsoMatching}
	out, err := validator.Validate(ctx, input)
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"S1", "S2", "S4"}, []string{out[0].ID(), out[1].ID(), out[2].ID()})

	assert.True(t, matching.IsValid)
	assert.True(t, hasMessage(matching, "Valid site-morphology combination: C11, 8120"))

	assert.False(t, mismatched.IsValid)
	assert.True(t, hasMessage(mismatched, "site-morphology: Histology 8140 is not valid for site C11"))
}

func TestSiteMorphologyValidator_Subset(t *testing.T) {
	validator := NewSiteMorphologyValidator(2, testLogger())
	input := []*domain.Record{
		withField(cleanRecord("X1"), domain.FieldTopography, "C99"),
		cleanRecord("X2"),
		withField(cleanRecord("X3"), domain.FieldTopography, ""),
	}

	out, err := validator.Validate(context.Background(), input)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(out), len(input))
	for _, rec := range out {
		assert.Contains(t, input, rec)
	}
	assert.Len(t, out, 1)
}

func TestSiteMorphologyValidator_RulePerSite(t *testing.T) {
	rules := []siteMorphologyRule{
		{family: "a", sites: []string{"C01", "C01"}, morphologies: []string{"8000"}},
		{family: "b", sites: []string{"C01"}, morphologies: []string{"8010"}},
	}
	validator := newSiteMorphologyValidator(rules, 1, testLogger())

	rec := withField(withField(domain.NewRecord(nil), domain.FieldTopography, "C01"), domain.FieldHistology, "8000/3")
	_, err := validator.Validate(context.Background(), []*domain.Record{rec})
	require.NoError(t, err)

	// one message per applicable rule, the duplicate site entry is ignored
	assert.Equal(t, []string{
		"Valid site-morphology combination: C01, 8000",
		"site-morphology: Histology 8000 is not valid for site C01",
	}, rec.ValidationResults)
	assert.False(t, rec.IsValid)
}
