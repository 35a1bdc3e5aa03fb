package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/pkg/codes"
)

func TestItemValidator_Validate(t *testing.T) {
	ctx := context.Background()
	validator := NewItemValidator(testRegistry(), 4, testLogger())

	t.Run("Clean record", func(t *testing.T) {
		rec := cleanRecord("R1")
		out, err := validator.Validate(ctx, []*domain.Record{rec})
		require.NoError(t, err)
		require.Len(t, out, 1)

		assert.True(t, rec.IsValid)
		assert.Equal(t, []string{
			"Valid sex code: Male",
			"Valid behavior code: 3",
			"Valid grade code: 2",
			"Valid topography code: C11",
			"Valid histology code: 8120/3",
		}, rec.ValidationResults)
	})

	t.Run("Invalid codes are reported per field", func(t *testing.T) {
		rec := withField(withField(cleanRecord("R2"), domain.FieldSex, "X"), domain.FieldHistology, "9999/9")
		_, err := validator.Validate(ctx, []*domain.Record{rec})
		require.NoError(t, err)

		assert.False(t, rec.IsValid)
		assert.Len(t, rec.ValidationResults, 5)
		assert.True(t, hasMessage(rec, "sex: Invalid sex code: X"))
		assert.True(t, hasMessage(rec, "histology: Invalid histology code: 9999/9"))
	})

	t.Run("Missing field is invalid", func(t *testing.T) {
		rec := cleanRecord("R3")
		delete(rec.Fields, domain.FieldGrade)
		_, err := validator.Validate(ctx, []*domain.Record{rec})
		require.NoError(t, err)

		assert.False(t, rec.IsValid)
		assert.True(t, hasMessage(rec, "grade: Invalid grade code: "))
	})

	t.Run("Previous results are reset", func(t *testing.T) {
		rec := cleanRecord("R4")
		rec.IsValid = false
		rec.ValidationResults = []string{"stale"}
		_, err := validator.Validate(ctx, []*domain.Record{rec})
		require.NoError(t, err)

		assert.True(t, rec.IsValid)
		assert.False(t, hasMessage(rec, "stale"))
	})

	t.Run("Empty tables fail closed", func(t *testing.T) {
		empty := NewItemValidator(codes.NewRegistry(nil, nil, nil, nil, nil), 1, testLogger())
		rec := cleanRecord("R5")
		_, err := empty.Validate(ctx, []*domain.Record{rec})
		require.NoError(t, err)
		assert.False(t, rec.IsValid)
	})

	t.Run("Empty batch", func(t *testing.T) {
		out, err := validator.Validate(ctx, []*domain.Record{})
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}
