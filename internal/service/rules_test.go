package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancer-registry-edits/internal/domain"
)

func TestNormalizeHistology(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"8000/3", "8000"},
		{"8140/2", "8140"},
		{"8140", "8140"},
		{"", ""},
		{"/3", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHistology(tt.input))
		})
	}
}

func TestAgeAtIncidence(t *testing.T) {
	tests := []struct {
		name      string
		birth     string
		incidence string
		expected  int
		wantErr   bool
	}{
		{name: "Day before tenth birthday", birth: "01/03/2000", incidence: "01/01/2010", expected: 9},
		{name: "After tenth birthday", birth: "01/03/2000", incidence: "05/03/2010", expected: 10},
		{name: "On birthday", birth: "01/03/2000", incidence: "01/03/2010", expected: 10},
		{name: "Single digit day and month", birth: "1/3/2000", incidence: "28/2/2010", expected: 9},
		{name: "Impossible date", birth: "31/02/2000", incidence: "01/01/2010", wantErr: true},
		{name: "Wrong format", birth: "2000-03-01", incidence: "01/01/2010", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			age, err := AgeAtIncidence(tt.birth, tt.incidence)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, age)
		})
	}
}

func TestForEachRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("Visits every record", func(t *testing.T) {
		records := []*domain.Record{cleanRecord("1"), cleanRecord("2"), cleanRecord("3")}
		var visited int32
		err := forEachRecord(ctx, 2, records, func(i int, rec *domain.Record) error {
			atomic.AddInt32(&visited, 1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int32(3), visited)
	})

	t.Run("Null record fails the batch", func(t *testing.T) {
		records := []*domain.Record{cleanRecord("1"), nil}
		called := false
		err := forEachRecord(ctx, 2, records, func(i int, rec *domain.Record) error {
			called = true
			return nil
		})
		require.Error(t, err)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "dataset", verr.Field)
		assert.False(t, called)
	})

	t.Run("Panics become errors", func(t *testing.T) {
		err := forEachRecord(ctx, 1, []*domain.Record{cleanRecord("P-1")}, func(i int, rec *domain.Record) error {
			panic("index out of range")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "P-1")
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := forEachRecord(cctx, 1, []*domain.Record{cleanRecord("1")}, func(i int, rec *domain.Record) error {
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
