package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	rec := NewRecord(map[string]string{FieldRegistrationNumber: "REG-001"})
	assert.Equal(t, "REG-001", rec.ID())

	anonymous := NewRecord(nil)
	assert.Equal(t, UnknownRecordID, anonymous.ID())
	assert.True(t, anonymous.IsValid, "records start valid")
	assert.Empty(t, anonymous.ValidationResults)
}

func TestRecordUnmarshalJSON(t *testing.T) {
	t.Run("Scalars are kept as text", func(t *testing.T) {
		var rec Record
		err := json.Unmarshal([]byte(`{
			"registration_number": 1042,
			"sex": "Male",
			"grade_code": 1,
			"behavior": "3",
			"basis_of_diagnosis": null,
			"histology": "8140/3"
		}`), &rec)
		require.NoError(t, err)

		assert.Equal(t, "1042", rec.Get(FieldRegistrationNumber))
		assert.Equal(t, "1", rec.Get(FieldGrade))
		assert.Equal(t, "8140/3", rec.Get(FieldHistology))
		_, present := rec.Fields[FieldBasisOfDiagnosis]
		assert.False(t, present, "null values are dropped")
		assert.True(t, rec.IsValid)
	})

	t.Run("Nested values are rejected", func(t *testing.T) {
		var rec Record
		err := json.Unmarshal([]byte(`{"sex": {"code": "M"}}`), &rec)
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "sex", verr.Field)
	})

	t.Run("Derived fields round trip", func(t *testing.T) {
		age := 42
		rec := NewRecord(map[string]string{FieldSex: "Female"})
		rec.AgeAtIncidence = &age
		rec.IsValid = false
		rec.ValidationResults = []string{"sex: Invalid sex code: X"}

		data, err := json.Marshal(rec)
		require.NoError(t, err)

		var decoded Record
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.NotNil(t, decoded.AgeAtIncidence)
		assert.Equal(t, 42, *decoded.AgeAtIncidence)
		assert.False(t, decoded.IsValid)
		assert.Equal(t, rec.ValidationResults, decoded.ValidationResults)
		assert.Equal(t, "Female", decoded.Get(FieldSex))
	})
}

func TestRecordMarshalJSON(t *testing.T) {
	rec := NewRecord(map[string]string{FieldTopography: "C61"})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "C61", flat[FieldTopography])
	assert.Equal(t, true, flat[FieldIsValid])
	assert.Nil(t, flat[FieldAgeAtIncidence])
	assert.Equal(t, []interface{}{}, flat[FieldValidationResults])
}

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "Array of objects", input: `[{"sex":"Male"},{"sex":"Female"}]`, want: 2},
		{name: "Empty array", input: `[]`, want: 0},
		{name: "Not an array", input: `{"sex":"Male"}`, wantErr: true},
		{name: "Null element", input: `[{"sex":"Male"}, null]`, wantErr: true},
		{name: "Array of scalars", input: `["Male"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeRecords([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestRecordClone(t *testing.T) {
	age := 9
	rec := NewRecord(map[string]string{FieldHistology: "8000/3"})
	rec.AgeAtIncidence = &age
	rec.ValidationResults = append(rec.ValidationResults, "Valid histology code: 8000/3")

	clone := rec.Clone()
	clone.Set(FieldHistology, "8140/3")
	*clone.AgeAtIncidence = 10
	clone.ValidationResults[0] = "changed"

	assert.Equal(t, "8000/3", rec.Get(FieldHistology))
	assert.Equal(t, 9, *rec.AgeAtIncidence)
	assert.Equal(t, "Valid histology code: 8000/3", rec.ValidationResults[0])
}

func TestCorrectionLog(t *testing.T) {
	log := NewCorrectionLog()
	for _, field := range CorrectionFields {
		entries, ok := log[field]
		assert.True(t, ok, "missing key %s", field)
		assert.Empty(t, entries)
	}

	log.Add(CorrectionEntry{ID: "R1", Field: CorrectionSex, OriginalValue: "m", CorrectedValue: "Male", Confidence: 1})
	assert.Equal(t, 1, log.Total())
	assert.Len(t, log[CorrectionSex], 1)
}
