package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Record field names as they appear in registry extracts
const (
	FieldRegistrationNumber = "registration_number"
	FieldSex                = "sex"
	FieldBehavior           = "behavior"
	FieldGrade              = "grade_code"
	FieldTopography         = "topography"
	FieldHistology          = "histology"
	FieldBasisOfDiagnosis   = "basis_of_diagnosis"
	FieldBirthDate          = "birth_date"
	FieldDateOfIncidence    = "date_of_incidence"

	// Derived fields added during processing
	FieldAgeAtIncidence    = "age_at_incidence"
	FieldIsValid           = "is_valid"
	FieldValidationResults = "validation_results"
)

// UnknownRecordID is reported when a record carries no registration number
const UnknownRecordID = "N/A"

// Record represents one cancer registry case
type Record struct {
	Fields            map[string]string `json:"-"`
	AgeAtIncidence    *int              `json:"-"`
	IsValid           bool              `json:"-"`
	ValidationResults []string          `json:"-"`
}

// NewRecord creates a record from raw field values. Validity starts true.
func NewRecord(fields map[string]string) *Record {
	if fields == nil {
		fields = make(map[string]string)
	}
	return &Record{
		Fields:            fields,
		IsValid:           true,
		ValidationResults: []string{},
	}
}

// ID returns the registration number used to identify the record in logs
func (r *Record) ID() string {
	if id := r.Get(FieldRegistrationNumber); id != "" {
		return id
	}
	return UnknownRecordID
}

// Get returns a field value, or "" when the field is absent
func (r *Record) Get(field string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[field]
}

// Set assigns a field value
func (r *Record) Set(field, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[field] = value
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	clone := &Record{
		Fields:            fields,
		IsValid:           r.IsValid,
		ValidationResults: append([]string(nil), r.ValidationResults...),
	}
	if r.AgeAtIncidence != nil {
		age := *r.AgeAtIncidence
		clone.AgeAtIncidence = &age
	}
	return clone
}

// MarshalJSON flattens the record into a single object holding the raw fields
// and the derived validation fields.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	if r.AgeAtIncidence != nil {
		out[FieldAgeAtIncidence] = *r.AgeAtIncidence
	} else {
		out[FieldAgeAtIncidence] = nil
	}
	out[FieldIsValid] = r.IsValid
	results := r.ValidationResults
	if results == nil {
		results = []string{}
	}
	out[FieldValidationResults] = results
	return json.Marshal(out)
}

// UnmarshalJSON accepts a flat object of scalar values. Numbers and booleans are
// kept in their textual form, nulls are dropped, nested values are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return NewValidationError("record", "record must be a JSON object", string(data))
	}
	if raw == nil {
		return NewValidationError("record", "record must be a JSON object", nil)
	}

	rec := NewRecord(nil)
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := raw[k]
		switch k {
		case FieldIsValid:
			if b, ok := v.(bool); ok {
				rec.IsValid = b
			}
			continue
		case FieldValidationResults:
			if items, ok := v.([]interface{}); ok {
				for _, item := range items {
					rec.ValidationResults = append(rec.ValidationResults, fmt.Sprint(item))
				}
			}
			continue
		case FieldAgeAtIncidence:
			if n, ok := v.(json.Number); ok {
				if age, err := strconv.Atoi(n.String()); err == nil {
					rec.AgeAtIncidence = &age
				}
			}
			continue
		}

		switch val := v.(type) {
		case nil:
		case string:
			rec.Fields[k] = val
		case json.Number:
			rec.Fields[k] = val.String()
		case bool:
			rec.Fields[k] = strconv.FormatBool(val)
		default:
			return NewValidationError(k, "field value must be a scalar", val)
		}
	}

	*r = *rec
	return nil
}

// DecodeRecords parses a JSON array of records
func DecodeRecords(data []byte) ([]*Record, error) {
	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, NewValidationError("dataset", "dataset must be a JSON array of objects", nil)
	}
	for i, rec := range records {
		if rec == nil {
			return nil, NewValidationError("dataset", fmt.Sprintf("record %d is null", i), nil)
		}
	}
	return records, nil
}
