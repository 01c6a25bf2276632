// Package validation checks prediction request bodies before they reach the
// feature encoder.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/TimurManjosov/heartcheck/internal/features"
)

const (
	// MaxBodySize is the default cap on a single request body in bytes
	MaxBodySize = 1 << 20
	// MaxBatchSize is the default cap on records per batch request
	MaxBatchSize = 100
)

// ValidationResult holds the result of validation
type ValidationResult struct {
	Valid   bool
	Errors  map[string]string
	Missing []string // missing fields in required order
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:  true,
		Errors: make(map[string]string),
	}
}

// AddError adds a field error and marks the result as invalid
func (v *ValidationResult) AddError(field, message string) {
	v.Valid = false
	v.Errors[field] = message
}

// AddMissing records a missing required field
func (v *ValidationResult) AddMissing(field string) {
	v.Missing = append(v.Missing, field)
	v.AddError(field, "field is required")
}

// MissingFieldsError lists required fields absent from a record
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// Err returns the first error class found: missing fields win over type
// errors so a client fixes absence before shape.
func (v *ValidationResult) Err() error {
	if v.Valid {
		return nil
	}
	if len(v.Missing) > 0 {
		return &MissingFieldsError{Fields: append([]string{}, v.Missing...)}
	}
	for _, field := range features.RequiredFields {
		if msg, ok := v.Errors[field]; ok {
			return &FieldValueError{Field: field, Message: msg}
		}
	}
	return errors.New("invalid record")
}

// FieldValueError reports a present field with an unusable value
type FieldValueError struct {
	Field   string
	Message string
}

func (e *FieldValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Message)
}

// ValidateRecord checks that every required field is present and carries a
// value of the right JSON type. A null counts as absent.
func ValidateRecord(raw map[string]json.RawMessage) *ValidationResult {
	result := NewValidationResult()

	for _, field := range features.RequiredFields {
		value, ok := raw[field]
		if !ok || isNull(value) {
			result.AddMissing(field)
			continue
		}
		var probe features.Record
		if err := features.DecodeField(&probe, field, value); err != nil {
			var fe *features.FieldTypeError
			if errors.As(err, &fe) {
				result.AddError(field, "must be a "+fe.Want)
				continue
			}
			result.AddError(field, err.Error())
		}
	}

	return result
}

// ParseRecord validates raw and converts it into a typed record.
func ParseRecord(raw map[string]json.RawMessage) (features.Record, error) {
	if err := ValidateRecord(raw).Err(); err != nil {
		return features.Record{}, err
	}
	return features.DecodeRecord(raw)
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
