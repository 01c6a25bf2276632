package inference

import (
	"errors"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/features"
	"github.com/TimurManjosov/heartcheck/internal/validation"
)

var (
	// ErrSchemaMismatch means the encoded vector and the scaler disagree on
	// width. It indicates artifact drift, never bad request data.
	ErrSchemaMismatch = errors.New("feature vector does not match scaler input")

	// ErrPredictorInconsistency means the classifier's label and its
	// probabilities disagree.
	ErrPredictorInconsistency = errors.New("classifier label and probabilities disagree")

	// ErrMalformedBody means the request body is not a JSON object.
	ErrMalformedBody = errors.New("malformed request body")
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindNone                  Kind = ""
	KindStartupLoad           Kind = "StartupLoadFailure"
	KindMalformedBody         Kind = "MalformedBody"
	KindMissingFields         Kind = "MissingFields"
	KindInvalidCategory       Kind = "InvalidCategoryValue"
	KindInvalidFieldValue     Kind = "InvalidFieldValue"
	KindSchemaMismatch        Kind = "SchemaMismatch"
	KindPredictorInconsistent Kind = "InternalPredictorInconsistency"
	KindInternal              Kind = "Internal"
)

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		missing  *validation.MissingFieldsError
		value    *validation.FieldValueError
		typ      *features.FieldTypeError
		category *features.CategoryError
	)
	switch {
	case errors.Is(err, ErrMalformedBody):
		return KindMalformedBody
	case errors.As(err, &missing):
		return KindMissingFields
	case errors.As(err, &category):
		return KindInvalidCategory
	case errors.As(err, &value), errors.As(err, &typ):
		return KindInvalidFieldValue
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, ErrPredictorInconsistency):
		return KindPredictorInconsistent
	case errors.Is(err, artifact.ErrStartupLoad), errors.Is(err, artifact.ErrSchemaInconsistent):
		return KindStartupLoad
	default:
		return KindInternal
	}
}

// IsClientError reports whether the kind is caused by request data and
// should be answered with a 4xx status.
func (k Kind) IsClientError() bool {
	switch k {
	case KindMalformedBody, KindMissingFields, KindInvalidCategory, KindInvalidFieldValue:
		return true
	}
	return false
}
