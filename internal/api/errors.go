package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"

	"github.com/TimurManjosov/heartcheck/internal/features"
	"github.com/TimurManjosov/heartcheck/internal/inference"
	"github.com/TimurManjosov/heartcheck/internal/telemetry"
	"github.com/TimurManjosov/heartcheck/internal/validation"
)

// ErrorCode represents machine-readable error codes
type ErrorCode string

const (
	// General error codes
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeRequestTooLarge  ErrorCode = "REQUEST_TOO_LARGE"

	// Request error codes
	ErrCodeInvalidJSON       ErrorCode = "INVALID_JSON"
	ErrCodeMissingFields     ErrorCode = "MISSING_FIELDS"
	ErrCodeInvalidCategory   ErrorCode = "INVALID_CATEGORY"
	ErrCodeInvalidFieldValue ErrorCode = "INVALID_FIELD_VALUE"
	ErrCodeBatchTooLarge     ErrorCode = "BATCH_TOO_LARGE"

	// Deployment error codes
	ErrCodeSchemaMismatch         ErrorCode = "SCHEMA_MISMATCH"
	ErrCodePredictorInconsistency ErrorCode = "PREDICTOR_INCONSISTENCY"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error     string            `json:"error"`                // Human-readable description
	Code      ErrorCode         `json:"code"`                 // Machine-readable error code
	Fields    map[string]string `json:"fields,omitempty"`     // Field-level errors
	Missing   []string          `json:"missing,omitempty"`    // Missing required fields, in order
	RequestID string            `json:"request_id,omitempty"` // Request ID for debugging
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: message,
		Code:  code,
	}
}

// WithFields adds field-level errors to the response
func (e *ErrorResponse) WithFields(fields map[string]string) *ErrorResponse {
	e.Fields = fields
	return e
}

// WithMissing lists missing required fields
func (e *ErrorResponse) WithMissing(missing []string) *ErrorResponse {
	e.Missing = missing
	return e
}

// WithRequestID adds a request ID to the response
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.RequestID = requestID
	return e
}

// writeErrorResponse writes a structured error response to the http response writer
func writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, errResp *ErrorResponse) {
	// Add request ID from chi middleware if available
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		errResp.RequestID = reqID
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errResp)
}

// BadRequestError creates a bad request error response
func BadRequestError(w http.ResponseWriter, r *http.Request, code ErrorCode, message string) {
	writeErrorResponse(w, r, http.StatusBadRequest, NewErrorResponse(code, message))
}

// NotFoundError creates a not found error response
func NotFoundError(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorResponse(w, r, http.StatusNotFound, NewErrorResponse(ErrCodeNotFound, message))
}

// MethodNotAllowedError creates a method not allowed error response
func MethodNotAllowedError(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorResponse(w, r, http.StatusMethodNotAllowed, NewErrorResponse(ErrCodeMethodNotAllowed, message))
}

// RequestTooLargeError creates a request entity too large error response
func RequestTooLargeError(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorResponse(w, r, http.StatusRequestEntityTooLarge, NewErrorResponse(ErrCodeRequestTooLarge, message))
}

// RateLimitedError creates a too many requests error response
func RateLimitedError(w http.ResponseWriter, r *http.Request) {
	writeErrorResponse(w, r, http.StatusTooManyRequests,
		NewErrorResponse(ErrCodeRateLimited, "Too many requests, slow down"))
}

// errorFor maps a pipeline error to a status and body. Messages for
// deployment errors stay generic; the detail goes to the log.
func errorFor(err error) (int, *ErrorResponse) {
	switch inference.KindOf(err) {
	case inference.KindMalformedBody:
		return http.StatusBadRequest, NewErrorResponse(ErrCodeInvalidJSON, err.Error())

	case inference.KindMissingFields:
		var mf *validation.MissingFieldsError
		errors.As(err, &mf)
		fields := make(map[string]string, len(mf.Fields))
		for _, f := range mf.Fields {
			fields[f] = "field is required"
		}
		return http.StatusBadRequest, NewErrorResponse(ErrCodeMissingFields, mf.Error()).
			WithFields(fields).
			WithMissing(mf.Fields)

	case inference.KindInvalidCategory:
		var ce *features.CategoryError
		errors.As(err, &ce)
		return http.StatusBadRequest, NewErrorResponse(ErrCodeInvalidCategory, ce.Error()).
			WithFields(map[string]string{ce.Field: ce.Error()})

	case inference.KindInvalidFieldValue:
		var fv *validation.FieldValueError
		if errors.As(err, &fv) {
			return http.StatusBadRequest, NewErrorResponse(ErrCodeInvalidFieldValue, fv.Error()).
				WithFields(map[string]string{fv.Field: fv.Message})
		}
		return http.StatusBadRequest, NewErrorResponse(ErrCodeInvalidFieldValue, err.Error())

	case inference.KindSchemaMismatch:
		return http.StatusInternalServerError,
			NewErrorResponse(ErrCodeSchemaMismatch, "Model artifacts do not match the feature schema")

	case inference.KindPredictorInconsistent:
		return http.StatusInternalServerError,
			NewErrorResponse(ErrCodePredictorInconsistency, "Model returned an inconsistent prediction")

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrCodeInternal, "Prediction failed")
	}
}

// writePipelineError logs, counts and answers a failed prediction.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	kind := inference.KindOf(err)
	telemetry.ObservePredictionError(string(kind))

	log := hlog.FromRequest(r)
	if kind.IsClientError() {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("prediction rejected")
	} else {
		log.Error().Err(err).Str("kind", string(kind)).Msg("prediction failed")
	}

	status, body := errorFor(err)
	writeErrorResponse(w, r, status, body)
}
