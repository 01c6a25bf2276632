package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/TimurManjosov/heartcheck/internal/features"
	"github.com/TimurManjosov/heartcheck/internal/inference"
	"github.com/TimurManjosov/heartcheck/internal/validation"
)

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(ErrCodeInvalidJSON, "Invalid JSON")

	if resp.Error != "Invalid JSON" {
		t.Errorf("Expected Error 'Invalid JSON', got '%s'", resp.Error)
	}
	if resp.Code != ErrCodeInvalidJSON {
		t.Errorf("Expected Code INVALID_JSON, got '%s'", resp.Code)
	}
}

func TestErrorResponse_Builders(t *testing.T) {
	resp := NewErrorResponse(ErrCodeMissingFields, "Missing required fields: Age").
		WithFields(map[string]string{"Age": "field is required"}).
		WithMissing([]string{"Age"}).
		WithRequestID("req-123")

	if resp.Fields["Age"] != "field is required" {
		t.Errorf("Expected field 'Age', got %v", resp.Fields)
	}
	if len(resp.Missing) != 1 || resp.Missing[0] != "Age" {
		t.Errorf("Expected missing [Age], got %v", resp.Missing)
	}
	if resp.RequestID != "req-123" {
		t.Errorf("Expected RequestID 'req-123', got '%s'", resp.RequestID)
	}
}

func TestWriteErrorResponse_UsesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/predict", nil)

	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		BadRequestError(w, r, ErrCodeInvalidJSON, "Invalid JSON")
	})
	middleware.RequestID(handler).ServeHTTP(w, r)

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got '%s'", ct)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.RequestID == "" {
		t.Error("Expected request_id from middleware")
	}
}

func TestStatusHelpers(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter, r *http.Request)
		wantCode int
		wantErr  ErrorCode
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) { NotFoundError(w, r, "nope") },
			http.StatusNotFound, ErrCodeNotFound},
		{"method not allowed", func(w http.ResponseWriter, r *http.Request) { MethodNotAllowedError(w, r, "nope") },
			http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed},
		{"too large", func(w http.ResponseWriter, r *http.Request) { RequestTooLargeError(w, r, "big") },
			http.StatusRequestEntityTooLarge, ErrCodeRequestTooLarge},
		{"rate limited", RateLimitedError, http.StatusTooManyRequests, ErrCodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, httptest.NewRequest(http.MethodPost, "/predict", nil))

			if w.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, w.Code)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Code != tt.wantErr {
				t.Errorf("Expected code %s, got %s", tt.wantErr, resp.Code)
			}
		})
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  ErrorCode
	}{
		{"malformed", fmt.Errorf("%w: bad", inference.ErrMalformedBody), http.StatusBadRequest, ErrCodeInvalidJSON},
		{"missing", &validation.MissingFieldsError{Fields: []string{"Age", "Sex"}}, http.StatusBadRequest, ErrCodeMissingFields},
		{"category", &features.CategoryError{Field: "Sex", Value: "X"}, http.StatusBadRequest, ErrCodeInvalidCategory},
		{"field value", &validation.FieldValueError{Field: "Age", Message: "must be a number"},
			http.StatusBadRequest, ErrCodeInvalidFieldValue},
		{"field type", &features.FieldTypeError{Field: "Age", Want: "number"}, http.StatusBadRequest, ErrCodeInvalidFieldValue},
		{"schema", fmt.Errorf("scale: %w", inference.ErrSchemaMismatch), http.StatusInternalServerError, ErrCodeSchemaMismatch},
		{"inconsistent", inference.ErrPredictorInconsistency, http.StatusInternalServerError, ErrCodePredictorInconsistency},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorFor(tt.err)
			if status != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, status)
			}
			if body.Code != tt.wantErr {
				t.Errorf("Expected code %s, got %s", tt.wantErr, body.Code)
			}
		})
	}
}

func TestErrorFor_ServerMessagesStayGeneric(t *testing.T) {
	_, body := errorFor(errors.New("open /secret/path: permission denied"))
	if body.Error != "Prediction failed" {
		t.Errorf("Expected generic message, got '%s'", body.Error)
	}
}

func TestErrorFor_MissingListsFieldsInOrder(t *testing.T) {
	_, body := errorFor(&validation.MissingFieldsError{Fields: []string{"Age", "Cholesterol"}})
	if len(body.Missing) != 2 || body.Missing[0] != "Age" || body.Missing[1] != "Cholesterol" {
		t.Errorf("Expected [Age Cholesterol], got %v", body.Missing)
	}
	if body.Fields["Cholesterol"] != "field is required" {
		t.Errorf("Expected field entry for Cholesterol, got %v", body.Fields)
	}
}
