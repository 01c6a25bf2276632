package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/TimurManjosov/heartcheck/internal/inference"
)

// ===== HTTP Helpers =====

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody decodes a single JSON value from a size-capped body into dst.
// Oversized bodies surface as *http.MaxBytesError; everything else that is
// not one well-formed JSON value wraps inference.ErrMalformedBody.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: no data provided", inference.ErrMalformedBody)
		}
		return fmt.Errorf("%w: %v", inference.ErrMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", inference.ErrMalformedBody)
	}
	return nil
}

// writeDecodeError answers a failed decodeBody.
func (s *Server) writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		RequestTooLargeError(w, r, fmt.Sprintf("Request body exceeds %d bytes", s.opts.MaxBodyBytes))
		return
	}
	writePipelineError(w, r, err)
}

// objectFromRaw decodes one JSON value that must be an object.
func objectFromRaw(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: record must be a JSON object", inference.ErrMalformedBody)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: record must be a JSON object", inference.ErrMalformedBody)
	}
	return obj, nil
}
