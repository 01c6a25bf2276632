package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"github.com/TimurManjosov/heartcheck/internal/inference"
	"github.com/TimurManjosov/heartcheck/internal/telemetry"
	"github.com/TimurManjosov/heartcheck/internal/validation"
)

// handlePredict handles POST /predict
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := s.decodeBody(w, r, &raw); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}
	obj, err := objectFromRaw(raw)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	resp, err := s.predict(r.Context(), obj)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	id := uuid.NewString()
	hlog.FromRequest(r).Debug().
		Str("prediction_id", id).
		Int("prediction", resp.Prediction).
		Float64("confidence", resp.Confidence).
		Msg("prediction served")

	w.Header().Set("X-Prediction-ID", id)
	writeJSON(w, http.StatusOK, resp)
}

// predict validates, types and runs one record.
func (s *Server) predict(ctx context.Context, obj map[string]json.RawMessage) (inference.Response, error) {
	rec, err := validation.ParseRecord(obj)
	if err != nil {
		return inference.Response{}, err
	}
	resp, err := s.pipeline.Run(ctx, rec)
	if err != nil {
		return inference.Response{}, err
	}
	telemetry.ObservePrediction(resp.Prediction, resp.Confidence)
	return resp, nil
}

// batchRequest represents the request body for POST /predict/batch
type batchRequest struct {
	Records []json.RawMessage `json:"records"`
}

// batchItem is the outcome for one record, in request order.
type batchItem struct {
	Index  int                 `json:"index"`
	Result *inference.Response `json:"result,omitempty"`
	Error  *ErrorResponse      `json:"error,omitempty"`
}

// batchResponse represents the response for POST /predict/batch
type batchResponse struct {
	Results   []batchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// handlePredictBatch handles POST /predict/batch. Records are independent:
// a record rejected for its own data is reported in place, but any
// deployment error fails the whole batch.
func (s *Server) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeDecodeError(w, r, err)
		return
	}
	if len(req.Records) == 0 {
		BadRequestError(w, r, ErrCodeBadRequest, "records must be a non-empty array")
		return
	}
	if len(req.Records) > s.opts.MaxBatchSize {
		BadRequestError(w, r, ErrCodeBatchTooLarge,
			fmt.Sprintf("batch has %d records, limit is %d", len(req.Records), s.opts.MaxBatchSize))
		return
	}

	resp := batchResponse{Results: make([]batchItem, len(req.Records))}
	for i, raw := range req.Records {
		item := batchItem{Index: i}

		obj, err := objectFromRaw(raw)
		var result inference.Response
		if err == nil {
			result, err = s.predict(r.Context(), obj)
		}

		if err != nil {
			if !inference.KindOf(err).IsClientError() {
				writePipelineError(w, r, fmt.Errorf("batch record %d: %w", i, err))
				return
			}
			telemetry.ObservePredictionError(string(inference.KindOf(err)))
			_, item.Error = errorFor(err)
			resp.Failed++
		} else {
			item.Result = &result
			resp.Succeeded++
		}
		resp.Results[i] = item
	}

	writeJSON(w, http.StatusOK, resp)
}
