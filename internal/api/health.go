package api

import (
	"net/http"
	"time"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
)

type modelSummary struct {
	Kind        string `json:"kind"`
	Fingerprint string `json:"fingerprint"`
}

type healthResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Model   modelSummary `json:"model"`
}

type indexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

type modelInfoResponse struct {
	Kind        string          `json:"kind"`
	Scaler      string          `json:"scaler"`
	Fingerprint string          `json:"fingerprint"`
	Features    int             `json:"features"`
	Columns     artifact.Schema `json:"columns"`
	LoadedAt    string          `json:"loaded_at"`
}

// handleHealth handles GET /health. The server only listens once artifacts
// are loaded, so reaching this handler means predictions can be served.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	info := s.pipeline.Store().Info()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Message: "Heart Disease Prediction API is running",
		Model:   modelSummary{Kind: info.ModelKind, Fingerprint: info.Fingerprint},
	})
}

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, indexResponse{
		Message: "Heart Disease Prediction API",
		Endpoints: map[string]string{
			"predict": "/predict (POST)",
			"batch":   "/predict/batch (POST)",
			"health":  "/health (GET)",
			"model":   "/v1/model (GET)",
		},
	})
}

// handleModelInfo handles GET /v1/model
func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	st := s.pipeline.Store()
	info := st.Info()
	writeJSON(w, http.StatusOK, modelInfoResponse{
		Kind:        info.ModelKind,
		Scaler:      info.ScalerKind,
		Fingerprint: info.Fingerprint,
		Features:    info.Features,
		Columns:     st.Schema(),
		LoadedAt:    info.LoadedAt.Format(time.RFC3339),
	})
}
