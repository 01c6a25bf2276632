package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/validation"
)

func TestNewTestPipeline(t *testing.T) {
	p := NewTestPipeline(t, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"reference", ValidRecordJSON, 0},
		{"high risk", HighRiskRecordJSON, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw map[string]json.RawMessage
			if err := json.Unmarshal([]byte(tt.body), &raw); err != nil {
				t.Fatalf("decode: %v", err)
			}
			rec, err := validation.ParseRecord(raw)
			if err != nil {
				t.Fatalf("ParseRecord() failed: %v", err)
			}
			resp, err := p.Run(context.Background(), rec)
			if err != nil {
				t.Fatalf("Run() failed: %v", err)
			}
			if resp.Prediction != tt.want {
				t.Errorf("Expected prediction %d, got %d", tt.want, resp.Prediction)
			}
		})
	}
}

func TestWriteArtifacts_Loadable(t *testing.T) {
	paths := WriteArtifacts(t)

	st, err := artifact.Load(context.Background(), paths)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if st.Info().ModelKind != "logistic" || st.Info().Features != 15 {
		t.Errorf("Unexpected info %+v", st.Info())
	}
}

func TestHTTPRequest_Do(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}
		if r.Header.Get("X-Test") != "yes" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	rr := (&HTTPRequest{
		Method:  http.MethodPost,
		Path:    "/predict",
		Body:    ValidRecordJSON,
		Headers: map[string]string{"X-Test": "yes"},
	}).Do(t, handler)

	if rr.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", rr.Code)
	}
}
