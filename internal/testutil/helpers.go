package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/features"
	"github.com/TimurManjosov/heartcheck/internal/inference"
)

// ValidRecordJSON is the worked example from the feature encoding contract;
// it encodes to [40,140,289,0,172,0,1,1,0,0,1,0,0,0,1].
const ValidRecordJSON = `{"Age":40,"Sex":"M","ChestPainType":"ATA","RestingBP":140,"Cholesterol":289,` +
	`"FastingBS":0,"RestingECG":"Normal","MaxHR":172,"ExerciseAngina":"N","Oldpeak":0,"ST_Slope":"Up"}`

// HighRiskRecordJSON scores as heart disease under TestModel.
const HighRiskRecordJSON = `{"Age":63,"Sex":"M","ChestPainType":"ASY","RestingBP":150,"Cholesterol":223,` +
	`"FastingBS":1,"RestingECG":"ST","MaxHR":115,"ExerciseAngina":"Y","Oldpeak":2.5,"ST_Slope":"Flat"}`

// ValidRecord decodes ValidRecordJSON into a generic map.
func ValidRecord(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(ValidRecordJSON), &m); err != nil {
		t.Fatalf("decode valid record: %v", err)
	}
	return m
}

// TestScaler is an identity-like standard scaler over the training schema.
func TestScaler() *artifact.StandardScaler {
	mean := []float64{53, 132, 198, 0.2, 136, 0.9, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	scale := []float64{9, 18, 109, 0.4, 25, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}
	return &artifact.StandardScaler{Mean: mean, Scale: scale}
}

// TestModel is a logistic model whose signs follow the usual risk factors:
// age, ASY chest pain, exercise angina, oldpeak and a flat slope raise risk;
// high MaxHR and an upsloping ST segment lower it.
func TestModel() *artifact.Logistic {
	return &artifact.Logistic{
		Coef: []float64{
			0.3, 0.1, -0.1, 0.4, -0.5, 0.6, // numerics
			0.7,              // Sex_M
			-1.0, -0.8, -0.4, // ChestPainType ATA, NAP, TA
			-0.1, -0.1, // RestingECG Normal, ST
			0.9,       // ExerciseAngina_Y
			0.8, -1.2, // ST_Slope Flat, Up
		},
		Intercept: -0.2,
	}
}

// NewTestStore builds an artifact store over the training schema.
func NewTestStore(t *testing.T, c artifact.Classifier) *artifact.Store {
	t.Helper()
	if c == nil {
		c = TestModel()
	}
	st, err := artifact.New(artifact.Schema(features.SlotNames()), TestScaler(), c,
		artifact.Info{ModelKind: "logistic", ScalerKind: "standard", Fingerprint: "test"})
	if err != nil {
		t.Fatalf("artifact.New() failed: %v", err)
	}
	return st
}

// NewTestPipeline builds a pipeline over NewTestStore.
func NewTestPipeline(t *testing.T, c artifact.Classifier) *inference.Pipeline {
	t.Helper()
	p, err := inference.NewPipeline(NewTestStore(t, c))
	if err != nil {
		t.Fatalf("NewPipeline() failed: %v", err)
	}
	return p
}

// WriteArtifacts writes the test artifacts as JSON files and returns their paths.
func WriteArtifacts(t *testing.T) artifact.Paths {
	t.Helper()
	dir := t.TempDir()
	paths := artifact.Paths{
		Columns: filepath.Join(dir, "columns.json"),
		Scaler:  filepath.Join(dir, "scaler.json"),
		Model:   filepath.Join(dir, "model.json"),
	}

	sc := TestScaler()
	m := TestModel()
	files := map[string]any{
		paths.Columns: features.SlotNames(),
		paths.Scaler:  map[string]any{"kind": "standard", "mean": sc.Mean, "scale": sc.Scale},
		paths.Model:   map[string]any{"kind": "logistic", "coef": m.Coef, "intercept": m.Intercept},
	}
	for path, v := range files {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", path, err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return paths
}

// HTTPRequest is a helper for making test HTTP requests.
type HTTPRequest struct {
	Method  string
	Path    string
	Body    string
	Headers map[string]string
}

// Do executes the HTTP request and returns the response recorder.
func (r *HTTPRequest) Do(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if r.Body != "" {
		body = bytes.NewBufferString(r.Body)
	}
	req := httptest.NewRequest(r.Method, r.Path, body)
	if r.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// DecodeJSON decodes a recorder body into v.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}
