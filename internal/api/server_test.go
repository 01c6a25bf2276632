package api

import (
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/testutil"
)

func newTestServer(t *testing.T, c artifact.Classifier, opts Options) http.Handler {
	t.Helper()
	return NewServer(testutil.NewTestPipeline(t, c), zerolog.Nop(), opts).Router()
}

func TestHealth(t *testing.T) {
	handler := newTestServer(t, nil, Options{})

	rr := (&testutil.HTTPRequest{Method: http.MethodGet, Path: "/health"}).Do(t, handler)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp healthResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}
	if resp.Message == "" {
		t.Error("Expected a message")
	}
	if resp.Model.Fingerprint != "test" || resp.Model.Kind != "logistic" {
		t.Errorf("Unexpected model summary %+v", resp.Model)
	}
}

func TestHealth_StaysHealthyWhilePredictionsFail(t *testing.T) {
	handler := newTestServer(t, nil, Options{})

	for i := 0; i < 5; i++ {
		(&testutil.HTTPRequest{Method: http.MethodPost, Path: "/predict", Body: `{"Age":1}`}).Do(t, handler)
	}

	rr := (&testutil.HTTPRequest{Method: http.MethodGet, Path: "/health"}).Do(t, handler)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestIndex(t *testing.T) {
	handler := newTestServer(t, nil, Options{})

	rr := (&testutil.HTTPRequest{Method: http.MethodGet, Path: "/"}).Do(t, handler)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp indexResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Endpoints["predict"] != "/predict (POST)" {
		t.Errorf("Expected predict endpoint, got %v", resp.Endpoints)
	}
	if resp.Endpoints["health"] != "/health (GET)" {
		t.Errorf("Expected health endpoint, got %v", resp.Endpoints)
	}
}

func TestModelInfo(t *testing.T) {
	handler := newTestServer(t, nil, Options{})

	rr := (&testutil.HTTPRequest{Method: http.MethodGet, Path: "/v1/model"}).Do(t, handler)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp modelInfoResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Features != 15 || len(resp.Columns) != 15 {
		t.Errorf("Expected 15 features, got %d (%d columns)", resp.Features, len(resp.Columns))
	}
	if resp.Columns[0] != "Age" || resp.Columns[14] != "ST_Slope_Up" {
		t.Errorf("Unexpected column order %v", resp.Columns)
	}
	if resp.Scaler != "standard" {
		t.Errorf("Expected scaler 'standard', got '%s'", resp.Scaler)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	handler := newTestServer(t, nil, Options{})

	rr := (&testutil.HTTPRequest{Method: http.MethodGet, Path: "/nope"}).Do(t, handler)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
	var errResp ErrorResponse
	testutil.DecodeJSON(t, rr, &errResp)
	if errResp.Code != ErrCodeNotFound {
		t.Errorf("Expected code NOT_FOUND, got %s", errResp.Code)
	}

	rr = (&testutil.HTTPRequest{Method: http.MethodGet, Path: "/predict"}).Do(t, handler)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestServer(t, nil, Options{CORSAllowedOrigins: []string{"http://localhost:3000"}})

	rr := (&testutil.HTTPRequest{
		Method: http.MethodOptions,
		Path:   "/predict",
		Headers: map[string]string{
			"Origin":                        "http://localhost:3000",
			"Access-Control-Request-Method": "POST",
		},
	}).Do(t, handler)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected allowed origin header, got '%s'", got)
	}
}

func TestRateLimit(t *testing.T) {
	handler := newTestServer(t, nil, Options{RateLimitPerIP: 2})

	var last int
	for i := 0; i < 3; i++ {
		rr := (&testutil.HTTPRequest{Method: http.MethodPost, Path: "/predict", Body: testutil.ValidRecordJSON}).Do(t, handler)
		last = rr.Code
		if i < 2 && rr.Code != http.StatusOK {
			t.Fatalf("Request %d: expected status 200, got %d", i, rr.Code)
		}
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("Expected third request to be rate limited, got %d", last)
	}

	// health is not rate limited
	rr := (&testutil.HTTPRequest{Method: http.MethodGet, Path: "/health"}).Do(t, handler)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected health to stay 200, got %d", rr.Code)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := Options{MaxBatchSize: 7}.withDefaults()
	if opts.MaxBatchSize != 7 {
		t.Errorf("Expected explicit MaxBatchSize to be kept, got %d", opts.MaxBatchSize)
	}
	if opts.RateLimitPerIP != DefaultOptions().RateLimitPerIP {
		t.Errorf("Expected default rate limit, got %d", opts.RateLimitPerIP)
	}
	if opts.MaxBodyBytes != DefaultOptions().MaxBodyBytes {
		t.Errorf("Expected default body cap, got %d", opts.MaxBodyBytes)
	}
}
