// Package client talks to a running prediction server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/TimurManjosov/heartcheck/internal/inference"
)

// Client is an HTTP client for the prediction API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxTries   uint // attempts per call, including the first
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxTries: 3,
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Missing    []string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
	Model   struct {
		Kind        string `json:"kind" yaml:"kind"`
		Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	} `json:"model" yaml:"model"`
}

// ModelInfo is the body of GET /v1/model.
type ModelInfo struct {
	Kind        string   `json:"kind" yaml:"kind"`
	Scaler      string   `json:"scaler" yaml:"scaler"`
	Fingerprint string   `json:"fingerprint" yaml:"fingerprint"`
	Features    int      `json:"features" yaml:"features"`
	Columns     []string `json:"columns" yaml:"columns"`
	LoadedAt    string   `json:"loaded_at" yaml:"loaded_at"`
}

// BatchItem is one record's outcome in a batch answer.
type BatchItem struct {
	Index  int                 `json:"index"`
	Result *inference.Response `json:"result,omitempty"`
	Error  *struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	} `json:"error,omitempty"`
}

// BatchResult is the body of POST /predict/batch.
type BatchResult struct {
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// Predict scores one record.
func (c *Client) Predict(ctx context.Context, record any) (*inference.Response, error) {
	var resp inference.Response
	if err := c.do(ctx, http.MethodPost, "/predict", record, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PredictBatch scores records in one request.
func (c *Client) PredictBatch(ctx context.Context, records []any) (*BatchResult, error) {
	var resp BatchResult
	if err := c.do(ctx, http.MethodPost, "/predict/batch", map[string]any{"records": records}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks the server.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModelInfo describes the loaded artifacts.
func (c *Client) ModelInfo(ctx context.Context) (*ModelInfo, error) {
	var resp ModelInfo
	if err := c.do(ctx, http.MethodGet, "/v1/model", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends one request, retrying transport failures and retryable statuses
// with exponential backoff. Any other API error is returned at once.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	op := func() (struct{}, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			apiErr := decodeAPIError(resp)
			if apiErr.Retryable() {
				return struct{}{}, apiErr
			}
			return struct{}{}, backoff.Permanent(apiErr)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return struct{}{}, nil
	}

	tries := c.MaxTries
	if tries == 0 {
		tries = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	_, err := backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
	return err
}

func decodeAPIError(resp *http.Response) *APIError {
	bodyBytes, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(bodyBytes))}

	var payload struct {
		Error     string   `json:"error"`
		Code      string   `json:"code"`
		Missing   []string `json:"missing"`
		RequestID string   `json:"request_id"`
	}
	if json.Unmarshal(bodyBytes, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Code = payload.Code
		apiErr.Missing = payload.Missing
		apiErr.RequestID = payload.RequestID
	}
	return apiErr
}

// IsRateLimited reports whether err is a 429 answer.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
