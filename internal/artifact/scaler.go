package artifact

import (
	"encoding/json"
	"fmt"
)

// Scaler applies the training-time feature transform.
type Scaler interface {
	// Transform returns a new vector; the input is never modified.
	Transform(v []float64) ([]float64, error)
	// NumFeatures is the input width the scaler was fit on.
	NumFeatures() int
}

// StandardScaler computes (x - mean) / scale per slot.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) NumFeatures() int { return len(s.Mean) }

func (s *StandardScaler) Transform(v []float64) ([]float64, error) {
	if len(v) != len(s.Mean) {
		return nil, fmt.Errorf("standard scaler: got %d features, want %d", len(v), len(s.Mean))
	}
	out := make([]float64, len(v))
	for i, x := range v {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (x - s.Mean[i]) / scale
	}
	return out, nil
}

// MinMaxScaler computes x*scale + min per slot.
type MinMaxScaler struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

func (s *MinMaxScaler) NumFeatures() int { return len(s.Min) }

func (s *MinMaxScaler) Transform(v []float64) ([]float64, error) {
	if len(v) != len(s.Min) {
		return nil, fmt.Errorf("minmax scaler: got %d features, want %d", len(v), len(s.Min))
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x*s.Scale[i] + s.Min[i]
	}
	return out, nil
}

// ParseScaler decodes a scaler artifact, dispatching on its "kind".
func ParseScaler(data []byte) (Scaler, string, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, "", fmt.Errorf("decode scaler: %w", err)
	}

	switch head.Kind {
	case "standard", "":
		var s StandardScaler
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, "", fmt.Errorf("decode standard scaler: %w", err)
		}
		if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
			return nil, "", fmt.Errorf("standard scaler: mean has %d values, scale has %d", len(s.Mean), len(s.Scale))
		}
		return &s, "standard", nil
	case "minmax":
		var s MinMaxScaler
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, "", fmt.Errorf("decode minmax scaler: %w", err)
		}
		if len(s.Min) == 0 || len(s.Min) != len(s.Scale) {
			return nil, "", fmt.Errorf("minmax scaler: min has %d values, scale has %d", len(s.Min), len(s.Scale))
		}
		return &s, "minmax", nil
	default:
		return nil, "", fmt.Errorf("unsupported scaler kind: %s", head.Kind)
	}
}
