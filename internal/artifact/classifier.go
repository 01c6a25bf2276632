package artifact

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Classifier is a trained binary model. Classify and ClassProbabilities are
// two views of the same decision; callers may check one against the other.
type Classifier interface {
	Classify(v []float64) (int, error)
	ClassProbabilities(v []float64) ([2]float64, error)
	NumFeatures() int
}

// KNN is a k-nearest-neighbours classifier over a stored training set using
// the Euclidean metric.
type KNN struct {
	K       int         `json:"k"`
	Weights string      `json:"weights"` // "uniform" or "distance"
	Points  [][]float64 `json:"points"`
	Labels  []int       `json:"labels"`
}

func (m *KNN) NumFeatures() int {
	if len(m.Points) == 0 {
		return 0
	}
	return len(m.Points[0])
}

func (m *KNN) validate() error {
	if m.K <= 0 {
		return fmt.Errorf("knn: k must be positive, got %d", m.K)
	}
	if len(m.Points) == 0 {
		return fmt.Errorf("knn: no training points")
	}
	if len(m.Points) != len(m.Labels) {
		return fmt.Errorf("knn: %d points but %d labels", len(m.Points), len(m.Labels))
	}
	if m.K > len(m.Points) {
		return fmt.Errorf("knn: k=%d exceeds %d training points", m.K, len(m.Points))
	}
	width := len(m.Points[0])
	for i, p := range m.Points {
		if len(p) != width {
			return fmt.Errorf("knn: point %d has %d features, want %d", i, len(p), width)
		}
		if m.Labels[i] != 0 && m.Labels[i] != 1 {
			return fmt.Errorf("knn: label %d at row %d is not binary", m.Labels[i], i)
		}
	}
	switch m.Weights {
	case "", "uniform", "distance":
	default:
		return fmt.Errorf("knn: unsupported weights %q", m.Weights)
	}
	return nil
}

type neighbour struct {
	dist  float64
	label int
}

func (m *KNN) nearest(v []float64) ([]neighbour, error) {
	if len(v) != m.NumFeatures() {
		return nil, fmt.Errorf("knn: got %d features, want %d", len(v), m.NumFeatures())
	}
	all := make([]neighbour, len(m.Points))
	for i, p := range m.Points {
		var sum float64
		for j := range p {
			d := p[j] - v[j]
			sum += d * d
		}
		all[i] = neighbour{dist: math.Sqrt(sum), label: m.Labels[i]}
	}
	// Stable so equidistant points keep training order.
	sort.SliceStable(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	return all[:m.K], nil
}

func (m *KNN) ClassProbabilities(v []float64) ([2]float64, error) {
	var probs [2]float64
	nn, err := m.nearest(v)
	if err != nil {
		return probs, err
	}

	if m.Weights == "distance" {
		exact := false
		for _, n := range nn {
			if n.dist == 0 {
				exact = true
				break
			}
		}
		for _, n := range nn {
			switch {
			case exact && n.dist == 0:
				probs[n.label]++
			case !exact:
				probs[n.label] += 1 / n.dist
			}
		}
	} else {
		for _, n := range nn {
			probs[n.label]++
		}
	}

	total := probs[0] + probs[1]
	probs[0] /= total
	probs[1] /= total
	return probs, nil
}

func (m *KNN) Classify(v []float64) (int, error) {
	probs, err := m.ClassProbabilities(v)
	if err != nil {
		return 0, err
	}
	return Argmax(probs), nil
}

// Logistic is a binary logistic-regression model.
type Logistic struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (m *Logistic) NumFeatures() int { return len(m.Coef) }

func (m *Logistic) decision(v []float64) (float64, error) {
	if len(v) != len(m.Coef) {
		return 0, fmt.Errorf("logistic: got %d features, want %d", len(v), len(m.Coef))
	}
	z := m.Intercept
	for i, w := range m.Coef {
		z += w * v[i]
	}
	return z, nil
}

func (m *Logistic) ClassProbabilities(v []float64) ([2]float64, error) {
	z, err := m.decision(v)
	if err != nil {
		return [2]float64{}, err
	}
	p1 := 1 / (1 + math.Exp(-z))
	return [2]float64{1 - p1, p1}, nil
}

func (m *Logistic) Classify(v []float64) (int, error) {
	z, err := m.decision(v)
	if err != nil {
		return 0, err
	}
	if z > 0 {
		return 1, nil
	}
	return 0, nil
}

// Argmax returns the index of the larger probability; ties go to class 0.
func Argmax(p [2]float64) int {
	if p[1] > p[0] {
		return 1
	}
	return 0
}

// ParseClassifier decodes a model artifact, dispatching on its "kind".
func ParseClassifier(data []byte) (Classifier, string, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, "", fmt.Errorf("decode model: %w", err)
	}

	switch head.Kind {
	case "knn":
		var m KNN
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, "", fmt.Errorf("decode knn model: %w", err)
		}
		if err := m.validate(); err != nil {
			return nil, "", err
		}
		return &m, "knn", nil
	case "logistic":
		var m Logistic
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, "", fmt.Errorf("decode logistic model: %w", err)
		}
		if len(m.Coef) == 0 {
			return nil, "", fmt.Errorf("logistic: no coefficients")
		}
		return &m, "logistic", nil
	default:
		return nil, "", fmt.Errorf("unsupported model kind: %q", head.Kind)
	}
}
