package inference

import (
	"fmt"
	"math"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/features"
)

// probabilityTolerance bounds how far p0+p1 may drift from 1.
const probabilityTolerance = 1e-6

// Result is one classifier decision.
type Result struct {
	Label         int
	Probabilities [2]float64 // [no disease, heart disease]
}

// Scale checks that v has the width the scaler was fit on and applies it.
func Scale(v features.Vector, s artifact.Scaler) (features.Vector, error) {
	if len(v) != s.NumFeatures() {
		return nil, fmt.Errorf("%w: vector has %d values, scaler expects %d",
			ErrSchemaMismatch, len(v), s.NumFeatures())
	}
	out, err := s.Transform(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return out, nil
}

// Predict runs the classifier and verifies that its label agrees with its
// probabilities.
func Predict(v features.Vector, c artifact.Classifier) (Result, error) {
	label, err := c.Classify(v)
	if err != nil {
		return Result{}, fmt.Errorf("classify: %w", err)
	}
	probs, err := c.ClassProbabilities(v)
	if err != nil {
		return Result{}, fmt.Errorf("class probabilities: %w", err)
	}

	for _, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return Result{}, fmt.Errorf("%w: probability %v out of range", ErrPredictorInconsistency, p)
		}
	}
	if sum := probs[0] + probs[1]; math.Abs(sum-1) > probabilityTolerance {
		return Result{}, fmt.Errorf("%w: probabilities sum to %v", ErrPredictorInconsistency, sum)
	}
	if label != artifact.Argmax(probs) {
		return Result{}, fmt.Errorf("%w: label %d, probabilities %v", ErrPredictorInconsistency, label, probs)
	}

	return Result{Label: label, Probabilities: probs}, nil
}
