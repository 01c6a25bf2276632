package inference

const (
	TextDetected    = "Heart Disease Detected"
	TextNotDetected = "No Heart Disease Detected"
)

// Probability is the per-class breakdown in a Response.
type Probability struct {
	NoDisease    float64 `json:"no_disease" yaml:"no_disease"`
	HeartDisease float64 `json:"heart_disease" yaml:"heart_disease"`
}

// Response is the external prediction contract.
type Response struct {
	Prediction     int         `json:"prediction" yaml:"prediction"`
	PredictionText string      `json:"prediction_text" yaml:"prediction_text"`
	Probability    Probability `json:"probability" yaml:"probability"`
	Confidence     float64     `json:"confidence" yaml:"confidence"`
}

// Shape converts a Result into a Response.
func Shape(r Result) Response {
	text := TextNotDetected
	if r.Label == 1 {
		text = TextDetected
	}
	confidence := r.Probabilities[0]
	if r.Probabilities[1] > confidence {
		confidence = r.Probabilities[1]
	}
	return Response{
		Prediction:     r.Label,
		PredictionText: text,
		Probability: Probability{
			NoDisease:    r.Probabilities[0],
			HeartDisease: r.Probabilities[1],
		},
		Confidence: confidence,
	}
}
