package telemetry

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Prediction outcomes by label or error kind",
		},
		[]string{"outcome"},
	)
	confidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "prediction_confidence",
		Help:    "Confidence of successful predictions",
		Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
	})
	modelInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_info",
			Help: "Loaded model artifacts; always 1",
		},
		[]string{"kind", "fingerprint"},
	)

	initOnce sync.Once
)

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(httpReqs, httpDur, predictions, confidence, modelInfo)
	})
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// ObservePrediction records a successful prediction.
func ObservePrediction(label int, conf float64) {
	outcome := "no_disease"
	if label == 1 {
		outcome = "heart_disease"
	}
	predictions.WithLabelValues(outcome).Inc()
	confidence.Observe(conf)
}

// ObservePredictionError records a failed prediction by error kind.
func ObservePredictionError(kind string) {
	predictions.WithLabelValues("error_" + kind).Inc()
}

// SetModelInfo publishes which artifacts are being served.
func SetModelInfo(kind, fingerprint string) {
	modelInfo.Reset()
	modelInfo.WithLabelValues(kind, fingerprint).Set(1)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		// route pattern is only known after routing
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
