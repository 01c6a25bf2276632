// Package api exposes the prediction pipeline over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/TimurManjosov/heartcheck/internal/inference"
	"github.com/TimurManjosov/heartcheck/internal/telemetry"
	"github.com/TimurManjosov/heartcheck/internal/validation"
)

// Options tunes the HTTP surface.
type Options struct {
	RateLimitPerIP     int           // prediction requests per minute per client IP
	RequestTimeout     time.Duration // per-request deadline
	MaxBodyBytes       int64         // request body cap
	MaxBatchSize       int           // records per batch request
	CORSAllowedOrigins []string
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		RateLimitPerIP:     120,
		RequestTimeout:     5 * time.Second,
		MaxBodyBytes:       validation.MaxBodySize,
		MaxBatchSize:       validation.MaxBatchSize,
		CORSAllowedOrigins: []string{"*"},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RateLimitPerIP <= 0 {
		o.RateLimitPerIP = d.RateLimitPerIP
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = d.RequestTimeout
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = d.MaxBodyBytes
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = d.MaxBatchSize
	}
	if len(o.CORSAllowedOrigins) == 0 {
		o.CORSAllowedOrigins = d.CORSAllowedOrigins
	}
	return o
}

// Server holds request-independent dependencies. Nothing in it changes after
// NewServer returns.
type Server struct {
	pipeline *inference.Pipeline
	log      zerolog.Logger
	opts     Options
}

func NewServer(p *inference.Pipeline, log zerolog.Logger, opts Options) *Server {
	return &Server{pipeline: p, log: log, opts: opts.withDefaults()}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	}))
	r.Use(telemetry.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Prediction-ID", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError(w, r, "No route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError(w, r, r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/v1/model", s.handleModelInfo)

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(s.opts.RateLimitPerIP, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(RateLimitedError),
		))
		r.Post("/predict", s.handlePredict)
		r.Post("/predict/batch", s.handlePredictBatch)
	})

	return r
}
