package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TimurManjosov/heartcheck/internal/api"
	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/config"
	"github.com/TimurManjosov/heartcheck/internal/inference"
	"github.com/TimurManjosov/heartcheck/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	logger, logCloser := telemetry.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	defer logCloser.Close()
	log.Logger = logger

	ctx := context.Background()
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.OTLPEndpoint, cfg.AppEnv)
	if err != nil {
		logger.Fatal().Err(err).Msg("tracing")
	}
	telemetry.Init()

	// artifacts are loaded once; the server never listens without them
	paths := cfg.ArtifactPaths()
	st, err := artifact.Load(ctx, paths)
	if err != nil {
		var le *artifact.LoadError
		ev := logger.Fatal().Err(err)
		if errors.As(err, &le) {
			ev = ev.Str("artifact", le.Artifact).Str("path", le.Path)
		}
		ev.Msg("load artifacts")
	}
	pipeline, err := inference.NewPipeline(st)
	if err != nil {
		logger.Fatal().Err(err).Msg("artifacts do not match the feature encoding")
	}

	info := st.Info()
	telemetry.SetModelInfo(info.ModelKind, info.Fingerprint)
	logger.Info().
		Str("model", info.ModelKind).
		Str("scaler", info.ScalerKind).
		Str("fingerprint", info.Fingerprint).
		Int("features", info.Features).
		Msg("artifacts loaded")

	srvAPI := api.NewServer(pipeline, logger, api.Options{
		RateLimitPerIP:     cfg.RateLimitPerIP,
		RequestTimeout:     cfg.RequestTimeout,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		MaxBatchSize:       cfg.MaxBatchSize,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srvAPI.Router(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: cfg.RequestTimeout + time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 3 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShut)
	_ = metricsSrv.Shutdown(ctxShut)
	if err := shutdownTracing(ctxShut); err != nil {
		logger.Warn().Err(err).Msg("tracing shutdown")
	}
	logger.Info().Msg("stopped")
}
