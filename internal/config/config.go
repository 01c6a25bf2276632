// Package config provides application configuration loading from environment variables and .env files.
// It uses viper for flexible configuration management with sensible defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/TimurManjosov/heartcheck/internal/artifact"
	"github.com/TimurManjosov/heartcheck/internal/validation"
)

// Config holds all application configuration loaded from environment variables or .env file.
// Configuration priority: environment variables > .env file > defaults.
type Config struct {
	AppEnv             string        // Application environment (dev, staging, prod)
	HTTPAddr           string        // HTTP server bind address (e.g., ":5000")
	MetricsAddr        string        // Metrics server bind address
	ModelPath          string        // Classifier artifact
	ScalerPath         string        // Scaler artifact
	ColumnsPath        string        // Feature schema artifact
	LogLevel           string        // zerolog level name
	LogFormat          string        // "json" or "console"
	LogFile            string        // Optional rotating log file
	RateLimitPerIP     int           // Prediction requests per minute per client IP
	RequestTimeout     time.Duration // Per-request deadline
	MaxBodyBytes       int64         // Request body cap
	MaxBatchSize       int           // Records per batch request
	CORSAllowedOrigins []string      // Origins allowed to call the API from a browser
	OTLPEndpoint       string        // OTLP/HTTP trace endpoint; empty disables tracing
}

// Load reads configuration from environment variables and .env file (if present).
// Environment variables take precedence over .env file values.
func Load() (*Config, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigFile(".env") // Optional; silently ignored if file doesn't exist
	_ = viperInstance.ReadInConfig()    // Ignore error - .env is optional
	viperInstance.AutomaticEnv()        // Read from environment variables

	setConfigDefaults(viperInstance)

	return &Config{
		AppEnv:             viperInstance.GetString("APP_ENV"),
		HTTPAddr:           viperInstance.GetString("APP_HTTP_ADDR"),
		MetricsAddr:        viperInstance.GetString("METRICS_ADDR"),
		ModelPath:          viperInstance.GetString("MODEL_PATH"),
		ScalerPath:         viperInstance.GetString("SCALER_PATH"),
		ColumnsPath:        viperInstance.GetString("COLUMNS_PATH"),
		LogLevel:           strings.ToLower(viperInstance.GetString("LOG_LEVEL")),
		LogFormat:          strings.ToLower(viperInstance.GetString("LOG_FORMAT")),
		LogFile:            viperInstance.GetString("LOG_FILE"),
		RateLimitPerIP:     viperInstance.GetInt("RATE_LIMIT_PER_IP"),
		RequestTimeout:     viperInstance.GetDuration("REQUEST_TIMEOUT"),
		MaxBodyBytes:       viperInstance.GetInt64("MAX_BODY_BYTES"),
		MaxBatchSize:       viperInstance.GetInt("MAX_BATCH_SIZE"),
		CORSAllowedOrigins: splitList(viperInstance.GetString("CORS_ALLOWED_ORIGINS")),
		OTLPEndpoint:       viperInstance.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

// setConfigDefaults sets default values for all configuration options.
// These defaults are suitable for local development but should be overridden in production.
func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_HTTP_ADDR", ":5000")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("MODEL_PATH", "artifacts/knn_heart.json")
	v.SetDefault("SCALER_PATH", "artifacts/scaler.json")
	v.SetDefault("COLUMNS_PATH", "artifacts/columns.json")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("RATE_LIMIT_PER_IP", 120)
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("MAX_BODY_BYTES", validation.MaxBodySize)
	v.SetDefault("MAX_BATCH_SIZE", validation.MaxBatchSize)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ArtifactPaths returns the artifact locations.
func (c *Config) ArtifactPaths() artifact.Paths {
	return artifact.Paths{Model: c.ModelPath, Scaler: c.ScalerPath, Columns: c.ColumnsPath}
}

// IsProduction reports whether stricter production rules apply.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

// ValidationError represents a configuration validation error with details about what failed.
type ValidationError struct {
	Field   string // Name of the configuration field
	Message string // Human-readable error message
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed [%s]: %s", e.Field, e.Message)
}

// Validate checks that the configuration is suitable for serving.
//
// This performs stricter validation than Load() and is intended to be called
// at application startup to fail fast on misconfiguration.
//
// Validation Rules:
//   1. HTTPAddr and MetricsAddr must be non-empty
//   2. All three artifact paths must be non-empty
//   3. LogLevel must be a zerolog level, LogFormat json or console
//   4. Rate limit, timeout, body cap and batch cap must be positive
//
// Production Safety:
//   In production (AppEnv prod/production), CORS must name explicit origins.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return ValidationError{Field: "APP_HTTP_ADDR", Message: "HTTP server address cannot be empty"}
	}
	if c.MetricsAddr == "" {
		return ValidationError{Field: "METRICS_ADDR", Message: "metrics server address cannot be empty"}
	}

	for field, path := range map[string]string{
		"MODEL_PATH":   c.ModelPath,
		"SCALER_PATH":  c.ScalerPath,
		"COLUMNS_PATH": c.ColumnsPath,
	} {
		if strings.TrimSpace(path) == "" {
			return ValidationError{Field: field, Message: "artifact path cannot be empty"}
		}
	}

	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return ValidationError{Field: "LOG_LEVEL", Message: fmt.Sprintf("unknown log level '%s'", c.LogLevel)}
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return ValidationError{Field: "LOG_FORMAT", Message: fmt.Sprintf("must be 'json' or 'console', got '%s'", c.LogFormat)}
	}

	if c.RateLimitPerIP <= 0 {
		return ValidationError{Field: "RATE_LIMIT_PER_IP", Message: "must be positive"}
	}
	if c.RequestTimeout <= 0 {
		return ValidationError{Field: "REQUEST_TIMEOUT", Message: "must be positive"}
	}
	if c.MaxBodyBytes <= 0 {
		return ValidationError{Field: "MAX_BODY_BYTES", Message: "must be positive"}
	}
	if c.MaxBatchSize <= 0 {
		return ValidationError{Field: "MAX_BATCH_SIZE", Message: "must be positive"}
	}

	if c.IsProduction() {
		for _, origin := range c.CORSAllowedOrigins {
			if origin == "*" {
				return ValidationError{
					Field:   "CORS_ALLOWED_ORIGINS",
					Message: "wildcard origin is not allowed in production",
				}
			}
		}
	}

	return nil
}
