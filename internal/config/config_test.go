package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

var envKeys = []string{
	"APP_ENV", "APP_HTTP_ADDR", "METRICS_ADDR", "MODEL_PATH", "SCALER_PATH",
	"COLUMNS_PATH", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "RATE_LIMIT_PER_IP", "REQUEST_TIMEOUT",
	"MAX_BODY_BYTES", "MAX_BATCH_SIZE", "CORS_ALLOWED_ORIGINS", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		os.Unsetenv(key)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != "dev" {
		t.Errorf("Expected AppEnv='dev', got '%s'", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":5000" {
		t.Errorf("Expected HTTPAddr=':5000', got '%s'", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("Expected MetricsAddr=':9090', got '%s'", cfg.MetricsAddr)
	}
	if cfg.ModelPath != "artifacts/knn_heart.json" {
		t.Errorf("Expected default model path, got '%s'", cfg.ModelPath)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Errorf("Expected info/json logging, got %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.RateLimitPerIP != 120 {
		t.Errorf("Expected RateLimitPerIP=120, got %d", cfg.RateLimitPerIP)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("Expected RequestTimeout=5s, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("Expected MaxBodyBytes=1MiB, got %d", cfg.MaxBodyBytes)
	}
	if cfg.MaxBatchSize != 100 {
		t.Errorf("Expected MaxBatchSize=100, got %d", cfg.MaxBatchSize)
	}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, []string{"*"}) {
		t.Errorf("Expected CORS ['*'], got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.OTLPEndpoint != "" {
		t.Errorf("Expected tracing disabled by default, got '%s'", cfg.OTLPEndpoint)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	os.Setenv("APP_ENV", "staging")
	os.Setenv("APP_HTTP_ADDR", ":9999")
	os.Setenv("MODEL_PATH", "/models/knn.json")
	os.Setenv("LOG_LEVEL", "DEBUG")
	os.Setenv("RATE_LIMIT_PER_IP", "30")
	os.Setenv("REQUEST_TIMEOUT", "250ms")
	os.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	defer clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != "staging" {
		t.Errorf("Expected AppEnv='staging', got '%s'", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("Expected HTTPAddr=':9999', got '%s'", cfg.HTTPAddr)
	}
	if cfg.ArtifactPaths().Model != "/models/knn.json" {
		t.Errorf("Expected model path override, got '%s'", cfg.ArtifactPaths().Model)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel lowercased to 'debug', got '%s'", cfg.LogLevel)
	}
	if cfg.RateLimitPerIP != 30 {
		t.Errorf("Expected RateLimitPerIP=30, got %d", cfg.RateLimitPerIP)
	}
	if cfg.RequestTimeout != 250*time.Millisecond {
		t.Errorf("Expected RequestTimeout=250ms, got %v", cfg.RequestTimeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowedOrigins, want) {
		t.Errorf("Expected %v, got %v", want, cfg.CORSAllowedOrigins)
	}
}

func validConfig() *Config {
	return &Config{
		AppEnv:             "dev",
		HTTPAddr:           ":5000",
		MetricsAddr:        ":9090",
		ModelPath:          "m.json",
		ScalerPath:         "s.json",
		ColumnsPath:        "c.json",
		LogLevel:           "info",
		LogFormat:          "json",
		RateLimitPerIP:     10,
		RequestTimeout:     time.Second,
		MaxBodyBytes:       1024,
		MaxBatchSize:       10,
		CORSAllowedOrigins: []string{"*"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty http addr", func(c *Config) { c.HTTPAddr = "" }, "APP_HTTP_ADDR"},
		{"empty metrics addr", func(c *Config) { c.MetricsAddr = "" }, "METRICS_ADDR"},
		{"empty model path", func(c *Config) { c.ModelPath = " " }, "MODEL_PATH"},
		{"empty columns path", func(c *Config) { c.ColumnsPath = "" }, "COLUMNS_PATH"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"zero rate limit", func(c *Config) { c.RateLimitPerIP = 0 }, "RATE_LIMIT_PER_IP"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"zero body cap", func(c *Config) { c.MaxBodyBytes = 0 }, "MAX_BODY_BYTES"},
		{"zero batch cap", func(c *Config) { c.MaxBatchSize = 0 }, "MAX_BATCH_SIZE"},
		{"wildcard cors in prod", func(c *Config) { c.AppEnv = "prod" }, "CORS_ALLOWED_ORIGINS"},
		{"explicit cors in prod", func(c *Config) {
			c.AppEnv = "production"
			c.CORSAllowedOrigins = []string{"https://ui.example"}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("Expected ValidationError, got %T: %v", err, err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Expected field '%s', got '%s'", tt.wantField, verr.Field)
			}
		})
	}
}
