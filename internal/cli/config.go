package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is used when neither a flag, the environment nor the
// config file names a server.
const DefaultBaseURL = "http://localhost:5000"

// Config represents the CLI configuration
type Config struct {
	BaseURL string `yaml:"base_url"`
	Format  string `yaml:"format,omitempty"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".heartctl", "config.yaml"), nil
}

// LoadConfig loads the configuration from file
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveBaseURL picks the server address.
// Priority: command flag > HEARTCTL_BASE_URL > config file > DefaultBaseURL
func ResolveBaseURL(flag string) (string, error) {
	if flag != "" {
		return normalizeURL(flag)
	}
	if env := os.Getenv("HEARTCTL_BASE_URL"); env != "" {
		return normalizeURL(env)
	}

	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	if cfg.BaseURL != "" {
		return normalizeURL(cfg.BaseURL)
	}
	return DefaultBaseURL, nil
}

func normalizeURL(u string) (string, error) {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return "", fmt.Errorf("base url must start with http:// or https://, got %q", u)
	}
	return u, nil
}

// SetBaseURL stores u as the default server.
func SetBaseURL(u string) error {
	u, err := normalizeURL(u)
	if err != nil {
		return err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	cfg.BaseURL = u
	return SaveConfig(cfg)
}
