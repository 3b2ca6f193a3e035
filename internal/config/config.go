package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/information-sharing-networks/followcheck"
)

// Config is loaded from the environment; command line flags override individual fields after loading.
type Config struct {
	Environment  string        `env:"ENVIRONMENT,default=dev"`
	LogLevel     string        `env:"LOG_LEVEL,default=info"`
	APIBaseURL   string        `env:"API_BASE_URL,default=http://localhost:8000/api"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT,default=0s"`
	UserEmail    string        `env:"TEST_USER_EMAIL,default=testuser1@example.com"`
	UserPassword string        `env:"TEST_USER_PASSWORD,default=password123"`
}

func NewConfig() (*Config, error) {
	var cfg Config

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the config and normalises the base url (trailing slashes are removed so paths can be appended).
// Call it again after applying flag overrides.
func (cfg *Config) Validate() error {
	if !followcheck.ValidEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, perf, staging, prod", cfg.Environment)
	}

	if cfg.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative, got %v", cfg.HTTPTimeout)
	}

	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}

	u, err := url.ParseRequestURI(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %s", cfg.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL does not include a valid scheme (http or https): %s", cfg.APIBaseURL)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("API_BASE_URL does not include a host: %s", cfg.APIBaseURL)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.UserEmail == "" || cfg.UserPassword == "" {
		return fmt.Errorf("TEST_USER_EMAIL and TEST_USER_PASSWORD cannot be empty")
	}

	return nil
}
