package simulator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultURL is the target used when no --url is given.
const DefaultURL = "http://localhost:5001"

// Config tunes every traffic pattern.
type Config struct {
	BaseURL      string           `yaml:"baseURL"`
	Timeout      time.Duration    `yaml:"timeout"`
	// ErrorTimeout bounds /simulate-error calls, which may stall on purpose.
	ErrorTimeout time.Duration    `yaml:"errorTimeout"`
	Normal       NormalConfig     `yaml:"normal"`
	Stress       StressConfig     `yaml:"stress"`
	Errors       ErrorsConfig     `yaml:"errors"`
	Mixed        MixedConfig      `yaml:"mixed"`
	Continuous   ContinuousConfig `yaml:"continuous"`
}

type NormalConfig struct {
	Duration          time.Duration `yaml:"duration"`
	RequestsPerMinute int           `yaml:"requestsPerMinute"`
}

type StressConfig struct {
	Duration          time.Duration `yaml:"duration"`
	RequestsPerSecond int           `yaml:"requestsPerSecond"`
}

type ErrorsConfig struct {
	Duration time.Duration `yaml:"duration"`
}

type MixedConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// ContinuousConfig sets the length of each mixed round in continuous mode.
type ContinuousConfig struct {
	Round time.Duration `yaml:"round"`
}

// DefaultConfig returns the stock pattern settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultURL,
		Timeout:      5 * time.Second,
		ErrorTimeout: 15 * time.Second,
		Normal:       NormalConfig{Duration: 60 * time.Second, RequestsPerMinute: 30},
		Stress:       StressConfig{Duration: 30 * time.Second, RequestsPerSecond: 10},
		Errors:       ErrorsConfig{Duration: 30 * time.Second},
		Mixed:        MixedConfig{Duration: 120 * time.Second},
		Continuous:   ContinuousConfig{Round: 60 * time.Second},
	}
}

// LoadConfig overlays the YAML file at path on the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read simulator config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse simulator config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings that would make a pattern spin or never end.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("baseURL must not be empty")
	case c.Timeout <= 0 || c.ErrorTimeout <= 0:
		return fmt.Errorf("timeout and errorTimeout must be positive")
	case c.Normal.RequestsPerMinute <= 0:
		return fmt.Errorf("normal.requestsPerMinute must be positive")
	case c.Stress.RequestsPerSecond <= 0:
		return fmt.Errorf("stress.requestsPerSecond must be positive")
	case c.Continuous.Round <= 0:
		return fmt.Errorf("continuous.round must be positive")
	}
	return nil
}
