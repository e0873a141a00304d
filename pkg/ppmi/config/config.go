package config

import (
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
)

// Config represents the fit configuration file
type Config struct {
	MinDF     int     `yaml:"min_df"`
	Window    int     `yaml:"window"`
	Smoothing float64 `yaml:"smoothing"`
	Workers   int     `yaml:"workers"`
	LogLevel  string  `yaml:"log_level"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		MinDF:     1,
		Window:    2,
		Smoothing: 1.0,
		Workers:   1,
		LogLevel:  "info",
	}
}

// Load reads a YAML config file. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the fit pipeline cannot work with.
// MinDF <= 0 is allowed and disables document-frequency filtering.
func (c Config) Validate() error {
	if c.Window < 0 {
		return fmt.Errorf("window must be >= 0, got %d: %w", c.Window, internalerr.ErrInvalidConfig)
	}
	if c.Smoothing < 0 || math.IsNaN(c.Smoothing) || math.IsInf(c.Smoothing, 0) {
		return fmt.Errorf("smoothing must be a finite value >= 0, got %v: %w", c.Smoothing, internalerr.ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d: %w", c.Workers, internalerr.ErrInvalidConfig)
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %v: %w", err, internalerr.ErrInvalidConfig)
		}
	}
	return nil
}

// Level returns the configured log level, info when unset
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
