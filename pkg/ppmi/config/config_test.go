package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fit.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoadFull(t *testing.T) {
	path := writeConfig(t, `
min_df: 5
window: 4
smoothing: 0.75
workers: 8
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Config{MinDF: 5, Window: 4, Smoothing: 0.75, Workers: 8, LogLevel: "debug"}
	if cfg != want {
		t.Errorf("Load = %+v, want %+v", cfg, want)
	}
	if cfg.Level() != logrus.DebugLevel {
		t.Errorf("Level = %v, want debug", cfg.Level())
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "window: 7\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Window != 7 {
		t.Errorf("Window = %d, want 7", cfg.Window)
	}
	if cfg.MinDF != Default().MinDF || cfg.Smoothing != Default().Smoothing {
		t.Errorf("Missing keys should keep defaults, got %+v", cfg)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "window: [not, a, number\n")

	if _, err := Load(path); err == nil {
		t.Error("Should error on malformed YAML")
	}
}

func TestLoadNonExistent(t *testing.T) {
	if _, err := Load("/nonexistent/fit.yaml"); err == nil {
		t.Error("Should error on nonexistent file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"zero min_df", func(c *Config) { c.MinDF = 0 }, false},
		{"negative min_df", func(c *Config) { c.MinDF = -3 }, false},
		{"zero window", func(c *Config) { c.Window = 0 }, false},
		{"negative window", func(c *Config) { c.Window = -1 }, true},
		{"zero smoothing", func(c *Config) { c.Smoothing = 0 }, false},
		{"negative smoothing", func(c *Config) { c.Smoothing = -0.5 }, true},
		{"nan smoothing", func(c *Config) { c.Smoothing = math.NaN() }, true},
		{"inf smoothing", func(c *Config) { c.Smoothing = math.Inf(1) }, true},
		{"negative workers", func(c *Config) { c.Workers = -2 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"empty log level", func(c *Config) { c.LogLevel = "" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				if !errors.Is(err, internalerr.ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestLevelFallback(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = ""

	if cfg.Level() != logrus.InfoLevel {
		t.Errorf("Empty level should fall back to info, got %v", cfg.Level())
	}
}
