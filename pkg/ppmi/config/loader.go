package config

import "fmt"

// Overrides carries values set on the command line. Nil fields leave the
// file (or default) value untouched.
type Overrides struct {
	MinDF     *int
	Window    *int
	Smoothing *float64
	Workers   *int
	LogLevel  *string
}

// Loader combines a config file with command line overrides
type Loader struct {
	Path      string
	Overrides Overrides
}

// Load reads the file (if any), applies overrides and validates the result
func (l *Loader) Load() (Config, error) {
	cfg := Default()

	if l.Path != "" {
		loaded, err := Load(l.Path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	o := l.Overrides
	if o.MinDF != nil {
		cfg.MinDF = *o.MinDF
	}
	if o.Window != nil {
		cfg.Window = *o.Window
	}
	if o.Smoothing != nil {
		cfg.Smoothing = *o.Smoothing
	}
	if o.Workers != nil {
		cfg.Workers = *o.Workers
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
