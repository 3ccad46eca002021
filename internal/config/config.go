// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// ModelPath points at the trained model artifact. Empty runs the
	// service on the fallback rule set.
	ModelPath string `koanf:"model_path"`

	// CORSAllowedOrigins is a comma separated list of origins allowed to
	// call the API from a browser; "*" allows any origin.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	// MaxBodyBytes caps the size of a prediction request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes" validate:"gt=0"`

	// ReadTimeoutMS and WriteTimeoutMS bound HTTP reads and writes.
	ReadTimeoutMS  int `koanf:"read_timeout_ms" validate:"gt=0"`
	WriteTimeoutMS int `koanf:"write_timeout_ms" validate:"gt=0"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		ModelPath:          "",
		CORSAllowedOrigins: "*",
		MaxBodyBytes:       1 << 20,
		ReadTimeoutMS:      10_000,
		WriteTimeoutMS:     10_000,
	}
}

// AllowedOrigins splits CORSAllowedOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
