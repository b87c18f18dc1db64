// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads enrichment settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kelseyhightower/envconfig"

	"github.com/bartekus/apitags/internal/apispec"
)

const (
	DefaultSource = "api/ansceranya/api-1.0.22.json"
	DefaultOutput = "api/ansceranya/v1/api.json"
)

// Config describes one enrichment run. Env variables fill it first; CLI
// flags override individual fields afterwards.
type Config struct {
	Source      string `envconfig:"API_SPEC_SOURCE" default:"api/ansceranya/api-1.0.22.json"`
	Output      string `envconfig:"API_OUTPUT_PATH" default:"api/ansceranya/v1/api.json"`
	Format      string `envconfig:"API_SPEC_FORMAT" default:"auto"`
	FallbackTag string `envconfig:"API_FALLBACK_TAG" default:"untagged"`
	Validate    bool   `envconfig:"API_VALIDATE" default:"false"`
	DryRun      bool   `envconfig:"API_DRY_RUN" default:"false"`
	LogLevel    string `envconfig:"API_LOG_LEVEL" default:"info"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	return &cfg, nil
}

// Check validates field values. It is not named Validate because that is
// a config field.
func (c *Config) Check() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required),
		validation.Field(&c.Output, validation.Required, validation.By(func(value any) error {
			if filepath.Clean(value.(string)) == filepath.Clean(c.Source) {
				return validation.NewError("apitags.output_equals_source", "must differ from the source path")
			}
			return nil
		})),
		validation.Field(&c.Format, validation.By(func(value any) error {
			if _, err := apispec.ParseFormat(value.(string)); err != nil {
				return validation.NewError("apitags.format_unknown", err.Error())
			}
			return nil
		})),
		validation.Field(&c.LogLevel, validation.By(func(value any) error {
			return validation.In("debug", "info", "warn", "warning", "error").Validate(strings.ToLower(value.(string)))
		})),
	)
}

// Resolve returns absolute source and output paths relative to dir.
func (c *Config) Resolve(dir string) (source, output string) {
	return absFrom(dir, c.Source), absFrom(dir, c.Output)
}

func absFrom(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

// EnrichOptions maps the config onto core options.
func (c *Config) EnrichOptions() apispec.Options {
	return apispec.Options{FallbackTag: strings.TrimSpace(c.FallbackTag)}
}

// SpecFormat returns the parsed format; call Check first.
func (c *Config) SpecFormat() apispec.Format {
	f, err := apispec.ParseFormat(c.Format)
	if err != nil {
		return apispec.FormatAuto
	}
	return f
}

// ParsedLogLevel returns the slog level for LogLevel.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
