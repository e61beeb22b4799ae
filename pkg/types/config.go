// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// FontsConfig holds settings for the font catalog lookup.
type FontsConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is an optional Google Fonts API key. Without it the static
	// catalog is used.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Endpoint overrides the webfonts API URL.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`

	// MaxRetries is the number of retries on HTTP 429 or 503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries" validate:"min=0,max=10"`
}

// BatchConfig holds settings for batch import runs.
type BatchConfig struct {
	// FailurePolicy selects fail-stop (default) or skip-and-continue.
	FailurePolicy FailurePolicy `json:"failure_policy" yaml:"failure_policy" mapstructure:"failure_policy" validate:"oneof=fail-stop skip"`

	// StepDelay is the pause between steps, mirroring the redraw interval of
	// an interactive host. Zero disables it.
	StepDelay time.Duration `json:"step_delay" yaml:"step_delay" mapstructure:"step_delay" validate:"min=0"`
}

// LedgerConfig holds settings for the run history database.
type LedgerConfig struct {
	// Path is the SQLite database file. Empty disables run history.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all settings for the codedocx CLI.
type Config struct {
	Format EntryFormat  `json:"format" yaml:"format" mapstructure:"format"`
	Batch  BatchConfig  `json:"batch" yaml:"batch" mapstructure:"batch"`
	Fonts  FontsConfig  `json:"fonts" yaml:"fonts" mapstructure:"fonts"`
	Ledger LedgerConfig `json:"ledger" yaml:"ledger" mapstructure:"ledger"`
}
