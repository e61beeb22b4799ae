// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the codedocx configuration from viper (config file,
// CODEDOCX_* environment variables and bound flags) and validates it.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/codedocx/pkg/types"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// CODEDOCX_FORMAT_FONT_SIZE or CODEDOCX_FONTS_API_KEY.
const EnvPrefix = "CODEDOCX"

// Keys used in the config file and bound to flags.
const (
	KeyFontSize      = "format.font_size"
	KeyFontFamily    = "format.font_family"
	KeyBold          = "format.bold"
	KeyItalic        = "format.italic"
	KeyFailurePolicy = "batch.failure_policy"
	KeyStepDelay     = "batch.step_delay"
	KeyFontsAPIKey   = "fonts.api_key"
	KeyFontsEndpoint = "fonts.endpoint"
	KeyFontsTimeout  = "fonts.timeout"
	KeyFontsRetries  = "fonts.max_retries"
	KeyUserAgent     = "fonts.user_agent"
	KeyLedgerPath    = "ledger.path"
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper, home string) {
	v.SetDefault(KeyFontSize, types.DefaultFontSize)
	v.SetDefault(KeyFailurePolicy, string(types.FailStop))
	v.SetDefault(KeyStepDelay, time.Duration(0))
	v.SetDefault(KeyFontsTimeout, 10*time.Second)
	v.SetDefault(KeyFontsRetries, 3)
	v.SetDefault(KeyUserAgent, "codedocx/dev")
	if home != "" {
		v.SetDefault(KeyLedgerPath, filepath.Join(home, ".local", "share", "codedocx", "ledger.db"))
	}
}

// BindEnv enables CODEDOCX_* overrides for every key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		Format: types.EntryFormat{
			FontSize:   v.GetInt(KeyFontSize),
			FontFamily: v.GetString(KeyFontFamily),
			Bold:       v.GetBool(KeyBold),
			Italic:     v.GetBool(KeyItalic),
		},
		Batch: types.BatchConfig{
			FailurePolicy: types.FailurePolicy(v.GetString(KeyFailurePolicy)),
			StepDelay:     v.GetDuration(KeyStepDelay),
		},
		Fonts: types.FontsConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   v.GetDuration(KeyFontsTimeout),
				UserAgent: v.GetString(KeyUserAgent),
			},
			APIKey:     v.GetString(KeyFontsAPIKey),
			Endpoint:   v.GetString(KeyFontsEndpoint),
			MaxRetries: v.GetInt(KeyFontsRetries),
		},
		Ledger: types.LedgerConfig{
			Path: v.GetString(KeyLedgerPath),
		},
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct constraints and reports every
// violation in one error.
func Validate(cfg types.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
