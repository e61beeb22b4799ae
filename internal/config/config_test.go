// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/codedocx/pkg/types"
)

func newViper(home string) *viper.Viper {
	v := viper.New()
	SetDefaults(v, home)
	BindEnv(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper("/home/u"))
	require.NoError(t, err)

	assert.Equal(t, types.DefaultFontSize, cfg.Format.FontSize)
	assert.Equal(t, types.FailStop, cfg.Batch.FailurePolicy)
	assert.Equal(t, 10*time.Second, cfg.Fonts.Timeout)
	assert.Equal(t, 3, cfg.Fonts.MaxRetries)
	assert.Equal(t, filepath.Join("/home/u", ".local", "share", "codedocx", "ledger.db"), cfg.Ledger.Path)
	assert.Empty(t, cfg.Fonts.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codedocx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
format:
  font_size: 16
  font_family: Consolas
  bold: true
batch:
  failure_policy: skip
  step_delay: 100ms
fonts:
  api_key: from-file
  max_retries: 0
ledger:
  path: ""
`), 0o644))

	v := newViper("")
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Format.FontSize)
	assert.Equal(t, "Consolas", cfg.Format.FontFamily)
	assert.True(t, cfg.Format.Bold)
	assert.False(t, cfg.Format.Italic)
	assert.Equal(t, types.SkipAndContinue, cfg.Batch.FailurePolicy)
	assert.Equal(t, 100*time.Millisecond, cfg.Batch.StepDelay)
	assert.Equal(t, "from-file", cfg.Fonts.APIKey)
	assert.Equal(t, 0, cfg.Fonts.MaxRetries, "explicit zero disables retries")
	assert.Empty(t, cfg.Ledger.Path)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CODEDOCX_FONTS_API_KEY", "from-env")
	t.Setenv("CODEDOCX_FORMAT_FONT_SIZE", "20")

	cfg, err := Load(newViper(""))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Fonts.APIKey)
	assert.Equal(t, 20, cfg.Format.FontSize)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		want  string
	}{
		{"font size too small", KeyFontSize, 2, "FontSize"},
		{"font size too large", KeyFontSize, 200, "FontSize"},
		{"unknown policy", KeyFailurePolicy, "retry", "FailurePolicy"},
		{"bad endpoint", KeyFontsEndpoint, "not a url", "Endpoint"},
		{"negative delay", KeyStepDelay, -time.Second, "StepDelay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper("")
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
