// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the codedocx CLI, which turns a
// directory of numbered source files into a DOCX of question, code and
// output entries.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/codedocx/internal/config"
	"github.com/pdiddy/codedocx/internal/secrets"
	"github.com/pdiddy/codedocx/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds credentials loaded from the secrets directory at startup.
	loadedSecrets = secrets.Secrets{}

	// logger is the diagnostic logger; it discards output unless --verbose is set.
	logger = zap.NewNop()
)

// rootCmd is the base command for the codedocx CLI.
var rootCmd = &cobra.Command{
	Use:   "codedocx",
	Short: "Convert numbered source files into a question and answer DOCX",
	Long: `codedocx reads a directory of numbered source files (1.py, 2.c, 3.html, ...),
takes the leading comment of each file as the question and the rest as the code,
and writes one formatted entry per file into a DOCX document.

Files are taken in sequence from 1; the first missing number ends the run.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			logger = l
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./codedocx.yaml or ~/.config/codedocx/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of secret files (google-fonts-api-key)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "write diagnostic logs to stderr")
}

func initConfig() {
	home, _ := os.UserHomeDir()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("codedocx")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "codedocx"))
		}
	}

	config.SetDefaults(viper.GetViper(), home)
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig validates the merged configuration and fills the font API key
// from the secrets directory when neither config nor environment set it.
func loadConfig() (types.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return types.Config{}, err
	}
	cfg.Fonts.APIKey = loadedSecrets.Resolve(secrets.FontsAPIKey, cfg.Fonts.APIKey)
	if cfg.Fonts.UserAgent == "" || cfg.Fonts.UserAgent == "codedocx/dev" {
		cfg.Fonts.UserAgent = "codedocx/" + version
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
