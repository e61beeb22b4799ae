// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/codedocx/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, config file and history ledger in use",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), viper.ConfigFileUsed(), viper.GetString(config.KeyLedgerPath))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer, configFile, ledgerPath string) {
	fmt.Fprintf(w, "codedocx %s\n", version)
	if configFile == "" {
		configFile = "(none, using defaults)"
	}
	if ledgerPath == "" {
		ledgerPath = "(disabled)"
	}
	fmt.Fprintf(w, "config: %s\nledger: %s\n", configFile, ledgerPath)
}
