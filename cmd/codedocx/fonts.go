// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/codedocx/internal/fonts"
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List font families available for entries",
	Long: `Fonts lists font families for --font-family. With a Google Fonts API key
(config fonts.api_key, CODEDOCX_FONTS_API_KEY, or .secrets/google-fonts-api-key)
the list is fetched from the webfonts API; otherwise a built-in list is shown.`,
	RunE: runFonts,
}

func init() {
	fontsCmd.Flags().Bool("json", false, "output the list as JSON")
	rootCmd.AddCommand(fontsCmd)
}

func runFonts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res := fonts.NewCatalog(cfg.Fonts, logger).Lookup(cmd.Context())
	w := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Source   fonts.Source `json:"source"`
			Families []string     `json:"families"`
		}{res.Source, res.Families})
	}

	if res.FallbackReason != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s; showing built-in fonts\n", res.FallbackReason)
	}
	for _, f := range res.Families {
		fmt.Fprintln(w, f)
	}
	fmt.Fprintf(w, "\n%d fonts (%s)\n", len(res.Families), res.Source)
	return nil
}
