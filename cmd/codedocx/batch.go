// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/codedocx/internal/batch"
	"github.com/pdiddy/codedocx/internal/config"
	"github.com/pdiddy/codedocx/internal/document"
	"github.com/pdiddy/codedocx/internal/fonts"
	"github.com/pdiddy/codedocx/internal/ledger"
	"github.com/pdiddy/codedocx/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <directory>",
	Short: "Import numbered source files from a directory into a DOCX",
	Long: `Batch imports 1.c/1.cpp/1.py/1.html, then 2.*, and so on from the given
directory. For each number the first existing extension in the order
c, cpp, py, html is used. The leading comment of the file becomes the
question and the remainder becomes the code. The run ends at the first
missing number.

By default the first unreadable file stops the run; --skip-failures records
the failure and continues with the next number. Files with an empty question
or code produce no entry and are listed as warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchCmd,
}

func init() {
	f := batchCmd.Flags()
	f.StringP("output", "o", "codedocx.docx", "path of the DOCX file to write")
	f.String("manifest", "", "also write a YAML manifest of entries and warnings to this path")
	f.Bool("skip-failures", false, "skip unreadable files instead of stopping the run")
	f.Int("font-size", types.DefaultFontSize, fmt.Sprintf("font size in points (common: %s)", joinInts(types.FontSizeChoices)))
	f.String("font-family", "", "font family for entries (see: codedocx fonts)")
	f.Bool("bold", false, "bold code and output text")
	f.Bool("italic", false, "italic code and output text")
	f.Duration("step-delay", 0, "pause between files")
	f.Bool("no-history", false, "do not record this run in the history ledger")

	viper.BindPFlag(config.KeyFontSize, f.Lookup("font-size"))
	viper.BindPFlag(config.KeyFontFamily, f.Lookup("font-family"))
	viper.BindPFlag(config.KeyBold, f.Lookup("bold"))
	viper.BindPFlag(config.KeyItalic, f.Lookup("italic"))
	viper.BindPFlag(config.KeyStepDelay, f.Lookup("step-delay"))

	rootCmd.AddCommand(batchCmd)
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if skip, _ := cmd.Flags().GetBool("skip-failures"); skip {
		cfg.Batch.FailurePolicy = types.SkipAndContinue
	}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		cfg.Ledger.Path = ""
	}

	output, _ := cmd.Flags().GetString("output")
	manifest, _ := cmd.Flags().GetString("manifest")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	_, err = runBatch(ctx, batchRequest{
		Dir:      args[0],
		Output:   output,
		Manifest: manifest,
		Config:   cfg,
	}, cmd.OutOrStdout(), logger)
	return err
}

// batchRequest holds the inputs of one batch import.
type batchRequest struct {
	Dir      string
	Output   string
	Manifest string
	Config   types.Config
}

// runBatch imports req.Dir into a new document, saves it to req.Output and
// records the run in the ledger when one is configured. The document is
// saved even when the run aborts so entries processed before the failure
// are kept.
func runBatch(ctx context.Context, req batchRequest, w io.Writer, log *zap.Logger) (types.RunSummary, error) {
	doc := document.New(req.Config.Format)
	im, err := batch.New(doc, req.Dir,
		batch.WithFailurePolicy(req.Config.Batch.FailurePolicy),
		batch.WithFormat(doc.Format()),
		batch.WithLogger(log),
	)
	if err != nil {
		return types.RunSummary{}, err
	}
	if err := im.Start(); err != nil {
		if errors.Is(err, batch.ErrNoEligibleFiles) {
			fmt.Fprintln(w, "No supported files (.c, .cpp, .py, .html) found in the selected directory.")
		}
		return im.Summary(), err
	}

	var (
		store *ledger.Store
		runID string
	)
	if req.Config.Ledger.Path != "" {
		store, err = ledger.Open(req.Config.Ledger.Path)
		if err != nil {
			return im.Summary(), err
		}
		defer store.Close()
		runID, err = store.BeginRun(ctx, req.Dir, req.Output, req.Config.Batch.FailurePolicy)
		if err != nil {
			return im.Summary(), err
		}
	}

	checkFontFamily(ctx, req.Config, w, log)

	pr := newProgressPrinter(w)
	var lastErr error
	for out := range im.Steps() {
		pr.Step(out)
		if out.Err != nil {
			lastErr = out.Err
		}
		if store != nil {
			if err := store.RecordStep(ctx, runID, out); err != nil {
				log.Warn("recording step failed", zap.Error(err))
			}
		}
		if im.Job().State.Terminal() {
			continue
		}
		if err := pause(ctx, req.Config.Batch.StepDelay); err != nil {
			break
		}
	}

	summary := im.Summary()

	if err := doc.Save(req.Output); err != nil {
		return summary, err
	}
	if req.Manifest != "" {
		if err := document.SaveManifest(req.Manifest, doc.Manifest(req.Output, &summary)); err != nil {
			return summary, err
		}
	}
	if store != nil {
		// The run context may already be cancelled; the final record must still land.
		if err := store.FinishRun(context.WithoutCancel(ctx), runID, summary); err != nil {
			log.Warn("recording run summary failed", zap.Error(err))
		}
	}

	pr.Summary(summary, req.Output)

	switch {
	case summary.State == types.JobAborted:
		return summary, fmt.Errorf("batch import aborted: %w", lastErr)
	case summary.State == types.JobRunning && ctx.Err() != nil:
		return summary, fmt.Errorf("batch import interrupted: %w", ctx.Err())
	}
	return summary, nil
}

// checkFontFamily warns when the configured family is not in the font
// catalog. Word substitutes unknown families, so the run still proceeds.
func checkFontFamily(ctx context.Context, cfg types.Config, w io.Writer, log *zap.Logger) {
	family := cfg.Format.FontFamily
	if family == "" {
		return
	}
	res := fonts.NewCatalog(cfg.Fonts, log).Lookup(ctx)
	if !res.Contains(family) {
		fmt.Fprintf(w, "warning: font family %q is not in the %s font list; the viewer may substitute it\n", family, res.Source)
	}
}

// pause waits for d or until ctx is done. It returns ctx.Err() when the wait
// was cut short and also checks ctx when d is zero.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ", ")
}
