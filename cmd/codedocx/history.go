// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/codedocx/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List past batch runs or show the steps of one run",
	Long: `History reads the run ledger (config ledger.path). Without arguments it lists
recent runs, newest first. With a run ID it shows every step of that run,
including gaps and failures.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Ledger.Path == "" {
		return fmt.Errorf("run history is disabled: set ledger.path")
	}

	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if len(args) == 1 {
		run, err := store.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		steps, err := store.Steps(cmd.Context(), run.ID)
		if err != nil {
			return err
		}
		printRunSteps(w, run, steps)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	printRuns(w, runs)
	return nil
}

func printRuns(w io.Writer, runs []ledger.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-19s  %-9s  %5s  %4s  %6s  %s\n",
		"Run", "Started", "State", "Added", "Gaps", "Failed", "Directory")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-19s  %-9s  %5d  %4d  %6d  %s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Summary.State,
			r.Summary.Appended, r.Summary.Gaps, r.Summary.Failed, r.Directory)
	}
	fmt.Fprintf(w, "\n%d runs\n", len(runs))
}

func printRunSteps(w io.Writer, run ledger.Run, steps []ledger.Step) {
	fmt.Fprintf(w, "Run %s (%s, policy %s)\n", run.ID, run.Summary.State, run.Policy)
	fmt.Fprintf(w, "Directory: %s\nOutput:    %s\n\n", run.Directory, run.Output)
	for _, st := range steps {
		line := fmt.Sprintf("%4d  %-9s  %-10s  %s", st.Sequence, st.Kind, st.File, st.Status)
		if st.Error != "" && !strings.Contains(st.Status, st.Error) {
			line += "  (" + st.Error + ")"
		}
		fmt.Fprintln(w, line)
	}
	for _, warn := range run.Summary.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}
