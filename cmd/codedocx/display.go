// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/pdiddy/codedocx/pkg/types"
)

const barWidth = 20

// progressPrinter writes one line per import step with a progress bar.
// Colors are used only when w is a terminal.
type progressPrinter struct {
	w io.Writer

	ok, warn, fail, done *color.Color
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	p := &progressPrinter{
		w:    w,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
		done: color.New(color.FgCyan, color.Bold),
	}
	useColor := isTerminal(w) && !color.NoColor
	for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.done} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Step prints a single step outcome.
func (p *progressPrinter) Step(out types.StepOutcome) {
	bar := renderBar(out.Percent)
	switch out.Kind {
	case types.StepAppended:
		fmt.Fprintf(p.w, "%s %s %s -> Q%d  %s\n", bar, p.ok.Sprint("added  "), out.File, out.QuestionIndex, out.Status)
	case types.StepGap:
		fmt.Fprintf(p.w, "%s %s %s (no entry)  %s\n", bar, p.warn.Sprint("gap    "), out.File, out.Status)
	case types.StepFailed:
		fmt.Fprintf(p.w, "%s %s %s\n", bar, p.fail.Sprint("failed "), out.Status)
	case types.StepCompleted:
		fmt.Fprintf(p.w, "%s %s %s\n", bar, p.done.Sprint("done   "), out.Status)
	}
}

// Summary prints end-of-run counts and any warnings.
func (p *progressPrinter) Summary(s types.RunSummary, output string) {
	fmt.Fprintf(p.w, "\nBatch summary: %d added, %d gaps, %d failed (total: %d, state: %s)\n",
		s.Appended, s.Gaps, s.Failed, s.Total(), s.State)
	if len(s.Warnings) > 0 {
		fmt.Fprintln(p.w, p.warn.Sprint("Warnings:"))
		for _, w := range s.Warnings {
			fmt.Fprintf(p.w, "  - %s\n", w)
		}
	}
	if output != "" {
		fmt.Fprintf(p.w, "DOCX file saved at %s\n", output)
	}
}

// renderBar draws "[=====     ] 50%" for a percentage in [0, 100].
func renderBar(percent float64) string {
	pct := int(percent)
	pct = max(0, min(pct, 100))
	filled := pct * barWidth / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("=", filled), strings.Repeat(" ", barWidth-filled), pct)
}
