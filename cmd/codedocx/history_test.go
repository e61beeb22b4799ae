// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/codedocx/internal/ledger"
	"github.com/pdiddy/codedocx/pkg/types"
)

func TestPrintRuns_Empty(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, nil)
	assert.Equal(t, "No runs recorded.\n", buf.String())
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, []ledger.Run{{
		ID:        "run-1",
		Directory: "/tmp/in",
		StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary:   types.RunSummary{Appended: 3, Gaps: 1, State: types.JobCompleted},
	}})

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "/tmp/in")
	assert.Contains(t, out, "1 runs")
}

func TestPrintRunSteps(t *testing.T) {
	run := ledger.Run{
		ID:        "run-2",
		Directory: "/tmp/in",
		Output:    "out.docx",
		Policy:    types.FailStop,
		Summary: types.RunSummary{
			State:    types.JobAborted,
			Warnings: []string{"3.py: no leading comment, no entry appended"},
		},
	}
	steps := []ledger.Step{
		{Sequence: 1, Kind: types.StepAppended, File: "1.py", Status: "Processing file 1 of 3"},
		{Sequence: 2, Kind: types.StepFailed, File: "2.c", Status: "could not process file 2.c: boom", Error: "could not process file 2.c: boom"},
		{Sequence: 3, Kind: types.StepFailed, File: "3.c", Status: "failed", Error: "permission denied"},
	}

	var buf bytes.Buffer
	printRunSteps(&buf, run, steps)
	out := buf.String()

	assert.Contains(t, out, "Run run-2 (aborted, policy fail-stop)")
	assert.Contains(t, out, "Processing file 1 of 3")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("boom")), "error already in status is not repeated")
	assert.Contains(t, out, "(permission denied)")
	assert.Contains(t, out, "warning: 3.py: no leading comment")
}
