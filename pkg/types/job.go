// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// JobState is the lifecycle state of a batch import job.
type JobState string

const (
	JobIdle      JobState = "idle"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobAborted   JobState = "aborted"
)

// Terminal reports whether no further steps can be taken in state s.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobAborted
}

// FailurePolicy decides what a batch job does when a selected file cannot
// be read or decoded.
type FailurePolicy string

const (
	// FailStop aborts the remainder of the batch on the first failure.
	FailStop FailurePolicy = "fail-stop"
	// SkipAndContinue records the failure, skips the sequence number and
	// keeps going.
	SkipAndContinue FailurePolicy = "skip"
)

// ImportJob is the state of one sweep over a numbered file sequence.
type ImportJob struct {
	Directory          string   `json:"directory" yaml:"directory"`
	TotalEligibleFiles int      `json:"total_eligible_files" yaml:"total_eligible_files"`
	NextSequenceNumber int      `json:"next_sequence_number" yaml:"next_sequence_number"`
	State              JobState `json:"state" yaml:"state"`
}

// Progress reports how far a batch job has advanced. Total is fixed for the
// life of a job; Current is the last sequence number stepped.
type Progress struct {
	Current int `json:"current" yaml:"current"`
	Total   int `json:"total" yaml:"total"`
}

// Percent returns Current/Total as a percentage. A zero Total yields 0.
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total) * 100
}

// StepKind classifies the outcome of a single import step.
type StepKind string

const (
	// StepAppended means the file produced a document entry.
	StepAppended StepKind = "appended"
	// StepGap means the file was read but its question or code was empty,
	// so no entry was appended.
	StepGap StepKind = "gap"
	// StepFailed means the file could not be read or decoded.
	StepFailed StepKind = "failed"
	// StepCompleted means the numbered sequence is exhausted.
	StepCompleted StepKind = "completed"
)

// StepOutcome is the result of one import step.
type StepOutcome struct {
	Kind          StepKind `json:"kind" yaml:"kind"`
	Sequence      int      `json:"sequence" yaml:"sequence"`
	File          string   `json:"file,omitempty" yaml:"file,omitempty"`
	QuestionIndex int      `json:"question_index,omitempty" yaml:"question_index,omitempty"`
	Progress      Progress `json:"progress" yaml:"progress"`

	// Percent is the progress percentage reported for this step. It is 100
	// for the completion step regardless of Progress.
	Percent float64 `json:"percent" yaml:"percent"`
	Status  string  `json:"status" yaml:"status"`
	Err     error   `json:"-" yaml:"-"`
}

// RunSummary holds counts and warnings from a batch import run.
type RunSummary struct {
	Appended int      `json:"appended" yaml:"appended"`
	Gaps     int      `json:"gaps" yaml:"gaps"`
	Failed   int      `json:"failed" yaml:"failed"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	State    JobState `json:"state" yaml:"state"`
}

// Total returns the number of files stepped.
func (s RunSummary) Total() int {
	return s.Appended + s.Gaps + s.Failed
}

// HasFailures reports whether any file failed to process.
func (s RunSummary) HasFailures() bool {
	return s.Failed > 0
}
