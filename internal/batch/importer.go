// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives ingestion of a directory of numbered source files
// (1.py, 2.c, 3.html, ...) into a document, one entry per file.
//
// An Importer is stepped by its caller, one file per Next call, so a host
// can redraw progress between steps. Steps exposes the same walk as a lazy
// iterator.
package batch

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/codedocx/internal/extract"
	"github.com/pdiddy/codedocx/pkg/types"
)

var (
	// ErrNoEligibleFiles is returned by Start when the directory holds no
	// .c, .cpp, .py or .html files.
	ErrNoEligibleFiles = errors.New("no supported files (.c, .cpp, .py, .html) found")

	// ErrAlreadyStarted is returned by Start on a job that has left Idle.
	ErrAlreadyStarted = errors.New("batch import already started")

	// ErrInvalidEncoding marks a file whose content is not valid UTF-8.
	ErrInvalidEncoding = errors.New("content is not valid UTF-8")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FileAccessError reports a selected file that could not be read or decoded.
type FileAccessError struct {
	File string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("could not process file %s: %v", e.File, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// Appender receives document entries. suppressValidation selects batch mode,
// in which an entry with an empty question or code is dropped without error
// and a zero index is returned.
type Appender interface {
	AppendEntry(e types.DocumentEntry, suppressValidation bool) (int, error)
}

// Importer walks a numbered file sequence in one directory. It is not safe
// for concurrent use.
type Importer struct {
	doc     Appender
	job     types.ImportJob
	present map[string]bool
	summary types.RunSummary

	policy types.FailurePolicy
	format types.EntryFormat
	logger *zap.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithFailurePolicy selects what happens when a file cannot be read.
// The default is types.FailStop.
func WithFailurePolicy(p types.FailurePolicy) Option {
	return func(im *Importer) { im.policy = p }
}

// WithFormat sets the font settings stamped on every appended entry.
func WithFormat(f types.EntryFormat) Option {
	return func(im *Importer) { im.format = f }
}

// WithLogger sets the diagnostic logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// New lists dir once and returns an Idle importer appending into doc.
// Files whose name ends in an eligible extension are counted as the progress
// denominator. The listing also decides which candidates exist: a file
// removed after New is reported as a read failure when its turn comes.
func New(doc Appender, dir string, opts ...Option) (*Importer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	im := &Importer{
		doc:     doc,
		present: make(map[string]bool, len(entries)),
		policy:  types.FailStop,
		logger:  zap.NewNop(),
		job: types.ImportJob{
			Directory:          dir,
			NextSequenceNumber: 1,
			State:              types.JobIdle,
		},
	}
	for _, opt := range opts {
		opt(im)
	}

	for _, e := range entries {
		im.present[e.Name()] = true
		if _, ok := types.FileTypeOf(e.Name()); ok {
			im.job.TotalEligibleFiles++
		}
	}
	im.summary.State = im.job.State

	im.logger.Debug("batch import prepared",
		zap.String("dir", dir),
		zap.Int("eligible", im.job.TotalEligibleFiles))
	return im, nil
}

// Start moves an Idle job to Running. It fails with ErrNoEligibleFiles when
// the directory held nothing to import, leaving the job Idle.
func (im *Importer) Start() error {
	if im.job.State != types.JobIdle {
		return ErrAlreadyStarted
	}
	if im.job.TotalEligibleFiles == 0 {
		return fmt.Errorf("%s: %w", im.job.Directory, ErrNoEligibleFiles)
	}
	im.setState(types.JobRunning)
	return nil
}

// Job returns a snapshot of the job state.
func (im *Importer) Job() types.ImportJob {
	return im.job
}

// Summary returns the counts and warnings accumulated so far.
func (im *Importer) Summary() types.RunSummary {
	s := im.summary
	s.Warnings = append([]string(nil), im.summary.Warnings...)
	return s
}

// Next processes the file for the current sequence number. The boolean is
// false once the job is no longer Running (never started, completed or
// aborted); the outcome is then the zero value.
func (im *Importer) Next() (types.StepOutcome, bool) {
	if im.job.State != types.JobRunning {
		return types.StepOutcome{}, false
	}

	n := im.job.NextSequenceNumber
	name, ok := im.candidate(n)
	if !ok {
		return im.complete(n), true
	}

	im.logger.Debug("importing file", zap.Int("sequence", n), zap.String("file", name))

	res, err := im.read(name)
	if err != nil {
		return im.fail(n, &FileAccessError{File: name, Err: err}), true
	}

	idx, err := im.doc.AppendEntry(types.DocumentEntry{
		Question:    res.Comment,
		Code:        res.Body,
		Source:      name,
		EntryFormat: im.format,
	}, true)
	if err != nil {
		return im.fail(n, fmt.Errorf("appending %s: %w", name, err)), true
	}

	out := types.StepOutcome{
		Kind:          types.StepAppended,
		Sequence:      n,
		File:          name,
		QuestionIndex: idx,
		Progress:      types.Progress{Current: n, Total: im.job.TotalEligibleFiles},
		Status:        fmt.Sprintf("Processing file %d of %d", n, im.job.TotalEligibleFiles),
	}
	out.Percent = out.Progress.Percent()

	if idx == 0 {
		out.Kind = types.StepGap
		im.summary.Gaps++
		im.warn(name, gapReason(res))
	} else {
		im.summary.Appended++
	}

	im.job.NextSequenceNumber++
	return out, true
}

// Steps returns an iterator over the remaining steps of a started job. The
// sequence ends after the completion or abort step and cannot be restarted;
// breaking out early leaves the job Running so a later call resumes it.
func (im *Importer) Steps() iter.Seq[types.StepOutcome] {
	return func(yield func(types.StepOutcome) bool) {
		for {
			out, ok := im.Next()
			if !ok || !yield(out) {
				return
			}
		}
	}
}

// candidate returns the first of {n}.c, {n}.cpp, {n}.py, {n}.html present in
// the directory listing.
func (im *Importer) candidate(n int) (string, bool) {
	for _, ft := range types.EligibleFileTypes {
		name := strconv.Itoa(n) + ft.Ext()
		if im.present[name] {
			return name, true
		}
	}
	return "", false
}

func (im *Importer) read(name string) (types.ExtractionResult, error) {
	data, err := os.ReadFile(filepath.Join(im.job.Directory, name))
	if err != nil {
		return types.ExtractionResult{}, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return types.ExtractionResult{}, ErrInvalidEncoding
	}
	return extract.ExtractFile(name, string(data)), nil
}

func (im *Importer) complete(n int) types.StepOutcome {
	im.setState(types.JobCompleted)
	im.logger.Info("batch import completed",
		zap.String("dir", im.job.Directory),
		zap.Int("appended", im.summary.Appended),
		zap.Int("gaps", im.summary.Gaps),
		zap.Int("failed", im.summary.Failed))

	return types.StepOutcome{
		Kind:     types.StepCompleted,
		Sequence: n,
		Progress: types.Progress{Current: n - 1, Total: im.job.TotalEligibleFiles},
		Percent:  100,
		Status:   "Batch import completed",
	}
}

// fail records a failed step and applies the failure policy.
func (im *Importer) fail(n int, err error) types.StepOutcome {
	im.summary.Failed++

	out := types.StepOutcome{
		Kind:     types.StepFailed,
		Sequence: n,
		Progress: types.Progress{Current: n - 1, Total: im.job.TotalEligibleFiles},
		Status:   err.Error(),
		Err:      err,
	}
	var fae *FileAccessError
	if errors.As(err, &fae) {
		out.File = fae.File
	}
	out.Percent = out.Progress.Percent()

	im.logger.Warn("batch import step failed",
		zap.Int("sequence", n),
		zap.String("policy", string(im.policy)),
		zap.Error(err))

	if im.policy == types.SkipAndContinue {
		im.summary.Warnings = append(im.summary.Warnings, err.Error())
		im.job.NextSequenceNumber++
		return out
	}

	im.setState(types.JobAborted)
	return out
}

func (im *Importer) warn(file, reason string) {
	msg := fmt.Sprintf("%s: %s, no entry appended", file, reason)
	im.summary.Warnings = append(im.summary.Warnings, msg)
	im.logger.Warn("batch import gap", zap.String("file", file), zap.String("reason", reason))
}

func (im *Importer) setState(s types.JobState) {
	im.job.State = s
	im.summary.State = s
}

func gapReason(res types.ExtractionResult) string {
	switch {
	case res.Comment == "" && res.Body == "":
		return "empty file"
	case res.Comment == "":
		return "no leading comment"
	default:
		return "empty code"
	}
}
