// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document accumulates question, code and output entries and
// serializes them to a DOCX file, one entry per page.
package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/codedocx/internal/filelock"
	"github.com/pdiddy/codedocx/pkg/types"
)

// ErrValidation is returned in interactive mode when an entry has an empty
// question or code field.
var ErrValidation = errors.New("question and code fields cannot be empty")

// Builder accumulates document entries in question order. It is not safe
// for concurrent use.
type Builder struct {
	format  types.EntryFormat
	entries []types.DocumentEntry
}

// New returns an empty Builder. format supplies the font settings for
// entries that carry none of their own.
func New(format types.EntryFormat) *Builder {
	if format.FontSize <= 0 {
		format.FontSize = types.DefaultFontSize
	}
	return &Builder{format: format}
}

// Format returns the default entry format.
func (b *Builder) Format() types.EntryFormat {
	return b.format
}

// AppendEntry validates e, assigns it the next question index and appends
// it. Question, code and output are trimmed first. When the question or code
// is empty nothing is appended and the question counter does not advance:
// interactive callers get ErrValidation, batch callers (suppressValidation)
// get a zero index and a nil error.
func (b *Builder) AppendEntry(e types.DocumentEntry, suppressValidation bool) (int, error) {
	e.Question = strings.TrimSpace(e.Question)
	e.Code = strings.TrimSpace(e.Code)
	e.Output = strings.TrimSpace(e.Output)

	if e.Question == "" || e.Code == "" {
		if suppressValidation {
			return 0, nil
		}
		return 0, ErrValidation
	}

	if e.EntryFormat == (types.EntryFormat{}) {
		e.EntryFormat = b.format
	}
	if e.FontSize <= 0 {
		e.FontSize = b.format.FontSize
	}

	e.QuestionIndex = len(b.entries) + 1
	b.entries = append(b.entries, e)
	return e.QuestionIndex, nil
}

// Entries returns a copy of the appended entries in question order.
func (b *Builder) Entries() []types.DocumentEntry {
	out := make([]types.DocumentEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the number of appended entries.
func (b *Builder) Len() int {
	return len(b.entries)
}

// WriteDOCX writes the accumulated entries as a DOCX package to w.
func (b *Builder) WriteDOCX(w io.Writer) error {
	paras := make([]paragraph, 0, len(b.entries)*8)
	for _, e := range b.entries {
		paras = append(paras, entryParagraphs(e)...)
	}
	return writePackage(w, paras)
}

// Save writes the document to path. The file is replaced atomically, so a
// failed save leaves any previous document intact.
func (b *Builder) Save(path string) error {
	if err := filelock.LockAndWrite(path, b.WriteDOCX); err != nil {
		return fmt.Errorf("saving document %s: %w", path, err)
	}
	return nil
}

// entryParagraphs lays out one entry: question line, code label and code,
// a spacer, output label and output, then a page break.
func entryParagraphs(e types.DocumentEntry) []paragraph {
	label := func(text string) run {
		return run{text: text, bold: true, size: e.FontSize, font: e.FontFamily}
	}
	body := func(text string) run {
		return run{text: text, bold: e.Bold, italic: e.Italic, size: e.FontSize, font: e.FontFamily}
	}

	paras := []paragraph{
		{label(fmt.Sprintf("Q%d. ", e.QuestionIndex)), label(e.Question)},
		{label("Code--")},
		{body(e.Code)},
		{},
		{label("Output--")},
	}
	if e.Output != "" {
		paras = append(paras, paragraph{body(e.Output)})
	} else {
		paras = append(paras, paragraph{})
	}
	return append(paras, paragraph{{pageBreak: true}})
}
