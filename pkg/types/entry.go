// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// FileType identifies a source file kind eligible for batch ingestion.
type FileType string

const (
	FileC    FileType = "c"
	FileCPP  FileType = "cpp"
	FilePy   FileType = "py"
	FileHTML FileType = "html"
)

// EligibleFileTypes lists the ingestible file types in probe priority order.
var EligibleFileTypes = []FileType{FileC, FileCPP, FilePy, FileHTML}

// Ext returns the file extension for t, including the leading dot.
func (t FileType) Ext() string {
	return "." + string(t)
}

// IsMarkup reports whether files of type t carry <!-- --> block comments
// rather than line comments.
func (t FileType) IsMarkup() bool {
	return t == FileHTML
}

// FileTypeOf returns the eligible file type for name based on its suffix.
// The second return value is false when the name has no eligible extension.
func FileTypeOf(name string) (FileType, bool) {
	for _, t := range EligibleFileTypes {
		if strings.HasSuffix(name, t.Ext()) {
			return t, true
		}
	}
	return "", false
}

// ExtractionResult is the split of one source file into its leading
// comment (the question) and the remaining code body.
type ExtractionResult struct {
	Comment string `json:"comment" yaml:"comment"`
	Body    string `json:"body" yaml:"body"`
}

// EntryFormat holds the font settings applied to a document entry.
type EntryFormat struct {
	// FontSize is the point size used for labels, code and output (default 12).
	FontSize int `json:"font_size" yaml:"font_size" mapstructure:"font_size" validate:"min=6,max=72"`

	// FontFamily is the typeface name; empty leaves the document default.
	FontFamily string `json:"font_family,omitempty" yaml:"font_family,omitempty" mapstructure:"font_family"`

	// Bold applies bold to code and output runs. Labels are always bold.
	Bold bool `json:"bold" yaml:"bold" mapstructure:"bold"`

	// Italic applies italics to code and output runs.
	Italic bool `json:"italic" yaml:"italic" mapstructure:"italic"`
}

// DefaultFontSize is the point size used when no size is configured.
const DefaultFontSize = 12

// FontSizeChoices lists the sizes offered to users picking a font size.
var FontSizeChoices = []int{10, 12, 14, 16, 18, 20}

// DocumentEntry is one question, code and output unit in the output document.
type DocumentEntry struct {
	// QuestionIndex is assigned by the document builder when the entry is
	// appended. It starts at 1 and is never reused.
	QuestionIndex int `json:"question_index" yaml:"question_index"`

	Question string `json:"question" yaml:"question"`
	Code     string `json:"code" yaml:"code"`
	Output   string `json:"output" yaml:"output"`

	// Source is the input file the entry came from, empty for manual entries.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	EntryFormat `yaml:",inline"`
}
