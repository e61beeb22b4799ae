// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract splits a source file into its leading comment, which
// becomes the question text of a document entry, and the remaining code body.
package extract

import (
	"regexp"
	"strings"

	"github.com/pdiddy/codedocx/pkg/types"
)

var (
	// markupComment matches one <!-- --> block anchored at the very start of
	// the content. Non-greedy, so only the first block is taken.
	markupComment = regexp.MustCompile(`(?s)^<!--(.*?)-->`)

	// commentLine matches a line that opens with a recognized line-comment
	// prefix: #, //, /* or a * continuation of a block comment.
	commentLine = regexp.MustCompile(`^[ \t]*(#|//|/\*|\*)`)

	// commentPrefix matches the prefix removed from a comment line along
	// with at most one following space.
	commentPrefix = regexp.MustCompile(`^[ \t]*(#|//|/\*+|\*+) ?`)
)

// Extract splits content into its leading comment and the code that follows.
// When markup is true the comment is a single leading <!-- --> block;
// otherwise it is the run of comment lines at the top of the file.
// Body is always trimmed of surrounding whitespace. A file without a leading
// comment yields an empty Comment, never an error.
func Extract(content string, markup bool) types.ExtractionResult {
	if markup {
		return extractMarkup(content)
	}
	return extractLines(content)
}

// ExtractFile splits content using the comment style implied by the
// extension of name. Names without an eligible extension use line comments.
func ExtractFile(name, content string) types.ExtractionResult {
	t, _ := types.FileTypeOf(name)
	return Extract(content, t.IsMarkup())
}

func extractMarkup(content string) types.ExtractionResult {
	loc := markupComment.FindStringSubmatchIndex(content)
	if loc == nil {
		return types.ExtractionResult{Body: strings.TrimSpace(content)}
	}
	return types.ExtractionResult{
		Comment: strings.TrimSpace(content[loc[2]:loc[3]]),
		Body:    strings.TrimSpace(content[loc[1]:]),
	}
}

func extractLines(content string) types.ExtractionResult {
	var (
		consumed int
		kept     []string
	)

	for _, raw := range strings.SplitAfter(content, "\n") {
		line := strings.TrimRight(raw, "\r\n")

		// A blank line ends the run like any other non-comment line.
		if strings.TrimSpace(line) == "" || !commentLine.MatchString(line) {
			break
		}
		consumed += len(raw)
		kept = append(kept, stripCommentPrefix(line))
	}

	return types.ExtractionResult{
		Comment: strings.TrimSpace(strings.Join(kept, "\n")),
		Body:    strings.TrimSpace(content[consumed:]),
	}
}

// stripCommentPrefix removes the comment marker from a single line, plus a
// closing */ when the line ends a block comment.
func stripCommentPrefix(line string) string {
	line = strings.TrimRight(line, " \t")
	line = strings.TrimSuffix(line, "*/")
	return strings.TrimRight(commentPrefix.ReplaceAllString(line, ""), " \t")
}
