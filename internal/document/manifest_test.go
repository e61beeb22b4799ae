// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/codedocx/pkg/types"
)

func TestSaveManifest(t *testing.T) {
	b := New(types.EntryFormat{FontSize: 16})
	_, err := b.AppendEntry(types.DocumentEntry{Question: "q1", Code: "c1", Source: "1.py"}, true)
	require.NoError(t, err)

	summary := &types.RunSummary{
		Appended: 1,
		Gaps:     1,
		Warnings: []string{"2.py: empty code, no entry appended"},
		State:    types.JobCompleted,
	}

	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, SaveManifest(path, b.Manifest("answers.docx", summary)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	m, err := LoadManifest(f)
	require.NoError(t, err)

	assert.Equal(t, "answers.docx", m.Document)
	assert.False(t, m.GeneratedAt.IsZero())
	require.Len(t, m.Entries, 1)
	assert.Equal(t, 1, m.Entries[0].QuestionIndex)
	assert.Equal(t, "1.py", m.Entries[0].Source)
	assert.Equal(t, 16, m.Entries[0].FontSize)
	require.NotNil(t, m.Summary)
	assert.Equal(t, types.JobCompleted, m.Summary.State)
	assert.Equal(t, summary.Warnings, m.Summary.Warnings)
}
