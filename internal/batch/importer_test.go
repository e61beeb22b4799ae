// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/codedocx/internal/document"
	"github.com/pdiddy/codedocx/pkg/types"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

// startImporter creates files in a temp dir and returns a started importer
// appending into a fresh document.
func startImporter(t *testing.T, files map[string]string, opts ...Option) (*Importer, *document.Builder, string) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)

	doc := document.New(types.EntryFormat{})
	im, err := New(doc, dir, opts...)
	require.NoError(t, err)
	require.NoError(t, im.Start())
	return im, doc, dir
}

func collect(im *Importer) []types.StepOutcome {
	var outs []types.StepOutcome
	for out := range im.Steps() {
		outs = append(outs, out)
	}
	return outs
}

func kinds(outs []types.StepOutcome) []types.StepKind {
	ks := make([]types.StepKind, len(outs))
	for i, o := range outs {
		ks[i] = o.Kind
	}
	return ks
}

func TestNew_CountsEligibleFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"1.py":      "# q\nx",
		"2.cpp":     "// q\ny",
		"notes.txt": "ignored",
		"extra.c":   "counted but never stepped",
		"page.html": "<p></p>",
		"cache.pyc": "not eligible",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	im, err := New(document.New(types.EntryFormat{}), dir)
	require.NoError(t, err)

	job := im.Job()
	assert.Equal(t, 4, job.TotalEligibleFiles)
	assert.Equal(t, 1, job.NextSequenceNumber)
	assert.Equal(t, types.JobIdle, job.State)
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New(document.New(types.EntryFormat{}), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStart(t *testing.T) {
	t.Run("no eligible files", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"readme.md": "hi"})

		im, err := New(document.New(types.EntryFormat{}), dir)
		require.NoError(t, err)

		err = im.Start()
		require.ErrorIs(t, err, ErrNoEligibleFiles)
		assert.Equal(t, types.JobIdle, im.Job().State)

		_, ok := im.Next()
		assert.False(t, ok)
	})

	t.Run("twice", func(t *testing.T) {
		im, _, _ := startImporter(t, map[string]string{"1.py": "# q\nx"})
		assert.ErrorIs(t, im.Start(), ErrAlreadyStarted)
	})

	t.Run("next before start", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"1.py": "# q\nx"})
		im, err := New(document.New(types.EntryFormat{}), dir)
		require.NoError(t, err)

		_, ok := im.Next()
		assert.False(t, ok)
		assert.Equal(t, 1, im.Job().NextSequenceNumber)
	})
}

func TestImport_AllTypes(t *testing.T) {
	im, doc, _ := startImporter(t, map[string]string{
		"1.py":   "# hello\n# world\nprint(1)",
		"2.c":    "/* Sum two ints */\nint add(int a, int b) { return a + b; }\n",
		"3.html": "<!-- explain -->\n<p>hi</p>",
		"4.cpp":  "// Print\nstd::cout << 1;",
	})

	outs := collect(im)
	require.Len(t, outs, 5)
	assert.Equal(t, []types.StepKind{
		types.StepAppended, types.StepAppended, types.StepAppended, types.StepAppended, types.StepCompleted,
	}, kinds(outs))

	for i, out := range outs[:4] {
		assert.Equal(t, i+1, out.Sequence)
		assert.Equal(t, i+1, out.QuestionIndex)
		assert.InDelta(t, float64(i+1)*25, out.Percent, 0.001)
	}
	assert.Equal(t, "Processing file 2 of 4", outs[1].Status)
	assert.Equal(t, "2.c", outs[1].File)

	last := outs[4]
	assert.Equal(t, 100.0, last.Percent)
	assert.Equal(t, "Batch import completed", last.Status)

	entries := doc.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "hello\nworld", entries[0].Question)
	assert.Equal(t, "print(1)", entries[0].Code)
	assert.Equal(t, "Sum two ints", entries[1].Question)
	assert.Equal(t, "explain", entries[2].Question)
	assert.Equal(t, "<p>hi</p>", entries[2].Code)
	assert.Equal(t, "std::cout << 1;", entries[3].Code)
	assert.Empty(t, entries[3].Output)
	assert.Equal(t, "4.cpp", entries[3].Source)

	s := im.Summary()
	assert.Equal(t, types.JobCompleted, s.State)
	assert.Equal(t, 4, s.Appended)
	assert.Empty(t, s.Warnings)
	assert.False(t, s.HasFailures())
}

func TestImport_ExtensionPriority(t *testing.T) {
	im, doc, _ := startImporter(t, map[string]string{
		"1.html": "<!-- from html -->\n<p></p>",
		"1.py":   "# from py\nx",
		"1.c":    "// from c\nint x;",
	})

	outs := collect(im)
	require.Len(t, outs, 2)
	assert.Equal(t, "1.c", outs[0].File)
	assert.InDelta(t, 100.0/3, outs[0].Percent, 0.001)

	entries := doc.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "from c", entries[0].Question)
}

func TestImport_SequenceGapTerminates(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"1.py": "# one\nx = 1",
		"2.py": "# two\nx = 2",
	})
	// 4.py is a directory: reading it would fail, so a failed step would
	// show that the importer looked past the gap.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "4.py"), 0o755))

	doc := document.New(types.EntryFormat{})
	im, err := New(doc, dir)
	require.NoError(t, err)
	require.NoError(t, im.Start())

	outs := collect(im)
	assert.Equal(t, []types.StepKind{types.StepAppended, types.StepAppended, types.StepCompleted}, kinds(outs))
	assert.Equal(t, 2, doc.Len())
	assert.Equal(t, types.JobCompleted, im.Job().State)
	assert.Equal(t, 3, outs[2].Sequence)
	assert.Equal(t, types.Progress{Current: 2, Total: 3}, outs[2].Progress)
}

func TestImport_FailStop(t *testing.T) {
	im, doc, dir := startImporter(t, map[string]string{
		"1.py": "# one\nx = 1",
		"2.py": "# two\nx = 2",
		"3.py": "# three\nx = 3",
	})
	require.NoError(t, os.Remove(filepath.Join(dir, "2.py")))

	outs := collect(im)
	require.Equal(t, []types.StepKind{types.StepAppended, types.StepFailed}, kinds(outs))

	failed := outs[1]
	assert.Equal(t, "2.py", failed.File)
	assert.Contains(t, failed.Status, "could not process file 2.py")

	var fae *FileAccessError
	require.True(t, errors.As(failed.Err, &fae))
	assert.Equal(t, "2.py", fae.File)
	assert.ErrorIs(t, failed.Err, fs.ErrNotExist)

	assert.Equal(t, types.JobAborted, im.Job().State)
	assert.Equal(t, 2, im.Job().NextSequenceNumber)
	assert.Equal(t, 1, doc.Len())

	_, ok := im.Next()
	assert.False(t, ok, "aborted job must not step again")

	s := im.Summary()
	assert.Equal(t, 1, s.Failed)
	assert.True(t, s.HasFailures())
	assert.Equal(t, types.JobAborted, s.State)
}

func TestImport_InvalidEncoding(t *testing.T) {
	im, doc, _ := startImporter(t, map[string]string{
		"1.py": "# q\nx = '\xff\xfe'",
	})

	outs := collect(im)
	require.Len(t, outs, 1)
	assert.Equal(t, types.StepFailed, outs[0].Kind)
	assert.ErrorIs(t, outs[0].Err, ErrInvalidEncoding)
	assert.Zero(t, doc.Len())
}

func TestImport_ByteOrderMark(t *testing.T) {
	im, doc, _ := startImporter(t, map[string]string{
		"1.py": "\xEF\xBB\xBF# q\nprint(1)",
	})

	collect(im)
	require.Equal(t, 1, doc.Len())
	assert.Equal(t, "q", doc.Entries()[0].Question)
}

func TestImport_SkipAndContinue(t *testing.T) {
	im, doc, dir := startImporter(t, map[string]string{
		"1.py": "# one\nx = 1",
		"2.py": "# two\nx = 2",
		"3.py": "# three\nx = 3",
	}, WithFailurePolicy(types.SkipAndContinue))
	require.NoError(t, os.Remove(filepath.Join(dir, "2.py")))

	outs := collect(im)
	assert.Equal(t, []types.StepKind{
		types.StepAppended, types.StepFailed, types.StepAppended, types.StepCompleted,
	}, kinds(outs))

	entries := doc.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "three", entries[1].Question)
	assert.Equal(t, 2, entries[1].QuestionIndex)
	assert.Equal(t, 2, outs[2].QuestionIndex)

	s := im.Summary()
	assert.Equal(t, types.JobCompleted, s.State)
	assert.Equal(t, 2, s.Appended)
	assert.Equal(t, 1, s.Failed)
	require.Len(t, s.Warnings, 1)
	assert.Contains(t, s.Warnings[0], "2.py")
}

func TestImport_EmptyBodyLeavesGap(t *testing.T) {
	im, doc, _ := startImporter(t, map[string]string{
		"1.py": "# only a question\n",
	})

	out, ok := im.Next()
	require.True(t, ok)
	assert.Equal(t, types.StepGap, out.Kind)
	assert.Zero(t, out.QuestionIndex)
	assert.Equal(t, 100.0, out.Percent)
	assert.Zero(t, doc.Len())
	assert.Equal(t, 2, im.Job().NextSequenceNumber)

	out, ok = im.Next()
	require.True(t, ok)
	assert.Equal(t, types.StepCompleted, out.Kind)

	s := im.Summary()
	assert.Equal(t, 1, s.Gaps)
	require.Len(t, s.Warnings, 1)
	assert.Equal(t, "1.py: empty code, no entry appended", s.Warnings[0])
}

func TestImport_GapDoesNotConsumeQuestionIndex(t *testing.T) {
	im, doc, _ := startImporter(t, map[string]string{
		"1.py":   "print('no question')",
		"2.html": "<!-- q2 -->\n<p>2</p>",
	})

	outs := collect(im)
	assert.Equal(t, []types.StepKind{types.StepGap, types.StepAppended, types.StepCompleted}, kinds(outs))
	assert.Equal(t, 1, outs[1].QuestionIndex)
	assert.Equal(t, 1, doc.Entries()[0].QuestionIndex)
	assert.Contains(t, im.Summary().Warnings[0], "no leading comment")
}

func TestSteps_NotRestartable(t *testing.T) {
	im, _, _ := startImporter(t, map[string]string{"1.py": "# q\nx"})

	first := collect(im)
	require.Len(t, first, 2)
	assert.Empty(t, collect(im))
}

func TestSteps_BreakResumes(t *testing.T) {
	im, doc, _ := startImporter(t, map[string]string{
		"1.py": "# one\n1",
		"2.py": "# two\n2",
	})

	for range im.Steps() {
		break
	}
	assert.Equal(t, types.JobRunning, im.Job().State)
	assert.Equal(t, 1, doc.Len())

	rest := collect(im)
	assert.Equal(t, []types.StepKind{types.StepAppended, types.StepCompleted}, kinds(rest))
}

// recordingAppender captures appended entries and can be told to fail.
type recordingAppender struct {
	entries []types.DocumentEntry
	err     error
}

func (r *recordingAppender) AppendEntry(e types.DocumentEntry, suppress bool) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if !suppress {
		return 0, errors.New("expected batch mode")
	}
	r.entries = append(r.entries, e)
	return len(r.entries), nil
}

func TestImport_WithFormat(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"1.c": "// q\nint x;"})

	rec := &recordingAppender{}
	format := types.EntryFormat{FontSize: 18, FontFamily: "Courier New", Italic: true}
	im, err := New(rec, dir, WithFormat(format))
	require.NoError(t, err)
	require.NoError(t, im.Start())
	collect(im)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, format, rec.entries[0].EntryFormat)
	assert.Empty(t, rec.entries[0].Output)
}

func TestImport_AppenderErrorFollowsPolicy(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"1.c": "// q\nint x;", "2.c": "// r\nint y;"})

	boom := errors.New("sink closed")
	im, err := New(&recordingAppender{err: boom}, dir)
	require.NoError(t, err)
	require.NoError(t, im.Start())

	outs := collect(im)
	require.Len(t, outs, 1)
	assert.Equal(t, types.StepFailed, outs[0].Kind)
	assert.ErrorIs(t, outs[0].Err, boom)
	assert.Equal(t, types.JobAborted, im.Job().State)
}
