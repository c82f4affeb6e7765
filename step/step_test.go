package step

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/propfmt/format"
	"github.com/dhamidi/propfmt/properties"
)

// copyFixture copies testdata/name into dir and returns the new path.
func copyFixture(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	dst := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
	return dst
}

func TestApplyFormatsProperties(t *testing.T) {
	// Given
	projectDir := t.TempDir()
	target := copyFixture(t, projectDir, "unformatted.properties")
	want, err := os.ReadFile(filepath.Join("testdata", "formatted.properties"))
	require.NoError(t, err)

	// When
	result, err := NewRunner().Run(context.Background(), NewApplyTask([]string{target}, format.DefaultOptions()))

	// Then
	require.NoError(t, err)
	assert.Equal(t, ApplyTaskName, result.Task)
	assert.Equal(t, OutcomeSuccess, result.Outcome)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	props, err := properties.Load(f, properties.UTF8)
	require.NoError(t, err)

	assert.Len(t, props, 22)
	assert.Equal(t, "value1, value2, value3", props["commas"])
	assert.Equal(t, "value", props["spaces.after.separator"])
	assert.Equal(t, "", props["no.value"])
	assert.Equal(t, "value", props["colon.separator"])
	assert.Equal(t, "नमस्ते", props["unicode.unencoded"])
	assert.Equal(t, "value", props["spaces in key"])
	assert.Equal(t, `value "{0}"`, props["quoted.args"])
	assert.Equal(t, "'value'", props["single.quotes"])
	assert.Equal(t, "value    ", props["trailing.whitespace"])
	assert.Equal(t, " hello world ", props["unicode.whitespace"])
	assert.Equal(t, `"value"`, props["quotes"])
	assert.Equal(t, "value {0}", props["args"])
	assert.Equal(t, "value ''{0}''", props["single.quoted.args"])
	assert.Equal(t, "\nvalue1\nvalue2\tvalue3\t", props["escape.chars"])
	assert.Equal(t, "value", props["spaces.before.separator"])
	assert.Equal(t, "value", props["no.spaces.separator"])
	assert.Equal(t, "", props["no.value.with.separator"])
	assert.Equal(t, "value=1", props["equals"])
	assert.Equal(t, "नमस्ते", props["unicode.encoded"])
	assert.Equal(t, "value", props["space.separator"])
	assert.Equal(t, "value1 value2 value3", props["multiline.value"])
	assert.Equal(t, " value", props["leading.escaped.space"])
}

func TestApplyPreservesContent(t *testing.T) {
	projectDir := t.TempDir()
	target := copyFixture(t, projectDir, "unformatted.properties")

	before, err := properties.ParseFile(target, properties.UTF8)
	require.NoError(t, err)

	_, err = NewRunner().Run(context.Background(), NewApplyTask([]string{target}, format.DefaultOptions()))
	require.NoError(t, err)

	after, err := properties.ParseFile(target, properties.UTF8)
	require.NoError(t, err)
	assert.NoError(t, properties.Equivalent(before, after))
	assert.Equal(t, before.Len(), after.Len())
}

func TestApplyTwiceReachesFixedPoint(t *testing.T) {
	projectDir := t.TempDir()
	target := copyFixture(t, projectDir, "unformatted.properties")
	task := NewApplyTask([]string{target}, format.DefaultOptions())

	first, err := NewRunner().Run(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, first.Changed(), 1)
	afterFirst, err := os.ReadFile(target)
	require.NoError(t, err)

	second, err := NewRunner().Run(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, second.Outcome)
	assert.Empty(t, second.Changed())
	afterSecond, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, afterFirst, afterSecond)
}

func TestApplyUpToDateWithCache(t *testing.T) {
	projectDir := t.TempDir()
	target := copyFixture(t, projectDir, "unformatted.properties")
	task := NewApplyTask([]string{target}, format.DefaultOptions())

	cache, err := OpenCache(projectDir)
	require.NoError(t, err)
	first, err := NewRunner(WithCache(cache)).Run(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, first.Outcome)
	assert.FileExists(t, cache.Path())

	reopened, err := OpenCache(projectDir)
	require.NoError(t, err)
	second, err := NewRunner(WithCache(reopened)).Run(context.Background(), task)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpToDate, second.Outcome)

	// Different options invalidate the cache.
	sorted := format.DefaultOptions()
	sorted.SortKeys = true
	third, err := NewRunner(WithCache(reopened)).Run(context.Background(), NewApplyTask([]string{target}, sorted))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, third.Outcome)
}

func TestCheckReportsUnformattedFiles(t *testing.T) {
	projectDir := t.TempDir()
	target := copyFixture(t, projectDir, "unformatted.properties")
	before, err := os.ReadFile(target)
	require.NoError(t, err)

	result, err := NewRunner().Run(context.Background(), NewCheckTask([]string{target}, format.DefaultOptions()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFormatted))
	assert.Equal(t, OutcomeFailed, result.Outcome)
	require.Len(t, result.Changed(), 1)
	assert.Contains(t, result.Changed()[0].Diff, "+commas=value1, value2, value3")
	assert.Contains(t, result.Changed()[0].Diff, "-commas = value1, value2, value3")

	after, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, before, after, "check must not modify files")
}

func TestCheckPassesFormattedFiles(t *testing.T) {
	projectDir := t.TempDir()
	target := copyFixture(t, projectDir, "formatted.properties")

	result, err := NewRunner().Run(context.Background(), NewCheckTask([]string{target}, format.DefaultOptions()))
	require.NoError(t, err)
	assert.Equal(t, CheckTaskName, result.Task)
	assert.Equal(t, OutcomeSuccess, result.Outcome)
}

func TestApplyFailsOnMalformedEscape(t *testing.T) {
	projectDir := t.TempDir()
	good := copyFixture(t, projectDir, "unformatted.properties")
	bad := filepath.Join(projectDir, "bad.properties")
	original := []byte("key = \\u12\n")
	require.NoError(t, os.WriteFile(bad, original, 0o644))

	result, err := NewRunner(WithJobs(1)).Run(context.Background(), NewApplyTask([]string{good, bad}, format.DefaultOptions()))
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.Contains(t, err.Error(), "bad.properties:1:7")
	var se *properties.SyntaxError
	assert.True(t, errors.As(err, &se))

	require.Len(t, result.Failed(), 1)
	assert.Equal(t, bad, result.Failed()[0].Path)

	after, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, original, after, "a failed file must be left untouched")
}

func TestApplyMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.properties")
	result, err := NewRunner().Run(context.Background(), NewApplyTask([]string{missing}, format.DefaultOptions()))
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNoSource(t *testing.T) {
	result, err := NewRunner().Run(context.Background(), NewApplyTask(nil, format.DefaultOptions()))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoSource, result.Outcome)
}

func TestInvalidOptionsFail(t *testing.T) {
	target := copyFixture(t, t.TempDir(), "formatted.properties")
	opts := format.DefaultOptions()
	opts.Separator = "->"
	result, err := NewRunner().Run(context.Background(), NewApplyTask([]string{target}, opts))
	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, result.Outcome)
}

func TestRunCancelled(t *testing.T) {
	target := copyFixture(t, t.TempDir(), "unformatted.properties")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := NewRunner().Run(ctx, NewApplyTask([]string{target}, format.DefaultOptions()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, OutcomeFailed, result.Outcome)
}

func TestApplyManyFilesInParallel(t *testing.T) {
	projectDir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "unformatted.properties"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("testdata", "formatted.properties"))
	require.NoError(t, err)

	var files []string
	for _, name := range strings.Fields("a b c d e f g h i j k l") {
		path := filepath.Join(projectDir, name+".properties")
		require.NoError(t, os.WriteFile(path, data, 0o600))
		files = append(files, path)
	}

	result, err := NewRunner(WithJobs(4)).Run(context.Background(), NewApplyTask(files, format.DefaultOptions()))
	require.NoError(t, err)
	assert.Len(t, result.Changed(), len(files))
	for _, path := range files {
		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got), path)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "file mode must be kept")
	}
}
