package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "../../testdata/tmdb-movies.csv"

// runCLI runs the command line and returns the exit code with stdout and stderr.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(t.Context(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunVersion(t *testing.T) {
	code, out, _ := runCLI(t, "version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "moviestat dev\n", out)
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no command", args: nil, want: exitUsage},
		{name: "unknown command", args: []string{"plot"}, want: exitUsage},
		{name: "help", args: []string{"help"}, want: exitOK},
		{name: "bad flag", args: []string{"analyze", "-nope"}, want: exitUsage},
		{name: "query without sql", args: []string{"query"}, want: exitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, tt.want, code)
			assert.Contains(t, stderr, "Usage")
		})
	}
}

func TestRunAnalyze(t *testing.T) {
	dir := t.TempDir()
	code, out, stderr := runCLI(t,
		"-log-level", "error",
		"analyze", "-input", fixture, "-out", dir, "-chart-format", "svg")
	require.Equal(t, exitOK, code, stderr)

	assert.Contains(t, out, "Now we have 7 movies.")
	assert.Contains(t, out, "The most profitable year was 2009")

	for _, name := range []string{summaryText, summaryJSON, summaryWorkbook} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	charts, err := filepath.Glob(filepath.Join(dir, chartsDir, "*.svg"))
	require.NoError(t, err)
	assert.Len(t, charts, 8)

	text, err := os.ReadFile(filepath.Join(dir, summaryText))
	require.NoError(t, err)
	assert.Equal(t, out, string(text))
}

func TestRunAnalyzeSkipsDisabledReports(t *testing.T) {
	dir := t.TempDir()
	code, _, stderr := runCLI(t,
		"-log-level", "error",
		"analyze", "-input", fixture, "-out", dir,
		"-charts=false", "-workbook=false", "-json=false")
	require.Equal(t, exitOK, code, stderr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, summaryText, entries[0].Name())
}

func TestRunAnalyzeFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "missing input",
			args: []string{"analyze", "-input", "no-such-file.csv", "-out", "unused"},
			want: "input file not found",
		},
		{
			name: "invalid chart format",
			args: []string{"analyze", "-input", fixture, "-chart-format", "gif"},
			want: "invalid configuration",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-log-format", "json"}, tt.args...)
			code, _, stderr := runCLI(t, args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestRunExport(t *testing.T) {
	dir := t.TempDir()
	code, out, stderr := runCLI(t,
		"-log-level", "error",
		"export", "-input", fixture, "-out", dir, "-format", "tsv", "-compression", "gz")
	require.Equal(t, exitOK, code, stderr)

	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(dir, "movies_clean.tsv.gz"), path)
	assert.FileExists(t, path)

	code, _, _ = runCLI(t, "-log-level", "error",
		"export", "-input", fixture, "-out", dir, "-compression", "bz2")
	assert.Equal(t, exitError, code)
}

func TestRunQuery(t *testing.T) {
	dumpDir := t.TempDir()
	code, out, stderr := runCLI(t,
		"-log-level", "error",
		"query", "-input", fixture, "-dump", dumpDir,
		"SELECT release_year, COUNT(*) FROM movies GROUP BY release_year ORDER BY release_year")
	require.Equal(t, exitOK, code, stderr)

	assert.Equal(t, "release_year\tCOUNT(*)\n1960\t1\n2009\t1\n2010\t2\n2015\t3\n", out)

	for _, table := range []string{"movies", "movie_genres", "movie_cast"} {
		assert.FileExists(t, filepath.Join(dumpDir, table+".csv"))
	}

	code, _, _ = runCLI(t, "-log-level", "disabled", "query", "-input", fixture, "SELECT * FROM nope")
	assert.Equal(t, exitError, code)

	// -dump belongs to one invocation only
	require.NoError(t, os.RemoveAll(dumpDir))
	code, _, stderr = runCLI(t, "-log-level", "error", "query", "-input", fixture, "SELECT COUNT(*) FROM movies")
	require.Equal(t, exitOK, code, stderr)
	assert.NoDirExists(t, dumpDir)
}
