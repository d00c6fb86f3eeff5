package moviestat

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: OutputFormatCSV},
		{in: "csv", want: OutputFormatCSV},
		{in: "TSV", want: OutputFormatTSV},
		{in: " ltsv ", want: OutputFormatLTSV},
		{in: "parquet", want: OutputFormatParquet},
		{in: "xlsx", want: OutputFormatXLSX},
		{in: "json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOutputFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExportOptions(t *testing.T) {
	t.Parallel()

	opts := NewExportOptions()
	assert.Equal(t, ".csv", opts.FileExtension())

	opts = opts.WithFormat(OutputFormatParquet).WithCompression(CompressionZSTD)
	assert.Equal(t, ".parquet.zst", opts.FileExtension())
	assert.Equal(t, "parquet", opts.Format.String())
}

// TestExportRoundTrip exports the cleaned fixture and cleans the file again.
// Only the IDs change: they are renumbered from 1.
func TestExportRoundTrip(t *testing.T) {
	t.Parallel()

	movies := cleanFixture(t)

	formats := []OutputFormat{OutputFormatCSV, OutputFormatTSV, OutputFormatLTSV, OutputFormatParquet, OutputFormatXLSX}
	for _, format := range formats {
		for _, compression := range []CompressionType{CompressionNone, CompressionGZ} {
			opts := NewExportOptions().WithFormat(format).WithCompression(compression)
			t.Run(opts.FileExtension(), func(t *testing.T) {
				t.Parallel()

				dir := t.TempDir()
				path, err := ExportContext(t.Context(), movies, dir, opts)
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(dir, "movies_clean"+opts.FileExtension()), path)

				table, err := LoadContext(t.Context(), path)
				require.NoError(t, err)
				got, err := CleanContext(t.Context(), table)
				require.NoError(t, err)
				require.Len(t, got, len(movies))

				for i, m := range got {
					assert.Equal(t, i+1, m.ID)
					m.ID = movies[i].ID
					assert.Equal(t, movies[i], m)
				}
			})
		}
	}
}

func TestExportErrors(t *testing.T) {
	t.Parallel()

	movies := cleanFixture(t)

	t.Run("bzip2 output", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := Export(movies, dir, NewExportOptions().WithCompression(CompressionBZ2))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "no file is left behind")
	})

	t.Run("output directory is a file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, nil, 0600))
		_, err := Export(movies, path, NewExportOptions())
		assert.Error(t, err)
	})
}
