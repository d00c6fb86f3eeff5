package moviestat

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/moviestat/domain/model"
	"github.com/nao1215/moviestat/internal/logging"
)

// OutputFormat represents the output file format
type OutputFormat int

const (
	// OutputFormatCSV represents CSV output format
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV
	// OutputFormatLTSV represents LTSV output format
	OutputFormatLTSV
	// OutputFormatParquet represents Parquet output format
	OutputFormatParquet
	// OutputFormatXLSX represents Excel XLSX output format
	OutputFormatXLSX
)

// exportName is the base name of every exported file.
const exportName = "movies_clean"

// String returns the string representation of OutputFormat
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatCSV:
		return "csv"
	case OutputFormatTSV:
		return "tsv"
	case OutputFormatLTSV:
		return "ltsv"
	case OutputFormatParquet:
		return "parquet"
	case OutputFormatXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatCSV:
		return extCSV
	case OutputFormatTSV:
		return extTSV
	case OutputFormatLTSV:
		return extLTSV
	case OutputFormatParquet:
		return extParquet
	case OutputFormatXLSX:
		return extXLSX
	default:
		return extCSV
	}
}

// ParseOutputFormat converts a configuration name ("csv", "tsv", "ltsv",
// "parquet", "xlsx") to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return OutputFormatCSV, nil
	case "tsv":
		return OutputFormatTSV, nil
	case "ltsv":
		return OutputFormatLTSV, nil
	case "parquet":
		return OutputFormatParquet, nil
	case "xlsx":
		return OutputFormatXLSX, nil
	default:
		return OutputFormatCSV, fmt.Errorf("%w: output format %q", ErrUnsupportedFormat, s)
	}
}

// ExportOptions configures how cleaned movies are written to a file.
//
// Example:
//
//	options := NewExportOptions().
//		WithFormat(OutputFormatTSV).
//		WithCompression(CompressionGZ)
//
//	path, err := moviestat.Export(movies, "./out", options)
type ExportOptions struct {
	// Format specifies the output file format
	Format OutputFormat
	// Compression specifies the compression type
	Compression CompressionType
}

// NewExportOptions creates default export options (CSV, no compression).
func NewExportOptions() ExportOptions {
	return ExportOptions{
		Format:      OutputFormatCSV,
		Compression: CompressionNone,
	}
}

// WithFormat sets the output file format.
func (o ExportOptions) WithFormat(format OutputFormat) ExportOptions {
	o.Format = format
	return o
}

// WithCompression adds compression to the output file.
//
// Options:
//   - CompressionNone: No compression (default)
//   - CompressionGZ: Gzip compression (.gz)
//   - CompressionXZ: XZ compression (.xz)
//   - CompressionZSTD: Zstandard compression (.zst)
//
// CompressionBZ2 can be read but not written; Export fails with it.
func (o ExportOptions) WithCompression(compression CompressionType) ExportOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o ExportOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

// Export writes the cleaned movies to dir as movies_clean<ext> and returns the
// written path. The file loads and cleans back to the same movies; only the
// IDs are renumbered from 1.
func Export(movies model.Movies, dir string, opts ExportOptions) (string, error) {
	return ExportContext(context.Background(), movies, dir, opts)
}

// ExportContext is Export with context support for logging and cancellation.
func ExportContext(ctx context.Context, movies model.Movies, dir string, opts ExportOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(dir, exportName+opts.FileExtension())
	if opts.Compression == CompressionBZ2 {
		return "", NewErrorContext("export", path).
			WithDetails("bzip2 is supported for reading only").Error(ErrUnsupportedFormat)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeTableFile(path, NewTableFromMovies(movies), opts); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to export %s: %w", path, err)
	}

	logging.Ctx(ctx).Info().
		Str("file", path).
		Str("format", opts.Format.String()).
		Str("compression", opts.Compression.String()).
		Int("rows", len(movies)).
		Msg("exported")
	return path, nil
}

// writeTableFile writes a table to path in the requested format.
func writeTableFile(path string, t *Table, opts ExportOptions) (err error) {
	w, cleanup, err := createCompressed(path, opts.Compression)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := cleanup(); err == nil {
			err = closeErr
		}
	}()

	switch opts.Format {
	case OutputFormatCSV:
		return writeDelimited(w, t, csvDelimiter)
	case OutputFormatTSV:
		return writeDelimited(w, t, tsvDelimiter)
	case OutputFormatLTSV:
		return writeLTSV(w, t)
	case OutputFormatParquet:
		return writeParquet(w, t)
	case OutputFormatXLSX:
		return writeXLSX(w, t)
	default:
		return fmt.Errorf("unsupported output format: %v", opts.Format)
	}
}

// writeDelimited writes the header and records with encoding/csv.
func writeDelimited(w io.Writer, t *Table, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	if err := cw.Write(t.header); err != nil {
		return err
	}
	for _, r := range t.records {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeLTSV writes one label:value line per record. Tabs and newlines inside
// values are replaced with spaces since LTSV has no quoting.
func writeLTSV(w io.Writer, t *Table) error {
	replacer := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	fields := make([]string, len(t.header))
	for _, r := range t.records {
		for i, label := range t.header {
			value := ""
			if i < len(r) {
				value = replacer.Replace(r[i])
			}
			fields[i] = label + ":" + value
		}
		if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// writeXLSX writes the table to the first sheet of a new workbook.
func writeXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, exportName); err != nil {
		return err
	}
	sheet = exportName

	if err := f.SetSheetRow(sheet, "A1", toInterfaces(t.header)); err != nil {
		return err
	}
	for i, r := range t.records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, toInterfaces(r)); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// toInterfaces converts string values for excelize row setters.
func toInterfaces(values []string) *[]interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return &out
}
