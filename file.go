package moviestat

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FileType represents supported input file formats. Compression is detected
// separately, so every format may also be compressed.
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extLTSV is the LTSV file extension
	extLTSV = ".ltsv"
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
)

// utf8BOM is stripped from the first header cell of delimited files.
const utf8BOM = "\ufeff"

// String returns the format name.
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeLTSV:
		return "ltsv"
	case FileTypeParquet:
		return "parquet"
	case FileTypeXLSX:
		return "xlsx"
	default:
		return "unsupported"
	}
}

// file represents a movie file that can be converted to table
type file struct {
	path            string
	fileType        FileType
	compressionType CompressionType
}

// newFile creates a new file
func newFile(path string) *file {
	return &file{
		path:            path,
		fileType:        detectFileType(path),
		compressionType: detectCompressionType(path),
	}
}

// detectFileType detects file type from extension, considering compressed files
func detectFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(removeCompressionExtension(path)))
	switch ext {
	case extCSV:
		return FileTypeCSV
	case extTSV:
		return FileTypeTSV
	case extLTSV:
		return FileTypeLTSV
	case extParquet:
		return FileTypeParquet
	case extXLSX:
		return FileTypeXLSX
	default:
		return FileTypeUnsupported
	}
}

// isCompressed returns true if file is compressed
func (f *file) isCompressed() bool {
	return f.compressionType != CompressionNone
}

// toTable converts file to table structure
func (f *file) toTable(ctx context.Context) (*Table, error) {
	switch f.fileType {
	case FileTypeCSV:
		return f.parseDelimitedFile(ctx, csvDelimiter)
	case FileTypeTSV:
		return f.parseDelimitedFile(ctx, tsvDelimiter)
	case FileTypeLTSV:
		return f.parseLTSV(ctx)
	case FileTypeParquet:
		return f.parseParquet(ctx)
	case FileTypeXLSX:
		return f.parseXLSX()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.path)
	}
}

// parseDelimitedFile parses CSV or TSV files with specified delimiter.
// Rows with a field count different from the header are rejected.
func (f *file) parseDelimitedFile(ctx context.Context, delimiter rune) (*Table, error) {
	reader, closer, err := openDecompressed(f.path)
	if err != nil {
		return nil, err
	}
	defer closer() //nolint:errcheck // read-only handle

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter

	first, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrEmptyData, f.path)
	}
	if err != nil {
		return nil, err
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], utf8BOM)
	}

	// Check for duplicate column names
	if err := validateColumnNames(first); err != nil {
		return nil, err
	}
	header := newHeader(first)

	var records []Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, newRecord(row))
	}

	return newTable(tableFromFilePath(f.path), header, records), nil
}

// parseLTSV parses LTSV file with compression support. The header lists labels in
// the order they are first seen; labels absent from a line read as empty.
func (f *file) parseLTSV(ctx context.Context) (*Table, error) {
	reader, closer, err := openDecompressed(f.path)
	if err != nil {
		return nil, err
	}
	defer closer() //nolint:errcheck // read-only handle

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var (
		header  header
		seen    = make(map[string]bool)
		entries []map[string]string
	)
	for _, line := range strings.Split(string(content), "\n") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry := make(map[string]string)
		for _, pair := range strings.Split(line, "\t") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				continue
			}
			key := strings.TrimSpace(kv[0])
			entry[key] = kv[1]
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
		if len(entry) > 0 {
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no valid records found: %s", ErrEmptyData, f.path)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		row := make(Record, len(header))
		for i, key := range header {
			row[i] = entry[key]
		}
		records = append(records, row)
	}

	return newTable(tableFromFilePath(f.path), header, records), nil
}

// parseXLSX parses the first sheet of an XLSX file with compression support.
func (f *file) parseXLSX() (*Table, error) {
	var (
		xlsxFile *excelize.File
		err      error
	)

	if f.isCompressed() {
		// excelize needs random access, so compressed workbooks are read into memory first
		reader, closer, err := openDecompressed(f.path)
		if err != nil {
			return nil, err
		}
		defer closer() //nolint:errcheck // read-only handle

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		xlsxFile, err = excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	} else {
		xlsxFile, err = excelize.OpenFile(f.path)
		if err != nil {
			return nil, err
		}
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("%w: no sheets found in Excel file: %s", ErrEmptyData, f.path)
	}

	sheetName := sheetNames[0]
	rows, err := xlsxFile.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty in Excel file: %s", ErrEmptyData, sheetName, f.path)
	}
	if err := validateColumnNames(rows[0]); err != nil {
		return nil, err
	}

	headers, records := convertXLSXRowsToTable(rows)
	return newTable(tableFromFilePath(f.path), headers, records), nil
}

// convertXLSXRowsToTable converts XLSX rows to table headers and records.
// First row becomes headers, remaining rows become records padded to the header
// width. Trailing empty cells are omitted by excelize, so short rows are expected.
func convertXLSXRowsToTable(rows [][]string) (header, []Record) {
	var headers header
	var records []Record

	if len(rows) > 0 {
		headers = newHeader(rows[0])
	}

	if len(rows) > 1 {
		records = make([]Record, len(rows)-1)
		for i, row := range rows[1:] {
			record := make(Record, len(headers))
			for j := range headers {
				if j < len(row) {
					record[j] = row[j]
				}
			}
			records[i] = record
		}
	}

	return headers, records
}
