package moviestat

import (
	"fmt"
	"strconv"
	"strings"
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// header is file header.
type header []string

// newHeader create new header. Header names are trimmed.
func newHeader(h []string) header {
	out := make(header, len(h))
	for i, v := range h {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// equal compare header.
func (h header) equal(h2 header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// indexOf returns the position of a column name, or -1.
func (h header) indexOf(name string) int {
	for i, v := range h {
		if v == name {
			return i
		}
	}
	return -1
}

// Record represents one raw row of the source file as a slice of string fields.
type Record []string

// newRecord create new record.
func newRecord(r []string) Record {
	return Record(r)
}

// equal compare record.
func (r Record) equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// key returns a value usable as a map key for exact duplicate detection.
// Every field is prefixed with its length, so two records share a key only
// when they are equal field by field.
func (r Record) key() string {
	var b strings.Builder
	for _, field := range r {
		b.WriteString(strconv.Itoa(len(field)))
		b.WriteByte(':')
		b.WriteString(field)
	}
	return b.String()
}

// validateColumnNames checks for duplicate column names and returns error if found.
// Column name comparison is case-sensitive.
func validateColumnNames(columns []string) error {
	columnsSeen := make(map[string]bool)
	for _, col := range columns {
		trimmedCol := strings.TrimSpace(col)
		if columnsSeen[trimmedCol] {
			return fmt.Errorf("%w: %s", errDuplicateColumnName, col)
		}
		columnsSeen[trimmedCol] = true
	}
	return nil
}
