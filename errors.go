package moviestat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/moviestat/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// errDuplicateColumnName is returned when a file contains duplicate column names
	errDuplicateColumnName = errors.New("duplicate column name")

	// ErrInputNotFound indicates that the source file does not exist
	ErrInputNotFound = errors.New("moviestat: input file not found")

	// ErrParseFailure indicates malformed rows, unparseable dates or numbers
	ErrParseFailure = errors.New("moviestat: parse failure")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("moviestat: unsupported file format")

	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = errors.New("moviestat: empty data source")

	// ErrColumnNotFound indicates an operation over a nonexistent or mistyped column
	ErrColumnNotFound = model.ErrColumnNotFound

	// ErrEmptyAggregateDomain indicates an aggregate over a column with no valid values
	ErrEmptyAggregateDomain = model.ErrEmptyAggregateDomain

	// ErrUndefinedCorrelation indicates a correlation over a zero-variance column
	ErrUndefinedCorrelation = model.ErrUndefinedCorrelation
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Column    string
	Row       int
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithColumn adds column context to the error
func (ec *ErrorContext) WithColumn(column string) *ErrorContext {
	ec.Column = column
	return ec
}

// WithRow adds the 1-based source data row to the error
func (ec *ErrorContext) WithRow(row int) *ErrorContext {
	ec.Row = row
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("moviestat: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.Column != "" {
		parts = append(parts, "column: "+ec.Column)
	}

	if ec.Row > 0 {
		parts = append(parts, fmt.Sprintf("row: %d", ec.Row))
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
