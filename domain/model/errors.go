// Package model provides domain model for moviestat
package model

import "errors"

var (
	// ErrColumnNotFound is returned when an operation names a column that does not exist
	// or does not have the kind the operation needs.
	ErrColumnNotFound = errors.New("moviestat: column not found")

	// ErrEmptyAggregateDomain is returned when an aggregate has no valid values to work on.
	ErrEmptyAggregateDomain = errors.New("moviestat: no values to aggregate")

	// ErrUndefinedCorrelation is returned when a correlation is requested over a zero-variance column.
	ErrUndefinedCorrelation = errors.New("moviestat: correlation undefined for zero variance")

	// ErrInvalidMovie is returned when a cleaned movie breaks a record invariant.
	ErrInvalidMovie = errors.New("moviestat: invalid movie record")
)
