// Package model provides domain model for moviestat
package model

import (
	"fmt"
	"strings"
)

// ColumnKind tells how a column's values are read.
type ColumnKind int

const (
	// ColumnKindNumeric is a column with numeric values (missing values allowed)
	ColumnKindNumeric ColumnKind = iota
	// ColumnKindText is a single-valued string column
	ColumnKindText
	// ColumnKindList is a '|'-delimited multi-valued column
	ColumnKindList
	// ColumnKindDate is a calendar date column
	ColumnKindDate
)

const (
	// sqlTypeText is the SQL TEXT type string
	sqlTypeText = "TEXT"
	// sqlTypeInteger is the SQL INTEGER type string
	sqlTypeInteger = "INTEGER"
)

// String returns the kind name
func (k ColumnKind) String() string {
	switch k {
	case ColumnKindNumeric:
		return "numeric"
	case ColumnKindText:
		return "text"
	case ColumnKindList:
		return "list"
	case ColumnKindDate:
		return "date"
	default:
		return "unknown"
	}
}

// SQLType returns the SQLite column type used to store values of this kind.
func (k ColumnKind) SQLType() string {
	if k == ColumnKindNumeric {
		return sqlTypeInteger
	}
	// Dates are stored as ISO8601 TEXT, lists live in their own tables.
	return sqlTypeText
}

// Column names of the cleaned movie table. The values match the source file header.
const (
	ColumnTitle       = "original_title"
	ColumnCast        = "cast"
	ColumnDirector    = "director"
	ColumnTagline     = "tagline"
	ColumnGenres      = "genres"
	ColumnReleaseDate = "release_date"
	ColumnReleaseYear = "release_year"
	ColumnBudget      = "budget"
	ColumnRevenue     = "revenue"
	ColumnRuntime     = "runtime"
	ColumnProfit      = "profit"
)

// ListSeparator separates tokens inside list columns such as cast and genres.
const ListSeparator = "|"

// Column describes one named, typed column of a movie.
type Column struct {
	// Name is the canonical column name.
	Name string
	// Kind tells which accessor is valid for the column.
	Kind ColumnKind
}

// columns is the registry of every column a movie exposes, in table order.
var columns = []Column{
	{Name: ColumnTitle, Kind: ColumnKindText},
	{Name: ColumnCast, Kind: ColumnKindList},
	{Name: ColumnDirector, Kind: ColumnKindText},
	{Name: ColumnTagline, Kind: ColumnKindText},
	{Name: ColumnGenres, Kind: ColumnKindList},
	{Name: ColumnReleaseDate, Kind: ColumnKindDate},
	{Name: ColumnReleaseYear, Kind: ColumnKindNumeric},
	{Name: ColumnBudget, Kind: ColumnKindNumeric},
	{Name: ColumnRevenue, Kind: ColumnKindNumeric},
	{Name: ColumnRuntime, Kind: ColumnKindNumeric},
	{Name: ColumnProfit, Kind: ColumnKindNumeric},
}

// columnAliases maps friendly names to canonical names.
var columnAliases = map[string]string{
	"title": ColumnTitle,
	"year":  ColumnReleaseYear,
	"date":  ColumnReleaseDate,
}

// Columns returns every known column in table order.
func Columns() []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	return out
}

// NumericColumns returns the numeric columns in table order.
func NumericColumns() []Column {
	var out []Column
	for _, c := range columns {
		if c.Kind == ColumnKindNumeric {
			out = append(out, c)
		}
	}
	return out
}

// ParseColumn resolves a column by name. Names are case-insensitive and surrounding
// whitespace is ignored.
func ParseColumn(name string) (Column, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := columnAliases[key]; ok {
		key = alias
	}
	for _, c := range columns {
		if c.Name == key {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// ParseNumericColumn resolves a column by name and checks that it is numeric.
func ParseNumericColumn(name string) (Column, error) {
	c, err := ParseColumn(name)
	if err != nil {
		return Column{}, err
	}
	if c.Kind != ColumnKindNumeric {
		return Column{}, fmt.Errorf("%w: %q is %s, not numeric", ErrColumnNotFound, c.Name, c.Kind)
	}
	return c, nil
}
