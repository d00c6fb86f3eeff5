package model

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the layout used for release dates once they are cleaned.
const DateLayout = "2006-01-02"

// Movie is one cleaned row of the movie catalogue.
type Movie struct {
	// ID is the 1-based data row of the movie in the source file.
	ID int `validate:"gt=0"`
	// Title is the original title.
	Title string
	// Cast is the ordered list of cast members.
	Cast []string
	// Director is the credited director (may be empty).
	Director string
	// Tagline is the promotional tagline (may be empty).
	Tagline string
	// Genres is the ordered list of genres.
	Genres []string
	// ReleaseDate is the release date at UTC midnight.
	ReleaseDate time.Time `validate:"required"`
	// ReleaseYear is the release year and always matches ReleaseDate.
	ReleaseYear int `validate:"gt=0"`
	// Budget in USD, always positive after cleaning.
	Budget int64 `validate:"gt=0"`
	// Revenue in USD, always positive after cleaning.
	Revenue int64 `validate:"gt=0"`
	// Runtime in minutes. Invalid means missing; a valid runtime is never zero.
	Runtime sql.NullInt64
	// Profit is Revenue minus Budget once derived.
	Profit int64
}

var (
	movieValidator     *validator.Validate
	movieValidatorOnce sync.Once
)

// getValidator returns the shared validator with movie struct rules registered.
func getValidator() *validator.Validate {
	movieValidatorOnce.Do(func() {
		movieValidator = validator.New(validator.WithRequiredStructEnabled())
		movieValidator.RegisterStructValidation(validateMovieStruct, Movie{})
	})
	return movieValidator
}

// validateMovieStruct checks rules that span more than one field.
func validateMovieStruct(sl validator.StructLevel) {
	m, ok := sl.Current().Interface().(Movie)
	if !ok {
		return
	}
	if m.Runtime.Valid && m.Runtime.Int64 <= 0 {
		sl.ReportError(m.Runtime, "Runtime", "Runtime", "runtime_positive", "")
	}
	if !m.ReleaseDate.IsZero() && m.ReleaseDate.Year() != m.ReleaseYear {
		sl.ReportError(m.ReleaseYear, "ReleaseYear", "ReleaseYear", "year_matches_date", "")
	}
}

// Validate checks the cleaned-record invariants: positive budget and revenue,
// runtime positive or missing, and a release year that agrees with the date.
func (m Movie) Validate() error {
	if err := getValidator().Struct(m); err != nil {
		return fmt.Errorf("%w: id %d: %v", ErrInvalidMovie, m.ID, err)
	}
	return nil
}

// WithProfit returns a copy of the movie with Profit derived from revenue and budget.
func (m Movie) WithProfit() Movie {
	m.Profit = m.Revenue - m.Budget
	return m
}

// NumericValue returns the value of a numeric column. ok is false when the value
// is missing or the column is not numeric.
func (m Movie) NumericValue(c Column) (value float64, ok bool) {
	switch c.Name {
	case ColumnBudget:
		return float64(m.Budget), true
	case ColumnRevenue:
		return float64(m.Revenue), true
	case ColumnProfit:
		return float64(m.Profit), true
	case ColumnReleaseYear:
		return float64(m.ReleaseYear), true
	case ColumnRuntime:
		if !m.Runtime.Valid {
			return 0, false
		}
		return float64(m.Runtime.Int64), true
	default:
		return 0, false
	}
}

// Tokens returns the values of a column as grouping tokens. List columns yield one
// token per element, other columns yield their formatted value. Missing and empty
// values yield no token.
func (m Movie) Tokens(c Column) []string {
	switch c.Kind {
	case ColumnKindList:
		var src []string
		if c.Name == ColumnCast {
			src = m.Cast
		} else {
			src = m.Genres
		}
		out := make([]string, 0, len(src))
		for _, s := range src {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case ColumnKindText:
		v := m.text(c.Name)
		if v == "" {
			return nil
		}
		return []string{v}
	case ColumnKindDate:
		return []string{m.ReleaseDate.Format(DateLayout)}
	case ColumnKindNumeric:
		v, ok := m.NumericValue(c)
		if !ok {
			return nil
		}
		return []string{strconv.FormatFloat(v, 'f', -1, 64)}
	default:
		return nil
	}
}

// text returns a single-valued string column.
func (m Movie) text(name string) string {
	switch name {
	case ColumnTitle:
		return m.Title
	case ColumnDirector:
		return m.Director
	case ColumnTagline:
		return m.Tagline
	default:
		return ""
	}
}

// Equal compares two movies field by field.
func (m Movie) Equal(m2 Movie) bool {
	return m.ID == m2.ID &&
		m.Title == m2.Title &&
		equalStrings(m.Cast, m2.Cast) &&
		m.Director == m2.Director &&
		m.Tagline == m2.Tagline &&
		equalStrings(m.Genres, m2.Genres) &&
		m.ReleaseDate.Equal(m2.ReleaseDate) &&
		m.ReleaseYear == m2.ReleaseYear &&
		m.Budget == m2.Budget &&
		m.Revenue == m2.Revenue &&
		m.Runtime == m2.Runtime &&
		m.Profit == m2.Profit
}

// String returns a short human readable form.
func (m Movie) String() string {
	return fmt.Sprintf("#%d %s (%d)", m.ID, m.Title, m.ReleaseYear)
}

// SplitList splits a '|'-delimited field into trimmed, non-empty tokens.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList joins tokens back into a '|'-delimited field.
func JoinList(tokens []string) string {
	return strings.Join(tokens, ListSeparator)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

// Movies is an ordered collection of cleaned movies. Order is source order.
type Movies []Movie

// Equal compares two collections element by element.
func (ms Movies) Equal(ms2 Movies) bool {
	if len(ms) != len(ms2) {
		return false
	}
	for i, m := range ms {
		if !m.Equal(ms2[i]) {
			return false
		}
	}
	return true
}

// Validate validates every movie and stops at the first failure.
func (ms Movies) Validate() error {
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ByID returns the movie with the given ID.
func (ms Movies) ByID(id int) (Movie, bool) {
	for _, m := range ms {
		if m.ID == id {
			return m, true
		}
	}
	return Movie{}, false
}
