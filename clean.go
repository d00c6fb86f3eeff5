package moviestat

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/nao1215/moviestat/domain/model"
	"github.com/nao1215/moviestat/internal/logging"
)

// DroppedColumns are the source columns that play no part in the analysis.
// Names absent from the input are ignored.
var DroppedColumns = []string{
	"id",
	"imdb_id",
	"popularity",
	"budget_adj",
	"revenue_adj",
	"homepage",
	"keywords",
	"overview",
	"production_companies",
	"vote_count",
	"vote_average",
}

// requiredColumns must survive the column drop for the movies to be built.
var requiredColumns = []string{
	model.ColumnTitle,
	model.ColumnCast,
	model.ColumnDirector,
	model.ColumnGenres,
	model.ColumnReleaseDate,
	model.ColumnReleaseYear,
	model.ColumnBudget,
	model.ColumnRevenue,
	model.ColumnRuntime,
}

// CleanedColumns is the column set of a cleaned table, in source order.
var CleanedColumns = []string{
	model.ColumnBudget,
	model.ColumnRevenue,
	model.ColumnTitle,
	model.ColumnCast,
	model.ColumnDirector,
	model.ColumnTagline,
	model.ColumnRuntime,
	model.ColumnGenres,
	model.ColumnReleaseDate,
	model.ColumnReleaseYear,
}

// Clean runs every cleaning step over a loaded table and returns typed movies.
// The input table is never modified.
func Clean(t *Table) (model.Movies, error) {
	return CleanContext(context.Background(), t)
}

// CleanContext is Clean with a context used for logging.
//
// Steps, in order:
//  1. drop DroppedColumns
//  2. parse release dates into the 2006-01-02 layout
//  3. drop exact duplicate rows, keeping the first occurrence
//  4. treat a zero runtime as missing
//  5. treat zero budget or revenue as missing and drop those rows
//  6. build validated model.Movies
func CleanContext(ctx context.Context, t *Table) (model.Movies, error) {
	log := logging.Ctx(ctx)
	log.Debug().Int("rows", t.Len()).Int("columns", len(t.header)).Msg("cleaning started")

	t = dropColumns(t)
	if err := requireColumns(t); err != nil {
		return nil, err
	}

	t, err := parseReleaseDates(t)
	if err != nil {
		return nil, err
	}

	before := t.Len()
	t = dropDuplicates(t)
	log.Debug().Int("rows", t.Len()).Int("dropped", before-t.Len()).Msg("after dedup")

	t, err = blankZeroRuntime(t)
	if err != nil {
		return nil, err
	}

	before = t.Len()
	t, err = dropMissingFinancials(t)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("rows", t.Len()).Int("dropped", before-t.Len()).Msg("after financial filter")

	movies, err := toMovies(t)
	if err != nil {
		return nil, err
	}
	log.Info().Int("movies", len(movies)).Msg("cleaning finished")
	return movies, nil
}

// dropColumns returns a table without DroppedColumns.
func dropColumns(t *Table) *Table {
	dropped := make(map[string]bool, len(DroppedColumns))
	for _, c := range DroppedColumns {
		dropped[c] = true
	}

	var keep []int
	var h header
	for i, name := range t.header {
		if dropped[name] {
			continue
		}
		keep = append(keep, i)
		h = append(h, name)
	}

	records := make([]Record, len(t.records))
	for i, r := range t.records {
		out := make(Record, len(keep))
		for j, idx := range keep {
			if idx < len(r) {
				out[j] = r[idx]
			}
		}
		records[i] = out
	}
	rows := make([]int, len(t.rows))
	copy(rows, t.rows)
	return newTableWithRows(t.name, h, records, rows)
}

// requireColumns checks that every column the movies are built from is present.
func requireColumns(t *Table) error {
	for _, c := range requiredColumns {
		if !t.HasColumn(c) {
			return NewErrorContext("clean", t.Name()).WithColumn(c).Error(ErrColumnNotFound)
		}
	}
	return nil
}

// parseReleaseDates rewrites release_date into the cleaned layout. Any value that
// cannot be parsed fails the whole step with ErrParseFailure.
func parseReleaseDates(t *Table) (*Table, error) {
	dateIdx := t.header.indexOf(model.ColumnReleaseDate)
	if dateIdx < 0 {
		return nil, NewErrorContext("parse release dates", t.Name()).
			WithColumn(model.ColumnReleaseDate).Error(ErrColumnNotFound)
	}
	yearIdx := t.header.indexOf(model.ColumnReleaseYear)

	return t.mapRecords(func(i int, r Record) (Record, bool, error) {
		year := 0
		if yearIdx >= 0 {
			if n, ok, err := parseWholeNumber(r[yearIdx]); err == nil && ok {
				year = int(n)
			}
		}
		d, err := parseReleaseDate(r[dateIdx], year)
		if err != nil {
			return nil, false, NewErrorContext("parse release dates", t.Name()).
				WithColumn(model.ColumnReleaseDate).
				WithRow(t.RowNumber(i)).
				WithDetails(err.Error()).
				Error(ErrParseFailure)
		}
		out := make(Record, len(r))
		copy(out, r)
		out[dateIdx] = formatReleaseDate(d)
		return out, true, nil
	})
}

// dropDuplicates removes rows equal on every column to an earlier row.
func dropDuplicates(t *Table) *Table {
	seen := make(map[string]bool, t.Len())
	out, _ := t.mapRecords(func(_ int, r Record) (Record, bool, error) {
		k := r.key()
		if seen[k] {
			return nil, false, nil
		}
		seen[k] = true
		return r, true, nil
	})
	return out
}

// blankZeroRuntime turns a zero runtime into a missing value. Rows are kept.
func blankZeroRuntime(t *Table) (*Table, error) {
	idx := t.header.indexOf(model.ColumnRuntime)
	if idx < 0 {
		return nil, NewErrorContext("blank zero runtime", t.Name()).
			WithColumn(model.ColumnRuntime).Error(ErrColumnNotFound)
	}

	return t.mapRecords(func(i int, r Record) (Record, bool, error) {
		n, ok, err := parseWholeNumber(r[idx])
		if err != nil {
			return nil, false, NewErrorContext("blank zero runtime", t.Name()).
				WithColumn(model.ColumnRuntime).
				WithRow(t.RowNumber(i)).
				WithDetails(err.Error()).
				Error(ErrParseFailure)
		}
		if !ok || n != 0 {
			return r, true, nil
		}
		out := make(Record, len(r))
		copy(out, r)
		out[idx] = ""
		return out, true, nil
	})
}

// dropMissingFinancials drops rows whose budget or revenue is missing or zero.
func dropMissingFinancials(t *Table) (*Table, error) {
	cols := []string{model.ColumnBudget, model.ColumnRevenue}
	idx := make([]int, len(cols))
	for i, c := range cols {
		if idx[i] = t.header.indexOf(c); idx[i] < 0 {
			return nil, NewErrorContext("drop missing financials", t.Name()).
				WithColumn(c).Error(ErrColumnNotFound)
		}
	}

	return t.mapRecords(func(i int, r Record) (Record, bool, error) {
		for j, c := range cols {
			n, ok, err := parseWholeNumber(r[idx[j]])
			if err != nil {
				return nil, false, NewErrorContext("drop missing financials", t.Name()).
					WithColumn(c).
					WithRow(t.RowNumber(i)).
					WithDetails(err.Error()).
					Error(ErrParseFailure)
			}
			if !ok || n == 0 {
				return nil, false, nil
			}
		}
		return r, true, nil
	})
}

// toMovies builds validated movies from a cleaned table.
func toMovies(t *Table) (model.Movies, error) {
	movies := make(model.Movies, 0, t.Len())
	for i := range t.records {
		ec := NewErrorContext("build movies", t.Name()).WithRow(t.RowNumber(i))

		m := model.Movie{
			ID:       t.RowNumber(i),
			Title:    t.Value(i, model.ColumnTitle),
			Cast:     model.SplitList(t.Value(i, model.ColumnCast)),
			Director: t.Value(i, model.ColumnDirector),
			Tagline:  t.Value(i, model.ColumnTagline),
			Genres:   model.SplitList(t.Value(i, model.ColumnGenres)),
		}

		d, err := parseReleaseDate(t.Value(i, model.ColumnReleaseDate), 0)
		if err != nil {
			return nil, ec.WithColumn(model.ColumnReleaseDate).WithDetails(err.Error()).Error(ErrParseFailure)
		}
		m.ReleaseDate = d

		ints := []struct {
			column string
			set    func(n int64, ok bool)
		}{
			{model.ColumnReleaseYear, func(n int64, _ bool) { m.ReleaseYear = int(n) }},
			{model.ColumnBudget, func(n int64, _ bool) { m.Budget = n }},
			{model.ColumnRevenue, func(n int64, _ bool) { m.Revenue = n }},
			{model.ColumnRuntime, func(n int64, ok bool) { m.Runtime = sql.NullInt64{Int64: n, Valid: ok} }},
		}
		for _, f := range ints {
			n, ok, err := parseWholeNumber(t.Value(i, f.column))
			if err != nil {
				return nil, ec.WithColumn(f.column).WithDetails(err.Error()).Error(ErrParseFailure)
			}
			f.set(n, ok)
		}

		if err := m.Validate(); err != nil {
			return nil, ec.Error(err)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// NewTableFromMovies renders cleaned movies back into a raw table with the
// CleanedColumns header. Row numbers are the movie IDs, so cleaning the result
// again yields the same movies.
func NewTableFromMovies(movies model.Movies) *Table {
	records := make([]Record, len(movies))
	rows := make([]int, len(movies))
	for i, m := range movies {
		runtime := ""
		if m.Runtime.Valid {
			runtime = strconv.FormatInt(m.Runtime.Int64, 10)
		}
		records[i] = Record{
			strconv.FormatInt(m.Budget, 10),
			strconv.FormatInt(m.Revenue, 10),
			m.Title,
			model.JoinList(m.Cast),
			m.Director,
			m.Tagline,
			runtime,
			model.JoinList(m.Genres),
			formatReleaseDate(m.ReleaseDate),
			strconv.Itoa(m.ReleaseYear),
		}
		rows[i] = m.ID
	}
	return newTableWithRows("movies_clean", newHeader(CleanedColumns), records, rows)
}
