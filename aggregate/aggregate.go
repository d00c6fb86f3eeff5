// Package aggregate provides read-only queries over cleaned movies: extremes,
// derived profit, the profitable subset, token tallies, group sums, group modes,
// averages, distributions and Pearson correlations.
//
// Every function is pure. Inputs are never modified and results are freshly
// allocated. Columns are named as in model.ParseColumn; an unknown name, or a
// column of the wrong kind, fails with model.ErrColumnNotFound.
package aggregate

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/nao1215/moviestat/domain/model"
)

// DefaultProfitThreshold is the minimum profit, in USD, of a movie in the profitable subset.
const DefaultProfitThreshold int64 = 50_000_000

// Extremal returns the movies holding the largest and smallest value of a numeric
// column. Ties resolve to the first movie in table order. Missing values are skipped.
func Extremal(movies model.Movies, column string) (model.Extremes, error) {
	c, err := model.ParseNumericColumn(column)
	if err != nil {
		return model.Extremes{}, err
	}

	ext := model.Extremes{Column: c.Name}
	found := false
	for _, m := range movies {
		v, ok := m.NumericValue(c)
		if !ok {
			continue
		}
		if !found {
			ext.Max, ext.MaxVal = m, v
			ext.Min, ext.MinVal = m, v
			found = true
			continue
		}
		if v > ext.MaxVal {
			ext.Max, ext.MaxVal = m, v
		}
		if v < ext.MinVal {
			ext.Min, ext.MinVal = m, v
		}
	}
	if !found {
		return model.Extremes{}, fmt.Errorf("%w: %s", model.ErrEmptyAggregateDomain, c.Name)
	}
	return ext, nil
}

// DeriveProfit returns a copy of movies with Profit set to Revenue minus Budget.
// Applying it twice gives the same result.
func DeriveProfit(movies model.Movies) model.Movies {
	out := make(model.Movies, len(movies))
	for i, m := range movies {
		out[i] = m.WithProfit()
	}
	return out
}

// FilterProfitable returns the movies whose profit is at least threshold, in
// original order, indexed from 1. Profit is derived from revenue and budget, so
// the input need not have been passed through DeriveProfit.
func FilterProfitable(movies model.Movies, threshold int64) []model.ProfitableMovie {
	var out []model.ProfitableMovie
	for _, m := range movies {
		m = m.WithProfit()
		if m.Profit < threshold {
			continue
		}
		out = append(out, model.ProfitableMovie{Index: len(out) + 1, Movie: m})
	}
	return out
}

// ProfitableMovies unwraps a profitable subset back into movies.
func ProfitableMovies(subset []model.ProfitableMovie) model.Movies {
	out := make(model.Movies, len(subset))
	for i, p := range subset {
		out[i] = p.Movie
	}
	return out
}

// ColumnAverage returns the mean of a numeric column over its non-missing values.
// A column without values fails with model.ErrEmptyAggregateDomain.
func ColumnAverage(movies model.Movies, column string) (float64, error) {
	values, err := Values(movies, column)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: %s", model.ErrEmptyAggregateDomain, column)
	}
	return stat.Mean(values, nil), nil
}

// Values returns the non-missing values of a numeric column in table order.
func Values(movies model.Movies, column string) ([]float64, error) {
	c, err := model.ParseNumericColumn(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(movies))
	for _, m := range movies {
		if v, ok := m.NumericValue(c); ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Pairs returns the values of two numeric columns for every movie where both
// are present, in table order.
func Pairs(movies model.Movies, a, b string) (xs, ys []float64, err error) {
	ca, err := model.ParseNumericColumn(a)
	if err != nil {
		return nil, nil, err
	}
	cb, err := model.ParseNumericColumn(b)
	if err != nil {
		return nil, nil, err
	}
	xs = make([]float64, 0, len(movies))
	ys = make([]float64, 0, len(movies))
	for _, m := range movies {
		x, okx := m.NumericValue(ca)
		y, oky := m.NumericValue(cb)
		if !okx || !oky {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	return xs, ys, nil
}
