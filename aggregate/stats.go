package aggregate

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/nao1215/moviestat/domain/model"
)

// Correlation returns the Pearson coefficient of two numeric columns over the
// rows where both values are present. Fewer than two such rows fail with
// model.ErrEmptyAggregateDomain. A column with zero variance fails with
// model.ErrUndefinedCorrelation and a NaN coefficient.
func Correlation(movies model.Movies, a, b string) (float64, error) {
	xs, ys, err := Pairs(movies, a, b)
	if err != nil {
		return math.NaN(), err
	}
	return pearson(xs, ys, a, b)
}

func pearson(xs, ys []float64, a, b string) (float64, error) {
	if len(xs) < 2 {
		return math.NaN(), fmt.Errorf("%w: %s and %s share %d rows", model.ErrEmptyAggregateDomain, a, b, len(xs))
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN(), fmt.Errorf("%w: %s and %s", model.ErrUndefinedCorrelation, a, b)
	}
	r := stat.Correlation(xs, ys, nil)
	// floating point error can push |r| just past 1
	return math.Max(-1, math.Min(1, r)), nil
}

// CorrelationMatrix returns the pairwise Pearson matrix of the given numeric
// columns, every numeric column when none are given. Cells without a defined
// coefficient hold NaN.
func CorrelationMatrix(movies model.Movies, columns ...string) (model.CorrMatrix, error) {
	if len(columns) == 0 {
		for _, c := range model.NumericColumns() {
			columns = append(columns, c.Name)
		}
	}

	names := make([]string, len(columns))
	for i, name := range columns {
		c, err := model.ParseNumericColumn(name)
		if err != nil {
			return model.CorrMatrix{}, err
		}
		names[i] = c.Name
	}

	values := make([][]float64, len(names))
	for i := range values {
		values[i] = make([]float64, len(names))
	}
	for i := range names {
		for j := i; j < len(names); j++ {
			r, err := Correlation(movies, names[i], names[j])
			if err != nil {
				r = math.NaN()
			}
			values[i][j] = r
			values[j][i] = r
		}
	}
	return model.CorrMatrix{Columns: names, Values: values}, nil
}

// Describe summarises a numeric column: count, mean, sample standard deviation,
// min, quartiles and max. Quartiles interpolate linearly between closest ranks.
func Describe(movies model.Movies, column string) (model.Distribution, error) {
	c, err := model.ParseNumericColumn(column)
	if err != nil {
		return model.Distribution{}, err
	}
	values, err := Values(movies, c.Name)
	if err != nil {
		return model.Distribution{}, err
	}
	if len(values) == 0 {
		return model.Distribution{}, fmt.Errorf("%w: %s", model.ErrEmptyAggregateDomain, c.Name)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	d := model.Distribution{
		Column: c.Name,
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		d.Std = stat.StdDev(sorted, nil)
	}
	return d, nil
}

// quantile returns the q-th quantile of sorted values, interpolating linearly
// between the two closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
