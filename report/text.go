// Package report renders an analysis as a narrative summary, JSON, an Excel
// workbook and charts. It holds no analytical logic; every number it prints
// comes from a model.Analysis or from the aggregate chart feeds.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/moviestat/domain/model"
)

// extremeLabels name the highest and lowest row of each reported column.
var extremeLabels = map[string][2]string{
	model.ColumnBudget:  {"Highest budget", "Lowest budget"},
	model.ColumnRevenue: {"Highest revenue", "Lowest revenue"},
	model.ColumnProfit:  {"Highest profit", "Lowest profit"},
	model.ColumnRuntime: {"Longest runtime", "Shortest runtime"},
}

// textWriter remembers the first write error so the narrative can be
// written without checking every line.
type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

// WriteText writes the narrative summary of an analysis.
func WriteText(w io.Writer, a *model.Analysis) error {
	tw := &textWriter{w: w}

	if a.Source != "" {
		tw.printf("Source: %s\n", a.Source)
	}
	tw.printf("Now we have %s movies.\n\n", humanize.Comma(int64(a.MovieCount)))

	for _, e := range a.Extremes {
		labels, ok := extremeLabels[e.Column]
		if !ok {
			labels = [2]string{"Highest " + e.Column, "Lowest " + e.Column}
		}
		tw.printf("%s: %s, %s\n", labels[0], e.Max.String(), formatValue(e.Column, e.MaxVal))
		tw.printf("%s: %s, %s\n", labels[1], e.Min.String(), formatValue(e.Column, e.MinVal))
	}

	tw.printf("\nThe average runtime of the movies is: %.2f minutes\n", a.AverageRuntime)
	d := a.Runtime
	tw.printf("Runtime distribution: count %d, mean %.2f, std %.2f, min %.0f, 25%% %.2f, median %.2f, 75%% %.2f, max %.0f\n",
		d.Count, d.Mean, d.Std, d.Min, d.Q1, d.Median, d.Q3, d.Max)

	tw.printf("\n")
	for _, c := range a.Correlations {
		if c.R == nil {
			tw.printf("Correlation between %s and %s: undefined (%s)\n", c.A, c.B, c.Note)
			continue
		}
		tw.printf("Correlation between %s and %s: %.4f\n", c.A, c.B, *c.R)
	}

	tw.printf("\nMovies with a profit of at least %s: %s\n",
		money(float64(a.ProfitThreshold)), humanize.Comma(int64(a.ProfitableCount)))
	if a.ProfitableCount > 0 {
		tw.printf("Average budget of profitable movies: %s\n", money(a.ProfitableAvg.Budget))
		tw.printf("Average revenue of profitable movies: %s\n", money(a.ProfitableAvg.Revenue))
		if rt := a.ProfitableAvg.Runtime; rt != nil {
			tw.printf("Average runtime of profitable movies: %.2f minutes\n", *rt)
		} else {
			tw.printf("Average runtime of profitable movies: undefined (%s)\n", a.ProfitableAvg.RuntimeNote)
		}
		tw.printf("Most frequent genres: %s\n", formatTally(a.ProfitableGenres))
		tw.printf("Most frequent cast: %s\n", formatTally(a.ProfitableCast))
	}

	if a.MostProfitable.Key != "" {
		tw.printf("\nThe most profitable year was %s with a total profit of %s\n",
			a.MostProfitable.Key, money(a.MostProfitable.Total))
	}

	if len(a.GenreByYear) > 0 {
		tw.printf("\nMost popular genre from year to year:\n")
		for _, g := range a.GenreByYear {
			tw.printf("  %s  %s (%d)\n", g.Key, g.Category, g.Count)
		}
	}
	return tw.err
}

// formatValue renders a column value: dollars for money columns, minutes for runtime.
func formatValue(column string, v float64) string {
	if column == model.ColumnRuntime {
		return fmt.Sprintf("%.0f minutes", v)
	}
	return money(v)
}

// money formats a dollar amount with thousands separators and two decimals.
func money(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func formatTally(tally []model.TokenCount) string {
	if len(tally) == 0 {
		return "none"
	}
	parts := make([]string, len(tally))
	for i, tc := range tally {
		parts[i] = fmt.Sprintf("%s (%d)", tc.Token, tc.Count)
	}
	return strings.Join(parts, ", ")
}
