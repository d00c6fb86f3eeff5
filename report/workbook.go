package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/moviestat/domain/model"
)

// Workbook sheet names, in order.
const (
	SheetSummary      = "Summary"
	SheetExtremes     = "Extremes"
	SheetGenres       = "Genres"
	SheetCast         = "Cast"
	SheetProfitByYear = "ProfitByYear"
	SheetGenreByYear  = "GenreByYear"
	SheetCorrelation  = "Correlation"
)

// WriteWorkbook saves the analysis as an XLSX workbook with one sheet per result.
func WriteWorkbook(path string, a *model.Analysis) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetExtremes, SheetGenres, SheetCast, SheetProfitByYear, SheetGenreByYear, SheetCorrelation} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	sheets := map[string][][]any{
		SheetSummary:      summaryRows(a),
		SheetExtremes:     extremesRows(a),
		SheetGenres:       tallyRows("genre", a.ProfitableGenres),
		SheetCast:         tallyRows("cast", a.ProfitableCast),
		SheetProfitByYear: profitByYearRows(a),
		SheetGenreByYear:  genreByYearRows(a),
		SheetCorrelation:  correlationRows(a.Matrix),
	}
	for sheet, rows := range sheets {
		if err := writeRows(f, sheet, rows); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", sheet, err)
		}
		if len(rows) > 0 {
			last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRows(a *model.Analysis) [][]any {
	rows := [][]any{
		{"metric", "value"},
		{"source", a.Source},
		{"run_id", a.RunID},
		{"movies", a.MovieCount},
		{"average_runtime", a.AverageRuntime},
		{"profit_threshold", a.ProfitThreshold},
		{"profitable_movies", a.ProfitableCount},
		{"profitable_average_budget", a.ProfitableAvg.Budget},
		{"profitable_average_revenue", a.ProfitableAvg.Revenue},
		{"profitable_average_runtime", optional(a.ProfitableAvg.Runtime)},
		{"most_profitable_year", a.MostProfitable.Key},
		{"most_profitable_year_total", a.MostProfitable.Total},
		{"runtime_q1", a.Runtime.Q1},
		{"runtime_median", a.Runtime.Median},
		{"runtime_q3", a.Runtime.Q3},
	}
	for _, c := range a.Correlations {
		var v any = c.Note
		if c.R != nil {
			v = *c.R
		}
		rows = append(rows, []any{fmt.Sprintf("correlation_%s_%s", c.A, c.B), v})
	}
	return rows
}

// optional unwraps v, leaving the cell empty when v is nil.
func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func extremesRows(a *model.Analysis) [][]any {
	rows := [][]any{{"column", "kind", "id", "title", "release_year", "value"}}
	for _, e := range a.Extremes {
		rows = append(rows,
			[]any{e.Column, "max", e.Max.ID, e.Max.Title, e.Max.ReleaseYear, e.MaxVal},
			[]any{e.Column, "min", e.Min.ID, e.Min.Title, e.Min.ReleaseYear, e.MinVal},
		)
	}
	return rows
}

func tallyRows(label string, tally []model.TokenCount) [][]any {
	rows := [][]any{{label, "count"}}
	for _, tc := range tally {
		rows = append(rows, []any{tc.Token, tc.Count})
	}
	return rows
}

func profitByYearRows(a *model.Analysis) [][]any {
	rows := [][]any{{"release_year", "total_profit", "movies"}}
	for _, g := range a.ProfitByYear {
		rows = append(rows, []any{g.Key, g.Total, g.Count})
	}
	return rows
}

func genreByYearRows(a *model.Analysis) [][]any {
	rows := [][]any{{"release_year", "genre", "count"}}
	for _, g := range a.GenreByYear {
		rows = append(rows, []any{g.Key, g.Category, g.Count})
	}
	return rows
}

// correlationRows lays out the matrix with column names on both axes.
// Undefined cells are left empty.
func correlationRows(cm model.CorrMatrix) [][]any {
	header := []any{""}
	for _, c := range cm.Columns {
		header = append(header, c)
	}
	rows := [][]any{header}
	for i, name := range cm.Columns {
		row := []any{name}
		for _, v := range cm.Values[i] {
			if math.IsNaN(v) {
				row = append(row, nil)
				continue
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}
