package report

import (
	"bytes"
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/moviestat/domain/model"
)

func testMovie(id int, title string, year int, budget, revenue, runtime int64, genres ...string) model.Movie {
	m := model.Movie{
		ID:          id,
		Title:       title,
		Cast:        []string{"Chris Pratt"},
		Genres:      genres,
		ReleaseDate: time.Date(year, time.May, 1, 0, 0, 0, 0, time.UTC),
		ReleaseYear: year,
		Budget:      budget,
		Revenue:     revenue,
		Profit:      revenue - budget,
	}
	if runtime > 0 {
		m.Runtime = sql.NullInt64{Int64: runtime, Valid: true}
	}
	return m
}

func testMovies() model.Movies {
	return model.Movies{
		testMovie(1, "Jurassic World", 2015, 150000000, 1513528810, 124, "Action", "Adventure"),
		testMovie(2, "Mad Max: Fury Road", 2015, 150000000, 378436354, 120, "Action"),
		testMovie(3, "The Warrior's Way", 2010, 425000000, 11087569, 100, "Adventure", "Western"),
		testMovie(4, "Short", 2010, 10, 20, 0, "Drama"),
	}
}

func testAnalysis() *model.Analysis {
	ms := testMovies()
	r := 0.5
	profitableRuntime := 122.0
	return &model.Analysis{
		RunID:      "1a2b3c4d",
		Source:     "tmdb-movies.csv",
		MovieCount: len(ms),
		Extremes: []model.Extremes{
			{Column: model.ColumnBudget, Max: ms[2], MaxVal: 425000000, Min: ms[3], MinVal: 10},
			{Column: model.ColumnRuntime, Max: ms[0], MaxVal: 124, Min: ms[2], MinVal: 100},
		},
		Correlations: []model.Correlation{
			{A: model.ColumnRuntime, B: model.ColumnRevenue, R: &r},
			{A: model.ColumnBudget, B: model.ColumnRevenue, Note: "moviestat: correlation is undefined"},
		},
		ProfitThreshold:  50000000,
		ProfitableCount:  2,
		ProfitableGenres: []model.TokenCount{{Token: "Action", Count: 2}, {Token: "Adventure", Count: 1}},
		ProfitableCast:   []model.TokenCount{{Token: "Chris Pratt", Count: 2}},
		ProfitableAvg:    model.SubsetAverages{Budget: 150000000, Revenue: 945982582, Runtime: &profitableRuntime},
		AverageRuntime:   114.66666666666667,
		Runtime: model.Distribution{
			Column: model.ColumnRuntime, Count: 3, Mean: 114.67, Std: 12.86,
			Min: 100, Q1: 110, Median: 120, Q3: 122, Max: 124,
		},
		ProfitByYear: []model.GroupTotal{
			{Key: "2010", Total: -413912421, Count: 2},
			{Key: "2015", Total: 1591965164, Count: 2},
		},
		MostProfitable: model.GroupTotal{Key: "2015", Total: 1591965164, Count: 2},
		GenreByYear: []model.GroupMode{
			{Key: "2010", Category: "Adventure", Count: 1},
			{Key: "2015", Category: "Action", Count: 2},
		},
		Matrix: model.CorrMatrix{
			Columns: []string{model.ColumnBudget, model.ColumnRevenue},
			Values:  [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
		},
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, testAnalysis()))
	out := buf.String()

	for _, want := range []string{
		"Now we have 4 movies.",
		"Highest budget: #3 The Warrior's Way (2010), $425,000,000.00",
		"Lowest budget: #4 Short (2010), $10.00",
		"Longest runtime: #1 Jurassic World (2015), 124 minutes",
		"The average runtime of the movies is: 114.67 minutes",
		"Correlation between runtime and revenue: 0.5000",
		"Correlation between budget and revenue: undefined",
		"Movies with a profit of at least $50,000,000.00: 2",
		"Average runtime of profitable movies: 122.00 minutes",
		"Most frequent genres: Action (2), Adventure (1)",
		"The most profitable year was 2015 with a total profit of $1,591,965,164.00",
		"2010  Adventure (1)",
	} {
		assert.Contains(t, out, want)
	}
}

func TestMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "$0.00"},
		{in: 1234.5, want: "$1,234.50"},
		{in: -413912421, want: "-$413,912,421.00"},
		{in: math.NaN(), want: "n/a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, money(tt.in))
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testAnalysis()))

	var got struct {
		MovieCount int `json:"movie_count"`
		Extremes   []struct {
			Column string `json:"column"`
			Max    struct {
				Title       string `json:"title"`
				ReleaseDate string `json:"release_date"`
				Runtime     *int64 `json:"runtime"`
			} `json:"max"`
			Min struct {
				Runtime *int64 `json:"runtime"`
			} `json:"min"`
		} `json:"extremes"`
		Correlations []struct {
			R    *float64 `json:"r"`
			Note string   `json:"note"`
		} `json:"correlations"`
		Matrix struct {
			Columns []string     `json:"columns"`
			Values  [][]*float64 `json:"values"`
		} `json:"correlation_matrix"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, 4, got.MovieCount)
	require.Len(t, got.Extremes, 2)
	assert.Equal(t, "The Warrior's Way", got.Extremes[0].Max.Title)
	assert.Equal(t, "2010-05-01", got.Extremes[0].Max.ReleaseDate)
	assert.Nil(t, got.Extremes[0].Min.Runtime, "missing runtime must be null")

	require.Len(t, got.Correlations, 2)
	require.NotNil(t, got.Correlations[0].R)
	assert.InDelta(t, 0.5, *got.Correlations[0].R, 1e-12)
	assert.Nil(t, got.Correlations[1].R)
	assert.NotEmpty(t, got.Correlations[1].Note)

	require.Len(t, got.Matrix.Values, 2)
	require.NotNil(t, got.Matrix.Values[0][0])
	assert.InDelta(t, 1.0, *got.Matrix.Values[0][0], 1e-12)
	assert.Nil(t, got.Matrix.Values[0][1], "undefined cell must be null")
}

func TestWriteWorkbook(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "summary.xlsx")
	require.NoError(t, WriteWorkbook(path, testAnalysis()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetSummary, SheetExtremes, SheetGenres, SheetCast,
		SheetProfitByYear, SheetGenreByYear, SheetCorrelation,
	}, f.GetSheetList())

	rows, err := f.GetRows(SheetGenres)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"genre", "count"}, {"Action", "2"}, {"Adventure", "1"}}, rows)

	year, err := f.GetCellValue(SheetGenreByYear, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Action", year)

	undefined, err := f.GetCellValue(SheetCorrelation, "C2")
	require.NoError(t, err)
	assert.Empty(t, undefined)
}

// TestUndefinedProfitableRuntime covers a profitable subset in which no movie
// has a runtime: every output shows the average as undefined, never as zero.
func TestUndefinedProfitableRuntime(t *testing.T) {
	t.Parallel()

	analysis := func() *model.Analysis {
		a := testAnalysis()
		a.ProfitableAvg.Runtime = nil
		a.ProfitableAvg.RuntimeNote = "moviestat: no values to aggregate: runtime"
		return a
	}

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, WriteText(&buf, analysis()))
		assert.Contains(t, buf.String(),
			"Average runtime of profitable movies: undefined (moviestat: no values to aggregate: runtime)")
		assert.NotContains(t, buf.String(), "Average runtime of profitable movies: 0.00")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, analysis()))

		var got struct {
			ProfitableAvg map[string]any `json:"profitable_averages"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		runtime, ok := got.ProfitableAvg["runtime"]
		require.True(t, ok)
		assert.Nil(t, runtime)
		assert.NotEmpty(t, got.ProfitableAvg["runtime_note"])
	})

	t.Run("workbook", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "summary.xlsx")
		require.NoError(t, WriteWorkbook(path, analysis()))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		label, err := f.GetCellValue(SheetSummary, "A10")
		require.NoError(t, err)
		assert.Equal(t, "profitable_average_runtime", label)
		value, err := f.GetCellValue(SheetSummary, "B10")
		require.NoError(t, err)
		assert.Empty(t, value)
	})
}

func TestCharts(t *testing.T) {
	t.Parallel()

	for _, format := range []string{ChartPNG, ChartSVG} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			written, err := Charts(dir, testMovies(), testAnalysis(), format)
			require.NoError(t, err)
			assert.Len(t, written, 8)
			for _, path := range written {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Positive(t, info.Size())
				assert.Equal(t, "."+format, filepath.Ext(path))
			}
		})
	}

	t.Run("empty feeds are skipped", func(t *testing.T) {
		t.Parallel()

		written, err := Charts(t.TempDir(), model.Movies{}, &model.Analysis{}, ChartPNG)
		require.NoError(t, err)
		assert.Empty(t, written)
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		_, err := Charts(t.TempDir(), testMovies(), testAnalysis(), "gif")
		assert.ErrorIs(t, err, ErrUnsupportedChartFormat)
	})
}
