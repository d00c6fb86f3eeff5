package moviestat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/moviestat/domain/model"
	"github.com/nao1215/moviestat/internal/logging"
)

func TestAnalyze(t *testing.T) {
	t.Parallel()

	ctx := logging.ContextWithNewRunID(t.Context())
	opts := NewAnalysisOptions()
	opts.Source = fixturePath

	a, err := Analyze(ctx, cleanFixture(t), opts)
	require.NoError(t, err)

	assert.Equal(t, logging.RunIDFromContext(ctx), a.RunID)
	assert.Len(t, a.RunID, 8)
	assert.Equal(t, fixturePath, a.Source)
	assert.Equal(t, 7, a.MovieCount)

	t.Run("extremes", func(t *testing.T) {
		t.Parallel()

		want := map[string][2]int{
			model.ColumnBudget:  {7, 9},
			model.ColumnRevenue: {10, 8},
			model.ColumnProfit:  {10, 7},
			model.ColumnRuntime: {10, 7},
		}
		require.Len(t, a.Extremes, len(want))
		for _, e := range a.Extremes {
			ids, ok := want[e.Column]
			require.True(t, ok, e.Column)
			assert.Equal(t, ids[0], e.Max.ID, "max %s", e.Column)
			assert.Equal(t, ids[1], e.Min.ID, "min %s", e.Column)
		}
		assert.InDelta(t, -413912431, a.Extremes[2].MinVal, 0.5)
	})

	t.Run("correlations", func(t *testing.T) {
		t.Parallel()

		require.Len(t, a.Correlations, 2)
		for _, c := range a.Correlations {
			require.NotNil(t, c.R, "%s/%s", c.A, c.B)
			assert.InDelta(t, 0, *c.R, 1)
			assert.Empty(t, c.Note)
		}
	})

	t.Run("profitable subset", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, int64(50000000), a.ProfitThreshold)
		assert.Equal(t, 4, a.ProfitableCount)
		assert.Equal(t, []model.TokenCount{
			{Token: "Adventure", Count: 4},
			{Token: "Science Fiction", Count: 4},
			{Token: "Action", Count: 3},
			{Token: "Thriller", Count: 3},
			{Token: "Fantasy", Count: 1},
		}, a.ProfitableGenres)
		assert.Len(t, a.ProfitableCast, 10)
		assert.Equal(t, "Chris Pratt", a.ProfitableCast[0].Token)
		assert.InDelta(t, 161750000, a.ProfitableAvg.Budget, 1e-6)
		assert.InDelta(t, 1242177303, a.ProfitableAvg.Revenue, 1e-6)
		require.NotNil(t, a.ProfitableAvg.Runtime)
		assert.InDelta(t, 131.25, *a.ProfitableAvg.Runtime, 1e-9)
		assert.Empty(t, a.ProfitableAvg.RuntimeNote)
	})

	t.Run("runtime", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, 734.0/6, a.AverageRuntime, 1e-9)
		assert.Equal(t, 6, a.Runtime.Count, "the missing runtime is not counted")
		assert.InDelta(t, 100, a.Runtime.Min, 1e-9)
		assert.InDelta(t, 119.5, a.Runtime.Median, 1e-9)
		assert.InDelta(t, 162, a.Runtime.Max, 1e-9)
	})

	t.Run("groups", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []model.GroupTotal{
			{Key: "1960", Total: 31193052, Count: 1},
			{Key: "2009", Total: 2544505847, Count: 1},
			{Key: "2010", Total: -410912431, Count: 2},
			{Key: "2015", Total: 1777203365, Count: 3},
		}, a.ProfitByYear)
		assert.Equal(t, "2009", a.MostProfitable.Key)
		assert.Equal(t, []model.GroupMode{
			{Key: "1960", Category: "Drama", Count: 1},
			{Key: "2009", Category: "Action", Count: 1},
			{Key: "2010", Category: "Action", Count: 1},
			{Key: "2015", Category: "Adventure", Count: 3},
		}, a.GenreByYear)
	})

	t.Run("matrix", func(t *testing.T) {
		t.Parallel()

		n := len(a.Matrix.Columns)
		require.Positive(t, n)
		require.Len(t, a.Matrix.Values, n)
		for i := range n {
			assert.InDelta(t, 1, a.Matrix.Values[i][i], 1e-9)
			for j := range n {
				assert.InDelta(t, a.Matrix.Values[i][j], a.Matrix.Values[j][i], 1e-12)
			}
		}
	})
}

func TestAnalyzeOptions(t *testing.T) {
	t.Parallel()

	movies := cleanFixture(t)

	t.Run("top n", func(t *testing.T) {
		t.Parallel()

		opts := NewAnalysisOptions()
		opts.TopN = 2
		a, err := Analyze(t.Context(), movies, opts)
		require.NoError(t, err)
		assert.Len(t, a.ProfitableGenres, 2)
		assert.Len(t, a.ProfitableCast, 2)
	})

	t.Run("threshold above every profit", func(t *testing.T) {
		t.Parallel()

		opts := NewAnalysisOptions()
		opts.ProfitThreshold = 10_000_000_000
		a, err := Analyze(t.Context(), movies, opts)
		require.NoError(t, err)
		assert.Zero(t, a.ProfitableCount)
		assert.Empty(t, a.ProfitableGenres)
		assert.Equal(t, 7, a.MovieCount)
	})

	t.Run("undefined correlation is noted", func(t *testing.T) {
		t.Parallel()

		same := make(model.Movies, len(movies))
		copy(same, movies)
		for i := range same {
			same[i].Budget = 1000
		}
		a, err := Analyze(t.Context(), same, NewAnalysisOptions())
		require.NoError(t, err)
		budget := a.Correlations[1]
		assert.Equal(t, model.ColumnBudget, budget.A)
		assert.Nil(t, budget.R)
		assert.NotEmpty(t, budget.Note)
	})

	t.Run("no profitable movie has a runtime", func(t *testing.T) {
		t.Parallel()

		hit, _ := movies.ByID(1)
		hit.Runtime.Valid = false
		flop, _ := movies.ByID(7)
		a, err := Analyze(t.Context(), model.Movies{hit, flop}, NewAnalysisOptions())
		require.NoError(t, err)
		assert.Equal(t, 1, a.ProfitableCount)
		assert.Nil(t, a.ProfitableAvg.Runtime)
		assert.Contains(t, a.ProfitableAvg.RuntimeNote, ErrEmptyAggregateDomain.Error())
		assert.InDelta(t, 100, a.AverageRuntime, 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		_, err := Analyze(t.Context(), model.Movies{}, NewAnalysisOptions())
		assert.ErrorIs(t, err, ErrEmptyAggregateDomain)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := Analyze(ctx, movies, NewAnalysisOptions())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOpenDB(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	db, err := OpenDB(ctx, cleanFixture(t))
	require.NoError(t, err)
	defer db.Close()

	counts := map[string]int{"movies": 7, "movie_genres": 24, "movie_cast": 21}
	for table, want := range counts {
		var got int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&got))
		assert.Equal(t, want, got, table)
	}

	var profit int64
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT SUM(profit) FROM movies WHERE release_year = ?", 2015).Scan(&profit))
	assert.Equal(t, int64(1777203365), profit)

	var missing int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies WHERE runtime IS NULL").Scan(&missing))
	assert.Equal(t, 1, missing)

	var genre string
	require.NoError(t, db.QueryRowContext(ctx, `
		SELECT g.genre FROM movie_genres g
		JOIN movies m ON m.id = g.movie_id
		WHERE m.profit >= 50000000
		GROUP BY g.genre ORDER BY COUNT(*) DESC, MIN(g.movie_id), MIN(g.position) LIMIT 1`).Scan(&genre))
	assert.Equal(t, "Adventure", genre)

	t.Run("dump", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "dump")
		written, err := DumpDB(ctx, db, dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "movies.csv"),
			filepath.Join(dir, "movie_genres.csv"),
			filepath.Join(dir, "movie_cast.csv"),
		}, written)

		dumped, err := LoadContext(ctx, written[0])
		require.NoError(t, err)
		assert.Equal(t, 7, dumped.Len())
		assert.Equal(t, "Jurassic World", dumped.Value(0, "title"))

		info, err := os.Stat(written[1])
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})
}
