package moviestat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nao1215/moviestat/aggregate"
	"github.com/nao1215/moviestat/domain/model"
	moviedriver "github.com/nao1215/moviestat/driver"
	"github.com/nao1215/moviestat/internal/logging"
)

// Load reads a movie file into a raw table.
//
// Supported file formats:
//   - CSV files (.csv)
//   - TSV files (.tsv)
//   - LTSV files (.ltsv)
//   - Excel files (.xlsx), first sheet only
//   - Parquet files (.parquet)
//   - Compressed versions of above (.gz, .bz2, .xz, .zst)
//
// A missing path fails with ErrInputNotFound, an unknown extension with
// ErrUnsupportedFormat and malformed content with ErrParseFailure.
//
// Example usage:
//
//	table, err := moviestat.Load("testdata/tmdb-movies.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	movies, err := moviestat.Clean(table)
func Load(path string) (*Table, error) {
	return LoadContext(context.Background(), path)
}

// LoadContext reads a movie file into a raw table with context support.
// The context is checked between rows; cancellation returns ctx.Err().
func LoadContext(ctx context.Context, path string) (*Table, error) {
	ec := NewErrorContext("load", path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ec.Error(ErrInputNotFound)
		}
		return nil, ec.WithDetails(err.Error()).Error(ErrParseFailure)
	}
	if info.IsDir() {
		return nil, ec.WithDetails("path is a directory").Error(ErrUnsupportedFormat)
	}

	f := newFile(path)
	if f.fileType == FileTypeUnsupported {
		return nil, ec.Error(ErrUnsupportedFormat)
	}

	t, err := f.toTable(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, ErrUnsupportedFormat) {
			return nil, ec.Error(err)
		}
		return nil, ec.WithDetails(err.Error()).Error(ErrParseFailure)
	}

	logging.Ctx(ctx).Info().
		Str("file", path).
		Str("format", f.fileType.String()).
		Str("compression", f.compressionType.String()).
		Int("rows", t.Len()).
		Int("columns", len(t.header)).
		Msg("loaded")
	return t, nil
}

// AnalysisOptions configures Analyze.
type AnalysisOptions struct {
	// ProfitThreshold is the minimum profit of a movie in the profitable subset.
	ProfitThreshold int64
	// TopN limits the genre and cast tallies of the profitable subset. 0 keeps all.
	TopN int
	// Source names the input in the result.
	Source string
}

// NewAnalysisOptions returns the default options: a 50,000,000 USD profit
// threshold and the ten leading genres and cast members.
func NewAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		ProfitThreshold: aggregate.DefaultProfitThreshold,
		TopN:            10,
	}
}

// extremeColumns are the columns whose highest and lowest movies are reported.
var extremeColumns = []string{
	model.ColumnBudget,
	model.ColumnRevenue,
	model.ColumnProfit,
	model.ColumnRuntime,
}

// correlationPairs are the pairs reported as named correlations.
var correlationPairs = [][2]string{
	{model.ColumnRuntime, model.ColumnRevenue},
	{model.ColumnBudget, model.ColumnRevenue},
}

// Analyze computes every result the reports are rendered from. An undefined
// correlation is recorded with a nil coefficient and a note; any other
// aggregate error aborts the analysis.
func Analyze(ctx context.Context, movies model.Movies, opts AnalysisOptions) (*model.Analysis, error) {
	log := logging.Ctx(ctx)
	movies = aggregate.DeriveProfit(movies)

	a := &model.Analysis{
		RunID:           logging.RunIDFromContext(ctx),
		Source:          opts.Source,
		MovieCount:      len(movies),
		ProfitThreshold: opts.ProfitThreshold,
	}

	for _, column := range extremeColumns {
		ext, err := aggregate.Extremal(movies, column)
		if err != nil {
			return nil, fmt.Errorf("extremes of %s: %w", column, err)
		}
		a.Extremes = append(a.Extremes, ext)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, pair := range correlationPairs {
		c := model.Correlation{A: pair[0], B: pair[1]}
		r, err := aggregate.Correlation(movies, pair[0], pair[1])
		switch {
		case err == nil:
			c.R = &r
		case errors.Is(err, ErrUndefinedCorrelation), errors.Is(err, ErrEmptyAggregateDomain):
			c.Note = err.Error()
			log.Warn().Str("a", pair[0]).Str("b", pair[1]).Err(err).Msg("correlation undefined")
		default:
			return nil, err
		}
		a.Correlations = append(a.Correlations, c)
	}

	a.Profitable = aggregate.FilterProfitable(movies, opts.ProfitThreshold)
	a.ProfitableCount = len(a.Profitable)
	if a.ProfitableCount > 0 {
		if err := analyzeProfitable(a, opts); err != nil {
			return nil, err
		}
	} else {
		log.Warn().Int64("threshold", opts.ProfitThreshold).Msg("no movie reaches the profit threshold")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var err error
	if a.AverageRuntime, err = aggregate.ColumnAverage(movies, model.ColumnRuntime); err != nil {
		return nil, fmt.Errorf("average runtime: %w", err)
	}
	if a.Runtime, err = aggregate.Describe(movies, model.ColumnRuntime); err != nil {
		return nil, fmt.Errorf("runtime distribution: %w", err)
	}
	if a.ProfitByYear, err = aggregate.GroupSum(movies, model.ColumnReleaseYear, model.ColumnProfit); err != nil {
		return nil, fmt.Errorf("profit by year: %w", err)
	}
	if a.MostProfitable, err = aggregate.MaxGroup(a.ProfitByYear); err != nil {
		return nil, fmt.Errorf("most profitable year: %w", err)
	}
	if a.GenreByYear, err = aggregate.MostFrequentPerGroup(movies, model.ColumnReleaseYear, model.ColumnGenres); err != nil {
		return nil, fmt.Errorf("genre by year: %w", err)
	}
	if a.Matrix, err = aggregate.CorrelationMatrix(movies); err != nil {
		return nil, fmt.Errorf("correlation matrix: %w", err)
	}

	log.Info().
		Int("movies", a.MovieCount).
		Int("profitable", a.ProfitableCount).
		Str("most_profitable_year", a.MostProfitable.Key).
		Msg("analysis finished")
	return a, nil
}

// analyzeProfitable fills the results computed over the profitable subset.
func analyzeProfitable(a *model.Analysis, opts AnalysisOptions) error {
	subset := aggregate.ProfitableMovies(a.Profitable)

	genres, err := aggregate.TallyMultivalued(subset, model.ColumnGenres)
	if err != nil {
		return err
	}
	cast, err := aggregate.TallyMultivalued(subset, model.ColumnCast)
	if err != nil {
		return err
	}
	a.ProfitableGenres = aggregate.Top(genres, opts.TopN)
	a.ProfitableCast = aggregate.Top(cast, opts.TopN)

	if a.ProfitableAvg.Budget, err = aggregate.ColumnAverage(subset, model.ColumnBudget); err != nil {
		return err
	}
	if a.ProfitableAvg.Revenue, err = aggregate.ColumnAverage(subset, model.ColumnRevenue); err != nil {
		return err
	}
	// every profitable movie may lack a runtime
	avg, err := aggregate.ColumnAverage(subset, model.ColumnRuntime)
	switch {
	case err == nil:
		a.ProfitableAvg.Runtime = &avg
	case errors.Is(err, ErrEmptyAggregateDomain):
		a.ProfitableAvg.RuntimeNote = err.Error()
	default:
		return err
	}
	return nil
}

// OpenDB opens an in-memory SQLite database holding the movies in the tables
// movies, movie_genres and movie_cast.
//
//	db, err := moviestat.OpenDB(ctx, movies)
//	rows, err := db.QueryContext(ctx, `
//		SELECT g.genre, COUNT(*) FROM movie_genres g
//		JOIN movies m ON m.id = g.movie_id
//		WHERE m.profit >= 50000000
//		GROUP BY g.genre ORDER BY 2 DESC`)
func OpenDB(ctx context.Context, movies model.Movies) (*sql.DB, error) {
	db := sql.OpenDB(moviedriver.NewConnector(aggregate.DeriveProfit(movies)))
	// Every connection is a separate in-memory database, so writes are only
	// visible when a single connection is shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open movie database: %w", err)
	}
	return db, nil
}

// DumpDB writes every table of a database opened with OpenDB to outputDir as
// <table>.csv and returns the written paths.
func DumpDB(ctx context.Context, db *sql.DB, outputDir string) ([]string, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	var written []string
	err = conn.Raw(func(driverConn any) error {
		movieConn, ok := driverConn.(*moviedriver.Connection)
		if !ok {
			return moviedriver.ErrNotMovieConnection
		}
		written, err = movieConn.Dump(ctx, outputDir)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("dir", outputDir).Int("tables", len(written)).Msg("database dumped")
	return written, nil
}
