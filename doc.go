// Package moviestat runs an exploratory analysis over a TMDb movie export.
//
// The pipeline has four stages:
//
//  1. Load reads a CSV, TSV, LTSV, Parquet or Excel (XLSX) file, optionally
//     compressed, into a raw Table.
//  2. Clean drops unused columns and duplicate rows, normalizes release dates,
//     blanks zero runtimes and drops rows without a budget or revenue.
//  3. Analyze computes extremes, correlations, the profitable subset, group
//     totals and the runtime distribution.
//  4. The report package renders the result as text, JSON, a workbook and charts.
//
// # Basic Usage
//
//	table, err := moviestat.LoadContext(ctx, "tmdb-movies.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	movies, err := moviestat.CleanContext(ctx, table)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	analysis, err := moviestat.Analyze(ctx, movies, moviestat.NewAnalysisOptions())
//
// # Supported Input Files
//
// The format is taken from the extension, after any compression suffix:
//   - ".csv", ".tsv", ".ltsv", ".parquet", ".xlsx" (first sheet only)
//   - ".gz", ".bz2", ".xz", ".zst" compression
//
// A UTF-8 byte order mark at the start of a delimited file is ignored.
//
// # Release Dates
//
// Release dates are accepted in ISO 8601 and in the US month/day/year layout
// of the TMDb export. A two-digit year takes its century from release_year
// when that column agrees on the last two digits.
//
// # SQL Access
//
// OpenDB loads cleaned movies into an in-memory SQLite database with the tables
// movies, movie_genres and movie_cast, so ad hoc questions can be asked in SQL.
// DumpDB writes those tables back out as CSV.
//
// # Export
//
// Export writes cleaned movies in any supported format except that bzip2 can
// only be read. An exported file loads and cleans back to the same movies.
package moviestat
