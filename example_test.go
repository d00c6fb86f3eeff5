package moviestat_test

import (
	"context"
	"fmt"
	"log"

	"github.com/nao1215/moviestat"
)

// ExampleAnalyze runs the whole pipeline over the sample export.
func ExampleAnalyze() {
	ctx := context.Background()

	table, err := moviestat.LoadContext(ctx, "testdata/tmdb-movies.csv")
	if err != nil {
		log.Fatal(err)
	}
	movies, err := moviestat.CleanContext(ctx, table)
	if err != nil {
		log.Fatal(err)
	}

	analysis, err := moviestat.Analyze(ctx, movies, moviestat.NewAnalysisOptions())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("raw rows: %d, cleaned movies: %d\n", table.Len(), analysis.MovieCount)
	fmt.Printf("profitable movies: %d\n", analysis.ProfitableCount)
	fmt.Printf("most profitable year: %s\n", analysis.MostProfitable.Key)
	for _, g := range analysis.ProfitableGenres[:2] {
		fmt.Printf("%s: %d\n", g.Token, g.Count)
	}

	// Output:
	// raw rows: 10, cleaned movies: 7
	// profitable movies: 4
	// most profitable year: 2009
	// Adventure: 4
	// Science Fiction: 4
}

// ExampleOpenDB asks a question of the cleaned movies in SQL.
func ExampleOpenDB() {
	ctx := context.Background()

	table, err := moviestat.Load("testdata/tmdb-movies.csv")
	if err != nil {
		log.Fatal(err)
	}
	movies, err := moviestat.Clean(table)
	if err != nil {
		log.Fatal(err)
	}

	db, err := moviestat.OpenDB(ctx, movies)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT c.name, m.title FROM movie_cast c
		JOIN movies m ON m.id = c.movie_id
		WHERE c.position = 1 AND m.release_year < 2010
		ORDER BY m.release_year`)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, title string
		if err := rows.Scan(&name, &title); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s in %s\n", name, title)
	}
	if err := rows.Err(); err != nil {
		log.Fatal(err)
	}

	// Output:
	// Anthony Perkins in Psycho
	// Sam Worthington in Avatar
}
