// Package driver exposes cleaned movies to database/sql.
//
// Movies are loaded into an in-memory SQLite database (modernc.org/sqlite) when a
// connection is opened. Every connection is an independent database holding
// three tables:
//
//	movies(id, title, director, tagline, release_date, release_year,
//	       budget, revenue, runtime, profit)
//	movie_genres(movie_id, genre, position)
//	movie_cast(movie_id, name, position)
//
// runtime is NULL when missing and list positions start at 1.
//
// Usage:
//
//	db := sql.OpenDB(driver.NewConnector(movies))
//	defer db.Close()
package driver
