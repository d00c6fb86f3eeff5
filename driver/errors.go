package driver

import "errors"

// Predefined errors
var (
	// ErrNoMovies is returned when a driver is opened without a connector
	ErrNoMovies = errors.New("moviestat driver: no movies to load, use NewConnector")

	// ErrStmtExecContextNotSupported is returned when statement does not support ExecContext
	ErrStmtExecContextNotSupported = errors.New("moviestat driver: statement does not support ExecContext")

	// ErrBeginTxNotSupported is returned when underlying connection does not support BeginTx
	ErrBeginTxNotSupported = errors.New("moviestat driver: underlying connection does not support BeginTx")

	// ErrPrepareContextNotSupported is returned when underlying connection does not support PrepareContext
	ErrPrepareContextNotSupported = errors.New("moviestat driver: underlying connection does not support PrepareContext")

	// ErrNotMovieConnection is returned when a raw connection is not a moviestat connection
	ErrNotMovieConnection = errors.New("moviestat driver: connection is not a moviestat connection")
)
