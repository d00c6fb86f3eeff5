package driver

import (
	"context"
	"database/sql/driver"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"

	"github.com/nao1215/moviestat/domain/model"
)

// Table names of the movie database.
const (
	// TableMovies holds one row per movie
	TableMovies = "movies"
	// TableGenres holds one row per movie genre
	TableGenres = "movie_genres"
	// TableCast holds one row per cast member
	TableCast = "movie_cast"
)

// sqlColumn is one column of a table definition.
type sqlColumn struct {
	name string
	typ  string
}

// tableDef describes one table of the movie database.
type tableDef struct {
	name    string
	columns []sqlColumn
	extra   string
}

// schema returns the table definitions in creation order. Column types of the
// movies table follow the model column kinds.
func schema() []tableDef {
	col := func(name, column string) sqlColumn {
		c, err := model.ParseColumn(column)
		if err != nil {
			return sqlColumn{name: name, typ: "TEXT"}
		}
		return sqlColumn{name: name, typ: c.Kind.SQLType()}
	}
	return []tableDef{
		{
			name: TableMovies,
			columns: []sqlColumn{
				{name: "id", typ: "INTEGER PRIMARY KEY"},
				col("title", model.ColumnTitle),
				col("director", model.ColumnDirector),
				col("tagline", model.ColumnTagline),
				col("release_date", model.ColumnReleaseDate),
				col("release_year", model.ColumnReleaseYear),
				col("budget", model.ColumnBudget),
				col("revenue", model.ColumnRevenue),
				col("runtime", model.ColumnRuntime),
				col("profit", model.ColumnProfit),
			},
		},
		{
			name: TableGenres,
			columns: []sqlColumn{
				{name: "movie_id", typ: "INTEGER NOT NULL"},
				{name: "genre", typ: "TEXT NOT NULL"},
				{name: "position", typ: "INTEGER NOT NULL"},
			},
			extra: fmt.Sprintf("FOREIGN KEY (movie_id) REFERENCES %s(id)", TableMovies),
		},
		{
			name: TableCast,
			columns: []sqlColumn{
				{name: "movie_id", typ: "INTEGER NOT NULL"},
				{name: "name", typ: "TEXT NOT NULL"},
				{name: "position", typ: "INTEGER NOT NULL"},
			},
			extra: fmt.Sprintf("FOREIGN KEY (movie_id) REFERENCES %s(id)", TableMovies),
		},
	}
}

// Driver implements database/sql/driver.Driver for a fixed set of movies.
// The DSN is ignored; every connection holds the connector's movies.
type Driver struct {
	connector *Connector
}

// Connector implements database/sql/driver.Connector interface.
// It holds the movies every new connection is loaded with.
type Connector struct {
	movies model.Movies
}

// Connection implements database/sql/driver.Conn interface.
// It wraps an underlying SQLite connection that contains the loaded movies.
type Connection struct {
	conn driver.Conn // Underlying SQLite connection with loaded movies
}

// Transaction implements database/sql/driver.Tx interface.
// It wraps an underlying SQLite transaction for atomic operations.
type Transaction struct {
	tx driver.Tx // Underlying SQLite transaction
}

// NewConnector creates a connector for the given movies. The slice is not copied;
// callers must not modify it while connections are being opened.
func NewConnector(movies model.Movies) *Connector {
	return &Connector{movies: movies}
}

// Open implements driver.Driver interface
func (d *Driver) Open(_ string) (driver.Conn, error) {
	if d.connector == nil {
		return nil, ErrNoMovies
	}
	return d.connector.Connect(context.Background())
}

// Connect implements driver.Connector interface
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	sqliteDriver := &sqlite.Driver{}
	conn, err := sqliteDriver.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	if err := c.loadMovies(ctx, conn); err != nil {
		_ = conn.Close() // Ignore close error since we're already returning an error
		return nil, fmt.Errorf("failed to load movies: %w", err)
	}

	return &Connection{conn: conn}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return &Driver{connector: c}
}

// loadMovies creates the schema and inserts every movie in one transaction.
func (c *Connector) loadMovies(ctx context.Context, conn driver.Conn) error {
	for _, def := range schema() {
		if err := c.executeStatement(ctx, conn, c.buildCreateTableQuery(def), nil); err != nil {
			return fmt.Errorf("failed to create table %s: %w", def.name, err)
		}
	}

	beginner, ok := conn.(driver.ConnBeginTx)
	if !ok {
		return ErrBeginTxNotSupported
	}
	tx, err := beginner.BeginTx(ctx, driver.TxOptions{})
	if err != nil {
		return err
	}

	if err := c.insertMovies(ctx, conn); err != nil {
		_ = tx.Rollback() // Ignore rollback error, the insert error is more useful
		return err
	}
	return tx.Commit()
}

// insertMovies inserts the movies and their list columns using prepared statements.
func (c *Connector) insertMovies(ctx context.Context, conn driver.Conn) error {
	defs := schema()
	stmts := make([]driver.Stmt, len(defs))
	for i, def := range defs {
		stmt, err := conn.Prepare(c.buildInsertQuery(def))
		if err != nil {
			return err
		}
		defer stmt.Close()
		stmts[i] = stmt
	}
	movieStmt, genreStmt, castStmt := stmts[0], stmts[1], stmts[2]

	for _, m := range c.movies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.executeStatement(ctx, movieStmt, "", c.convertMovieToDriverValues(m)); err != nil {
			return fmt.Errorf("movie %d: %w", m.ID, err)
		}
		if err := c.insertTokens(ctx, genreStmt, m.ID, m.Genres); err != nil {
			return fmt.Errorf("movie %d genres: %w", m.ID, err)
		}
		if err := c.insertTokens(ctx, castStmt, m.ID, m.Cast); err != nil {
			return fmt.Errorf("movie %d cast: %w", m.ID, err)
		}
	}
	return nil
}

// insertTokens inserts one row per non-empty token with its 1-based position.
func (c *Connector) insertTokens(ctx context.Context, stmt driver.Stmt, movieID int, tokens []string) error {
	position := 0
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		position++
		args := []driver.Value{int64(movieID), ValidateFieldValue(tok), int64(position)}
		if err := c.executeStatement(ctx, stmt, "", args); err != nil {
			return err
		}
	}
	return nil
}

// convertMovieToDriverValues converts a movie to the movies table row.
func (c *Connector) convertMovieToDriverValues(m model.Movie) []driver.Value {
	var runtime driver.Value
	if m.Runtime.Valid {
		runtime = m.Runtime.Int64
	}
	return []driver.Value{
		int64(m.ID),
		ValidateFieldValue(m.Title),
		ValidateFieldValue(m.Director),
		ValidateFieldValue(m.Tagline),
		m.ReleaseDate.Format(model.DateLayout),
		int64(m.ReleaseYear),
		m.Budget,
		m.Revenue,
		runtime,
		m.Profit,
	}
}

// buildCreateTableQuery constructs a CREATE TABLE query for the given table
func (c *Connector) buildCreateTableQuery(def tableDef) string {
	columns := make([]string, 0, len(def.columns)+1)
	for _, col := range def.columns {
		columns = append(columns, fmt.Sprintf(`[%s] %s`, col.name, col.typ))
	}
	if def.extra != "" {
		columns = append(columns, def.extra)
	}

	return fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS [%s] (%s)`,
		def.name,
		strings.Join(columns, ", "),
	)
}

// buildInsertQuery constructs an INSERT query for the given table
func (c *Connector) buildInsertQuery(def tableDef) string {
	return fmt.Sprintf(
		`INSERT INTO [%s] VALUES (%s)`,
		def.name,
		c.buildPlaceholders(len(def.columns)),
	)
}

// buildPlaceholders creates placeholder string for prepared statements
func (c *Connector) buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	return "?" + strings.Repeat(", ?", count-1)
}

// executeStatement executes a statement with proper context support.
// conn is either a driver.Conn, prepared with query, or an already prepared driver.Stmt.
func (c *Connector) executeStatement(ctx context.Context, conn interface{}, query string, args []driver.Value) error {
	switch stmt := conn.(type) {
	case driver.Conn:
		// For CREATE TABLE queries
		preparedStmt, err := stmt.Prepare(query)
		if err != nil {
			return err
		}
		defer preparedStmt.Close()
		return c.executeStatement(ctx, preparedStmt, "", args)

	case driver.Stmt:
		// For INSERT queries with prepared statement
		if stmtExecCtx, ok := stmt.(driver.StmtExecContext); ok {
			_, err := stmtExecCtx.ExecContext(ctx, convertToNamedValues(args))
			return err
		}
		return ErrStmtExecContextNotSupported

	default:
		return errors.New("unsupported statement type")
	}
}

// convertToNamedValues converts driver.Value slice to driver.NamedValue slice
func convertToNamedValues(args []driver.Value) []driver.NamedValue {
	namedArgs := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		namedArgs[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}
	return namedArgs
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	if conn.conn != nil {
		return conn.conn.Close()
	}
	return nil
}

// Begin implements driver.Conn interface (deprecated, use BeginTx instead)
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx interface
func (conn *Connection) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if connBeginTx, ok := conn.conn.(driver.ConnBeginTx); ok {
		tx, err := connBeginTx.BeginTx(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Transaction{tx: tx}, nil
	}
	return nil, ErrBeginTxNotSupported
}

// Commit implements driver.Tx interface
func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

// Rollback implements driver.Tx interface
func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

// Prepare implements driver.Conn interface (deprecated, use PrepareContext instead)
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if connPrepareCtx, ok := conn.conn.(driver.ConnPrepareContext); ok {
		return connPrepareCtx.PrepareContext(ctx, query)
	}
	return nil, ErrPrepareContextNotSupported
}

// Dump exports every table of the connection to outputDir as <table>.csv.
func (conn *Connection) Dump(ctx context.Context, outputDir string) ([]string, error) {
	if err := ValidatePath(outputDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	tableNames, err := conn.getTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	var written []string
	for _, tableName := range tableNames {
		outputPath := filepath.Join(outputDir, tableName+".csv")
		if err := conn.exportTableToCSV(ctx, tableName, outputPath); err != nil {
			return written, fmt.Errorf("failed to export table %s: %w", tableName, err)
		}
		written = append(written, outputPath)
	}
	return written, nil
}

// getTableNames retrieves all user-defined table names in creation order
func (conn *Connection) getTableNames(ctx context.Context) ([]string, error) {
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid"
	rows, err := conn.executeQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanColumn(rows, 0)
}

// exportTableToCSV exports a single table to CSV file
func (conn *Connection) exportTableToCSV(ctx context.Context, tableName, outputPath string) error {
	columns, err := conn.getTableColumns(ctx, tableName)
	if err != nil {
		return fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	rows, err := conn.executeQuery(ctx, fmt.Sprintf("SELECT * FROM [%s]", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	return conn.writeCSVFile(outputPath, columns, rows)
}

// getTableColumns retrieves column names for a specific table
func (conn *Connection) getTableColumns(ctx context.Context, tableName string) ([]string, error) {
	rows, err := conn.executeQuery(ctx, fmt.Sprintf("PRAGMA table_info([%s])", tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// PRAGMA table_info returns the column name at index 1
	return scanColumn(rows, 1)
}

// executeQuery executes a query without arguments and returns rows
func (conn *Connection) executeQuery(ctx context.Context, query string) (driver.Rows, error) {
	stmt, err := conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}

	stmtQueryCtx, ok := stmt.(driver.StmtQueryContext)
	if !ok {
		_ = stmt.Close()
		return nil, errors.New("statement does not support QueryContext")
	}
	rows, err := stmtQueryCtx.QueryContext(ctx, nil)
	if err != nil {
		_ = stmt.Close()
		return nil, err
	}
	return &stmtRows{Rows: rows, stmt: stmt}, nil
}

// stmtRows closes its statement together with the rows.
type stmtRows struct {
	driver.Rows
	stmt driver.Stmt
}

func (r *stmtRows) Close() error {
	err := r.Rows.Close()
	if stmtErr := r.stmt.Close(); err == nil {
		err = stmtErr
	}
	return err
}

// scanColumn collects the string values of one column of every row
func scanColumn(rows driver.Rows, index int) ([]string, error) {
	var results []string
	dest := make([]driver.Value, len(rows.Columns()))

	for {
		err := rows.Next(dest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if name, ok := dest[index].(string); ok && name != "" {
			results = append(results, name)
		}
	}
	return results, nil
}

// writeCSVFile creates and writes data to a CSV file
func (conn *Connection) writeCSVFile(outputPath string, columns []string, rows driver.Rows) (err error) {
	file, err := os.Create(outputPath) //nolint:gosec // outputPath is built from a validated directory
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return err
	}

	dest := make([]driver.Value, len(columns))
	record := make([]string, len(columns))
	for {
		err := rows.Next(dest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		for i, val := range dest {
			record[i] = formatValue(val)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// formatValue renders a driver value as CSV text. NULL becomes the empty string.
func formatValue(val driver.Value) string {
	switch v := val.(type) {
	case nil:
		return ""
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
