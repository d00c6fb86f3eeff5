package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/moviestat"
	"github.com/nao1215/moviestat/domain/model"
	"github.com/nao1215/moviestat/driver"
	"github.com/nao1215/moviestat/internal/config"
	"github.com/nao1215/moviestat/internal/logging"
	"github.com/nao1215/moviestat/report"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Report file names written by analyze.
const (
	summaryText     = "summary.txt"
	summaryJSON     = "summary.json"
	summaryWorkbook = "summary.xlsx"
	chartsDir       = "charts"
)

var errMissingQuery = errors.New("query needs an SQL statement")

// command is a subcommand. keys maps flag names to the config keys they override.
type command struct {
	name    string
	summary string
	keys    map[string]string
	setup   func(fs *flag.FlagSet, defaults *config.Config)
	run     func(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error
}

// commands returns the subcommands. Flags that are not config settings are
// bound to variables local to one call.
func commands() []*command {
	var dumpDir string

	return []*command{
		{
			name:    "analyze",
			summary: "load, clean and analyze the movies, then write the reports",
			keys: map[string]string{
				"input":        "input.path",
				"out":          "report.output_dir",
				"threshold":    "analysis.profit_threshold",
				"top":          "analysis.top_n",
				"chart-format": "report.chart_format",
				"charts":       "report.charts",
				"workbook":     "report.workbook",
				"json":         "report.json",
			},
			setup: func(fs *flag.FlagSet, d *config.Config) {
				fs.String("input", d.Input.Path, "movie file to analyze")
				fs.String("out", d.Report.OutputDir, "report output directory")
				fs.Int64("threshold", d.Analysis.ProfitThreshold, "minimum profit of a profitable movie")
				fs.Int("top", d.Analysis.TopN, "number of genres and cast members to report, 0 for all")
				fs.String("chart-format", d.Report.ChartFormat, "chart format: png or svg")
				fs.Bool("charts", d.Report.Charts, "render charts")
				fs.Bool("workbook", d.Report.Workbook, "write the Excel workbook")
				fs.Bool("json", d.Report.JSON, "write the JSON summary")
			},
			run: runAnalyze,
		},
		{
			name:    "export",
			summary: "write the cleaned movies to a file",
			keys: map[string]string{
				"input":       "input.path",
				"out":         "report.output_dir",
				"format":      "export.format",
				"compression": "export.compression",
			},
			setup: func(fs *flag.FlagSet, d *config.Config) {
				fs.String("input", d.Input.Path, "movie file to clean")
				fs.String("out", d.Report.OutputDir, "output directory")
				fs.String("format", d.Export.Format, "output format: csv, tsv, ltsv, parquet or xlsx")
				fs.String("compression", d.Export.Compression, "compression: none, gz, xz or zstd")
			},
			run: runExport,
		},
		{
			name:    "query",
			summary: "run SQL over the cleaned movies and print the rows as TSV",
			keys: map[string]string{
				"input": "input.path",
			},
			setup: func(fs *flag.FlagSet, d *config.Config) {
				fs.String("input", d.Input.Path, "movie file to query")
				fs.StringVar(&dumpDir, "dump", "", "also dump every table as CSV into this directory")
			},
			run: func(ctx context.Context, cfg *config.Config, args []string, stdout io.Writer) error {
				return runQuery(ctx, cfg, args, dumpDir, stdout)
			},
		},
	}
}

// run executes the command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defaults := config.Default()

	global := flag.NewFlagSet("moviestat", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "config file (default $"+config.ConfigPathEnvVar+" or "+config.DefaultConfigPath+")")
	global.String("log-level", defaults.Logging.Level, "log level: trace, debug, info, warn, error or disabled")
	global.String("log-format", defaults.Logging.Format, "log format: console or json")
	globalKeys := map[string]string{
		"log-level":  "logging.level",
		"log-format": "logging.format",
	}

	cmds := commands()
	global.Usage = func() { usage(stderr, global, cmds) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return exitUsage
	}

	name := rest[0]
	switch name {
	case "version":
		fmt.Fprintf(stdout, "moviestat %s\n", version)
		return exitOK
	case "help":
		global.Usage()
		return exitOK
	}

	var cmd *command
	for _, c := range cmds {
		if c.name == name {
			cmd = c
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "moviestat: unknown command %q\n\n", name)
		global.Usage()
		return exitUsage
	}

	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	cmd.setup(fs, defaults)
	if err := fs.Parse(rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if cmd.name == "query" && fs.NArg() == 0 {
		fmt.Fprintf(stderr, "moviestat: %v\n", errMissingQuery)
		fs.Usage()
		return exitUsage
	}

	overrides := make(map[string]any)
	collectOverrides(global, globalKeys, overrides)
	collectOverrides(fs, cmd.keys, overrides)

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath, overrides)
	} else {
		cfg, err = config.Load(overrides)
	}
	if err != nil {
		fmt.Fprintf(stderr, "moviestat: %v\n", err)
		return exitError
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    stderr,
	})
	ctx = logging.ContextWithNewRunID(ctx)

	if err := cmd.run(ctx, cfg, fs.Args(), stdout); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("command", cmd.name).Msg("command failed")
		return exitError
	}
	return exitOK
}

// collectOverrides records the flags set explicitly on the command line, so
// flag defaults never shadow the config file or the environment.
func collectOverrides(fs *flag.FlagSet, keys map[string]string, overrides map[string]any) {
	fs.Visit(func(f *flag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			return
		}
		if getter, ok := f.Value.(flag.Getter); ok {
			overrides[key] = getter.Get()
		}
	})
}

func usage(w io.Writer, global *flag.FlagSet, cmds []*command) {
	fmt.Fprintf(w, "Usage: moviestat [global flags] <command> [flags]\n\nCommands:\n")
	for _, c := range cmds {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "  %-8s %s\n", "version", "print the version")
	fmt.Fprintf(w, "\nGlobal flags:\n")
	global.PrintDefaults()
}

// loadMovies reads and cleans the configured input file.
func loadMovies(ctx context.Context, path string) (model.Movies, error) {
	table, err := moviestat.LoadContext(ctx, path)
	if err != nil {
		return nil, err
	}
	return moviestat.CleanContext(ctx, table)
}

func runAnalyze(ctx context.Context, cfg *config.Config, _ []string, stdout io.Writer) error {
	movies, err := loadMovies(ctx, cfg.Input.Path)
	if err != nil {
		return err
	}

	opts := moviestat.NewAnalysisOptions()
	opts.ProfitThreshold = cfg.Analysis.ProfitThreshold
	opts.TopN = cfg.Analysis.TopN
	opts.Source = cfg.Input.Path

	a, err := moviestat.Analyze(ctx, movies, opts)
	if err != nil {
		return err
	}
	if err := report.WriteText(stdout, a); err != nil {
		return err
	}

	dir := cfg.Report.OutputDir
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	log := logging.Ctx(ctx)

	if err := writeFile(filepath.Join(dir, summaryText), func(w io.Writer) error {
		return report.WriteText(w, a)
	}); err != nil {
		return err
	}
	if cfg.Report.JSON {
		if err := writeFile(filepath.Join(dir, summaryJSON), func(w io.Writer) error {
			return report.WriteJSON(w, a)
		}); err != nil {
			return err
		}
	}
	if cfg.Report.Workbook {
		if err := report.WriteWorkbook(filepath.Join(dir, summaryWorkbook), a); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	}
	if cfg.Report.Charts {
		written, err := report.Charts(filepath.Join(dir, chartsDir), movies, a, cfg.Report.ChartFormat)
		if err != nil {
			return err
		}
		log.Info().Int("charts", len(written)).Str("format", cfg.Report.ChartFormat).Msg("charts rendered")
	}

	log.Info().Str("dir", dir).Msg("report written")
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, _ []string, stdout io.Writer) error {
	format, err := moviestat.ParseOutputFormat(cfg.Export.Format)
	if err != nil {
		return err
	}
	compression, err := moviestat.ParseCompressionType(cfg.Export.Compression)
	if err != nil {
		return err
	}

	movies, err := loadMovies(ctx, cfg.Input.Path)
	if err != nil {
		return err
	}

	opts := moviestat.NewExportOptions().WithFormat(format).WithCompression(compression)
	path, err := moviestat.ExportContext(ctx, movies, cfg.Report.OutputDir, opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, path)
	return err
}

func runQuery(ctx context.Context, cfg *config.Config, args []string, dumpDir string, stdout io.Writer) error {
	query := strings.Join(args, " ")

	movies, err := loadMovies(ctx, cfg.Input.Path)
	if err != nil {
		return err
	}
	db, err := moviestat.OpenDB(ctx, movies)
	if err != nil {
		return err
	}
	defer db.Close()

	logging.Ctx(ctx).Debug().Str("query", driver.SanitizeForLog(query)).Msg("running query")
	if err := printQuery(ctx, db, query, stdout); err != nil {
		return err
	}

	if dumpDir != "" {
		if _, err := moviestat.DumpDB(ctx, db, dumpDir); err != nil {
			return err
		}
	}
	return nil
}

// printQuery writes the result set as TSV with a header row. NULL prints as
// an empty field.
func printQuery(ctx context.Context, db *sql.DB, query string, w io.Writer) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	out := csv.NewWriter(w)
	out.Comma = '\t'
	if err := out.Write(columns); err != nil {
		return err
	}

	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	record := make([]string, len(columns))
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		for i, v := range values {
			record[i] = v.String
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	out.Flush()
	return out.Error()
}

// writeFile creates path and fills it with fn.
func writeFile(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(f)
}
