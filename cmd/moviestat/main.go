// Package main is the entry point of the moviestat command.
//
// moviestat runs the exploratory analysis of a TMDb movie export: it loads
// the file, cleans it, computes the aggregates and renders the reports.
//
// # Commands
//
//	moviestat [global flags] analyze [flags]   load, clean, analyze and report
//	moviestat [global flags] export [flags]    write the cleaned movies to a file
//	moviestat [global flags] query [flags] SQL run SQL over the cleaned movies
//	moviestat version                          print the version
//
// # Configuration
//
// Settings are layered (highest priority wins):
//   - command line flags
//   - MOVIESTAT_* environment variables, e.g. MOVIESTAT_INPUT_PATH
//   - the YAML file given by -config, MOVIESTAT_CONFIG or ./moviestat.yaml
//   - built-in defaults
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the running pipeline; the command exits non-zero.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
