// Command report renders one DWML document as an hourly forecast table.
//
// Usage:
//
//	go run ./cmd/report -file forecast.xml
//	curl -s "$NDFD_URL" | go run ./cmd/report -html -legend bottom > forecast.html
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
	"github.com/couchcryptid/dwml-forecast/internal/observability"
	"github.com/couchcryptid/dwml-forecast/internal/pipeline"
	"github.com/couchcryptid/dwml-forecast/internal/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the parsed command line flags.
type options struct {
	file    string
	html    bool
	legend  report.LegendPosition
	window  int
	loc     *time.Location
	base    time.Time
	noColor bool
	debug   bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	errColor := color.New(color.FgRed, color.Bold)

	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		errColor.Fprint(stderr, "error: ")
		fmt.Fprintln(stderr, err)
		return 2
	}

	doc, err := readDocument(opts.file, stdin)
	if err != nil {
		errColor.Fprint(stderr, "error: ")
		fmt.Fprintln(stderr, err)
		return 1
	}

	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	// stdout carries the report, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var clock clockwork.Clock = clockwork.NewRealClock()
	if !opts.base.IsZero() {
		clock = clockwork.NewFakeClockAt(opts.base)
	}

	format := report.FormatText
	if opts.html {
		format = report.FormatHTML
	}
	reporter := pipeline.NewReporter(pipeline.ReporterConfig{
		WindowHours: opts.window,
		Location:    opts.loc,
		Format:      format,
		Legend:      opts.legend,
		Color:       !opts.noColor && !opts.html && !color.NoColor,
	}, clock, logger, observability.NewLocalMetrics())

	res, err := reporter.Generate(context.Background(), pipeline.Request{Document: doc})
	if err != nil {
		errColor.Fprint(stderr, "error: ")
		fmt.Fprintf(stderr, "%v (%s)\n", err, domain.ErrorKind(err))
		return 1
	}

	logger.Debug("report rendered",
		"base_time", res.BaseTime,
		"rows", res.Rows,
		"dropped", res.Stats.Dropped,
	)
	if _, err := io.WriteString(stdout, res.Body); err != nil {
		errColor.Fprint(stderr, "error: ")
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	file := fs.String("file", "", "DWML document to read (default stdin)")
	html := fs.Bool("html", false, "render an HTML table instead of text")
	legend := fs.String("legend", "top", "legend position: top, bottom or none")
	window := fs.Int("window", domain.DefaultWindowHours, "forecast window in hours")
	tz := fs.String("tz", "Local", "IANA zone rows are grouped and printed in")
	base := fs.String("base", "", "base time as RFC 3339 (default now)")
	noColor := fs.Bool("no-color", false, "disable ANSI colours")
	debug := fs.Bool("debug", false, "log ingest details to stderr")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	opts := options{file: *file, html: *html, window: *window, noColor: *noColor, debug: *debug}

	var err error
	if opts.legend, err = report.ParseLegendPosition(*legend); err != nil {
		return options{}, err
	}
	if opts.window < 1 {
		return options{}, fmt.Errorf("invalid -window: %d must be positive", opts.window)
	}
	if opts.loc, err = time.LoadLocation(*tz); err != nil {
		return options{}, fmt.Errorf("invalid -tz: %w", err)
	}
	if *base != "" {
		if opts.base, err = time.Parse(time.RFC3339, *base); err != nil {
			return options{}, fmt.Errorf("invalid -base: %w", err)
		}
	}
	return opts, nil
}

func readDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return b, nil
}
