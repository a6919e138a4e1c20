package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
	"github.com/couchcryptid/dwml-forecast/internal/observability"
	"github.com/couchcryptid/dwml-forecast/internal/report"
)

// Request is one document to render. Zero Format and Legend fall back to the
// Reporter's defaults; a zero BaseTime means the current hour.
type Request struct {
	Document []byte
	Format   report.Format
	Legend   report.LegendPosition
	BaseTime time.Time
}

// Result is a rendered report.
type Result struct {
	Body     string
	Format   report.Format
	BaseTime time.Time
	Rows     int
	Stats    domain.Stats
}

// Generator renders DWML documents into reports.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// ReporterConfig holds the rendering defaults of a Reporter.
type ReporterConfig struct {
	WindowHours int
	Location    *time.Location
	Format      report.Format
	Legend      report.LegendPosition
	Color       bool
}

// Reporter is the run context of the forecast pipeline. Each Generate call
// builds its own catalog and table, so a Reporter is safe for concurrent use.
type Reporter struct {
	cfg     ReporterConfig
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReporter creates a Reporter. The clock supplies the base time: the
// current hour, so that the running hour lands on the first row.
func NewReporter(cfg ReporterConfig, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Reporter {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Format == "" {
		cfg.Format = report.FormatText
	}
	if cfg.Legend == "" {
		cfg.Legend = report.LegendTop
	}
	return &Reporter{cfg: cfg, clock: clock, logger: logger, metrics: metrics}
}

// BaseTime returns the hour the next report is anchored at.
func (r *Reporter) BaseTime() time.Time {
	return r.clock.Now().Truncate(time.Hour)
}

// Generate decodes, builds and renders one document. Structural errors abort
// the document and no report is returned.
func (r *Reporter) Generate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := r.clock.Now()

	res, err := r.generate(req, start)
	if err != nil {
		r.metrics.ReportFailures.WithLabelValues(domain.ErrorKind(err)).Inc()
		return Result{}, err
	}

	r.metrics.ReportsGenerated.WithLabelValues(string(res.Format)).Inc()
	r.metrics.RowsRendered.Observe(float64(res.Rows))
	r.metrics.ValuesDropped.Add(float64(res.Stats.Dropped))
	r.metrics.InvalidValues.Add(float64(res.Stats.InvalidValues))
	r.metrics.SkippedBlocks.Add(float64(res.Stats.SkippedBlocks))
	r.metrics.ReportDuration.Observe(r.clock.Since(start).Seconds())
	return res, nil
}

func (r *Reporter) generate(req Request, now time.Time) (Result, error) {
	opts := report.Options{
		Format:      req.Format,
		Legend:      req.Legend,
		Location:    r.cfg.Location,
		GeneratedAt: now,
		Color:       r.cfg.Color,
	}
	if opts.Format == "" {
		opts.Format = r.cfg.Format
	}
	if opts.Legend == "" {
		opts.Legend = r.cfg.Legend
	}

	doc, err := domain.DecodeDocument(bytes.NewReader(req.Document))
	if err != nil {
		return Result{}, err
	}

	base := req.BaseTime.Truncate(time.Hour)
	if base.IsZero() {
		base = now.Truncate(time.Hour)
	}
	table, err := domain.BuildTable(doc, base, r.cfg.WindowHours, r.logger)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Body:     report.Render(table, opts),
		Format:   opts.Format,
		BaseTime: base,
		Rows:     len(table.VisibleRows()),
		Stats:    table.Stats,
	}, nil
}
