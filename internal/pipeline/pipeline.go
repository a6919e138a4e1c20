package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
	"github.com/couchcryptid/dwml-forecast/internal/observability"
	"github.com/couchcryptid/dwml-forecast/internal/report"
)

// BatchExtractor reads up to batchSize DWML documents from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawDocument, error)
}

// Transformer renders a raw document into an output report.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawDocument) (domain.OutputReport, error)
}

// BatchLoader writes multiple rendered reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.OutputReport) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline orchestrates the extract-render-load loop of the Kafka worker.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// CheckReadiness returns nil if the pipeline has loaded at least one report,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not rendered any documents yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for ctx.Err() == nil {
		if !p.processBatch(ctx, &backoff) {
			break
		}
	}
	p.logger.Info("pipeline stopping", "reason", context.Cause(ctx))
	return nil
}

// processBatch runs one extract-render-load cycle. Offsets are committed only
// once every document of the batch is either published or known to be
// malformed; a batch abandoned midway stays uncommitted and is redelivered.
// Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	docs, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}
	if len(docs) == 0 {
		return ctx.Err() == nil
	}
	p.metrics.MessagesConsumed.Add(float64(len(docs)))
	p.metrics.BatchSize.Observe(float64(len(docs)))

	reports, err := p.render(ctx, docs)
	if err != nil {
		if ctx.Err() != nil {
			p.logger.Info("batch abandoned uncommitted", "batch_size", len(docs))
			return false
		}
		p.logger.Error("render failed, batch left uncommitted", "error", err, "batch_size", len(docs))
		return p.backoffOrStop(ctx, backoff)
	}

	if len(reports) > 0 {
		if err := p.loader.LoadBatch(ctx, reports); err != nil {
			if ctx.Err() != nil {
				return false
			}
			p.logger.Error("load batch failed", "error", err, "batch_size", len(reports))
			return p.backoffOrStop(ctx, backoff)
		}
		p.metrics.MessagesProduced.Add(float64(len(reports)))
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	*backoff = initialBackoff

	for _, raw := range docs {
		p.commitOffset(ctx, raw)
	}
	return true
}

// render transforms every document of the batch. Malformed documents are
// logged, counted and left out of the result. Any other failure, including
// cancellation, aborts the whole batch.
func (p *Pipeline) render(ctx context.Context, docs []domain.RawDocument) ([]domain.OutputReport, error) {
	reports := make([]domain.OutputReport, 0, len(docs))
	for _, raw := range docs {
		out, err := p.transformer.Transform(ctx, raw)
		switch {
		case err == nil:
			reports = append(reports, out)
		case isMalformed(err):
			p.logger.Warn("malformed document, skipping",
				"error", err,
				"kind", domain.ErrorKind(err),
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
		default:
			return nil, fmt.Errorf("render %s/%d@%d: %w", raw.Topic, raw.Partition, raw.Offset, err)
		}
	}
	return reports, nil
}

// isMalformed reports whether err is a property of the document itself, so
// retrying it can never succeed.
func isMalformed(err error) bool {
	return domain.IsStructural(err) ||
		errors.Is(err, report.ErrUnknownFormat) ||
		errors.Is(err, report.ErrUnknownLegendPosition)
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the context ended first.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawDocument) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
