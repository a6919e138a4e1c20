// Command forecast serves hourly DWML forecast tables over HTTP and, when
// KAFKA_ENABLED is set, renders documents consumed from a Kafka topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/dwml-forecast/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dwml-forecast/internal/adapter/kafka"
	"github.com/couchcryptid/dwml-forecast/internal/config"
	"github.com/couchcryptid/dwml-forecast/internal/observability"
	"github.com/couchcryptid/dwml-forecast/internal/pipeline"
)

// alwaysReady backs /readyz when no Kafka worker runs.
type alwaysReady struct{}

func (alwaysReady) CheckReadiness(context.Context) error { return nil }

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	reporter := pipeline.NewReporter(pipeline.ReporterConfig{
		WindowHours: cfg.WindowHours,
		Location:    cfg.Location,
		Format:      cfg.ReportFormat,
		Legend:      cfg.LegendPosition,
	}, clock, logger, metrics)
	generator := pipeline.NewCachedGenerator(reporter, clock, metrics, cfg.ReportCacheSize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ready sharedobs.ReadinessChecker = alwaysReady{}
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer

	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(generator), writer, logger, metrics, cfg.BatchSize)
		ready = p

		logger.Info("kafka worker enabled",
			"brokers", cfg.KafkaBrokers,
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka worker disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, generator, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
