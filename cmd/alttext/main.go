package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/app"
	"github.com/user/alttext-service/internal/config"
	"github.com/user/alttext-service/internal/monitoring"
	"github.com/user/alttext-service/internal/orchestrator"
	"github.com/user/alttext-service/internal/scanner"
	"github.com/user/alttext-service/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	model, err := app.NewModel(ctx, cfg)
	if err != nil {
		log.Error("could not create model client", zap.Error(err))
		return 1
	}
	gen := app.NewGenerator(model, cfg, log, metrics)

	siteScanner := scanner.New(cfg.SiteURL, app.NewFetcher(cfg),
		scanner.WithLogger(log.Named("scanner")),
		scanner.WithMetrics(metrics),
	)

	writers, cleanup, err := app.NewRecordWriters(ctx, cfg, log)
	if err != nil {
		log.Error("could not set up result storage", zap.Error(err))
		return 1
	}
	defer cleanup()

	opts := []orchestrator.Option{
		orchestrator.WithWriters(writers...),
		orchestrator.WithLogger(log.Named("orchestrator")),
	}
	if cfg.AutoApply {
		if a := app.NewApplier(cfg, log); a != nil {
			opts = append(opts, orchestrator.WithApplier(a))
		}
	}

	log.Info("starting alt text generation",
		zap.String("site", cfg.SiteURL),
		zap.String("model", model.Name()),
		zap.Int("batchSize", cfg.BatchSize),
	)

	record, err := orchestrator.New(siteScanner, gen, opts...).Run(ctx, orchestrator.RunOptions{
		SiteURL:   cfg.SiteURL,
		Pages:     cfg.PageList(),
		MaxCount:  cfg.BatchSize,
		AutoApply: cfg.AutoApply,
	})
	if err != nil {
		log.Error("run failed", zap.Error(err))
		return 1
	}
	if record != nil {
		log.Info("results saved", zap.String("file", cfg.OutputFile), zap.Int("imagesProcessed", record.ImagesProcessed))
	}
	return 0
}
