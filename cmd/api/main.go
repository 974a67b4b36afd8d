package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/user/alttext-service/internal/api"
	"github.com/user/alttext-service/internal/app"
	"github.com/user/alttext-service/internal/config"
	"github.com/user/alttext-service/internal/generator"
	"github.com/user/alttext-service/internal/monitoring"
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

	if cfg.APIKey == config.DefaultAPIKey {
		log.Warn("using default development API key, set API_KEY for production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)

	store, closeCache := app.NewCache(cfg)
	defer closeCache()
	fetcher := app.NewFetcher(cfg)

	opts := api.Options{
		Port:     cfg.ServerPort,
		APIKey:   cfg.APIKey,
		Cache:    store,
		Metrics:  metrics,
		Gatherer: reg,
		Logger:   log,
		Scanners: func(siteURL string) api.SiteScanner {
			return scanner.New(siteURL, fetcher,
				scanner.WithLogger(log.Named("scanner")),
				scanner.WithMetrics(metrics),
			)
		},
	}

	model, err := app.NewModel(ctx, cfg)
	if err != nil {
		log.Warn("model not configured, generation endpoints are disabled", zap.Error(err))
	} else {
		gen := app.NewGenerator(model, cfg, log, metrics)
		opts.Describer = generator.NewCached(gen, store, log.Named("cache"), metrics)
		opts.ModelName = model.Name()
	}

	server := api.NewServer(opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", zap.Error(err))
		return 1
	}
	log.Info("server exiting")
	return 0
}
