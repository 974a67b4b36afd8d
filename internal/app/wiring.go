// Package app assembles components from configuration for the binaries.
package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/applier"
	"github.com/user/alttext-service/internal/cache"
	"github.com/user/alttext-service/internal/config"
	"github.com/user/alttext-service/internal/generator"
	"github.com/user/alttext-service/internal/monitoring"
	"github.com/user/alttext-service/internal/orchestrator"
	"github.com/user/alttext-service/internal/proxy"
	"github.com/user/alttext-service/internal/scanner"
	"github.com/user/alttext-service/internal/storage"
)

// NewModel returns the backend selected by MODEL_PROVIDER.
func NewModel(ctx context.Context, cfg *config.Config) (generator.Model, error) {
	if err := cfg.ValidateModel(); err != nil {
		return nil, err
	}
	switch cfg.ModelProvider {
	case config.ProviderGemini:
		return generator.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.ModelName)
	default:
		return generator.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.ModelName), nil
	}
}

func NewGenerator(model generator.Model, cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) *generator.Generator {
	return generator.New(model,
		generator.WithInterval(cfg.PacingInterval()),
		generator.WithMaxAttempts(cfg.MaxRetries),
		generator.WithLogger(logger.Named("generator")),
		generator.WithMetrics(metrics),
	)
}

func NewFetcher(cfg *config.Config) *scanner.HTTPFetcher {
	return scanner.NewHTTPFetcher(proxy.NewManager(cfg.UserAgent, cfg.ProxyList()), cfg.FetchTimeoutDuration())
}

// NewCache uses Redis when REDIS_ADDR is set and memory otherwise. Failed
// generations are never cached. The returned func releases the connection
// pool, if any.
func NewCache(cfg *config.Config) (cache.Cache, func()) {
	policy := cache.SuccessOnlyTTL(cfg.CacheTTL())
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, policy)
		return rc, func() { _ = rc.Close() }
	}
	return cache.NewMemoryCache(policy), func() {}
}

// NewRecordWriters always includes the JSON file writer, then Postgres and
// S3 when configured. The returned func releases their resources.
func NewRecordWriters(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]orchestrator.RecordWriter, func(), error) {
	writers := []orchestrator.RecordWriter{orchestrator.NewFileRecordWriter(cfg.OutputFile)}
	cleanup := func() {}

	if cfg.PostgresURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, cleanup, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, cleanup, err
		}
		logger.Info("recording results to postgres")
		writers = append(writers, pg)
		cleanup = pg.Close
	}

	if cfg.ResultsBucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		logger.Info("uploading results to S3", zap.String("bucket", cfg.ResultsBucket))
		writers = append(writers, storage.NewS3Uploader(awsCfg, cfg.ResultsBucket))
	}

	return writers, cleanup, nil
}

// NewApplier returns nil when no editor URL is configured.
func NewApplier(cfg *config.Config, logger *zap.Logger) orchestrator.Applier {
	a, err := applier.NewChromeApplier(applier.Config{
		EditorURL:  cfg.EditorURL,
		ProfileDir: cfg.ChromeProfileDir,
		Headless:   cfg.Headless,
		Timeout:    cfg.ApplyTimeoutDuration(),
	}, logger.Named("applier"))
	if err != nil {
		return nil
	}
	return a
}
