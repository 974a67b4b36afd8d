package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/cache"
	"github.com/user/alttext-service/internal/domain"
	"github.com/user/alttext-service/internal/generator"
	"github.com/user/alttext-service/internal/monitoring"
)

const (
	serviceName    = "Alt Text Generator API"
	serviceVersion = "1.0.0"
	requestTimeout = 5 * time.Minute
)

// SiteScanner finds undescribed images on one site.
type SiteScanner interface {
	FindImagesWithoutDescription(ctx context.Context, pages []string) []domain.ImageDescriptor
}

// ScannerFactory builds a scanner bound to siteURL.
type ScannerFactory func(siteURL string) SiteScanner

// Options carries the server's collaborators. Describer may be nil when no
// model credential is configured.
type Options struct {
	Port      string
	APIKey    string
	ModelName string
	Describer generator.Describer
	Cache     cache.Cache
	Scanners  ScannerFactory
	Metrics   *monitoring.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	opts       Options
	router     http.Handler
	httpServer *http.Server
	logger     *zap.Logger
}

func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{opts: opts, logger: opts.Logger}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      requestTimeout + 10*time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("starting API server", zap.String("port", s.opts.Port))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
