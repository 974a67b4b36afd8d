package scanner

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/domain"
	"github.com/user/alttext-service/internal/monitoring"
	"github.com/user/alttext-service/pkg/utils"
)

// Scanner finds images across the pages of one site.
type Scanner struct {
	siteURL string
	fetcher PageFetcher
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

type Option func(*Scanner)

func WithLogger(l *zap.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Scanner) { s.metrics = m }
}

func New(siteURL string, fetcher PageFetcher, opts ...Option) *Scanner {
	s := &Scanner{
		siteURL: strings.TrimRight(siteURL, "/"),
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanResult holds every image found and the undescribed subset, both in
// discovery order.
type ScanResult struct {
	All         []domain.ImageDescriptor
	Undescribed []domain.ImageDescriptor
	PagesFailed int
}

// Scan visits pages in order. An empty page list means the root page only.
// Fetch failures are logged and the page contributes no images.
func (s *Scanner) Scan(ctx context.Context, pages []string) ScanResult {
	if len(pages) == 0 {
		pages = []string{""}
	}

	var res ScanResult
	for _, page := range pages {
		if ctx.Err() != nil {
			s.logger.Warn("scan cancelled", zap.Error(ctx.Err()))
			break
		}
		name := page
		if strings.TrimSpace(name) == "" {
			name = "homepage"
		}
		s.logger.Info("analyzing page", zap.String("page", name))

		images, ok := s.scanPage(ctx, utils.JoinPagePath(s.siteURL, page))
		if !ok {
			res.PagesFailed++
			continue
		}
		res.All = append(res.All, images...)
	}

	res.Undescribed = FilterUndescribed(res.All)
	for _, img := range res.Undescribed {
		s.logger.Info("found image without alt text", zap.String("url", img.URL))
	}
	s.logger.Info("scan complete",
		zap.Int("withoutAlt", len(res.Undescribed)),
		zap.Int("total", len(res.All)),
		zap.Int("pagesFailed", res.PagesFailed),
	)
	return res
}

// FindImagesWithoutDescription returns only the undescribed images of Scan.
func (s *Scanner) FindImagesWithoutDescription(ctx context.Context, pages []string) []domain.ImageDescriptor {
	return s.Scan(ctx, pages).Undescribed
}

func (s *Scanner) scanPage(ctx context.Context, pageURL string) ([]domain.ImageDescriptor, bool) {
	content, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		s.logger.Error("error fetching page", zap.String("url", pageURL), zap.Error(err))
		s.metrics.IncPagesFetched("failed")
		return nil, false
	}
	s.metrics.IncPagesFetched("ok")

	extracted, err := ExtractImages(s.siteURL, content)
	if err != nil {
		s.logger.Error("error parsing page", zap.String("url", pageURL), zap.Error(err))
		return nil, false
	}

	images := make([]domain.ImageDescriptor, 0, len(extracted))
	for _, e := range extracted {
		s.metrics.IncImagesFound(string(e.Kind), e.HasDescription())
		images = append(images, e.ImageDescriptor)
	}
	return images, true
}

// FilterUndescribed keeps images lacking a description, preserving order.
func FilterUndescribed(images []domain.ImageDescriptor) []domain.ImageDescriptor {
	var out []domain.ImageDescriptor
	for _, img := range images {
		if !img.HasDescription() {
			out = append(out, img)
		}
	}
	return out
}
