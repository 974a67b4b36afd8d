package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/applier"
	"github.com/user/alttext-service/internal/domain"
)

// ImageSource finds undescribed images across a site's pages.
type ImageSource interface {
	FindImagesWithoutDescription(ctx context.Context, pages []string) []domain.ImageDescriptor
}

// BatchGenerator describes a list of images.
type BatchGenerator interface {
	GenerateBatch(ctx context.Context, images []domain.ImageDescriptor, maxCount int) map[string]domain.GenerationResult
}

// RecordWriter persists a finished batch record.
type RecordWriter interface {
	WriteRecord(ctx context.Context, record *domain.BatchRecord) error
}

// Applier writes descriptions back into the live document.
type Applier interface {
	Apply(ctx context.Context, assignments []domain.ApplyAssignment) (domain.ApplyReport, error)
}

type RunOptions struct {
	SiteURL   string
	Pages     []string
	MaxCount  int
	AutoApply bool
}

// Orchestrator runs scan, generation and persistence for one site.
type Orchestrator struct {
	source    ImageSource
	generator BatchGenerator
	writers   []RecordWriter
	applier   Applier
	logger    *zap.Logger
}

type Option func(*Orchestrator)

func WithWriters(w ...RecordWriter) Option {
	return func(o *Orchestrator) { o.writers = append(o.writers, w...) }
}

func WithApplier(a Applier) Option {
	return func(o *Orchestrator) { o.applier = a }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

func New(source ImageSource, generator BatchGenerator, opts ...Option) *Orchestrator {
	o := &Orchestrator{source: source, generator: generator, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run returns a nil record when every image already has a description.
// Writer failures are joined into the returned error alongside the record.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*domain.BatchRecord, error) {
	o.logger.Info("starting alt text run", zap.String("site", opts.SiteURL), zap.Strings("pages", opts.Pages))

	images := o.source.FindImagesWithoutDescription(ctx, opts.Pages)
	if len(images) == 0 {
		o.logger.Info("all images have alt text")
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := o.generator.GenerateBatch(ctx, images, opts.MaxCount)
	record := BuildRecord(opts.SiteURL, images, results)
	o.logger.Info("batch complete", zap.Int("imagesProcessed", record.ImagesProcessed))

	if err := ctx.Err(); err != nil {
		return record, err
	}

	var errs []error
	for _, w := range o.writers {
		if err := w.WriteRecord(ctx, record); err != nil {
			o.logger.Error("failed to write results", zap.String("writer", fmt.Sprintf("%T", w)), zap.Error(err))
			errs = append(errs, err)
		}
	}

	if opts.AutoApply {
		o.apply(ctx, record)
	}

	return record, errors.Join(errs...)
}

func (o *Orchestrator) apply(ctx context.Context, record *domain.BatchRecord) {
	if o.applier == nil {
		o.logger.Warn("auto apply requested but no editor is configured")
		return
	}
	assignments := applier.UsableAssignments(record.Results)
	if len(assignments) == 0 {
		o.logger.Info("no usable alt text to apply")
		return
	}
	report, err := o.applier.Apply(ctx, assignments)
	if err != nil {
		o.logger.Error("failed to apply alt text", zap.Error(err))
		return
	}
	o.logger.Info("applied alt text",
		zap.Int("applied", report.Applied),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
}

// BuildRecord keeps discovery order and includes every element whose URL has
// a generation result, so an image shown in several places gets one entry per
// element. ImagesProcessed counts distinct URLs attempted.
func BuildRecord(siteURL string, images []domain.ImageDescriptor, results map[string]domain.GenerationResult) *domain.BatchRecord {
	record := &domain.BatchRecord{SiteURL: siteURL, Results: []domain.BatchEntry{}}
	for _, img := range images {
		res, ok := results[img.URL]
		if !ok {
			continue
		}
		record.Results = append(record.Results, domain.BatchEntry{
			URL:           img.URL,
			Locator:       img.Locator,
			ElementID:     img.ElementID,
			GeneratedText: res.Text,
			Status:        res.Status,
		})
	}
	record.ImagesProcessed = len(results)
	return record
}
