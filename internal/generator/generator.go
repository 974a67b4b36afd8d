package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/domain"
	"github.com/user/alttext-service/internal/monitoring"
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 3
)

var ErrEmptyCompletion = errors.New("model returned empty text")

// Describer produces a description for one image URL.
type Describer interface {
	Generate(ctx context.Context, imageURL, extra string) domain.GenerationResult
}

// Generator paces and retries calls to a Model. A single pacing gate covers
// every call made through the instance.
type Generator struct {
	model       Model
	interval    time.Duration
	maxAttempts int
	clock       Clock
	logger      *zap.Logger
	metrics     *monitoring.Metrics

	mu       sync.Mutex // guards lastCall and serializes the pacing gate
	lastCall time.Time
}

type Option func(*Generator)

func WithInterval(d time.Duration) Option {
	return func(g *Generator) {
		if d >= 0 {
			g.interval = d
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

func WithClock(c Clock) Option {
	return func(g *Generator) { g.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

func New(model Model, opts ...Option) *Generator {
	g := &Generator{
		model:       model,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
		clock:       realClock{},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) ModelName() string {
	return g.model.Name()
}

// Generate describes imageURL. Rate-limited calls are retried with
// exponential backoff up to the attempt ceiling; any other failure ends the
// attempt immediately. The result status is never StatusCached.
func (g *Generator) Generate(ctx context.Context, imageURL, extra string) domain.GenerationResult {
	prompt := BuildPrompt(extra)
	result := domain.GenerationResult{URL: imageURL, Status: domain.StatusFailed}

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := g.pace(ctx); err != nil {
			g.logger.Error("generation cancelled", zap.String("url", imageURL), zap.Error(err))
			break
		}

		result.Attempts = attempt + 1
		start := g.clock.Now()
		c := g.model.Describe(ctx, imageURL, prompt)
		g.metrics.ObserveModelCall(g.model.Name(), c.Outcome.String(), g.clock.Now().Sub(start).Seconds())

		switch c.Outcome {
		case OutcomeOK:
			text := strings.TrimSpace(c.Text)
			if text == "" {
				g.logger.Error("error generating alt text", zap.String("url", imageURL), zap.Error(ErrEmptyCompletion))
				g.metrics.IncGenerations(string(domain.StatusFailed))
				return result
			}
			result.Text = text
			result.Status = domain.StatusGenerated
			g.logger.Info("generated alt text", zap.String("url", imageURL), zap.String("altText", text))
			g.metrics.IncGenerations(string(domain.StatusGenerated))
			return result

		case OutcomeRateLimited:
			if attempt+1 >= g.maxAttempts {
				g.logger.Error("rate limit exceeded",
					zap.String("url", imageURL),
					zap.Int("attempts", g.maxAttempts),
					zap.Error(c.Err),
				)
				break
			}
			delay := BackoffDelay(attempt)
			g.logger.Warn("rate limited, backing off",
				zap.String("url", imageURL),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			g.metrics.IncRateLimitRetries()
			if err := g.clock.Sleep(ctx, delay); err != nil {
				g.logger.Error("generation cancelled", zap.String("url", imageURL), zap.Error(err))
				g.metrics.IncGenerations(string(domain.StatusFailed))
				return result
			}
			continue

		default:
			g.logger.Error("error generating alt text", zap.String("url", imageURL), zap.Error(c.Err))
		}
		break
	}

	g.metrics.IncGenerations(string(domain.StatusFailed))
	return result
}

// GenerateBatch runs Generate over images in order. With maxCount > 0 only
// the first maxCount images are considered. Images that already carry a
// description are skipped and absent from the result; every attempted URL is
// present, failed or not.
func (g *Generator) GenerateBatch(ctx context.Context, images []domain.ImageDescriptor, maxCount int) map[string]domain.GenerationResult {
	if maxCount > 0 && len(images) > maxCount {
		images = images[:maxCount]
	}

	total := len(images)
	results := make(map[string]domain.GenerationResult, total)
	for i, img := range images {
		progress := fmt.Sprintf("[%d/%d]", i+1, total)
		if img.HasDescription() {
			g.logger.Info("skipping image with alt text",
				zap.String("progress", progress),
				zap.String("url", img.URL),
				zap.String("currentAlt", img.CurrentDescription),
			)
			continue
		}
		if ctx.Err() != nil {
			g.logger.Warn("batch cancelled", zap.String("progress", progress), zap.Error(ctx.Err()))
			break
		}

		g.logger.Info("processing image", zap.String("progress", progress), zap.String("url", img.URL))
		res := g.Generate(ctx, img.URL, "")
		results[img.URL] = res
		if !res.OK() {
			g.logger.Warn("failed to generate alt text", zap.String("progress", progress), zap.String("url", img.URL))
		}
	}
	return results
}

// pace blocks until the interval since the previous call has elapsed, then
// stamps the new call time.
func (g *Generator) pace(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lastCall.IsZero() {
		wait := PacingWait(g.clock.Now().Sub(g.lastCall), g.interval)
		if err := g.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}
	g.lastCall = g.clock.Now()
	return nil
}
