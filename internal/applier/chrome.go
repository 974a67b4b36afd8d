package applier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/alttext-service/internal/domain"
)

var (
	ErrNoEditorURL     = errors.New("editor URL is not configured")
	ErrElementNotFound = errors.New("element not found")
)

const applyScriptTemplate = `(async () => {
	const id = %s, selector = %s, text = %s;
	let el = id ? document.getElementById(id) : null;
	if (!el && selector) {
		try { el = document.querySelector(selector); } catch (e) { el = null; }
	}
	if (!el) return false;
	el.setAttribute(el.tagName === 'IMG' ? 'alt' : 'aria-label', text);
	el.dispatchEvent(new Event('input', { bubbles: true }));
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})()`

// Config holds the browser session settings.
type Config struct {
	EditorURL  string
	ProfileDir string
	Headless   bool
	Timeout    time.Duration
}

// ChromeApplier drives a Chrome session, already logged in through the
// profile directory, and writes descriptions into the editor document.
type ChromeApplier struct {
	cfg    Config
	logger *zap.Logger
}

func NewChromeApplier(cfg Config, logger *zap.Logger) (*ChromeApplier, error) {
	if cfg.EditorURL == "" {
		return nil, ErrNoEditorURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeApplier{cfg: cfg, logger: logger}, nil
}

// Apply opens the editor once and applies every assignment in order. A
// failure on one element does not stop the others.
func (a *ChromeApplier) Apply(ctx context.Context, assignments []domain.ApplyAssignment) (domain.ApplyReport, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", a.cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if a.cfg.ProfileDir != "" {
		opts = append(opts, chromedp.UserDataDir(a.cfg.ProfileDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(a.logger.Sugar().Debugf))
	defer taskCancel()

	taskCtx, cancel := context.WithTimeout(taskCtx, a.cfg.Timeout)
	defer cancel()

	a.logger.Info("opening editor", zap.String("url", a.cfg.EditorURL))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(a.cfg.EditorURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
	); err != nil {
		return domain.ApplyReport{}, fmt.Errorf("failed to open editor: %w", err)
	}

	return applyAll(taskCtx, assignments, a.logger, func(ctx context.Context, script string) (bool, error) {
		var found bool
		err := chromedp.Run(ctx, chromedp.Evaluate(script, &found, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
		return found, err
	}), nil
}

type evalFunc func(ctx context.Context, script string) (bool, error)

func applyAll(ctx context.Context, assignments []domain.ApplyAssignment, logger *zap.Logger, eval evalFunc) domain.ApplyReport {
	var report domain.ApplyReport
	for i, as := range assignments {
		if as.Text == "" || (as.ElementID == "" && as.Locator == "") {
			report.Skipped++
			continue
		}
		if ctx.Err() != nil {
			report.Skipped += len(assignments) - i
			break
		}

		found, err := eval(ctx, applyScript(as))
		if err == nil && !found {
			err = ErrElementNotFound
		}
		if err != nil {
			logger.Warn("failed to apply alt text",
				zap.String("selector", as.Locator),
				zap.String("elementId", as.ElementID),
				zap.Error(err),
			)
			report.Failed++
			continue
		}
		logger.Info("applied alt text", zap.String("selector", as.Locator), zap.String("altText", as.Text))
		report.Applied++
	}
	return report
}

func applyScript(as domain.ApplyAssignment) string {
	return fmt.Sprintf(applyScriptTemplate, jsString(as.ElementID), jsString(as.Locator), jsString(as.Text))
}

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
