package generator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/alttext-service/internal/domain"
)

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.sleeps = append(c.sleeps, d)
		c.now = c.now.Add(d)
	}
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// scriptedModel replays completions in order and records call times.
type scriptedModel struct {
	clock   *fakeClock
	script  []Completion
	calls   []time.Time
	prompts []string
	urls    []string
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Describe(_ context.Context, imageURL, prompt string) Completion {
	m.calls = append(m.calls, m.clock.Now())
	m.prompts = append(m.prompts, prompt)
	m.urls = append(m.urls, imageURL)
	if len(m.script) == 0 {
		return Succeeded("default description")
	}
	c := m.script[0]
	m.script = m.script[1:]
	return c
}

var errThrottled = errors.New("429 Too Many Requests")

func TestPacingWait(t *testing.T) {
	assert.Equal(t, 2*time.Second, PacingWait(0, 2*time.Second))
	assert.Equal(t, 500*time.Millisecond, PacingWait(1500*time.Millisecond, 2*time.Second))
	assert.Equal(t, time.Duration(0), PacingWait(2*time.Second, 2*time.Second))
	assert.Equal(t, time.Duration(0), PacingWait(time.Minute, 2*time.Second))
	assert.Equal(t, time.Duration(0), PacingWait(0, 0))
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, 2*time.Second, BackoffDelay(0))
	assert.Equal(t, 3*time.Second, BackoffDelay(1))
	assert.Equal(t, 5*time.Second, BackoffDelay(2))
	assert.Equal(t, 9*time.Second, BackoffDelay(3))
}

func TestGenerateSuccessTrimsText(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock, script: []Completion{Succeeded("  A red bicycle leaning on a wall.\n")}}
	g := New(model, WithClock(clock))

	res := g.Generate(context.Background(), "https://x/a.png", "")

	assert.Equal(t, domain.StatusGenerated, res.Status)
	assert.Equal(t, "A red bicycle leaning on a wall.", res.Text)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, clock.Sleeps())
}

func TestGenerateRetriesRateLimitWithBackoff(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock, script: []Completion{
		RateLimited(errThrottled),
		RateLimited(errThrottled),
		Succeeded("A dog"),
	}}
	g := New(model, WithClock(clock), WithInterval(time.Second), WithMaxAttempts(3))

	res := g.Generate(context.Background(), "https://x/a.png", "")

	require.Equal(t, domain.StatusGenerated, res.Status)
	assert.Equal(t, "A dog", res.Text)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second}, clock.Sleeps())
	assert.Equal(t, 5*time.Second, model.calls[2].Sub(model.calls[0]))
}

func TestGenerateRateLimitExhausted(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock, script: []Completion{
		RateLimited(errThrottled),
		RateLimited(errThrottled),
		RateLimited(errThrottled),
	}}
	g := New(model, WithClock(clock), WithInterval(0), WithMaxAttempts(3))

	res := g.Generate(context.Background(), "https://x/a.png", "")

	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Empty(t, res.Text)
	assert.Len(t, model.calls, 3)
	// no sleep after the final attempt
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second}, clock.Sleeps())
}

func TestGenerateOtherFailureNotRetried(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock, script: []Completion{Failed(errors.New("invalid image url"))}}
	g := New(model, WithClock(clock))

	res := g.Generate(context.Background(), "https://x/a.png", "")

	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Len(t, model.calls, 1)
	assert.Empty(t, clock.Sleeps())
}

func TestGenerateEmptyCompletionFails(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock, script: []Completion{Succeeded("   ")}}

	res := New(model, WithClock(clock)).Generate(context.Background(), "https://x/a.png", "")

	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Len(t, model.calls, 1)
}

func TestGeneratePacesConsecutiveCalls(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock}
	g := New(model, WithClock(clock), WithInterval(2*time.Second))

	g.Generate(context.Background(), "https://x/1.png", "")
	clock.Advance(500 * time.Millisecond)
	g.Generate(context.Background(), "https://x/2.png", "")
	clock.Advance(5 * time.Second)
	g.Generate(context.Background(), "https://x/3.png", "")

	require.Len(t, model.calls, 3)
	assert.GreaterOrEqual(t, model.calls[1].Sub(model.calls[0]), 2*time.Second)
	assert.Equal(t, []time.Duration{1500 * time.Millisecond}, clock.Sleeps())
}

func TestGeneratePassesContextInPrompt(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock}
	g := New(model, WithClock(clock))

	g.Generate(context.Background(), "https://x/a.png", "Hero image on the pricing page")

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Additional context: Hero image on the pricing page")
	assert.Equal(t, []string{"https://x/a.png"}, model.urls)
}

func TestGenerateCancelledContext(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock, script: []Completion{RateLimited(errThrottled)}}
	g := New(model, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := g.Generate(ctx, "https://x/a.png", "")

	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Empty(t, model.calls)
}

func TestGenerateBatch(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock, script: []Completion{
		Succeeded("first"),
		Failed(errors.New("boom")),
		Succeeded("third"),
	}}
	g := New(model, WithClock(clock), WithInterval(0))

	images := []domain.ImageDescriptor{
		{URL: "https://x/1.png"},
		{URL: "https://x/described.png", CurrentDescription: "already here"},
		{URL: "https://x/2.png"},
		{URL: "https://x/3.png"},
	}
	results := g.GenerateBatch(context.Background(), images, 0)

	require.Len(t, results, 3)
	assert.NotContains(t, results, "https://x/described.png")
	assert.Equal(t, domain.StatusGenerated, results["https://x/1.png"].Status)
	assert.Equal(t, domain.StatusFailed, results["https://x/2.png"].Status)
	assert.Empty(t, results["https://x/2.png"].Text)
	assert.Equal(t, "third", results["https://x/3.png"].Text)
	assert.Equal(t, []string{"https://x/1.png", "https://x/2.png", "https://x/3.png"}, model.urls)
}

func TestGenerateBatchMaxCount(t *testing.T) {
	clock := newFakeClock()
	model := &scriptedModel{clock: clock}
	g := New(model, WithClock(clock), WithInterval(0))

	images := []domain.ImageDescriptor{
		{URL: "https://x/1.png", CurrentDescription: "has one"},
		{URL: "https://x/2.png"},
		{URL: "https://x/3.png"},
	}
	results := g.GenerateBatch(context.Background(), images, 2)

	assert.Len(t, results, 1)
	assert.Contains(t, results, "https://x/2.png")
	assert.Equal(t, []string{"https://x/2.png"}, model.urls)
}

func TestBuildPrompt(t *testing.T) {
	base := BuildPrompt("")
	assert.Contains(t, base, "under 125 characters")
	assert.NotContains(t, base, "Additional context")
	assert.NotContains(t, base, "\t")

	assert.Equal(t, base, BuildPrompt("   "))
	assert.Equal(t, base+"\n\nAdditional context: team photo", BuildPrompt("team photo"))
}
