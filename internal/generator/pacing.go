package generator

import (
	"context"
	"time"
)

// Clock abstracts wall time so pacing and backoff can run on a virtual clock.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in that case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PacingWait returns how long to block so that at least interval separates
// two model calls.
func PacingWait(sinceLast, interval time.Duration) time.Duration {
	if sinceLast >= interval {
		return 0
	}
	return interval - sinceLast
}

// BackoffDelay is the wait after a rate-limited attempt (0-based): 2^attempt + 1 seconds.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return time.Duration((1<<attempt)+1) * time.Second
}
