package generator

import "context"

// Outcome classifies a single model call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRateLimited
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRateLimited:
		return "rate_limited"
	default:
		return "failed"
	}
}

// Completion is the result of one Describe call. Err is set unless Outcome
// is OutcomeOK.
type Completion struct {
	Outcome Outcome
	Text    string
	Err     error
}

func Succeeded(text string) Completion {
	return Completion{Outcome: OutcomeOK, Text: text}
}

func RateLimited(err error) Completion {
	return Completion{Outcome: OutcomeRateLimited, Err: err}
}

func Failed(err error) Completion {
	return Completion{Outcome: OutcomeFailed, Err: err}
}

// Model is a vision-capable backend that describes the image behind a URL.
// Implementations map provider throttling to OutcomeRateLimited.
type Model interface {
	Name() string
	Describe(ctx context.Context, imageURL, prompt string) Completion
}
