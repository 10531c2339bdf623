// Package retry implements exponential backoff with additive jitter.
// Sleeping and randomness are injectable so tests run without real delays.
package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/ppiankov/truthlens/internal/model"
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures retry attempts and delays.
//
// Delay before attempt n+1 is min(BaseDelay * Multiplier^(n-1), MaxDelay)
// plus a random jitter in [0, MaxJitter).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxJitter   time.Duration

	Sleep  SleepFunc      // nil uses a context-aware timer
	Jitter func() float64 // nil uses math/rand; must return [0,1)
}

// PolicyFromConfig builds a policy from the retry section of the config
func PolicyFromConfig(cfg model.RetryConfig) Policy {
	return Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Multiplier:  cfg.Multiplier,
		MaxDelay:    cfg.MaxDelay,
		MaxJitter:   cfg.MaxJitter,
	}
}

// Result reports what a Do call did
type Result struct {
	Attempts int
	Delays   []time.Duration // Delays slept between attempts
}

// Delay returns the backoff before the attempt following attempt n (1-based), jitter included
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}

	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}

	if p.MaxJitter > 0 {
		d += p.jitter() * float64(p.MaxJitter)
	}

	return time.Duration(d)
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempt
// budget is spent, or ctx is done. retryable nil retries every error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error, retryable func(error) bool) (Result, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var res Result
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Attempts = attempt
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return res, nil
		}

		if retryable != nil && !retryable(lastErr) {
			return res, lastErr
		}

		if attempt == maxAttempts {
			break
		}

		delay := p.Delay(attempt)
		res.Delays = append(res.Delays, delay)
		if err := p.sleep(ctx, delay); err != nil {
			return res, err
		}
	}

	return res, lastErr
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func (p Policy) jitter() float64 {
	if p.Jitter != nil {
		return p.Jitter()
	}
	return rand.Float64()
}

// SleepContext sleeps for d unless ctx finishes first
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
