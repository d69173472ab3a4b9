package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	consts "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/constants"
	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

// AttemptOutcome classifies one navigation attempt.
type AttemptOutcome string

const (
	AttemptSuccess AttemptOutcome = "success"
	AttemptTimeout AttemptOutcome = "timeout"
	AttemptError   AttemptOutcome = "error"
)

// RetryState is the position of the retry loop.
type RetryState string

const (
	StatePending    RetryState = "pending"
	StateAttempting RetryState = "attempting"
	StateSucceeded  RetryState = "succeeded"
	StateExhausted  RetryState = "exhausted"
)

// PageLoadAttempt describes a finished attempt; it is handed to the observer
// callback and not retained.
type PageLoadAttempt struct {
	Number      int
	MaxAttempts int
	Outcome     AttemptOutcome
	Err         error
	Duration    time.Duration
}

// RetryPolicy executes an operation with a bounded number of attempts and a
// fixed delay between them.
type RetryPolicy struct {
	MaxAttempts    int
	Delay          time.Duration
	AttemptTimeout time.Duration

	// OnAttempt, when set, is called after every attempt.
	OnAttempt func(PageLoadAttempt)
	// Sleep waits between attempts; tests replace it. It must return early
	// with ctx.Err() when ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error

	state RetryState
}

// DefaultRetryPolicy returns 3 attempts, 3s apart, 60s each.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    consts.DefaultNavigationAttempts,
		Delay:          consts.DefaultRetryDelay,
		AttemptTimeout: consts.DefaultNavigationTimeout,
	}
}

// State reports where the last Do call ended.
func (p *RetryPolicy) State() RetryState {
	if p.state == "" {
		return StatePending
	}
	return p.state
}

// Do runs op until it succeeds or attempts run out. Every error is retryable,
// but cancellation of ctx stops the loop immediately. Exhaustion returns an
// error wrapping ErrNavigationExhausted and the last attempt's error.
func (p *RetryPolicy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	p.state = StatePending
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		p.state = StateAttempting

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}
		start := time.Now()
		err := op(attemptCtx, attempt)
		timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()

		record := PageLoadAttempt{
			Number:      attempt,
			MaxAttempts: maxAttempts,
			Outcome:     AttemptSuccess,
			Err:         err,
			Duration:    time.Since(start),
		}
		if err != nil {
			record.Outcome = AttemptError
			if timedOut || errors.Is(err, context.DeadlineExceeded) {
				record.Outcome = AttemptTimeout
			}
		}
		if p.OnAttempt != nil {
			p.OnAttempt(record)
		}

		if err == nil {
			p.state = StateSucceeded
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			p.state = StateExhausted
			return fmt.Errorf("%w: cancelled after %d attempt(s): %w", sharedErrors.ErrNavigationExhausted, attempt, ctx.Err())
		}
		if attempt < maxAttempts {
			if err := sleep(ctx, p.Delay); err != nil {
				p.state = StateExhausted
				return fmt.Errorf("%w: cancelled after %d attempt(s): %w", sharedErrors.ErrNavigationExhausted, attempt, err)
			}
		}
	}

	p.state = StateExhausted
	return fmt.Errorf("%w: %d attempt(s): %w", sharedErrors.ErrNavigationExhausted, maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
