package resilience

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"brandstudio/internal/domain"
)

// Policy bounds how often and how patiently an operation is retried.
// MaxRetries counts retries after the first call.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	// Name labels log lines, e.g. "strategy" or "render".
	Name   string
	Logger *zerolog.Logger

	// wait is replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

var (
	DefaultPolicy = Policy{MaxRetries: 3, InitialDelay: 2 * time.Second, Name: "default"}
	RenderPolicy  = Policy{MaxRetries: 5, InitialDelay: 2 * time.Second, Name: "render"}
)

// WithLogger returns a copy of p that logs retries to logger.
func (p Policy) WithLogger(logger zerolog.Logger) Policy {
	p.Logger = &logger
	return p
}

// WithInitialDelay returns a copy of p with a different base delay.
func (p Policy) WithInitialDelay(d time.Duration) Policy {
	if d > 0 {
		p.InitialDelay = d
	}
	return p
}

// Delay is the wait before retry n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return p.InitialDelay * time.Duration(1<<(n-1))
}

// Retry runs op until it succeeds, fails with a non-transient error, or the
// retry budget is spent. The last error is returned unchanged.
func Retry[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	wait := p.wait
	if wait == nil {
		wait = sleep
	}
	logger := zerolog.Nop()
	if p.Logger != nil {
		logger = *p.Logger
	}

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if !domain.IsTransient(err) || attempt > p.MaxRetries {
			return zero, err
		}
		delay := p.Delay(attempt)
		logger.Warn().
			Err(err).
			Str("policy", p.Name).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("transient failure, retrying")
		if werr := wait(ctx, delay); werr != nil {
			return zero, werr
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
