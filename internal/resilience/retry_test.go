package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"brandstudio/internal/domain"
)

func recordingPolicy(base Policy, delays *[]time.Duration) Policy {
	base.wait = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
	return base
}

func TestRetryTransientThenSuccess(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(Policy{MaxRetries: 3, InitialDelay: 100 * time.Millisecond}, &delays)

	calls := 0
	got, err := Retry(context.Background(), p, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &domain.ServiceError{Kind: domain.KindTransient, Code: 503, Message: "overloaded"}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Fatalf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestRetryExhaustionReturnsLastError(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(Policy{MaxRetries: 2, InitialDelay: time.Second}, &delays)

	calls := 0
	var last error
	_, err := Retry(context.Background(), p, func(context.Context) (int, error) {
		calls++
		last = &domain.ServiceError{Kind: domain.KindTransient, Code: 429, Message: "rate limit"}
		return 0, last
	})
	if calls != 3 {
		t.Fatalf("expected 3 invocations, got %d", calls)
	}
	if err != last {
		t.Fatalf("expected last error returned unchanged, got %v", err)
	}
	if len(delays) != 2 || delays[0] != time.Second || delays[1] != 2*time.Second {
		t.Fatalf("unexpected delays %v", delays)
	}
}

func TestRetryPermanentSingleInvocation(t *testing.T) {
	var delays []time.Duration
	p := recordingPolicy(DefaultPolicy, &delays)
	permanent := &domain.ServiceError{Kind: domain.KindPermanent, Code: 400, Message: "bad request"}

	calls := 0
	_, err := Retry(context.Background(), p, func(context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	if calls != 1 {
		t.Fatalf("expected a single invocation, got %d", calls)
	}
	if !errors.Is(err, permanent) {
		t.Fatalf("unexpected error %v", err)
	}
	if len(delays) != 0 {
		t.Fatalf("no wait expected, got %v", delays)
	}
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, Policy{MaxRetries: 5, InitialDelay: time.Hour}, func(context.Context) (int, error) {
		calls++
		return 0, &domain.ServiceError{Kind: domain.KindTransient, Code: 503}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one call before cancellation, got %d", calls)
	}
}

func TestPolicyDelay(t *testing.T) {
	p := RenderPolicy
	if p.Delay(1) != 2*time.Second || p.Delay(5) != 32*time.Second {
		t.Fatalf("unexpected delays %v %v", p.Delay(1), p.Delay(5))
	}
	if p.WithInitialDelay(0).InitialDelay != 2*time.Second {
		t.Fatalf("zero delay override should be ignored")
	}
}
