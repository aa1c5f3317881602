package fn

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryOpts {
	return RetryOpts{MaxAttempts: attempts, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	r := Retry(context.Background(), fastRetry(5), func(context.Context) Result[string] {
		calls++
		if calls < 3 {
			return Err[string](errors.New("transient"))
		}
		return Ok("done")
	})
	v, err := r.Unwrap()
	if err != nil || v != "done" {
		t.Fatalf("retry: %v, %v", v, err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryExhausts(t *testing.T) {
	boom := errors.New("permanent")
	calls := 0
	r := Retry(context.Background(), fastRetry(3), func(context.Context) Result[int] {
		calls++
		return Err[int](boom)
	})
	if _, err := r.Unwrap(); !errors.Is(err, boom) {
		t.Fatalf("last error must surface: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := RetryOpts{MaxAttempts: 10, InitialWait: time.Hour, MaxWait: time.Hour}
	done := make(chan Result[int])
	go func() {
		done <- Retry(ctx, opts, func(context.Context) Result[int] {
			return Err[int](errors.New("transient"))
		})
	}()
	cancel()
	select {
	case r := <-done:
		if _, err := r.Unwrap(); !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}
