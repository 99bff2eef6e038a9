package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

var errTransient = errors.New("connection reset")

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errTransient)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, errTransient) {
		t.Error("wrapped error should unwrap to the cause")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), errTransient.Error())
	}
	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestBackoffDo(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, true, 3, 1, false},
		{"non-retryable stops", 5, false, 3, 1, true},
		{"recovers on second try", 1, true, 3, 2, false},
		{"exhausts attempts", 5, true, 3, 3, true},
		{"zero attempts runs once", 5, true, 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Backoff{Attempts: tt.attempts, Delay: time.Millisecond}.Do(ctx, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(errTransient)
					}
					return errTransient
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Backoff{Attempts: 3, Delay: time.Hour}.Do(ctx, func() error {
		calls++
		return Retryable(errTransient)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoffHonoursRetryAfterUpToMaxDelay(t *testing.T) {
	b := Backoff{Attempts: 2, Delay: time.Millisecond, MaxDelay: 30 * time.Millisecond}

	calls := 0
	start := time.Now()
	err := b.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return RetryableAfter(errTransient, time.Hour)
		}
		return nil
	})
	elapsed := time.Since(start)

	if err != nil || calls != 2 {
		t.Fatalf("Do() = %v after %d calls, want success on the second", err, calls)
	}
	if elapsed < 30*time.Millisecond || elapsed > time.Second {
		t.Errorf("waited %v, want the 30ms cap", elapsed)
	}
}

func TestRetryableAfter(t *testing.T) {
	if RetryableAfter(nil, time.Second) != nil {
		t.Error("RetryableAfter(nil) should return nil")
	}
	var re *RetryableError
	if !errors.As(RetryableAfter(errTransient, 5*time.Second), &re) || re.After != 5*time.Second {
		t.Errorf("RetryableAfter lost the wait: %+v", re)
	}
}

func TestRetryAfterHeader(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"-3", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.header, now); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
