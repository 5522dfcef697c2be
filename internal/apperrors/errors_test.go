package apperrors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassifyKind(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{fmt.Errorf("name: %w", ErrConfigInvalid), KindConfigInvalid},
		{ErrBreakerOpen, KindBreakerOpen},
		{ErrRequestTimeout, KindRequestTimeout},
		{errors.New("boom"), KindUnknown},
		{nil, KindUnknown},
	}
	for _, c := range cases {
		if got := ClassifyKind(c.err); got != c.want {
			t.Errorf("ClassifyKind(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestConfigError(t *testing.T) {
	err := ConfigError("testDuration", "must be positive")
	if !errors.Is(err, ErrConfigInvalid) {
		t.Fatal("expected ConfigError to wrap ErrConfigInvalid")
	}
	if ClassifyKind(err) != KindConfigInvalid {
		t.Fatal("expected ConfigError to classify as KindConfigInvalid")
	}
}

func TestRetryWithBackoffSucceedsEventually(t *testing.T) {
	cfg := BackoffConfig{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}
	attempts := 0
	err := RetryWithBackoff(cfg, func(attempt int) error {
		attempts++
		if attempt < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoffExhausts(t *testing.T) {
	cfg := BackoffConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	wantErr := errors.New("persistent failure")
	err := RetryWithBackoff(cfg, func(attempt int) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected persistent failure, got %v", err)
	}
}
