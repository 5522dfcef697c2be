// Package apperrors defines the error taxonomy shared across the load
// generator: a small set of sentinel errors, a Kind enum for metrics and
// reporting, and a backoff helper for bounded retries of setup steps.
// Request execution never retries, and pattern-file loading does not use
// the helper either.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Kind categorizes an error for metrics and reporting purposes.
type Kind string

const (
	KindConfigInvalid           Kind = "config_invalid"
	KindRequestGenerationFailed Kind = "request_generation_failed"
	KindRateLimited             Kind = "rate_limited"
	KindBreakerOpen             Kind = "breaker_open"
	KindRequestTimeout          Kind = "request_timeout"
	KindTransportError          Kind = "transport_error"
	KindValidationFailed        Kind = "validation_failed"
	KindExporterIOError         Kind = "exporter_io_error"
	KindUnknown                 Kind = "unknown"
)

// Sentinel errors. Wrap these with fmt.Errorf("...: %w", ErrX) at the call
// site so errors.Is still matches while the message names the offending
// field or value.
var (
	ErrConfigInvalid           = errors.New("configuration invalid")
	ErrRequestGenerationFailed = errors.New("request generation failed")
	ErrRateLimited             = errors.New("rate limited")
	ErrBreakerOpen             = errors.New("circuit breaker open")
	ErrRequestTimeout          = errors.New("request timed out")
	ErrTransportError          = errors.New("transport error")
	ErrValidationFailed        = errors.New("response validation failed")
	ErrExporterIOError         = errors.New("exporter io error")
)

// ClassifyKind maps an error to its Kind via errors.Is, falling back to
// KindUnknown for anything not in the taxonomy. A context.DeadlineExceeded
// surfacing directly from an HTTP round trip is treated as a timeout.
func ClassifyKind(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrConfigInvalid):
		return KindConfigInvalid
	case errors.Is(err, ErrRequestGenerationFailed):
		return KindRequestGenerationFailed
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrBreakerOpen):
		return KindBreakerOpen
	case errors.Is(err, ErrRequestTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindRequestTimeout
	case errors.Is(err, ErrTransportError):
		return KindTransportError
	case errors.Is(err, ErrValidationFailed):
		return KindValidationFailed
	case errors.Is(err, ErrExporterIOError):
		return KindExporterIOError
	default:
		return KindUnknown
	}
}

// ConfigError wraps ErrConfigInvalid and names the offending field.
func ConfigError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrConfigInvalid)
}

// BackoffConfig controls RetryWithBackoff.
type BackoffConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      bool
}

// DefaultBackoff returns defaults for bounded setup-step retries: 3
// attempts, a 100 ms base delay capped at 2 s, with jitter.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Jitter:      true,
	}
}

// RetryWithBackoff runs op until it succeeds or MaxAttempts is exhausted,
// sleeping an exponentially growing, optionally jittered delay between
// attempts. It never retries request execution itself (see section 7 of
// the design notes), and traffic.LoadCustom does not call it: a pattern
// file is read once.
func RetryWithBackoff(cfg BackoffConfig, op func(attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := op(attempt); err != nil {
			lastErr = err
			if attempt == cfg.MaxAttempts-1 {
				break
			}
			time.Sleep(backoffDelay(cfg, attempt))
			continue
		}
		return nil
	}
	return lastErr
}

func backoffDelay(cfg BackoffConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay * time.Duration(1<<uint(attempt))
	if delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if cfg.Jitter && delay > 0 {
		delay += time.Duration(rand.Int64N(int64(delay) / 4))
	}
	return delay
}
