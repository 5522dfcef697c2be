package rate

import (
	"context"
	"testing"
	"time"
)

func TestRegulatorAcquireAtHighRateDoesNotBlockLong(t *testing.T) {
	r := NewRegulator(1000)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := r.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestRegulatorSetRateTakesEffect(t *testing.T) {
	r := NewRegulator(1)
	ctx := context.Background()
	if _, err := r.Acquire(ctx); err != nil {
		t.Fatal(err)
	}

	r.SetRate(1000)
	deadline, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if _, err := r.Acquire(deadline); err != nil {
		t.Fatalf("expected fast acquire after raising rate, got %v", err)
	}
}

func TestRegulatorClampsNonPositiveRate(t *testing.T) {
	r := NewRegulator(0)
	if r.limiter.Limit() != minRate {
		t.Fatalf("expected clamped limit %v, got %v", minRate, r.limiter.Limit())
	}
	r.SetRate(-5)
	if r.limiter.Limit() != minRate {
		t.Fatalf("expected clamped limit %v, got %v", minRate, r.limiter.Limit())
	}
}

func TestRegulatorAcquireRespectsContextCancellation(t *testing.T) {
	r := NewRegulator(0.001)
	// The limiter starts with its single permit available; take it so the
	// next Acquire has to wait far past the deadline.
	if _, err := r.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := r.Acquire(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}
