package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/tuncerburak97/apistats/internal/config"
)

func TestMemoryStoreIncrement(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		count, _, err := store.Increment(ctx, "ip:203.0.113.5", time.Minute)
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if count != i {
			t.Errorf("count = %d, want %d", count, i)
		}
	}

	count, _, err := store.Increment(ctx, "ip:10.0.0.1", time.Minute)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if count != 1 {
		t.Errorf("separate key count = %d, want 1", count)
	}
}

func TestMemoryStoreWindowExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	window := 20 * time.Millisecond

	if _, _, err := store.Increment(ctx, "k", window); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	time.Sleep(2 * window)

	count, _, err := store.Increment(ctx, "k", window)
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count after window expiry = %d, want 1", count)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	store.Increment(ctx, "k", time.Minute)
	store.Increment(ctx, "k", time.Minute)

	if err := store.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	count, _, _ := store.Increment(ctx, "k", time.Minute)
	if count != 1 {
		t.Errorf("count after reset = %d, want 1", count)
	}
}

func newLimiterConfig(requests int, window time.Duration) *config.RateLimitConfig {
	cfg := &config.RateLimitConfig{Enabled: true}
	cfg.PerIP.Requests = requests
	cfg.PerIP.Window = window
	return cfg
}

func TestServiceAllow(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	svc := NewService(newLimiterConfig(2, time.Minute), store)
	defer svc.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		result, err := svc.Allow(ctx, "203.0.113.5")
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if result.Limited {
			t.Errorf("request %d limited before reaching the limit", i+1)
		}
	}

	result, err := svc.Allow(ctx, "203.0.113.5")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !result.Limited {
		t.Error("request over the limit was not limited")
	}
	if result.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", result.Remaining)
	}

	// a different caller has its own window
	other, err := svc.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if other.Limited {
		t.Error("separate IP was limited")
	}
}

func TestServiceDisabled(t *testing.T) {
	cfg := newLimiterConfig(1, time.Minute)
	cfg.Enabled = false
	store := NewMemoryStore(time.Minute)
	svc := NewService(cfg, store)
	defer svc.Close()

	for i := 0; i < 5; i++ {
		result, err := svc.Allow(context.Background(), "203.0.113.5")
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if result.Limited {
			t.Error("disabled limiter limited a request")
		}
	}
}
