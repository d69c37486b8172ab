package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemorySuppressorWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemorySuppressor()
	m.now = func() time.Time { return now }

	ctx := context.Background()

	if m.IsDuplicate(ctx, "EURUSD", "BUY") {
		t.Fatal("first sighting must not be a duplicate")
	}
	now = now.Add(30 * time.Second)
	if !m.IsDuplicate(ctx, "eurusd", "buy") {
		t.Fatal("same pair inside the window must be suppressed, case-insensitively")
	}
	if m.IsDuplicate(ctx, "EURUSD", "SELL") {
		t.Fatal("different signal must not be suppressed")
	}
	if m.IsDuplicate(ctx, "GBPUSD", "BUY") {
		t.Fatal("different asset must not be suppressed")
	}
}

func TestMemorySuppressorFixedWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemorySuppressor()
	m.now = func() time.Time { return now }

	ctx := context.Background()
	m.IsDuplicate(ctx, "EURUSD", "BUY")

	// The window is measured from the first sighting; a duplicate inside
	// it must not extend the suppression.
	now = now.Add(45 * time.Second)
	if !m.IsDuplicate(ctx, "EURUSD", "BUY") {
		t.Fatal("expected duplicate at t+45s")
	}
	now = now.Add(20 * time.Second)
	if m.IsDuplicate(ctx, "EURUSD", "BUY") {
		t.Fatal("t+65s is past the window from the first sighting, must be fresh")
	}
}

func TestMemorySuppressorExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemorySuppressor()
	m.now = func() time.Time { return now }

	ctx := context.Background()
	m.IsDuplicate(ctx, "EURUSD", "BUY")

	now = now.Add(Window + time.Second)
	if m.IsDuplicate(ctx, "EURUSD", "BUY") {
		t.Fatal("pair outside the window must be fresh again")
	}
}

func TestMemorySuppressorEvict(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemorySuppressor()
	m.now = func() time.Time { return now }

	ctx := context.Background()
	m.IsDuplicate(ctx, "EURUSD", "BUY")
	m.IsDuplicate(ctx, "GBPUSD", "SELL")

	now = now.Add(4 * time.Minute)
	m.IsDuplicate(ctx, "XAUUSD", "BUY")

	now = now.Add(90 * time.Second)
	if n := m.evict(); n != 2 {
		t.Fatalf("expected 2 evictions, got %d", n)
	}
	if len(m.seen) != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", len(m.seen))
	}
}

func TestRedisSuppressor(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisSuppressor(client)

	ctx := context.Background()
	if r.IsDuplicate(ctx, "EURUSD", "BUY") {
		t.Fatal("first sighting must not be a duplicate")
	}
	if !r.IsDuplicate(ctx, "EURUSD", "BUY") {
		t.Fatal("second sighting must be suppressed")
	}

	mr.FastForward(Window + time.Second)
	if r.IsDuplicate(ctx, "EURUSD", "BUY") {
		t.Fatal("expired key must be fresh again")
	}
}

func TestRedisSuppressorFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisSuppressor(client)
	mr.Close()

	if r.IsDuplicate(context.Background(), "EURUSD", "BUY") {
		t.Fatal("unreachable redis must fail open")
	}

	var nilSuppressor = NewRedisSuppressor(nil)
	if nilSuppressor.IsDuplicate(context.Background(), "EURUSD", "BUY") {
		t.Fatal("nil client must fail open")
	}
}
