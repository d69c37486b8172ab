package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/service"

	"go.opentelemetry.io/otel/trace"
)

type stubSweeper struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubSweeper) Sweep(ctx context.Context) (domain.SweepReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return domain.SweepReport{Checked: 1}, s.err
}

func (s *stubSweeper) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestAutoClosePollerSweepsImmediately(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubSweeper{}
	poller := NewAutoClosePoller(tracer, stub, 3600)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	eventually(t, func() bool { return stub.callCount() > 0 })
	cancel()
}

func TestAutoClosePollerToleratesSweepInProgress(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubSweeper{err: service.ErrSweepInProgress}
	poller := NewAutoClosePoller(tracer, stub, 60)

	// Must not panic or escalate.
	poller.sweep(context.Background())
	if stub.callCount() != 1 {
		t.Fatalf("expected one sweep attempt, got %d", stub.callCount())
	}
}

func TestAutoClosePollerDefaultInterval(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	poller := NewAutoClosePoller(tracer, &stubSweeper{}, 0)
	if poller.interval != 60*time.Second {
		t.Fatalf("expected 60s default, got %v", poller.interval)
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
