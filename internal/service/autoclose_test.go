package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/journal"
	"signal-desk/internal/trade"

	"go.opentelemetry.io/otel/trace"
)

type stubQuotes struct {
	prices map[string]float64
	errs   map[string]error
	block  chan struct{}
}

func (s *stubQuotes) GetQuote(_ context.Context, symbol string, _ domain.Category) (*domain.Quote, error) {
	if s.block != nil {
		<-s.block
	}
	if err, ok := s.errs[symbol]; ok {
		return nil, err
	}
	price, ok := s.prices[symbol]
	if !ok {
		return nil, nil
	}
	return &domain.Quote{Symbol: symbol, Price: price}, nil
}

type stubCloseNotifier struct {
	closed    []domain.Trade
	durations []string
}

func (s *stubCloseNotifier) NotifyTradeClosed(t domain.Trade, duration string) bool {
	s.closed = append(s.closed, t)
	s.durations = append(s.durations, duration)
	return true
}

func openTrade(id, symbol string, signal domain.SignalType, entry, sl, tp float64) domain.Trade {
	return domain.Trade{
		ID: id, Asset: symbol, Symbol: symbol, Signal: signal,
		EntryPrice: entry, StopLoss: sl, TakeProfit: tp,
		TakeProfitTargets: []domain.TakeProfitTarget{{Label: "TP", Value: tp}},
		Quantity:          1, Status: domain.StatusOpen,
		OpenTime: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Category: domain.CategoryForex,
	}
}

func newTestAutoClose(quotes QuoteProvider, notifier CloseNotifier) (*AutoCloseService, *journal.Journal, *trade.Tracker) {
	jrnl := journal.New(nil)
	tracker := trade.NewTracker(5)
	svc := NewAutoCloseService(trace.NewNoopTracerProvider().Tracer("test"), jrnl, tracker, quotes, notifier)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 11, 30, 0, 0, time.UTC) }
	return svc, jrnl, tracker
}

func TestSweepClosesTradeAtTarget(t *testing.T) {
	quotes := &stubQuotes{prices: map[string]float64{"XAUUSD": 1950}}
	notifier := &stubCloseNotifier{}
	svc, jrnl, tracker := newTestAutoClose(quotes, notifier)

	tr := openTrade("t1", "XAUUSD", domain.SignalSell, 2000, 2020, 1950)
	jrnl.Add(context.Background(), tr)
	tracker.Track(tr)

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.Checked != 1 || report.Closed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.ClosedTrades[0].Target != "TP" {
		t.Fatalf("expected TP hit, got %+v", report.ClosedTrades[0])
	}

	closed, _ := jrnl.Get("t1")
	if closed.Status != domain.StatusClosed || closed.PnL <= 0 {
		t.Fatalf("SELL at target must close with profit: %+v", closed)
	}
	if ok, _ := tracker.CanOpen("XAUUSD"); !ok {
		t.Fatal("closed symbol must be released")
	}
	if len(notifier.closed) != 1 || notifier.durations[0] != "1h 30m" {
		t.Fatalf("expected close notification with duration, got %+v", notifier.durations)
	}
}

func TestSweepPicksDeepestLadderRung(t *testing.T) {
	quotes := &stubQuotes{prices: map[string]float64{"EURUSD": 1.1060}}
	svc, jrnl, tracker := newTestAutoClose(quotes, nil)

	tr := openTrade("t1", "EURUSD", domain.SignalBuy, 1.1000, 1.0950, 1.1050)
	tr.TakeProfitTargets = []domain.TakeProfitTarget{
		{Label: "TP1", Value: 1.1050},
		{Label: "TP2", Value: 1.1100},
	}
	jrnl.Add(context.Background(), tr)
	tracker.Track(tr)

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.Closed != 1 || report.ClosedTrades[0].Target != "TP1" {
		t.Fatalf("expected TP1 at 1.1060, got %+v", report.ClosedTrades)
	}

	closed, _ := jrnl.Get("t1")
	if closed.ExitPrice != 1.1050 {
		t.Fatalf("must close at the rung price, got %v", closed.ExitPrice)
	}
}

func TestSweepSkipsWithoutLivePrice(t *testing.T) {
	quotes := &stubQuotes{prices: map[string]float64{}}
	svc, jrnl, tracker := newTestAutoClose(quotes, nil)

	tr := openTrade("t1", "EURUSD", domain.SignalBuy, 1.09, 1.088, 1.095)
	jrnl.Add(context.Background(), tr)
	tracker.Track(tr)

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != "No live price" {
		t.Fatalf("expected no-live-price skip, got %+v", report.Skipped)
	}
	if got, _ := jrnl.Get("t1"); got.Status != domain.StatusOpen {
		t.Fatal("skipped trade must stay open")
	}
}

func TestSweepIsolatesFailures(t *testing.T) {
	quotes := &stubQuotes{
		prices: map[string]float64{"XAUUSD": 1950},
		errs:   map[string]error{"EURUSD": errors.New("upstream exploded")},
	}
	svc, jrnl, tracker := newTestAutoClose(quotes, nil)

	bad := openTrade("bad", "EURUSD", domain.SignalBuy, 1.09, 1.088, 1.095)
	good := openTrade("good", "XAUUSD", domain.SignalSell, 2000, 2020, 1950)
	jrnl.Add(context.Background(), bad)
	jrnl.Add(context.Background(), good)
	tracker.Track(bad)
	tracker.Track(good)

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.Closed != 1 || len(report.Skipped) != 1 {
		t.Fatalf("one close and one skip expected: %+v", report)
	}
	if report.Skipped[0].ID != "bad" || report.Skipped[0].Reason != "upstream exploded" {
		t.Fatalf("unexpected skip record: %+v", report.Skipped[0])
	}
}

func TestSweepLeavesUnreachedTradesOpen(t *testing.T) {
	quotes := &stubQuotes{prices: map[string]float64{"EURUSD": 1.0910}}
	svc, jrnl, tracker := newTestAutoClose(quotes, nil)

	tr := openTrade("t1", "EURUSD", domain.SignalBuy, 1.0900, 1.0880, 1.0950)
	jrnl.Add(context.Background(), tr)
	tracker.Track(tr)

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if report.Closed != 0 || len(report.Skipped) != 0 {
		t.Fatalf("price short of target must neither close nor skip: %+v", report)
	}
}

func TestSweepRejectsConcurrentRuns(t *testing.T) {
	block := make(chan struct{})
	quotes := &stubQuotes{prices: map[string]float64{"EURUSD": 1.095}, block: block}
	svc, jrnl, tracker := newTestAutoClose(quotes, nil)

	tr := openTrade("t1", "EURUSD", domain.SignalBuy, 1.09, 1.088, 1.095)
	jrnl.Add(context.Background(), tr)
	tracker.Track(tr)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Sweep(context.Background())
	}()

	// Wait for the first sweep to hold the lock inside the quote fetch.
	time.Sleep(50 * time.Millisecond)
	if _, err := svc.Sweep(context.Background()); !errors.Is(err, ErrSweepInProgress) {
		t.Fatalf("expected ErrSweepInProgress, got %v", err)
	}

	close(block)
	wg.Wait()

	if _, err := svc.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep after release must run: %v", err)
	}
}
