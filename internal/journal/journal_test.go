package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"signal-desk/internal/domain"
)

type stubStore struct {
	upserts []domain.Trade
	err     error
}

func (s *stubStore) UpsertTrade(_ context.Context, t domain.Trade) error {
	s.upserts = append(s.upserts, t)
	return s.err
}

func mkTrade(id, symbol string, open time.Time) domain.Trade {
	return domain.Trade{
		ID: id, Asset: symbol, Symbol: symbol,
		Signal: domain.SignalBuy, Status: domain.StatusOpen,
		OpenTime: open, EntryPrice: 1, Quantity: 1,
	}
}

func TestAddUpsertsByID(t *testing.T) {
	j := New(nil)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tr := mkTrade("t1", "EURUSD", base)
	j.Add(ctx, tr)

	tr.Status = domain.StatusClosed
	tr.PnL = 5
	j.Add(ctx, tr)

	all := j.All()
	if len(all) != 1 {
		t.Fatalf("re-adding the same id must not duplicate, got %d trades", len(all))
	}
	if all[0].Status != domain.StatusClosed || all[0].PnL != 5 {
		t.Fatalf("expected mutated copy to win: %+v", all[0])
	}
}

func TestAddWritesThroughToStore(t *testing.T) {
	store := &stubStore{}
	j := New(store)
	j.Add(context.Background(), mkTrade("t1", "EURUSD", time.Now()))

	if len(store.upserts) != 1 || store.upserts[0].ID != "t1" {
		t.Fatalf("expected write-through, got %+v", store.upserts)
	}
}

func TestAddSurvivesStoreFailure(t *testing.T) {
	store := &stubStore{err: errors.New("db down")}
	j := New(store)
	j.Add(context.Background(), mkTrade("t1", "EURUSD", time.Now()))

	if _, ok := j.Get("t1"); !ok {
		t.Fatal("in-memory record must commit even when the store fails")
	}
}

func TestAllNewestFirst(t *testing.T) {
	j := New(nil)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	j.Add(ctx, mkTrade("old", "EURUSD", base))
	j.Add(ctx, mkTrade("new", "GBPUSD", base.Add(time.Hour)))

	all := j.All()
	if all[0].ID != "new" || all[1].ID != "old" {
		t.Fatalf("expected newest first, got %s then %s", all[0].ID, all[1].ID)
	}
}

func TestFilter(t *testing.T) {
	j := New(nil)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	open := mkTrade("t1", "EURUSD", base)
	closed := mkTrade("t2", "XAUUSD", base.Add(time.Hour))
	closed.Status = domain.StatusClosed
	closed.Signal = domain.SignalSell
	j.Add(ctx, open)
	j.Add(ctx, closed)

	if got := j.Filter(domain.TradeFilter{Status: domain.StatusOpen}); len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("status filter: %+v", got)
	}
	if got := j.Filter(domain.TradeFilter{Asset: "xauusd"}); len(got) != 1 || got[0].ID != "t2" {
		t.Fatalf("asset filter must be case-insensitive: %+v", got)
	}
	if got := j.Filter(domain.TradeFilter{Signal: domain.SignalSell}); len(got) != 1 {
		t.Fatalf("signal filter: %+v", got)
	}
	if got := j.Filter(domain.TradeFilter{Limit: 1}); len(got) != 1 {
		t.Fatalf("limit: %+v", got)
	}
}

func TestByDateRangeInclusive(t *testing.T) {
	j := New(nil)
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	j.Add(ctx, mkTrade("at-start", "A", start))
	j.Add(ctx, mkTrade("at-end", "B", end))
	j.Add(ctx, mkTrade("before", "C", start.Add(-time.Second)))
	j.Add(ctx, mkTrade("after", "D", end.Add(time.Second)))

	got := j.ByDateRange(start, end)
	if len(got) != 2 {
		t.Fatalf("expected inclusive boundaries, got %d trades", len(got))
	}
}

func TestStatsEmpty(t *testing.T) {
	s := Stats(nil)
	if s.WinRate != 0 || s.ProfitFactor != 0 || s.AvgRiskReward != 0 {
		t.Fatalf("empty stats must be all zeroes: %+v", s)
	}
}

func TestStatsAggregation(t *testing.T) {
	base := time.Now()
	win := mkTrade("w", "A", base)
	win.Status = domain.StatusClosed
	win.PnL = 100
	win.PnLPercent = 2
	win.RiskReward = 2

	loss := mkTrade("l", "B", base)
	loss.Status = domain.StatusClosed
	loss.PnL = -50
	loss.PnLPercent = -1
	loss.RiskReward = 1

	stillOpen := mkTrade("o", "C", base)
	stillOpen.RiskReward = 3

	s := Stats([]domain.Trade{win, loss, stillOpen})
	if s.TotalTrades != 3 || s.OpenTrades != 1 || s.ClosedTrades != 2 {
		t.Fatalf("counts off: %+v", s)
	}
	if s.WinRate != 0.5 {
		t.Fatalf("expected win rate 0.5, got %v", s.WinRate)
	}
	if s.TotalPnL != 50 || s.TotalPnLPercent != 1 {
		t.Fatalf("pnl sums off: %+v", s)
	}
	if s.AverageWin != 100 || s.AverageLoss != -50 {
		t.Fatalf("averages off: %+v", s)
	}
	if s.LargestWin != 100 || s.LargestLoss != -50 {
		t.Fatalf("extremes off: %+v", s)
	}
	if s.ProfitFactor != 2 {
		t.Fatalf("expected profit factor 2, got %v", s.ProfitFactor)
	}
	if s.AvgRiskReward != 2 {
		t.Fatalf("expected avg rr 2, got %v", s.AvgRiskReward)
	}
}

func TestStatsProfitFactorSentinel(t *testing.T) {
	win := domain.Trade{ID: "w", Status: domain.StatusClosed, PnL: 10}
	if s := Stats([]domain.Trade{win}); s.ProfitFactor != 999 {
		t.Fatalf("profits with no losses must cap at 999, got %v", s.ProfitFactor)
	}

	loss := domain.Trade{ID: "l", Status: domain.StatusClosed, PnL: -10}
	if s := Stats([]domain.Trade{loss}); s.ProfitFactor != 0 {
		t.Fatalf("losses with no profits must be 0, got %v", s.ProfitFactor)
	}
}

func TestLoadReplacesState(t *testing.T) {
	j := New(nil)
	j.Add(context.Background(), mkTrade("gone", "A", time.Now()))

	j.Load([]domain.Trade{mkTrade("kept", "B", time.Now())})
	if _, ok := j.Get("gone"); ok {
		t.Fatal("load must replace prior state")
	}
	if _, ok := j.Get("kept"); !ok {
		t.Fatal("loaded trade missing")
	}
}
