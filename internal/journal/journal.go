// Package journal is the authoritative in-process record of every trade
// the bot has opened. A Store collaborator makes it restart-safe.
package journal

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"signal-desk/internal/domain"
)

// profitFactorCap stands in for "infinite" when there are profits and no
// losses, keeping the stats JSON finite.
const profitFactorCap = 999

// Store persists journal writes. The journal stays the in-process source of
// truth; the store only makes it survive restarts.
type Store interface {
	UpsertTrade(ctx context.Context, t domain.Trade) error
}

type Journal struct {
	mu     sync.RWMutex
	trades map[string]domain.Trade
	store  Store
}

// New builds a journal. store may be nil, in which case writes stay
// in memory only.
func New(store Store) *Journal {
	return &Journal{
		trades: make(map[string]domain.Trade),
		store:  store,
	}
}

// Add upserts a trade by id. The close path re-adds the mutated copy under
// the same id, which is how a close becomes visible. Store failures are
// logged, not returned: the in-memory record is already committed.
func (j *Journal) Add(ctx context.Context, t domain.Trade) {
	j.mu.Lock()
	j.trades[t.ID] = t
	j.mu.Unlock()

	if j.store != nil {
		if err := j.store.UpsertTrade(ctx, t); err != nil {
			log.Printf("Warning: journal persist failed for trade %s: %v", t.ID, err)
		}
	}
}

// Load replaces the in-memory state, used once at startup to rehydrate
// from the store.
func (j *Journal) Load(trades []domain.Trade) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades = make(map[string]domain.Trade, len(trades))
	for _, t := range trades {
		j.trades[t.ID] = t
	}
}

// Get returns the trade with the given id.
func (j *Journal) Get(id string) (domain.Trade, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	t, ok := j.trades[id]
	return t, ok
}

// All returns every trade, newest open time first.
func (j *Journal) All() []domain.Trade {
	j.mu.RLock()
	out := make([]domain.Trade, 0, len(j.trades))
	for _, t := range j.trades {
		out = append(out, t)
	}
	j.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool { return out[i].OpenTime.After(out[k].OpenTime) })
	return out
}

// Open returns the open trades, newest first.
func (j *Journal) Open() []domain.Trade {
	return j.Filter(domain.TradeFilter{Status: domain.StatusOpen})
}

// Filter applies exact-match constraints; zero values mean no constraint.
func (j *Journal) Filter(f domain.TradeFilter) []domain.Trade {
	out := []domain.Trade{}
	for _, t := range j.All() {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Asset != "" && !strings.EqualFold(t.Asset, f.Asset) {
			continue
		}
		if f.Signal != "" && t.Signal != f.Signal {
			continue
		}
		if !f.StartTime.IsZero() && t.OpenTime.Before(f.StartTime) {
			continue
		}
		if !f.EndTime.IsZero() && t.OpenTime.After(f.EndTime) {
			continue
		}
		out = append(out, t)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out
}

// ByDateRange returns trades whose OpenTime falls inside [start, end],
// boundaries included.
func (j *Journal) ByDateRange(start, end time.Time) []domain.Trade {
	out := []domain.Trade{}
	for _, t := range j.All() {
		if t.OpenTime.Before(start) || t.OpenTime.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Stats aggregates the given trades. An empty or all-open slice yields
// zeroes, never NaN.
func Stats(trades []domain.Trade) domain.TradeStats {
	s := domain.TradeStats{TotalTrades: len(trades)}

	var grossProfit, grossLoss, rrSum float64
	for _, t := range trades {
		rrSum += t.RiskReward

		if t.Status == domain.StatusOpen {
			s.OpenTrades++
			continue
		}
		s.ClosedTrades++
		s.TotalPnL += t.PnL
		s.TotalPnLPercent += t.PnLPercent

		if t.PnL > 0 {
			s.WinningTrades++
			grossProfit += t.PnL
			if t.PnL > s.LargestWin {
				s.LargestWin = t.PnL
			}
		} else {
			s.LosingTrades++
			grossLoss += -t.PnL
			if t.PnL < s.LargestLoss {
				s.LargestLoss = t.PnL
			}
		}
	}

	if s.ClosedTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.ClosedTrades)
	}
	if s.WinningTrades > 0 {
		s.AverageWin = grossProfit / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AverageLoss = -grossLoss / float64(s.LosingTrades)
	}
	if grossLoss > 0 {
		s.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		s.ProfitFactor = profitFactorCap
	}
	if len(trades) > 0 {
		s.AvgRiskReward = rrSum / float64(len(trades))
	}
	return s
}

// StatsAll is the journal-wide aggregate.
func (j *Journal) StatsAll() domain.TradeStats {
	return Stats(j.All())
}
