package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"signal-desk/internal/alert"
	"signal-desk/internal/domain"
	"signal-desk/internal/journal"
	"signal-desk/internal/trade"

	"go.opentelemetry.io/otel/trace"
)

// ErrSweepInProgress is returned when a sweep is requested while another
// one is still running.
var ErrSweepInProgress = errors.New("auto-close sweep already in progress")

// QuoteProvider prices open trades. A (nil, nil) return means no data; the
// sweep skips the trade rather than failing.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string, category domain.Category) (*domain.Quote, error)
}

// CloseNotifier sends the close summary for one trade.
type CloseNotifier interface {
	NotifyTradeClosed(t domain.Trade, duration string) bool
}

type AutoCloseService struct {
	tracer   trace.Tracer
	journal  *journal.Journal
	tracker  *trade.Tracker
	quotes   QuoteProvider
	notifier CloseNotifier
	now      func() time.Time

	sweepMu sync.Mutex
}

func NewAutoCloseService(
	tracer trace.Tracer,
	jrnl *journal.Journal,
	tracker *trade.Tracker,
	quotes QuoteProvider,
	notifier CloseNotifier,
) *AutoCloseService {
	return &AutoCloseService{
		tracer:   tracer,
		journal:  jrnl,
		tracker:  tracker,
		quotes:   quotes,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetNotifier binds the close notifier after construction.
func (s *AutoCloseService) SetNotifier(n CloseNotifier) {
	s.notifier = n
}

// Sweep walks the open trades once, closing any whose live price reached a
// target. One trade's failure never affects its siblings. Only one sweep
// runs at a time.
func (s *AutoCloseService) Sweep(ctx context.Context) (domain.SweepReport, error) {
	if s.journal == nil || s.tracker == nil || s.quotes == nil {
		return domain.SweepReport{}, errors.New("auto-close service not fully initialized")
	}

	if !s.sweepMu.TryLock() {
		return domain.SweepReport{}, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "auto-close.sweep")
	defer span.End()

	open := s.journal.Open()
	report := domain.SweepReport{
		Checked:      len(open),
		ClosedTrades: []domain.ClosedTradeRef{},
		Skipped:      []domain.SkippedTrade{},
	}

	for _, tr := range open {
		if ref, skip := s.evaluate(ctx, tr); skip != nil {
			report.Skipped = append(report.Skipped, *skip)
		} else if ref != nil {
			report.ClosedTrades = append(report.ClosedTrades, *ref)
		}
	}
	report.Closed = len(report.ClosedTrades)
	return report, nil
}

// evaluate prices one trade and closes it if a target was reached. Returns
// a closed ref, a skip record, or neither when the trade simply stays open.
func (s *AutoCloseService) evaluate(ctx context.Context, tr domain.Trade) (ref *domain.ClosedTradeRef, skip *domain.SkippedTrade) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: sweep panic on trade %s: %v", tr.ID, r)
			ref = nil
			skip = &domain.SkippedTrade{ID: tr.ID, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	category := tr.Category
	if category == "" {
		category = alert.Categorize(tr.Symbol)
	}

	quote, err := s.quotes.GetQuote(ctx, tr.Symbol, category)
	if err != nil {
		return nil, &domain.SkippedTrade{ID: tr.ID, Reason: err.Error()}
	}
	if quote == nil || quote.Price == 0 {
		return nil, &domain.SkippedTrade{ID: tr.ID, Reason: "No live price"}
	}

	target := trade.PickTarget(tr, quote.Price)
	if target == nil {
		return nil, nil
	}

	// Close at the target price, not the live price: the position would
	// have been taken out at the rung.
	if err := trade.Close(&tr, target.Value, target.Label, s.now()); err != nil {
		return nil, &domain.SkippedTrade{ID: tr.ID, Reason: err.Error()}
	}

	s.journal.Add(ctx, tr)
	s.tracker.Release(tr.Symbol)

	if s.notifier != nil {
		duration := trade.FormatDuration(tr.OpenTime, tr.CloseTime)
		if !s.notifier.NotifyTradeClosed(tr, duration) {
			log.Printf("Warning: close notification failed for trade %s", tr.ID)
		}
	}

	return &domain.ClosedTradeRef{ID: tr.ID, Symbol: tr.Symbol, Target: target.Label}, nil
}
