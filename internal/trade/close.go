package trade

import (
	"fmt"
	"sort"
	"time"

	"signal-desk/internal/domain"
)

// Close marks an open trade closed at exitPrice. PnL follows the trade
// direction: a SELL profits when price falls. Closing an already-closed
// trade is an error so the sweep cannot double-book.
func Close(t *domain.Trade, exitPrice float64, targetHit string, now time.Time) error {
	if t.Status == domain.StatusClosed {
		return fmt.Errorf("trade %s already closed", t.ID)
	}

	pnl := (exitPrice - t.EntryPrice) * t.Quantity
	if t.Signal == domain.SignalSell {
		pnl = (t.EntryPrice - exitPrice) * t.Quantity
	}

	pnlPercent := 0.0
	if t.EntryPrice != 0 {
		pnlPercent = pnl / (t.EntryPrice * t.Quantity) * 100
	}

	t.Status = domain.StatusClosed
	t.CloseTime = now
	t.ExitPrice = exitPrice
	t.PnL = pnl
	t.PnLPercent = pnlPercent
	t.TargetHit = targetHit
	return nil
}

// PickTarget walks the ladder in order of depth and returns the deepest
// target the price has reached, nil when none. A touch on the boundary
// counts as hit.
func PickTarget(t domain.Trade, price float64) *domain.TakeProfitTarget {
	if len(t.TakeProfitTargets) == 0 {
		return nil
	}

	ladder := make([]domain.TakeProfitTarget, len(t.TakeProfitTargets))
	copy(ladder, t.TakeProfitTargets)
	if t.Signal == domain.SignalSell {
		sort.Slice(ladder, func(i, j int) bool { return ladder[i].Value > ladder[j].Value })
	} else {
		sort.Slice(ladder, func(i, j int) bool { return ladder[i].Value < ladder[j].Value })
	}

	var hit *domain.TakeProfitTarget
	for i := range ladder {
		reached := price >= ladder[i].Value
		if t.Signal == domain.SignalSell {
			reached = price <= ladder[i].Value
		}
		if !reached {
			break
		}
		hit = &ladder[i]
	}
	return hit
}

// FormatDuration renders a trade's holding time for notifications.
func FormatDuration(open, close time.Time) string {
	if open.IsZero() || close.IsZero() || close.Before(open) {
		return "n/a"
	}
	d := close.Sub(open)
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
