package trade

import (
	"fmt"
	"math"
	"time"

	"signal-desk/internal/domain"

	"github.com/google/uuid"
)

// MinRiskReward is the floor below which an order is not worth placing.
const MinRiskReward = 0.5

// ValidateParams checks the price geometry of a prospective order. Rules
// run in order and the first failure wins.
func ValidateParams(asset string, entry, stopLoss, takeProfit float64, signal domain.SignalType) error {
	if asset == "" {
		return fmt.Errorf("asset is required")
	}
	if !signal.IsDirectional() {
		return fmt.Errorf("signal must be BUY or SELL, got %s", signal)
	}
	for name, v := range map[string]float64{"entry": entry, "stop loss": stopLoss, "take profit": takeProfit} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%s must be a positive finite price, got %v", name, v)
		}
	}
	if stopLoss == entry || takeProfit == entry {
		return fmt.Errorf("stop loss and take profit must differ from entry")
	}

	if signal == domain.SignalBuy && (stopLoss >= entry || takeProfit <= entry) {
		return fmt.Errorf("BUY requires SL below entry and TP above entry")
	}
	if signal == domain.SignalSell && (stopLoss <= entry || takeProfit >= entry) {
		return fmt.Errorf("SELL requires SL above entry and TP below entry")
	}

	rr := math.Abs(takeProfit-entry) / math.Abs(entry-stopLoss)
	if rr < MinRiskReward {
		return fmt.Errorf("risk/reward %.2f below minimum %.1f", rr, MinRiskReward)
	}
	return nil
}

// OrderParams are the inputs NewOrder needs beyond the raw prices.
type OrderParams struct {
	Asset      string
	Signal     domain.SignalType
	OrderType  domain.OrderType
	EntryPrice float64
	EntryZone  string
	StopLoss   float64
	TakeProfit float64
	Targets    []domain.TakeProfitTarget
	Quantity   float64
	Category   domain.Category
	Confidence float64
	Reason     string
}

// NewOrder builds an OPEN trade from validated parameters. The risk/reward
// ratio is computed once here and never recomputed. A missing target ladder
// is synthesized from the single take profit so the auto-close path always
// has rungs to walk.
func NewOrder(p OrderParams, now time.Time) domain.Trade {
	targets := p.Targets
	if len(targets) == 0 {
		targets = []domain.TakeProfitTarget{{Label: "TP", Value: p.TakeProfit}}
	}

	rr := 0.0
	if risk := math.Abs(p.EntryPrice - p.StopLoss); risk > 0 {
		rr = math.Abs(p.TakeProfit-p.EntryPrice) / risk
	}

	return domain.Trade{
		ID:                uuid.NewString(),
		OpenTime:          now,
		Asset:             p.Asset,
		Symbol:            p.Asset,
		Signal:            p.Signal,
		OrderType:         p.OrderType,
		EntryPrice:        p.EntryPrice,
		EntryZone:         p.EntryZone,
		StopLoss:          p.StopLoss,
		TakeProfit:        p.TakeProfit,
		TakeProfitTargets: targets,
		Quantity:          p.Quantity,
		Category:          p.Category,
		Confidence:        p.Confidence,
		RiskReward:        rr,
		Reason:            p.Reason,
		Status:            domain.StatusOpen,
	}
}
