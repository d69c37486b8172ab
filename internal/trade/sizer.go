// Package trade turns validated alerts into orders and manages their
// lifecycle from open to close.
package trade

import (
	"errors"
	"math"
)

// RiskConfig carries the account-level sizing knobs.
type RiskConfig struct {
	AccountBalance float64
	PerTradePct    float64
	MaxOpenTrades  int
	DefaultLot     float64
	MaxLot         float64
}

var ErrZeroStopDistance = errors.New("stop distance is zero")

// CalculatePositionSize derives a lot size from the per-trade risk budget
// and the stop distance, clamped to [DefaultLot, MaxLot] and rounded to two
// decimals.
func CalculatePositionSize(cfg RiskConfig, entry, stop float64) (float64, error) {
	dist := math.Abs(entry - stop)
	if dist == 0 {
		return 0, ErrZeroStopDistance
	}

	riskAmount := cfg.AccountBalance * cfg.PerTradePct
	size := riskAmount / dist

	if size < cfg.DefaultLot {
		size = cfg.DefaultLot
	}
	if size > cfg.MaxLot {
		size = cfg.MaxLot
	}
	return math.Round(size*100) / 100, nil
}
