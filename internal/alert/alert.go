package alert

import (
	"time"

	"signal-desk/internal/domain"

	"github.com/google/uuid"
)

const unknownAsset = "UNKNOWN"

// New builds an Alert from a raw inbound message. It always returns an
// alert: when parsing fails, Asset is the UNKNOWN sentinel, Signal is WAIT
// and Parsed is false so the validator rejects it downstream.
func New(text string, groupID int64, groupName string, source domain.Source) domain.Alert {
	parsed := Parse(text)

	a := domain.Alert{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		GroupID:     groupID,
		GroupName:   groupName,
		MessageText: text,
		Asset:       unknownAsset,
		Signal:      domain.SignalWait,
		Source:      source,
		Parsed:      parsed != nil,
	}

	if parsed == nil {
		a.Category = Categorize("")
		a.Err = "failed to parse alert"
		return a
	}

	a.Asset = parsed.Asset
	a.Signal = parsed.Signal
	a.EntryPrice = parsed.EntryPrice
	a.EntryZone = parsed.EntryZone
	a.StopLoss = parsed.StopLoss
	a.TakeProfit = parsed.TakeProfit
	a.TakeProfitTargets = parsed.TakeProfitTargets
	a.Category = Categorize(parsed.Asset)

	// A ladder without an explicit TP falls back to the first rung.
	if a.TakeProfit == nil && len(a.TakeProfitTargets) > 0 {
		a.TakeProfit = domain.Float(a.TakeProfitTargets[0].Value)
	}

	return a
}

// Validate is the structural gate in front of scoring. Rules run in order
// and the first failure wins.
func Validate(a domain.Alert) (bool, string) {
	if !a.Parsed {
		return false, "alert parsing failed"
	}
	if a.Asset == "" || a.Asset == unknownAsset {
		return false, "asset symbol not recognized"
	}
	if !a.Signal.IsValid() {
		return false, "invalid signal type"
	}

	// Entry price may arrive later via an entry zone, but directional
	// signals need a stop and at least one target before execution.
	if a.Signal.IsDirectional() {
		if a.StopLoss == nil || (a.TakeProfit == nil && len(a.TakeProfitTargets) == 0) {
			return false, "BUY/SELL requires SL and TP"
		}
	}

	return true, ""
}
