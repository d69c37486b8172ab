// Package score grades trade alerts on a fixed multi-criteria rubric.
// Scoring is a pure function of the alert's fields: same alert in, same
// confidence out.
package score

import (
	"fmt"
	"math"
	"strings"

	"signal-desk/internal/domain"
)

const (
	maxRiskReward        = 15
	maxPriceLogic        = 15
	maxStopDistance      = 12
	maxTargetDistance    = 12
	maxSourceCredibility = 15
	maxCategoryRisk      = 12
	maxVolatility        = 9

	// MaxScore is the rubric ceiling: 15+15+12+12+15+12+9.
	MaxScore = maxRiskReward + maxPriceLogic + maxStopDistance + maxTargetDistance +
		maxSourceCredibility + maxCategoryRisk + maxVolatility
)

// Score evaluates an alert against the seven criteria and returns the
// total, the 0-1 confidence and the letter grade.
func Score(a domain.Alert) domain.ValidationScore {
	checks := domain.ScoreChecks{
		RiskReward:        scoreRiskReward(a),
		PriceLogic:        scorePriceLogic(a),
		StopDistance:      scoreStopDistance(a),
		TargetDistance:    scoreTargetDistance(a),
		SourceCredibility: scoreSource(a.Source),
		CategoryRisk:      scoreCategory(a.Category),
		Volatility:        scoreVolatility(a),
	}

	total := checks.Total()
	confidence := math.Min(math.Max(float64(total)/float64(MaxScore), 0), 1)

	return domain.ValidationScore{
		Score:      total,
		MaxScore:   MaxScore,
		Confidence: confidence,
		Grade:      GradeFor(confidence),
		Checks:     checks,
	}
}

// GradeFor maps a confidence value onto the S-F ladder.
func GradeFor(confidence float64) domain.Grade {
	switch {
	case confidence >= 0.95:
		return domain.GradeS
	case confidence >= 0.85:
		return domain.GradeA
	case confidence >= 0.75:
		return domain.GradeB
	case confidence >= 0.65:
		return domain.GradeC
	case confidence >= 0.50:
		return domain.GradeD
	default:
		return domain.GradeF
	}
}

func scoreRiskReward(a domain.Alert) int {
	if a.EntryPrice == nil || a.StopLoss == nil || a.TakeProfit == nil {
		return 0
	}
	risk := math.Abs(*a.EntryPrice - *a.StopLoss)
	if risk == 0 {
		return 0
	}
	rr := math.Abs(*a.TakeProfit-*a.EntryPrice) / risk

	switch {
	case rr >= 2.0:
		return 15
	case rr >= 1.5:
		return 13
	case rr >= 1.0:
		return 11
	case rr >= 0.5:
		return 7
	default:
		return 3
	}
}

func scorePriceLogic(a domain.Alert) int {
	complete := a.EntryPrice != nil && a.StopLoss != nil && a.TakeProfit != nil

	if a.Signal == domain.SignalBuy && complete {
		if *a.StopLoss < *a.EntryPrice && *a.TakeProfit > *a.EntryPrice {
			return 15
		}
		return 0
	}
	if a.Signal == domain.SignalSell && complete {
		if *a.TakeProfit < *a.EntryPrice && *a.StopLoss > *a.EntryPrice {
			return 15
		}
		return 0
	}

	// Partial credit for WAIT/CLOSE or incomplete data.
	return 10
}

func scoreStopDistance(a domain.Alert) int {
	if a.EntryPrice == nil || a.StopLoss == nil || *a.EntryPrice == 0 {
		return 0
	}
	dist := math.Abs(*a.EntryPrice-*a.StopLoss) / *a.EntryPrice

	switch {
	case dist >= 0.001 && dist <= 0.05:
		return 12
	case dist < 0.001:
		return 6 // too tight
	default:
		return 8 // too wide but acceptable
	}
}

func scoreTargetDistance(a domain.Alert) int {
	if a.EntryPrice == nil || a.TakeProfit == nil || *a.EntryPrice == 0 {
		return 0
	}
	dist := math.Abs(*a.TakeProfit-*a.EntryPrice) / *a.EntryPrice

	switch {
	case dist >= 0.002 && dist <= 0.2:
		return 12
	case dist < 0.002:
		return 5 // too tight
	default:
		return 8 // too wide but acceptable
	}
}

func scoreSource(s domain.Source) int {
	switch s {
	case domain.SourceProvider:
		return 15
	case domain.SourceWebsite:
		return 12
	case domain.SourceEmail:
		return 10
	default:
		return 8
	}
}

func scoreCategory(c domain.Category) int {
	switch c {
	case domain.CategoryForex:
		return 12
	case domain.CategoryCommodities:
		return 11
	case domain.CategoryIndices:
		return 10
	case domain.CategoryCrypto:
		return 8
	default:
		return 10
	}
}

// scoreVolatility is a placeholder: full marks until an ATR feed is wired
// in. TODO: source ATR from the historical-candle provider and scale this.
func scoreVolatility(domain.Alert) int {
	return maxVolatility
}

// QuickChecks is the result of the fast 3-check gate.
type QuickChecks struct {
	RiskReward bool `json:"rr"`
	PriceLogic bool `json:"price_logic"`
	Source     bool `json:"source"`
}

// QuickValidate runs only the three cheapest checks, for callers that do
// not need the full rubric.
func QuickValidate(a domain.Alert) (bool, QuickChecks) {
	var checks QuickChecks

	if a.EntryPrice != nil && a.StopLoss != nil && a.TakeProfit != nil {
		risk := math.Abs(*a.EntryPrice - *a.StopLoss)
		if risk > 0 {
			rr := math.Abs(*a.TakeProfit-*a.EntryPrice) / risk
			checks.RiskReward = rr >= 0.5 && rr <= 5.0
		}
	}

	checks.PriceLogic = scorePriceLogic(a) != 0

	checks.Source = a.Source == domain.SourceProvider || a.Source == domain.SourceWebsite

	return checks.RiskReward && checks.PriceLogic && checks.Source, checks
}

// Format renders a score as a multi-line summary for notifications.
func Format(s domain.ValidationScore) string {
	lines := []string{
		fmt.Sprintf("Grade: %s", s.Grade),
		fmt.Sprintf("Confidence: %.1f%%", s.Confidence*100),
		fmt.Sprintf("R/R: %d/%d pts", s.Checks.RiskReward, maxRiskReward),
		fmt.Sprintf("Price Logic: %d/%d pts", s.Checks.PriceLogic, maxPriceLogic),
		fmt.Sprintf("SL Distance: %d/%d pts", s.Checks.StopDistance, maxStopDistance),
		fmt.Sprintf("TP Distance: %d/%d pts", s.Checks.TargetDistance, maxTargetDistance),
		fmt.Sprintf("Source: %d/%d pts", s.Checks.SourceCredibility, maxSourceCredibility),
		fmt.Sprintf("Category: %d/%d pts", s.Checks.CategoryRisk, maxCategoryRisk),
		fmt.Sprintf("Volatility: %d/%d pts", s.Checks.Volatility, maxVolatility),
	}
	return strings.Join(lines, "\n")
}
