package alert

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"signal-desk/internal/domain"
)

// Parsed holds the fields a single parser strategy could extract from an
// inbound message. Absent numerics stay nil, never zero.
type Parsed struct {
	Signal            domain.SignalType
	Asset             string
	EntryPrice        *float64
	EntryZone         string
	StopLoss          *float64
	TakeProfit        *float64
	TakeProfitTargets []domain.TakeProfitTarget
}

// parserFunc tries one message shape and reports whether it matched.
type parserFunc func(text string) (*Parsed, bool)

// Strategies are tried in order; the first match wins.
var strategies = []parserFunc{
	parseEntryRange,
	parseLoose,
	parseMarkdown,
	parseJSON,
}

var (
	// BUY EURUSD | Entry: 1.17443 - 1.17914 | Stop: 1.16501 | TP Range: TP1 1.18149 | TP2 1.18620
	entryRangeRe = regexp.MustCompile(`(?i)(BUY|SELL)\s+([A-Z0-9/]+).*?Entry:\s*([\d.]+)\s*-\s*([\d.]+).*?Stop:\s*([\d.]+).*?TP\s*Range:\s*(.+)$`)
	tpTargetRe   = regexp.MustCompile(`(?i)TP\s*(\d+)\s*([\d.]+)`)

	// BUY EURUSD 1.0900 SL: 1.0880 TP: 1.0950
	looseRe = regexp.MustCompile(`(?i)(\w+)\s+([A-Z0-9]+)\s+([\d.]+)\s+(?:SL|SL:)?\s*([\d.]+)?\s+(?:TP|TP:)?\s*([\d.]+)?`)

	// **SELL** BTCUSD @ 42500 | SL 41800 | TP 43200
	markdownRe = regexp.MustCompile(`(?i)\*\*(\w+)\*\*\s+([A-Z0-9]+)\s+@\s*([\d.]+).*?SL\s*([\d.]+).*?TP\s*([\d.]+)`)
)

// Parse runs the strategy chain over the raw message text. It returns nil
// when no shape matches; callers must treat that as a parse failure, not an
// empty alert.
func Parse(text string) *Parsed {
	for _, try := range strategies {
		if p, ok := try(text); ok {
			return p
		}
	}
	return nil
}

func parseEntryRange(text string) (*Parsed, bool) {
	m := entryRangeRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	signal := domain.SignalType(strings.ToUpper(m[1]))
	entryLow, okLow := parseFloat(m[3])
	entryHigh, okHigh := parseFloat(m[4])
	stop, okStop := parseFloat(m[5])
	if !okLow || !okHigh || !okStop {
		return nil, false
	}

	var targets []domain.TakeProfitTarget
	for _, tm := range tpTargetRe.FindAllStringSubmatch(m[6], -1) {
		if v, ok := parseFloat(tm[2]); ok {
			targets = append(targets, domain.TakeProfitTarget{Label: "TP" + tm[1], Value: v})
		}
	}

	// Buyers enter at the bottom of the zone, sellers at the top.
	entry := entryLow
	if signal == domain.SignalSell {
		entry = entryHigh
	}

	p := &Parsed{
		Signal:            signal,
		Asset:             strings.ToUpper(m[2]),
		EntryPrice:        &entry,
		EntryZone:         m[3] + " - " + m[4],
		StopLoss:          &stop,
		TakeProfitTargets: targets,
	}
	if len(targets) > 0 {
		first := targets[0].Value
		p.TakeProfit = &first
	}
	return p, true
}

func parseLoose(text string) (*Parsed, bool) {
	m := looseRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	p := &Parsed{
		Signal: domain.SignalType(strings.ToUpper(m[1])),
		Asset:  strings.ToUpper(m[2]),
	}
	if v, ok := parseFloat(m[3]); ok {
		p.EntryPrice = &v
	}
	if v, ok := parseFloat(m[4]); ok {
		p.StopLoss = &v
	}
	if v, ok := parseFloat(m[5]); ok {
		p.TakeProfit = &v
	}
	return p, true
}

func parseMarkdown(text string) (*Parsed, bool) {
	m := markdownRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}

	p := &Parsed{
		Signal: domain.SignalType(strings.ToUpper(m[1])),
		Asset:  strings.ToUpper(m[2]),
	}
	if v, ok := parseFloat(m[3]); ok {
		p.EntryPrice = &v
	}
	if v, ok := parseFloat(m[4]); ok {
		p.StopLoss = &v
	}
	if v, ok := parseFloat(m[5]); ok {
		p.TakeProfit = &v
	}
	return p, true
}

type jsonAlert struct {
	Signal     string   `json:"signal"`
	Asset      string   `json:"asset"`
	Entry      *float64 `json:"entry"`
	EntryPrice *float64 `json:"entryPrice"`
	SL         *float64 `json:"sl"`
	StopLoss   *float64 `json:"stopLoss"`
	TP         *float64 `json:"tp"`
	TakeProfit *float64 `json:"takeProfit"`
}

func parseJSON(text string) (*Parsed, bool) {
	var j jsonAlert
	if err := json.Unmarshal([]byte(text), &j); err != nil {
		return nil, false
	}
	if j.Signal == "" || j.Asset == "" {
		return nil, false
	}

	p := &Parsed{
		Signal: domain.SignalType(strings.ToUpper(j.Signal)),
		Asset:  strings.ToUpper(j.Asset),
	}
	p.EntryPrice = firstNonNil(j.Entry, j.EntryPrice)
	p.StopLoss = firstNonNil(j.SL, j.StopLoss)
	p.TakeProfit = firstNonNil(j.TP, j.TakeProfit)
	return p, true
}

func firstNonNil(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
