package domain

import "time"

type SignalType string

const (
	SignalBuy   SignalType = "BUY"
	SignalSell  SignalType = "SELL"
	SignalClose SignalType = "CLOSE"
	SignalWait  SignalType = "WAIT"
)

func (s SignalType) IsValid() bool {
	switch s {
	case SignalBuy, SignalSell, SignalClose, SignalWait:
		return true
	}
	return false
}

// IsDirectional reports whether the signal opens a position.
func (s SignalType) IsDirectional() bool {
	return s == SignalBuy || s == SignalSell
}

type Category string

const (
	CategoryForex       Category = "FOREX"
	CategoryCrypto      Category = "CRYPTO"
	CategoryIndices     Category = "INDICES"
	CategoryCommodities Category = "COMMODITIES"
)

type Source string

const (
	SourceProvider Source = "PROVIDER"
	SourceWebsite  Source = "WEBSITE"
	SourceEmail    Source = "EMAIL"
	SourceManual   Source = "MANUAL"
)

type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
)

type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)

type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// TakeProfitTarget is one rung of a partial-exit ladder.
type TakeProfitTarget struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Alert is a parsed trading-instruction candidate. Alerts are ephemeral:
// created per inbound message, never mutated, never persisted. Optional
// prices are pointers so that "missing" stays distinguishable from zero.
type Alert struct {
	ID                string             `json:"id"`
	Timestamp         time.Time          `json:"timestamp"`
	GroupID           int64              `json:"group_id"`
	GroupName         string             `json:"group_name"`
	MessageText       string             `json:"message_text"`
	Asset             string             `json:"asset"`
	Signal            SignalType         `json:"signal"`
	EntryPrice        *float64           `json:"entry_price,omitempty"`
	EntryZone         string             `json:"entry_zone,omitempty"`
	StopLoss          *float64           `json:"stop_loss,omitempty"`
	TakeProfit        *float64           `json:"take_profit,omitempty"`
	TakeProfitTargets []TakeProfitTarget `json:"take_profit_targets,omitempty"`
	Category          Category           `json:"category"`
	Source            Source             `json:"source"`
	Parsed            bool               `json:"parsed"`
	Err               string             `json:"error,omitempty"`
}

// ScoreChecks holds the per-criterion sub-scores of an alert evaluation.
type ScoreChecks struct {
	RiskReward        int `json:"risk_reward"`
	PriceLogic        int `json:"price_logic"`
	StopDistance      int `json:"stop_distance"`
	TargetDistance    int `json:"target_distance"`
	SourceCredibility int `json:"source_credibility"`
	CategoryRisk      int `json:"category_risk"`
	Volatility        int `json:"volatility"`
}

func (c ScoreChecks) Total() int {
	return c.RiskReward + c.PriceLogic + c.StopDistance + c.TargetDistance +
		c.SourceCredibility + c.CategoryRisk + c.Volatility
}

// ValidationScore is the scorer output: a pure function of the alert fields.
type ValidationScore struct {
	Score      int         `json:"score"`
	MaxScore   int         `json:"max_score"`
	Confidence float64     `json:"confidence"`
	Grade      Grade       `json:"grade"`
	Checks     ScoreChecks `json:"checks"`
}

// Trade is the persisted unit of the journal. Fields up to Reason are
// immutable once the trade is open; Status, CloseTime, ExitPrice, PnL,
// PnLPercent and TargetHit mutate exactly once on close.
type Trade struct {
	ID                string             `json:"id"`
	OpenTime          time.Time          `json:"open_time"`
	Asset             string             `json:"asset"`
	Symbol            string             `json:"symbol"`
	Signal            SignalType         `json:"signal"`
	OrderType         OrderType          `json:"order_type"`
	EntryPrice        float64            `json:"entry_price"`
	EntryZone         string             `json:"entry_zone,omitempty"`
	StopLoss          float64            `json:"stop_loss"`
	TakeProfit        float64            `json:"take_profit"`
	TakeProfitTargets []TakeProfitTarget `json:"take_profit_targets"`
	Quantity          float64            `json:"quantity"`
	Category          Category           `json:"category"`
	Confidence        float64            `json:"confidence"`
	RiskReward        float64            `json:"risk_reward"`
	Reason            string             `json:"reason,omitempty"`

	Status     TradeStatus `json:"status"`
	CloseTime  time.Time   `json:"close_time,omitempty"`
	ExitPrice  float64     `json:"exit_price,omitempty"`
	PnL        float64     `json:"pnl"`
	PnLPercent float64     `json:"pnl_percent"`
	TargetHit  string      `json:"target_hit,omitempty"`
}

// TradeFilter is an exact-match filter over journal trades. Zero values
// mean "no constraint".
type TradeFilter struct {
	Status    TradeStatus
	Asset     string
	Signal    SignalType
	StartTime time.Time
	EndTime   time.Time
	Limit     int
}

// TradeStats are aggregate journal statistics. WinRate is the fraction of
// closed trades with positive PnL, in [0,1].
type TradeStats struct {
	TotalTrades     int     `json:"total_trades"`
	OpenTrades      int     `json:"open_trades"`
	ClosedTrades    int     `json:"closed_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	WinRate         float64 `json:"win_rate"`
	TotalPnL        float64 `json:"total_pnl"`
	TotalPnLPercent float64 `json:"total_pnl_percent"`
	AverageWin      float64 `json:"average_win"`
	AverageLoss     float64 `json:"average_loss"`
	LargestWin      float64 `json:"largest_win"`
	LargestLoss     float64 `json:"largest_loss"`
	ProfitFactor    float64 `json:"profit_factor"`
	AvgRiskReward   float64 `json:"avg_risk_reward"`
}

// Quote is the live-price shape consumed from the market-data collaborator.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// ClosedTradeRef identifies a trade closed during a sweep.
type ClosedTradeRef struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Target string `json:"target"`
}

// SkippedTrade records a trade the sweep could not evaluate.
type SkippedTrade struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// SweepReport summarises one auto-close pass over the open trades.
type SweepReport struct {
	Checked      int              `json:"checked"`
	Closed       int              `json:"closed"`
	ClosedTrades []ClosedTradeRef `json:"closed_trades"`
	Skipped      []SkippedTrade   `json:"skipped"`
}

// Float returns a pointer to v, for optional alert fields.
func Float(v float64) *float64 { return &v }
