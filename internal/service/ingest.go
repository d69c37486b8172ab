package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"signal-desk/internal/alert"
	"signal-desk/internal/config"
	"signal-desk/internal/domain"
	"signal-desk/internal/journal"
	"signal-desk/internal/score"
	"signal-desk/internal/trade"

	"go.opentelemetry.io/otel/trace"
)

// Notifier is a fire-and-forget sink for status messages. Send reports
// delivery but callers never fail on a false return.
type Notifier interface {
	Send(msg string) bool
}

type Suppressor interface {
	IsDuplicate(ctx context.Context, asset, signal string) bool
}

// IngestResult is the structured outcome of one inbound message. Rejections
// are outcomes, not errors: the pipeline never escapes with an error for a
// bad signal.
type IngestResult struct {
	OK              bool         `json:"ok"`
	Ignored         bool         `json:"ignored,omitempty"`
	TradingDisabled bool         `json:"trading_disabled,omitempty"`
	Disarmed        bool         `json:"disarmed,omitempty"`
	CloseSignal     bool         `json:"close_signal,omitempty"`
	Rejected        string       `json:"rejected,omitempty"`
	Error           string       `json:"error,omitempty"`
	TradeID         string       `json:"trade_id,omitempty"`
	Confidence      float64      `json:"confidence,omitempty"`
	Grade           domain.Grade `json:"grade,omitempty"`
}

// IngestPayload is one raw message from a transport (telegram, website).
type IngestPayload struct {
	Text     string        `json:"text"`
	ChatID   int64         `json:"chat_id"`
	ChatName string        `json:"chat_name"`
	Source   domain.Source `json:"source"`
}

type IngestService struct {
	tracer     trace.Tracer
	cfg        *config.Config
	journal    *journal.Journal
	tracker    *trade.Tracker
	suppressor Suppressor
	notifier   Notifier
	now        func() time.Time
}

func NewIngestService(
	tracer trace.Tracer,
	cfg *config.Config,
	jrnl *journal.Journal,
	tracker *trade.Tracker,
	suppressor Suppressor,
	notifier Notifier,
) *IngestService {
	return &IngestService{
		tracer:     tracer,
		cfg:        cfg,
		journal:    jrnl,
		tracker:    tracker,
		suppressor: suppressor,
		notifier:   notifier,
		now:        time.Now,
	}
}

// SetNotifier binds the notifier after construction. The Telegram bot needs
// the ingest service to start, so the notifier arrives late.
func (s *IngestService) SetNotifier(n Notifier) {
	s.notifier = n
}

// IngestText runs the full pipeline on one raw message: parse, validate,
// score, gate, dedup, size, build, admit, record, notify.
func (s *IngestService) IngestText(ctx context.Context, p IngestPayload) IngestResult {
	if s.cfg == nil || s.journal == nil || s.tracker == nil {
		return IngestResult{Error: "ingest service not fully initialized"}
	}

	ctx, span := s.tracer.Start(ctx, "ingest.ingest-text")
	defer span.End()

	if s.cfg.ProviderGroupID != 0 && p.ChatID != s.cfg.ProviderGroupID {
		return IngestResult{OK: true, Ignored: true}
	}
	if !s.cfg.AllowTrading {
		return IngestResult{OK: true, TradingDisabled: true}
	}

	a := alert.New(p.Text, p.ChatID, p.ChatName, p.Source)
	if ok, reason := alert.Validate(a); !ok {
		return IngestResult{OK: true, Rejected: reason}
	}

	sc := score.Score(a)

	if sc.Confidence < s.cfg.MinAlertConfidence {
		s.notify(fmt.Sprintf(
			"LOW CONFIDENCE ALERT REJECTED\n\nAsset: %s\nSignal: %s\nConfidence: %.1f%%\nThreshold: %.1f%%\nGrade: %s\n\nStatus: NOT EXECUTED",
			a.Asset, a.Signal, sc.Confidence*100, s.cfg.MinAlertConfidence*100, sc.Grade,
		))
		return IngestResult{OK: true, Rejected: "low_confidence", Confidence: sc.Confidence, Grade: sc.Grade}
	}

	if !s.cfg.Armed {
		s.notify(fmt.Sprintf(
			"ALERT RECEIVED (BOT DISARMED)\n\nAsset: %s\nSignal: %s\nEntry: %s\nSL: %s\nTP: %s\nConfidence: %.1f%%\n\nStatus: WAITING FOR ARM",
			a.Asset, a.Signal, fmtPrice(a.EntryPrice), fmtPrice(a.StopLoss), fmtPrice(a.TakeProfit), sc.Confidence*100,
		))
		return IngestResult{OK: true, Disarmed: true, Confidence: sc.Confidence, Grade: sc.Grade}
	}

	if a.Signal == domain.SignalClose {
		s.notify(fmt.Sprintf(
			"CLOSE SIGNAL RECEIVED\n\nAsset: %s\nSignal: CLOSE\nStatus: Would close matching open positions\nConfidence: %.1f%%",
			a.Asset, sc.Confidence*100,
		))
		return IngestResult{OK: true, CloseSignal: true, Confidence: sc.Confidence, Grade: sc.Grade}
	}

	if s.suppressor != nil && s.suppressor.IsDuplicate(ctx, a.Asset, string(a.Signal)) {
		return IngestResult{OK: true, Rejected: "duplicate", Confidence: sc.Confidence, Grade: sc.Grade}
	}

	tr, reason := s.execute(ctx, a, sc.Confidence)
	if reason != "" {
		s.notify(fmt.Sprintf(
			"ALERT EXECUTION FAILED\n\nAsset: %s\nSignal: %s\nReason: %s\nConfidence: %.1f%%",
			a.Asset, a.Signal, reason, sc.Confidence*100,
		))
		return IngestResult{Error: reason, Confidence: sc.Confidence, Grade: sc.Grade}
	}

	s.notify(fmt.Sprintf(
		"TRADE EXECUTED %s\n\nAsset: %s\nEntry: %s\nSL: %s\nTP: %s\nConfidence: %.1f%%\nGrade: %s\nTrade ID: %s\n\nStatus: LIVE",
		a.Signal, a.Asset, fmtPrice(a.EntryPrice), fmtPrice(a.StopLoss), fmtPrice(a.TakeProfit),
		sc.Confidence*100, sc.Grade, tr.ID,
	))
	return IngestResult{OK: true, TradeID: tr.ID, Confidence: sc.Confidence, Grade: sc.Grade}
}

// execute sizes, validates and records a directional trade, returning a
// rejection reason instead of an error.
func (s *IngestService) execute(ctx context.Context, a domain.Alert, confidence float64) (domain.Trade, string) {
	entry := deref(a.EntryPrice)
	sl := deref(a.StopLoss)
	tp := deref(a.TakeProfit)

	if err := trade.ValidateParams(a.Asset, entry, sl, tp, a.Signal); err != nil {
		return domain.Trade{}, err.Error()
	}

	if ok, reason := s.tracker.CanOpen(a.Asset); !ok {
		return domain.Trade{}, reason
	}

	qty, err := trade.CalculatePositionSize(s.riskConfig(), entry, sl)
	if err != nil {
		return domain.Trade{}, err.Error()
	}

	tr := trade.NewOrder(trade.OrderParams{
		Asset:      a.Asset,
		Signal:     a.Signal,
		OrderType:  domain.OrderMarket,
		EntryPrice: entry,
		EntryZone:  a.EntryZone,
		StopLoss:   sl,
		TakeProfit: tp,
		Targets:    a.TakeProfitTargets,
		Quantity:   qty,
		Category:   a.Category,
		Confidence: confidence,
	}, s.now())

	s.journal.Add(ctx, tr)
	s.tracker.Track(tr)
	return tr, ""
}

// ExecuteRequest is the structured-field execution path, bypassing the
// text parser.
type ExecuteRequest struct {
	Asset      string                    `json:"asset"`
	Signal     domain.SignalType         `json:"signal"`
	EntryPrice float64                   `json:"entry_price"`
	StopLoss   float64                   `json:"stop_loss"`
	TakeProfit float64                   `json:"take_profit"`
	Targets    []domain.TakeProfitTarget `json:"take_profit_targets,omitempty"`
	OrderType  domain.OrderType          `json:"order_type,omitempty"`
	Reason     string                    `json:"reason,omitempty"`
}

// ExecuteDirect applies the same gates as the text path to pre-structured
// fields.
func (s *IngestService) ExecuteDirect(ctx context.Context, req ExecuteRequest) IngestResult {
	if s.cfg == nil || s.journal == nil || s.tracker == nil {
		return IngestResult{Error: "ingest service not fully initialized"}
	}

	ctx, span := s.tracer.Start(ctx, "ingest.execute-direct")
	defer span.End()

	if !s.cfg.AllowTrading {
		return IngestResult{OK: true, TradingDisabled: true}
	}
	if !s.cfg.Armed {
		return IngestResult{OK: true, Disarmed: true}
	}

	if err := trade.ValidateParams(req.Asset, req.EntryPrice, req.StopLoss, req.TakeProfit, req.Signal); err != nil {
		return IngestResult{Rejected: err.Error()}
	}

	if ok, reason := s.tracker.CanOpen(req.Asset); !ok {
		return IngestResult{Rejected: reason}
	}

	qty, err := trade.CalculatePositionSize(s.riskConfig(), req.EntryPrice, req.StopLoss)
	if err != nil {
		return IngestResult{Rejected: err.Error()}
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = domain.OrderMarket
	}

	tr := trade.NewOrder(trade.OrderParams{
		Asset:      req.Asset,
		Signal:     req.Signal,
		OrderType:  orderType,
		EntryPrice: req.EntryPrice,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Targets:    req.Targets,
		Quantity:   qty,
		Category:   alert.Categorize(req.Asset),
		Reason:     req.Reason,
	}, s.now())

	s.journal.Add(ctx, tr)
	s.tracker.Track(tr)
	return IngestResult{OK: true, TradeID: tr.ID}
}

// ConfirmRequest is a manual trade confirmation. It validates and prices
// the order but never touches the journal.
type ConfirmRequest struct {
	Asset      string            `json:"asset"`
	Signal     domain.SignalType `json:"signal"`
	EntryPrice float64           `json:"entry_price"`
	StopLoss   float64           `json:"stop_loss"`
	TakeProfit float64           `json:"take_profit"`
}

type ConfirmResult struct {
	OK         bool    `json:"ok"`
	TradeID    string  `json:"trade_id,omitempty"`
	Quantity   float64 `json:"quantity,omitempty"`
	RiskReward float64 `json:"risk_reward,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func (s *IngestService) ConfirmTrade(ctx context.Context, req ConfirmRequest) ConfirmResult {
	if s.cfg == nil {
		return ConfirmResult{Error: "ingest service not fully initialized"}
	}

	_, span := s.tracer.Start(ctx, "ingest.confirm-trade")
	defer span.End()

	if err := trade.ValidateParams(req.Asset, req.EntryPrice, req.StopLoss, req.TakeProfit, req.Signal); err != nil {
		return ConfirmResult{Error: err.Error()}
	}

	qty, err := trade.CalculatePositionSize(s.riskConfig(), req.EntryPrice, req.StopLoss)
	if err != nil {
		return ConfirmResult{Error: err.Error()}
	}

	tr := trade.NewOrder(trade.OrderParams{
		Asset:      req.Asset,
		Signal:     req.Signal,
		OrderType:  domain.OrderMarket,
		EntryPrice: req.EntryPrice,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Quantity:   qty,
		Category:   alert.Categorize(req.Asset),
	}, s.now())

	return ConfirmResult{OK: true, TradeID: tr.ID, Quantity: qty, RiskReward: tr.RiskReward}
}

func (s *IngestService) riskConfig() trade.RiskConfig {
	return trade.RiskConfig{
		AccountBalance: s.cfg.AccountBalance,
		PerTradePct:    s.cfg.RiskPerTrade,
		MaxOpenTrades:  s.cfg.MaxTradesOpen,
		DefaultLot:     s.cfg.DefaultLot,
		MaxLot:         s.cfg.DefaultMaxLot,
	}
}

func (s *IngestService) notify(msg string) {
	if s.notifier == nil {
		return
	}
	if !s.notifier.Send(msg) {
		log.Println("Warning: notification delivery failed")
	}
}

func fmtPrice(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%g", *v)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
