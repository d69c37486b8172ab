package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/service"
	"signal-desk/internal/trade"

	tele "gopkg.in/telebot.v3"
)

type Ingester interface {
	IngestText(ctx context.Context, p service.IngestPayload) service.IngestResult
}

type TradeQuerier interface {
	Open() []domain.Trade
	StatsAll() domain.TradeStats
}

type StatusFlags interface {
	TradingEnabled() bool
	IsArmed() bool
}

// StartTelegramBot wires the provider-group listener and the operator
// commands. Returns the notifier bound to the status chat, nil when the
// token is missing.
func StartTelegramBot(ingest Ingester, trades TradeQuerier, flags StatusFlags, chatID int64) *TelegramNotifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	notifier := NewTelegramNotifier(b, chatID)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/status", func(c tele.Context) error {
		if trades == nil || flags == nil {
			return c.Send("Status unavailable")
		}
		return c.Send(formatStatus(flags, trades))
	})

	b.Handle("/trades", func(c tele.Context) error {
		if trades == nil {
			return c.Send("Journal unavailable")
		}
		open := trades.Open()
		if len(open) == 0 {
			return c.Send("No open trades.")
		}
		if err := c.Send(fmt.Sprintf("Open trades (%d):", len(open))); err != nil {
			return err
		}
		for _, t := range open {
			if err := c.Send(formatTrade(t)); err != nil {
				return err
			}
		}
		return nil
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		if ingest == nil {
			return nil
		}
		chat := c.Chat()
		text := strings.TrimSpace(c.Text())
		if chat == nil || text == "" {
			return nil
		}

		res := ingest.IngestText(context.Background(), service.IngestPayload{
			Text:     text,
			ChatID:   chat.ID,
			ChatName: chat.Title,
			Source:   domain.SourceProvider,
		})
		if res.Ignored {
			return nil
		}
		if res.Error != "" {
			log.Printf("Warning: ingest failed for chat %d: %s", chat.ID, res.Error)
		}
		return nil
	})

	log.Println("Telegram bot started")
	go b.Start()
	return notifier
}

func formatStatus(flags StatusFlags, trades TradeQuerier) string {
	stats := trades.StatsAll()
	armed := "DISARMED"
	if flags.IsArmed() {
		armed = "ARMED"
	}
	trading := "disabled"
	if flags.TradingEnabled() {
		trading = "enabled"
	}
	return fmt.Sprintf(
		"Bot status: %s (trading %s)\nOpen: %d  Closed: %d\nWin rate: %.1f%%\nTotal PnL: %.2f",
		armed, trading, stats.OpenTrades, stats.ClosedTrades, stats.WinRate*100, stats.TotalPnL,
	)
}

func formatTrade(t domain.Trade) string {
	return fmt.Sprintf(
		"%s %s @ %g | SL %g | TP %g | lot %g | open %s",
		t.Signal, t.Symbol, t.EntryPrice, t.StopLoss, t.TakeProfit, t.Quantity,
		trade.FormatDuration(t.OpenTime, time.Now().UTC()),
	)
}
