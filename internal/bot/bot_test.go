package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"signal-desk/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if msg, ok := what.(string); ok {
		s.sent = append(s.sent, msg)
	}
	if s.err != nil {
		return nil, s.err
	}
	return &tele.Message{}, nil
}

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	if n := StartTelegramBot(nil, nil, nil, 0); n != nil {
		t.Fatal("expected nil notifier without token")
	}
}

func TestNotifierSend(t *testing.T) {
	sender := &stubSender{}
	n := NewTelegramNotifier(sender, 42)

	if !n.Send("hello") {
		t.Fatal("expected delivery to succeed")
	}
	if len(sender.sent) != 1 || sender.sent[0] != "hello" {
		t.Fatalf("unexpected sent messages: %+v", sender.sent)
	}
}

func TestNotifierSendFailureIsNonFatal(t *testing.T) {
	n := NewTelegramNotifier(&stubSender{err: errors.New("telegram down")}, 42)
	if n.Send("hello") {
		t.Fatal("expected delivery failure to report false")
	}

	unconfigured := NewTelegramNotifier(nil, 0)
	if unconfigured.Send("hello") {
		t.Fatal("unconfigured notifier must report false")
	}
}

func TestNotifyTradeClosedMessage(t *testing.T) {
	sender := &stubSender{}
	n := NewTelegramNotifier(sender, 42)

	open := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	tr := domain.Trade{
		Asset: "XAUUSD", Signal: domain.SignalSell,
		EntryPrice: 2000, ExitPrice: 1950, Quantity: 1,
		PnL: 50, PnLPercent: 2.5, TargetHit: "TP",
		OpenTime: open, CloseTime: open.Add(90 * time.Minute),
	}
	if !n.NotifyTradeClosed(tr, "1h 30m") {
		t.Fatal("expected delivery to succeed")
	}

	msg := sender.sent[0]
	for _, want := range []string{"TRADE CLOSED SELL", "XAUUSD", "Target: TP", "PnL: 50.00 (2.50%)", "Duration: 1h 30m"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatTrade(t *testing.T) {
	tr := domain.Trade{
		Signal: domain.SignalBuy, Symbol: "EURUSD",
		EntryPrice: 1.09, StopLoss: 1.088, TakeProfit: 1.095, Quantity: 0.5,
		OpenTime: time.Now().UTC().Add(-2 * time.Minute),
	}
	out := formatTrade(tr)
	if !strings.Contains(out, "BUY EURUSD @ 1.09") || !strings.Contains(out, "lot 0.5") {
		t.Fatalf("unexpected format: %s", out)
	}
}
