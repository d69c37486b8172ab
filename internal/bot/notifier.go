package bot

import (
	"fmt"
	"log"

	"signal-desk/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier pushes status updates to the configured chat. Delivery
// is fire-and-forget: failures are logged and reported, never propagated.
type TelegramNotifier struct {
	sender messageSender
	chatID int64
}

func NewTelegramNotifier(sender messageSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID}
}

func (n *TelegramNotifier) Send(msg string) bool {
	if n == nil || n.sender == nil || n.chatID == 0 {
		return false
	}
	if _, err := n.sender.Send(&tele.Chat{ID: n.chatID}, msg); err != nil {
		log.Printf("Warning: telegram send failed: %v", err)
		return false
	}
	return true
}

// NotifyTradeClosed sends the close summary for one trade.
func (n *TelegramNotifier) NotifyTradeClosed(t domain.Trade, duration string) bool {
	return n.Send(fmt.Sprintf(
		"TRADE CLOSED %s\n\nAsset: %s\nTarget: %s\nEntry: %g\nExit: %g\nLot: %g\nPnL: %.2f (%.2f%%)\nDuration: %s",
		t.Signal, t.Asset, t.TargetHit, t.EntryPrice, t.ExitPrice, t.Quantity, t.PnL, t.PnLPercent, duration,
	))
}
