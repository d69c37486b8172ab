package tui

import (
	"context"

	"signal-desk/internal/domain"
)

// BotStatus is the dashboard's view of the running bot.
type BotStatus struct {
	Armed         bool              `json:"armed"`
	Trading       bool              `json:"trading"`
	OpenPositions []domain.Trade    `json:"open_positions"`
	Stats         domain.TradeStats `json:"stats"`
	Today         domain.TradeStats `json:"today"`
}

// StatusQuerier provides bot status to the TUI.
type StatusQuerier interface {
	GetStatus(ctx context.Context) (*BotStatus, error)
}

// TradeQuerier provides journal trades to the TUI.
type TradeQuerier interface {
	ListTrades(ctx context.Context, status string, limit int) ([]domain.Trade, error)
}

// Services bundles the dependencies injected into the TUI.
type Services struct {
	Status StatusQuerier
	Trades TradeQuerier
}
