package tui

import (
	"context"
	"fmt"
	"strings"

	"signal-desk/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type historyMsg []domain.Trade
type historyErrMsg struct{ err error }

// HistoryModel shows the closed-trade journal.
type HistoryModel struct {
	services Services
	trades   []domain.Trade
	loading  bool
	err      error
	width    int
	height   int
}

func NewHistoryModel(svc Services) HistoryModel {
	return HistoryModel{
		services: svc,
		loading:  true,
	}
}

func (m HistoryModel) Init() tea.Cmd {
	return m.fetchHistoryCmd()
}

func (m HistoryModel) Update(msg tea.Msg) (HistoryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Refresh) {
			return m, m.fetchHistoryCmd()
		}
		return m, nil

	case historyMsg:
		m.trades = []domain.Trade(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case historyErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil
	}

	return m, nil
}

func (m HistoryModel) View() string {
	if m.loading {
		return SubtextStyle.Render("Loading trade history...")
	}
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	width := m.width
	if width < 60 {
		width = 60
	}

	lines := []string{
		HeaderStyle.Render("  Trade History"),
		SubtextStyle.Render("  Signal  Symbol     PnL        PnL%      Target  Close"),
		SubtextStyle.Render("  " + strings.Repeat("-", 56)),
	}
	for _, t := range m.trades {
		lines = append(lines, "  "+formatHistoryRow(t))
	}
	if len(m.trades) == 0 {
		lines = append(lines, SubtextStyle.Render("  No closed trades"))
	}
	return BorderStyle.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// SetSize updates the model dimensions.
func (m *HistoryModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Trades returns the loaded trades (for testing).
func (m HistoryModel) Trades() []domain.Trade { return m.trades }

func formatHistoryRow(t domain.Trade) string {
	signal := BuyStyle.Render(string(t.Signal))
	if t.Signal == domain.SignalSell {
		signal = SellStyle.Render(string(t.Signal))
	}
	closeTime := "n/a"
	if !t.CloseTime.IsZero() {
		closeTime = t.CloseTime.Format("Jan 02 15:04")
	}
	return fmt.Sprintf("%s  %-9s  %s  %s  %-6s  %s",
		signal, t.Symbol, renderPnL(t.PnL),
		renderPnL(t.PnLPercent)+"%", t.TargetHit, SubtextStyle.Render(closeTime))
}

func (m HistoryModel) fetchHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Trades == nil {
			return historyErrMsg{err: fmt.Errorf("trade service not available")}
		}
		trades, err := m.services.Trades.ListTrades(context.Background(), "CLOSED", 50)
		if err != nil {
			return historyErrMsg{err: err}
		}
		return historyMsg(trades)
	}
}
