package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"signal-desk/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Dashboard message types.
type statusMsg *BotStatus
type statusErrMsg struct{ err error }
type tradesMsg []domain.Trade
type tradesErrMsg struct{ err error }
type dashTickMsg time.Time

// DashboardModel is the Bubble Tea model for the bot dashboard.
type DashboardModel struct {
	services Services
	status   *BotStatus
	recent   []domain.Trade
	loading  bool
	err      error
	width    int
	height   int
}

func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial data fetch commands.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.fetchStatusCmd(),
		m.fetchTradesCmd(),
		m.tickCmd(),
	)
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Refresh) {
			return m, tea.Batch(m.fetchStatusCmd(), m.fetchTradesCmd())
		}
		return m, nil

	case statusMsg:
		m.status = (*BotStatus)(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case statusErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tradesMsg:
		m.recent = []domain.Trade(msg)
		return m, nil

	case tradesErrMsg:
		// Non-critical; status is more important.
		return m, nil

	case dashTickMsg:
		return m, tea.Batch(
			m.fetchStatusCmd(),
			m.fetchTradesCmd(),
			m.tickCmd(),
		)
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.status == nil {
		if m.err != nil {
			return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
		}
		return SubtextStyle.Render("Loading bot status...")
	}

	width := m.width
	if width < 60 {
		width = 60
	}

	sections := []string{
		BorderStyle.Width(width - 2).Render(m.renderHeader()),
		BorderStyle.Width(width - 2).Render(m.renderPositions()),
		BorderStyle.Width(width - 2).Render(m.renderRecent()),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Status returns the current status (for testing).
func (m DashboardModel) Status() *BotStatus { return m.status }

// Recent returns the recent trades (for testing).
func (m DashboardModel) Recent() []domain.Trade { return m.recent }

func (m DashboardModel) renderHeader() string {
	s := m.status
	armed := DisarmedStyle.Render("DISARMED")
	if s.Armed {
		armed = ArmedStyle.Render("ARMED")
	}
	trading := "trading off"
	if s.Trading {
		trading = "trading on"
	}

	stats := s.Stats
	summary := fmt.Sprintf(
		"Open: %d  Closed: %d  Win rate: %.1f%%  PnL: %s  Today: %s",
		stats.OpenTrades, stats.ClosedTrades, stats.WinRate*100,
		renderPnL(stats.TotalPnL), renderPnL(s.Today.TotalPnL),
	)

	return HeaderStyle.Render("  Signal Desk") + "  " + armed +
		SubtextStyle.Render("  ("+trading+")") + "\n  " + summary
}

func (m DashboardModel) renderPositions() string {
	lines := []string{
		HeaderStyle.Render("  Open Positions"),
		SubtextStyle.Render("  Signal  Symbol     Entry        SL           TP           Lot"),
		SubtextStyle.Render("  " + strings.Repeat("-", 62)),
	}

	positions := m.status.OpenPositions
	for _, t := range positions {
		lines = append(lines, "  "+formatPosition(t))
	}
	if len(positions) == 0 {
		lines = append(lines, SubtextStyle.Render("  No open positions"))
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderRecent() string {
	lines := []string{HeaderStyle.Render("  Recent Trades")}

	count := len(m.recent)
	if count > 10 {
		count = 10
	}
	for i := 0; i < count; i++ {
		lines = append(lines, "  "+formatClosed(m.recent[i]))
	}
	if count == 0 {
		lines = append(lines, SubtextStyle.Render("  No trades yet"))
	}
	return strings.Join(lines, "\n")
}

func formatPosition(t domain.Trade) string {
	signal := BuyStyle.Render(string(t.Signal))
	if t.Signal == domain.SignalSell {
		signal = SellStyle.Render(string(t.Signal))
	}
	return fmt.Sprintf("%s  %-9s  %-11g  %-11g  %-11g  %g",
		signal, t.Symbol, t.EntryPrice, t.StopLoss, t.TakeProfit, t.Quantity)
}

func formatClosed(t domain.Trade) string {
	if t.Status == domain.StatusOpen {
		return fmt.Sprintf("%-6s %-9s open", t.Signal, t.Symbol)
	}
	return fmt.Sprintf("%-6s %-9s %s  %s",
		t.Signal, t.Symbol, renderPnL(t.PnL), SubtextStyle.Render(t.TargetHit))
}

func renderPnL(v float64) string {
	s := fmt.Sprintf("%+.2f", v)
	switch {
	case v > 0:
		return ProfitStyle.Render(s)
	case v < 0:
		return LossStyle.Render(s)
	default:
		return FlatStyle.Render(s)
	}
}

func (m DashboardModel) fetchStatusCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Status == nil {
			return statusErrMsg{err: fmt.Errorf("status service not available")}
		}
		status, err := m.services.Status.GetStatus(context.Background())
		if err != nil {
			return statusErrMsg{err: err}
		}
		return statusMsg(status)
	}
}

func (m DashboardModel) fetchTradesCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Trades == nil {
			return tradesErrMsg{err: fmt.Errorf("trade service not available")}
		}
		trades, err := m.services.Trades.ListTrades(context.Background(), "", 10)
		if err != nil {
			return tradesErrMsg{err: err}
		}
		return tradesMsg(trades)
	}
}

func (m DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(10*time.Second, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}
