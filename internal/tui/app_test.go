package tui

import (
	"strings"
	"testing"

	"signal-desk/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

func TestAppTabSwitching(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	if m.ActiveTab() != TabDashboard {
		t.Fatalf("expected dashboard tab, got %d", m.ActiveTab())
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	app := updated.(AppModel)
	if app.ActiveTab() != TabHistory {
		t.Fatalf("expected history tab after tab key, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = updated.(AppModel)
	if app.ActiveTab() != TabDashboard {
		t.Fatalf("expected wrap back to dashboard, got %d", app.ActiveTab())
	}
}

func TestAppDirectTabKeys(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	app := updated.(AppModel)
	if app.ActiveTab() != TabHistory {
		t.Fatalf("expected history tab, got %d", app.ActiveTab())
	}
}

func TestAppQuit(t *testing.T) {
	m := NewAppModel(testServices())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	app := updated.(AppModel)
	if !strings.Contains(app.View(), "Goodbye") {
		t.Fatal("expected quitting view")
	}
}

func TestAppRoutesDashboardMsgs(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(statusMsg(&BotStatus{Armed: true}))
	app := updated.(AppModel)
	if app.dashboard.Status() == nil || !app.dashboard.Status().Armed {
		t.Fatal("expected status routed to dashboard")
	}
}

func TestAppRoutesHistoryMsgs(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	trades := []domain.Trade{
		{ID: "t1", Symbol: "EURUSD", Signal: domain.SignalBuy, Status: domain.StatusClosed},
	}
	updated, _ := m.Update(historyMsg(trades))
	app := updated.(AppModel)
	if len(app.history.Trades()) != 1 {
		t.Fatalf("expected 1 history trade, got %d", len(app.history.Trades()))
	}
}

func TestAppViewContainsTabBar(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	view := m.View()
	if !strings.Contains(view, "1:Dashboard") || !strings.Contains(view, "2:History") {
		t.Fatalf("expected tab bar in view, got %q", view)
	}
}
