package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab represents a screen tab in the TUI.
type Tab int

const (
	TabDashboard Tab = iota
	TabHistory
)

var tabNames = []string{"1:Dashboard", "2:History"}

// AppModel is the root Bubble Tea model that manages tab navigation and
// child screens.
type AppModel struct {
	services  Services
	activeTab Tab
	dashboard DashboardModel
	history   HistoryModel
	width     int
	height    int
	quitting  bool
}

// NewAppModel creates the root application model with all child screens.
func NewAppModel(svc Services) AppModel {
	return AppModel{
		services:  svc,
		activeTab: TabDashboard,
		dashboard: NewDashboardModel(svc),
		history:   NewHistoryModel(svc),
	}
}

// Init initializes all child models.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.dashboard.Init(),
		m.history.Init(),
	)
}

// Update handles incoming messages, routing to the active tab.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.propagateSize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, DefaultKeyMap.Tab):
			m.activeTab = Tab((int(m.activeTab) + 1) % len(tabNames))
			return m, nil

		case msg.String() == "1":
			m.activeTab = TabDashboard
			return m, nil
		case msg.String() == "2":
			m.activeTab = TabHistory
			return m, nil
		}
	}

	// Route messages to child models (they filter relevant ones)
	var cmds []tea.Cmd

	switch msg.(type) {
	case statusMsg, statusErrMsg, tradesMsg, tradesErrMsg, dashTickMsg:
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		cmds = append(cmds, cmd)

	case historyMsg, historyErrMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		cmds = append(cmds, cmd)

	default:
		// Route keyboard and other messages to the active tab only
		switch m.activeTab {
		case TabDashboard:
			var cmd tea.Cmd
			m.dashboard, cmd = m.dashboard.Update(msg)
			cmds = append(cmds, cmd)
		case TabHistory:
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the tab bar and active screen.
func (m AppModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	tabBar := m.renderTabBar()

	var content string
	switch m.activeTab {
	case TabDashboard:
		content = m.dashboard.View()
	case TabHistory:
		content = m.history.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content)
}

// SetSize updates dimensions on the root model and propagates to children.
func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.propagateSize()
}

// ActiveTab returns the currently active tab (for testing).
func (m AppModel) ActiveTab() Tab { return m.activeTab }

func (m *AppModel) propagateSize() {
	contentHeight := m.height - 2 // account for tab bar
	m.dashboard.SetSize(m.width, contentHeight)
	m.history.SetSize(m.width, contentHeight)
}

func (m AppModel) renderTabBar() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			parts = append(parts, HeaderStyle.Render(name))
		} else {
			parts = append(parts, SubtextStyle.Render(name))
		}
	}
	return " " + strings.Join(parts, "  ") + SubtextStyle.Render("   q:quit  tab:switch  r:refresh")
}
