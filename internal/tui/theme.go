package tui

import "github.com/charmbracelet/lipgloss"

var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	BorderStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555555"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// Trade direction colors
	BuyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	SellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)

	// PnL colors
	ProfitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	LossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	FlatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	ArmedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	DisarmedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true)
)
