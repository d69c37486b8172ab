package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines key bindings used across the TUI.
type KeyMap struct {
	Tab     key.Binding
	Quit    key.Binding
	Refresh key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
}
