package main

import (
	"fmt"
	"os"
	"strings"

	"signal-desk/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

var loadEnvFunc = godotenv.Load

// Terminal dashboard over the bot's HTTP API.
func main() {
	loadEnvFunc()

	baseURL := strings.TrimSpace(os.Getenv("API_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := tui.NewAPIClient(baseURL)
	svc := tui.Services{
		Status: client,
		Trades: client,
	}

	p := tea.NewProgram(tui.NewAppModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		os.Exit(1)
	}
}
