package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"signal-desk/internal/domain"
)

// APIClient reads the dashboard data from the bot's HTTP API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *APIClient) GetStatus(ctx context.Context) (*BotStatus, error) {
	var status BotStatus
	if err := c.getJSON(ctx, "/api/bot/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *APIClient) ListTrades(ctx context.Context, status string, limit int) ([]domain.Trade, error) {
	path := fmt.Sprintf("/api/bot/trades?limit=%d", limit)
	if status != "" {
		path += "&status=" + status
	}
	var body struct {
		Trades []domain.Trade `json:"trades"`
	}
	if err := c.getJSON(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Trades, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
