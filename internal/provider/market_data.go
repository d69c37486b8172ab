// Package provider wraps the upstream market-data API used to price open
// trades during auto-close sweeps.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"signal-desk/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://api.twelvedata.com"

type MarketDataProvider struct {
	tracer  trace.Tracer
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewMarketDataProvider(tracer trace.Tracer) *MarketDataProvider {
	baseURL := os.Getenv("MARKET_DATA_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &MarketDataProvider{
		tracer:  tracer,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv("MARKET_DATA_API_KEY"),
	}
}

type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"close"`
	Change        string `json:"change"`
	ChangePercent string `json:"percent_change"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// GetQuote fetches a live price. No data and upstream timeouts yield
// (nil, nil) so sweep callers skip the trade instead of failing the batch.
func (p *MarketDataProvider) GetQuote(ctx context.Context, symbol string, category domain.Category) (*domain.Quote, error) {
	ctx, span := p.tracer.Start(ctx, "market-data.get-quote",
		trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	q := url.Values{}
	q.Set("symbol", formatSymbol(symbol, category))
	q.Set("apikey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			log.Printf("Warning: quote request for %s timed out", symbol)
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s: status %d", symbol, resp.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode quote for %s: %w", symbol, err)
	}
	if body.Status == "error" || body.Price == "" {
		// Upstream reports unknown symbols in-band.
		return nil, nil
	}

	quote := &domain.Quote{Symbol: symbol}
	if _, err := fmt.Sscanf(body.Price, "%f", &quote.Price); err != nil {
		return nil, fmt.Errorf("bad price %q for %s", body.Price, symbol)
	}
	fmt.Sscanf(body.Change, "%f", &quote.Change)
	fmt.Sscanf(body.ChangePercent, "%f", &quote.ChangePercent)
	return quote, nil
}

// formatSymbol rewrites a compact pair into the slash form the upstream
// expects for forex and crypto, e.g. EURUSD -> EUR/USD.
func formatSymbol(symbol string, category domain.Category) string {
	upper := strings.ToUpper(symbol)
	if (category == domain.CategoryForex || category == domain.CategoryCrypto) &&
		len(upper) == 6 && !strings.Contains(upper, "/") {
		return upper[:3] + "/" + upper[3:]
	}
	return upper
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
