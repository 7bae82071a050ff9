package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider fetches the latest USD-based exchange rates for a set of
// currency symbols
type Provider interface {
	Latest(ctx context.Context, symbols []string) (map[string]float64, error)
}

// OpenExchangeRates is a Provider backed by the openexchangerates.org API
type OpenExchangeRates struct {
	baseURL string
	appID   string
	client  *http.Client
}

// NewOpenExchangeRates creates a provider client for the given API base URL
// and app id
func NewOpenExchangeRates(baseURL, appID string) *OpenExchangeRates {
	return &OpenExchangeRates{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		appID:   appID,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Latest fetches the current USD-based rates for the requested symbols
func (p *OpenExchangeRates) Latest(ctx context.Context, symbols []string) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/latest.json?app_id=%s&symbols=%s",
		p.baseURL, url.QueryEscape(p.appID), url.QueryEscape(strings.Join(symbols, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate provider returned status %d", resp.StatusCode)
	}

	var parsed latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode rate provider response: %w", err)
	}

	return parsed.Rates, nil
}
