package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	frankfurterBaseURL = "https://api.frankfurter.dev/v1"
	cacheTTL           = 1 * time.Hour
)

// fallbackRates are approximate USD-based rates used when the live API is
// unreachable, covering the currencies the extraction pipeline can detect.
// Conversion accuracy degrades gracefully instead of failing the expense.
var fallbackRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"BRL": 5.10,
	"CAD": 1.36,
	"MXN": 17.10,
	"JPY": 151.0,
	"CNY": 7.24,
	"INR": 83.30,
	"AUD": 1.52,
}

// ExchangeRates represents the response from Frankfurter API
type ExchangeRates struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Client handles currency conversion using the Frankfurter API with an
// in-memory TTL cache and a static fallback table.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      map[string]*cachedRates
	cacheMu    sync.RWMutex
}

type cachedRates struct {
	rates     *ExchangeRates
	expiresAt time.Time
}

// NewClient creates a new currency client
func NewClient() *Client {
	return &Client{
		baseURL: frankfurterBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: make(map[string]*cachedRates),
	}
}

// NewClientWithBaseURL creates a currency client against a custom endpoint.
// Used by tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// GetLatestRates fetches the latest exchange rates for a base currency
func (c *Client) GetLatestRates(ctx context.Context, baseCurrency string) (*ExchangeRates, error) {
	cacheKey := fmt.Sprintf("latest_%s", baseCurrency)

	// Check cache
	c.cacheMu.RLock()
	if cached, ok := c.cache[cacheKey]; ok && time.Now().Before(cached.expiresAt) {
		c.cacheMu.RUnlock()
		return cached.rates, nil
	}
	c.cacheMu.RUnlock()

	// Fetch from API
	url := fmt.Sprintf("%s/latest?base=%s", c.baseURL, baseCurrency)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var rates ExchangeRates
	if err := json.NewDecoder(resp.Body).Decode(&rates); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Cache the result
	c.cacheMu.Lock()
	c.cache[cacheKey] = &cachedRates{
		rates:     &rates,
		expiresAt: time.Now().Add(cacheTTL),
	}
	c.cacheMu.Unlock()

	return &rates, nil
}

// Convert converts an amount from one currency to another. When the live
// API is unavailable it falls back to the static rate table.
func (c *Client) Convert(ctx context.Context, amount float64, fromCurrency, toCurrency string) (float64, error) {
	if fromCurrency == toCurrency {
		return amount, nil
	}

	rates, err := c.GetLatestRates(ctx, fromCurrency)
	if err == nil {
		if rate, ok := rates.Rates[toCurrency]; ok {
			return amount * rate, nil
		}
	}

	return convertWithFallback(amount, fromCurrency, toCurrency)
}

// convertWithFallback cross-rates through the static USD-based table.
func convertWithFallback(amount float64, fromCurrency, toCurrency string) (float64, error) {
	fromRate, fromOK := fallbackRates[fromCurrency]
	toRate, toOK := fallbackRates[toCurrency]
	if !fromOK || !toOK {
		return 0, fmt.Errorf("exchange rate not found for %s to %s", fromCurrency, toCurrency)
	}

	return amount / fromRate * toRate, nil
}

// GetSupportedCurrencies returns a list of supported currencies. When the
// API is unreachable it returns the fallback table's currencies.
func (c *Client) GetSupportedCurrencies(ctx context.Context) ([]string, error) {
	rates, err := c.GetLatestRates(ctx, "EUR")
	if err != nil {
		currencies := make([]string, 0, len(fallbackRates))
		for currency := range fallbackRates {
			currencies = append(currencies, currency)
		}
		return currencies, nil
	}

	currencies := make([]string, 0, len(rates.Rates)+1)
	currencies = append(currencies, "EUR") // Add base currency
	for currency := range rates.Rates {
		currencies = append(currencies, currency)
	}

	return currencies, nil
}
