package currency

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertUsesLiveRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ExchangeRates{
			Base:  "BRL",
			Rates: map[string]float64{"USD": 0.20},
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	converted, err := client.Convert(context.Background(), 100, "BRL", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 20.0, converted, 0.001)
}

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	client := NewClientWithBaseURL("http://127.0.0.1:0")

	converted, err := client.Convert(context.Background(), 45.99, "USD", "USD")
	require.NoError(t, err)
	assert.Equal(t, 45.99, converted)
}

func TestConvertFallsBackWhenAPIUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	// EUR -> USD through the static table: 10 / 0.92 * 1.0
	converted, err := client.Convert(context.Background(), 10, "EUR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 10.0/0.92, converted, 0.001)
}

func TestConvertUnknownCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	_, err := client.Convert(context.Background(), 10, "XXX", "USD")
	assert.Error(t, err)
}

func TestGetLatestRatesCaches(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(ExchangeRates{
			Base:  "USD",
			Rates: map[string]float64{"EUR": 0.92},
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	_, err := client.GetLatestRates(context.Background(), "USD")
	require.NoError(t, err)
	_, err = client.GetLatestRates(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetSupportedCurrenciesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)

	currencies, err := client.GetSupportedCurrencies(context.Background())
	require.NoError(t, err)
	assert.Contains(t, currencies, "USD")
	assert.Contains(t, currencies, "BRL")
	assert.Len(t, currencies, len(fallbackRates))
}
