// Package market proxies a Binance-compatible market-data API.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Market errors.
var (
	ErrUnknownSymbol       = errors.New("unknown symbol")
	ErrUpstreamUnavailable = errors.New("market data service unavailable")
	ErrBadUpstreamShape    = errors.New("unexpected market data payload")
	ErrRenderFailed        = errors.New("chart rendering failed")
)

// TickerStats is the subset of the 24h ticker payload the API exposes.
type TickerStats struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
}

// Candle is one kline entry reduced to what the chart needs.
type Candle struct {
	OpenTime time.Time
	Close    float64
}

// Client calls the market-data HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

// Ticker fetches 24h ticker stats for one symbol.
// A 4xx from the upstream means the symbol is unknown.
func (c *Client) Ticker(ctx context.Context, symbol string) (*TickerStats, error) {
	u := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.get(ctx, u, true)
	if err != nil {
		return nil, err
	}

	var stats TickerStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadUpstreamShape, err)
	}
	if stats.Symbol == "" || stats.LastPrice == "" {
		return nil, ErrBadUpstreamShape
	}

	return &stats, nil
}

// AllTickers fetches the full 24h ticker list as raw entries.
func (c *Client) AllTickers(ctx context.Context) ([]json.RawMessage, error) {
	u := c.baseURL + "/api/v3/ticker/24hr"

	body, err := c.get(ctx, u, false)
	if err != nil {
		return nil, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadUpstreamShape, err)
	}

	return entries, nil
}

// Klines fetches candles for a symbol. The upstream encodes each candle as a
// mixed-type array: [openTime, open, high, low, close, volume, ...]; only the
// open time (index 0) and closing price (index 4) are kept.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]Candle, error) {
	u := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(interval), limit)

	body, err := c.get(ctx, u, true)
	if err != nil {
		return nil, err
	}

	var raw [][]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadUpstreamShape, err)
	}

	candles := make([]Candle, 0, len(raw))
	for _, entry := range raw {
		if len(entry) < 5 {
			return nil, ErrBadUpstreamShape
		}

		openMs, ok := entry[0].(json.Number)
		if !ok {
			return nil, ErrBadUpstreamShape
		}
		ms, err := openMs.Int64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadUpstreamShape, err)
		}

		closeStr, ok := entry[4].(string)
		if !ok {
			return nil, ErrBadUpstreamShape
		}
		closePrice, err := strconv.ParseFloat(closeStr, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadUpstreamShape, err)
		}

		candles = append(candles, Candle{
			OpenTime: time.UnixMilli(ms),
			Close:    closePrice,
		})
	}

	return candles, nil
}

// get performs the request and classifies failures. symbolScoped controls
// whether a 4xx maps to ErrUnknownSymbol (single-symbol endpoints) or to
// ErrUpstreamUnavailable.
func (c *Client) get(ctx context.Context, rawURL string, symbolScoped bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if symbolScoped && resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, ErrUnknownSymbol
		}
		return nil, fmt.Errorf("%w: upstream status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	return body, nil
}
