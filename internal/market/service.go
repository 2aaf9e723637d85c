package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/omnidash/omnidash/internal/metrics"
)

const (
	// maxListedTickers caps the all-symbols listing.
	maxListedTickers = 100

	// chartInterval and chartLimit select the last 24 hourly candles.
	chartInterval = "1h"
	chartLimit    = 24
)

// Trend values for a quote.
const (
	TrendUp   = "Up"
	TrendDown = "Down"
)

// Quote is the normalized single-symbol response.
type Quote struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	Trend         string `json:"trend"`
	ChangePercent string `json:"change_percent"`
}

// QuoteCache caches normalized quotes for a short TTL.
// Implementations return ErrCacheMiss when the symbol is not cached.
type QuoteCache interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	SetQuote(ctx context.Context, symbol string, quote *Quote) error
}

// ErrCacheMiss indicates the symbol is not in the quote cache.
var ErrCacheMiss = errors.New("cache miss")

// noopCache always misses.
type noopCache struct{}

func (noopCache) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	return nil, ErrCacheMiss
}

func (noopCache) SetQuote(ctx context.Context, symbol string, quote *Quote) error {
	return nil
}

// Service translates upstream ticker data into the API's quote shape.
type Service struct {
	client  *Client
	cache   QuoteCache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewService creates a market Service. cache may be nil to disable caching.
func NewService(client *Client, cache QuoteCache, logger *slog.Logger, recorder metrics.Recorder) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Service{
		client:  client,
		cache:   cache,
		logger:  logger.With("component", "market.service"),
		metrics: recorder,
	}
}

// Quote returns the normalized ticker for one symbol, cache-first.
// The trend is Up when the 24h change percent is zero or positive.
func (s *Service) Quote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(symbol)

	if cached, err := s.cache.GetQuote(ctx, symbol); err == nil {
		s.metrics.IncQuoteCacheHit()
		return cached, nil
	}
	s.metrics.IncQuoteCacheMiss()

	start := time.Now()
	stats, err := s.client.Ticker(ctx, symbol)
	s.metrics.ObserveUpstreamDuration("market", time.Since(start))
	if err != nil {
		s.metrics.IncUpstreamRequest("market", "error")
		return nil, err
	}
	s.metrics.IncUpstreamRequest("market", "success")

	change, err := strconv.ParseFloat(stats.PriceChangePercent, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad change percent %q", ErrBadUpstreamShape, stats.PriceChangePercent)
	}

	trend := TrendUp
	if change < 0 {
		trend = TrendDown
	}

	quote := &Quote{
		Symbol:        symbol,
		Price:         stats.LastPrice,
		Trend:         trend,
		ChangePercent: stats.PriceChangePercent,
	}

	if err := s.cache.SetQuote(ctx, symbol, quote); err != nil {
		// Best effort; a cache failure never fails the request.
		s.logger.Warn("failed to cache quote", "symbol", symbol, "error", err)
	}

	return quote, nil
}

// ListQuotes returns the first maxListedTickers raw ticker entries.
func (s *Service) ListQuotes(ctx context.Context) ([]json.RawMessage, error) {
	start := time.Now()
	entries, err := s.client.AllTickers(ctx)
	s.metrics.ObserveUpstreamDuration("market", time.Since(start))
	if err != nil {
		s.metrics.IncUpstreamRequest("market", "error")
		return nil, err
	}
	s.metrics.IncUpstreamRequest("market", "success")

	if len(entries) > maxListedTickers {
		entries = entries[:maxListedTickers]
	}
	return entries, nil
}

// Chart renders the last 24 hourly closing prices as a PNG line chart.
func (s *Service) Chart(ctx context.Context, symbol string) ([]byte, error) {
	symbol = strings.ToUpper(symbol)

	start := time.Now()
	candles, err := s.client.Klines(ctx, symbol, chartInterval, chartLimit)
	s.metrics.ObserveUpstreamDuration("market", time.Since(start))
	if err != nil {
		s.metrics.IncUpstreamRequest("market", "error")
		return nil, err
	}
	s.metrics.IncUpstreamRequest("market", "success")

	png, err := renderPriceChart(symbol, candles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	return png, nil
}
