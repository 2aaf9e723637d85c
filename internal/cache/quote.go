package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omnidash/omnidash/internal/market"
)

const (
	quoteKeyPrefix = "quote:"

	// DefaultQuoteTTL keeps quotes fresh enough for a ticker display while
	// absorbing bursts of identical symbol lookups.
	DefaultQuoteTTL = 10 * time.Second
)

// QuoteCache adapts Cache to the market service's cache contract.
type QuoteCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewQuoteCache creates a QuoteCache. A non-positive ttl falls back to
// DefaultQuoteTTL.
func NewQuoteCache(cache *Cache, ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &QuoteCache{cache: cache, ttl: ttl}
}

// GetQuote retrieves a cached quote by symbol.
// Returns market.ErrCacheMiss if not present.
func (q *QuoteCache) GetQuote(ctx context.Context, symbol string) (*market.Quote, error) {
	key := quoteKeyPrefix + symbol

	data, err := q.cache.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, market.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var quote market.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("decode cached quote: %w", err)
	}

	return &quote, nil
}

// SetQuote stores a quote under its symbol with the configured TTL.
func (q *QuoteCache) SetQuote(ctx context.Context, symbol string, quote *market.Quote) error {
	key := quoteKeyPrefix + symbol

	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}

	if err := q.cache.client.SetEx(ctx, key, data, q.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}

	return nil
}
