// Package quotecache bounds calls to the market-data provider with a
// per-operation TTL and at most one in-flight fetch per key.
package quotecache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"StockDesk/internal/collector"
	"StockDesk/internal/model"
)

//go:generate mockgen -package=quotecache -destination=mock_fetcher_test.go StockDesk/internal/collector Fetcher

const (
	DefaultQuoteTTL   = 30 * time.Second
	DefaultHistoryTTL = 300 * time.Second
	DefaultMaxItems   = 5000
)

const (
	opQuote   = "quote"
	opHistory = "history"
)

// Options configures a Cache. Zero values take the defaults.
type Options struct {
	QuoteTTL   time.Duration
	HistoryTTL time.Duration
	MaxItems   int
	Now        func() time.Time
	Logger     zerolog.Logger
}

// entry stores one cached result with its expiry.
type entry struct {
	expiresAt time.Time
	symbol    string
	quote     model.Quote
	history   model.HistorySeries
}

// Cache wraps a Fetcher. Reads of unexpired entries only take a read lock;
// a miss triggers exactly one fetch per key whose result serves every
// concurrent caller. Failed fetches are not stored.
type Cache struct {
	fetcher    collector.Fetcher
	quoteTTL   time.Duration
	historyTTL time.Duration
	maxItems   int
	now        func() time.Time
	log        zerolog.Logger

	mu    sync.RWMutex
	items map[string]entry
	group singleflight.Group
}

// New creates a Cache over fetcher.
func New(fetcher collector.Fetcher, opts Options) *Cache {
	c := &Cache{
		fetcher:    fetcher,
		quoteTTL:   opts.QuoteTTL,
		historyTTL: opts.HistoryTTL,
		maxItems:   opts.MaxItems,
		now:        opts.Now,
		log:        opts.Logger.With().Str("component", "quotecache").Logger(),
		items:      make(map[string]entry),
	}
	if c.quoteTTL <= 0 {
		c.quoteTTL = DefaultQuoteTTL
	}
	if c.historyTTL <= 0 {
		c.historyTTL = DefaultHistoryTTL
	}
	if c.maxItems <= 0 {
		c.maxItems = DefaultMaxItems
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func quoteKey(symbol string) string {
	return opQuote + "|" + symbol
}

func historyKey(symbol, period, interval string) string {
	return strings.Join([]string{opHistory, symbol, period, interval}, "|")
}

// GetQuote returns the latest quote for a provider symbol. It never fails:
// an unavailable quote is returned when the provider errors or has no data.
func (c *Cache) GetQuote(ctx context.Context, symbol string) model.Quote {
	key := quoteKey(symbol)
	if e, ok := c.lookup(key); ok {
		return e.quote
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		// Another flight may have filled the entry while we queued.
		if e, ok := c.lookup(key); ok {
			return e, nil
		}
		pts, err := c.fetcher.RecentCloses(ctx, symbol)
		if err := unavailable(pts, err); err != nil {
			c.logMiss(opQuote, symbol, err)
			return entry{quote: model.UnavailableQuote(symbol)}, nil
		}
		e := entry{
			expiresAt: c.now().Add(c.quoteTTL),
			symbol:    symbol,
			quote:     deriveQuote(symbol, pts),
		}
		c.store(key, e)
		return e, nil
	})
	return v.(entry).quote
}

// GetHistory returns the close series for a provider symbol, period and
// interval, or an empty series when none is available.
func (c *Cache) GetHistory(ctx context.Context, symbol, period, interval string) model.HistorySeries {
	key := historyKey(symbol, period, interval)
	if e, ok := c.lookup(key); ok {
		return e.history
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		if e, ok := c.lookup(key); ok {
			return e, nil
		}
		pts, err := c.fetcher.HistoricalCloses(ctx, symbol, period, interval)
		if err := unavailable(pts, err); err != nil {
			c.logMiss(opHistory, symbol, err)
			return entry{}, nil
		}
		e := entry{
			expiresAt: c.now().Add(c.historyTTL),
			symbol:    symbol,
			history:   model.HistorySeries(pts),
		}
		c.store(key, e)
		return e, nil
	})
	return v.(entry).history
}

// Invalidate drops every cached result for symbol.
func (c *Cache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.items {
		if e.symbol == symbol {
			delete(c.items, k)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) lookup(key string) (entry, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return entry{}, false
	}
	c.log.Debug().Str("key", key).Msg("cache hit")
	return e, true
}

func (c *Cache) store(key string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = e
	if len(c.items) > c.maxItems {
		c.evictLocked()
	}
}

// evictLocked removes expired entries first, then the ones closest to
// expiry, until the cache fits maxItems.
func (c *Cache) evictLocked() {
	now := c.now()
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
		}
	}
	for len(c.items) > c.maxItems {
		var oldestKey string
		var oldest time.Time
		for k, e := range c.items {
			if oldestKey == "" || e.expiresAt.Before(oldest) {
				oldestKey, oldest = k, e.expiresAt
			}
		}
		delete(c.items, oldestKey)
	}
}

// unavailable reports a failed or empty fetch as model.ErrDataUnavailable.
func unavailable(pts []model.PricePoint, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrDataUnavailable, err)
	}
	if len(pts) == 0 {
		return fmt.Errorf("%w: no data returned", model.ErrDataUnavailable)
	}
	return nil
}

func (c *Cache) logMiss(op, symbol string, err error) {
	c.log.Warn().
		Err(err).
		Str("op", op).
		Str("symbol", symbol).
		Str("provider", c.fetcher.Name()).
		Msg("fetch failed, returning unavailable")
}

// deriveQuote takes the last close as the price and the one before it as
// the previous close, so weekends and after-hours report the last session.
func deriveQuote(symbol string, pts []model.PricePoint) model.Quote {
	last := pts[len(pts)-1]
	prev := last
	if len(pts) >= 2 {
		prev = pts[len(pts)-2]
	}
	return model.Quote{
		Symbol:        symbol,
		Price:         decimal.NewNullDecimal(last.Close),
		PreviousClose: decimal.NewNullDecimal(prev.Close),
		AsOf:          last.Date,
	}
}
