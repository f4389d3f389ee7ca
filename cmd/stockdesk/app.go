package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"StockDesk/internal/collector"
	"StockDesk/internal/config"
	"StockDesk/internal/ledger"
	"StockDesk/internal/logger"
	"StockDesk/internal/model"
	"StockDesk/internal/quotecache"
	"StockDesk/internal/symbol"
	"StockDesk/internal/valuation"
)

var configPath = flag.String("config", config.PathFromEnv(), "Path to the YAML config file")

// staticHistoryDays covers the one-year inspect window.
const staticHistoryDays = 400

// app is the wired core shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	ledger    *ledger.Ledger
	watchlist *ledger.Watchlist
	fetcher   collector.Fetcher
	cache     *quotecache.Cache
	series    *valuation.Aggregator
}

func openApp() (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	l, err := ledger.Open(ledger.NewJSONFile[model.Holding](cfg.Storage.HoldingsFile), log)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	wl, err := ledger.OpenWatchlist(ledger.NewJSONFile[model.WatchItem](cfg.Storage.WatchlistFile), log)
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}

	fetcher := newFetcher(cfg, log, l)
	cache := quotecache.New(fetcher, quotecache.Options{
		QuoteTTL:   cfg.Cache.QuoteTTL,
		HistoryTTL: cfg.Cache.HistoryTTL,
		MaxItems:   cfg.Cache.MaxItems,
		Logger:     log,
	})
	agg := valuation.NewAggregator(cache)
	agg.Location = valuation.LoadLocation(cfg.Valuation.Location)

	log.Debug().Str("provider", fetcher.Name()).Str("holdings", cfg.Storage.HoldingsFile).Msg("app opened")
	return &app{cfg: cfg, log: log, ledger: l, watchlist: wl, fetcher: fetcher, cache: cache, series: agg}, nil
}

// newFetcher selects the market data provider. The static provider serves
// each holding's average price so the tool works offline.
func newFetcher(cfg *config.Config, log zerolog.Logger, book valuation.Book) collector.Fetcher {
	switch cfg.MarketData.Provider {
	case config.ProviderREST:
		return collector.NewRESTFetcher(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, cfg.Proxy, cfg.MarketData.Timeout)
	case config.ProviderStatic:
		f := collector.NewStaticFetcher()
		for _, h := range book.List() {
			f.SetFlat(symbol.ForHolding(h), h.AveragePrice.InexactFloat64(), staticHistoryDays)
		}
		return f
	default:
		return collector.NewYahooFetcher(cfg.Proxy, cfg.MarketData.Timeout,
			collector.WithRateLimit(cfg.MarketData.RateLimit),
			collector.WithLogger(log))
	}
}

// fail reports err on stderr and maps it to an exit status.
func fail(what string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	if errors.Is(err, model.ErrValidation) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fail("encoding JSON", err)
	}
	return subcommands.ExitSuccess
}
