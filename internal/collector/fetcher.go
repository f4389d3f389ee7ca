package collector

import (
	"context"

	"StockDesk/internal/model"
)

// Fetcher defines the interface for fetching market data. Unknown or
// delisted symbols yield an empty slice and a nil error.
type Fetcher interface {
	// RecentCloses returns the daily closes of the last few sessions.
	RecentCloses(ctx context.Context, symbol string) ([]model.PricePoint, error)
	// HistoricalCloses returns closes for a provider range and interval,
	// e.g. ("6mo", "1d").
	HistoricalCloses(ctx context.Context, symbol, period, interval string) ([]model.PricePoint, error)
	Name() string
}

// PeriodForDays picks the shortest provider range covering a trailing window.
func PeriodForDays(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 31:
		return "1mo"
	case days <= 92:
		return "3mo"
	case days <= 183:
		return "6mo"
	case days <= 366:
		return "1y"
	case days <= 731:
		return "2y"
	case days <= 1827:
		return "5y"
	default:
		return "max"
	}
}
