package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valuation is the computed view of one holding against its quote.
// Monetary fields are rounded to 2 decimal places.
type Valuation struct {
	Symbol         string              `json:"stock"`
	ProviderSymbol string              `json:"provider_symbol"`
	Exchange       Exchange            `json:"exchange"`
	Quantity       int64               `json:"qty"`
	AveragePrice   decimal.Decimal     `json:"avg_price"`
	Invested       decimal.Decimal     `json:"invested"`
	Price          decimal.NullDecimal `json:"current_price"`
	PreviousClose  decimal.NullDecimal `json:"previous_close"`
	AsOf           time.Time           `json:"as_of,omitempty"`
	MarketValue    decimal.Decimal     `json:"market_value"`
	UnrealizedPL   decimal.Decimal     `json:"unrealized_pl"`
	PLPct          decimal.Decimal     `json:"pl_pct"`
	DayChange      decimal.Decimal     `json:"day_change"`
	Weight         decimal.Decimal     `json:"weight_pct"`
	// PriceUnknown marks rows whose MarketValue is zero because no quote was
	// available, as opposed to a quote of zero.
	PriceUnknown bool `json:"price_unknown"`
}

// Totals aggregates a set of valuations.
type Totals struct {
	Invested    decimal.Decimal `json:"total_invested"`
	MarketValue decimal.Decimal `json:"total_market_value"`
	PL          decimal.Decimal `json:"total_pl"`
	PLPct       decimal.Decimal `json:"total_pl_pct"`
	Holdings    int             `json:"holdings"`
	Unpriced    int             `json:"unpriced"`
	// Incomplete is set when at least one holding had no price.
	Incomplete bool `json:"incomplete"`
}

// ValuePoint is the portfolio value on one calendar date.
type ValuePoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// PortfolioSeries is ordered ascending by date.
type PortfolioSeries struct {
	WindowDays int          `json:"window_days"`
	Points     []ValuePoint `json:"points"`
}
