package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// HistorySeries is ordered ascending by Date.
type HistorySeries []PricePoint

// Closes returns the close prices in series order.
func (s HistorySeries) Closes() []decimal.Decimal {
	out := make([]decimal.Decimal, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Quote is the latest known price for a provider symbol. Price and
// PreviousClose are invalid when the fetch failed; they are never zeroed.
type Quote struct {
	Symbol        string              `json:"symbol"`
	Price         decimal.NullDecimal `json:"price"`
	PreviousClose decimal.NullDecimal `json:"previous_close"`
	AsOf          time.Time           `json:"as_of"`
}

// UnavailableQuote is the result of a failed or empty fetch.
func UnavailableQuote(symbol string) Quote {
	return Quote{Symbol: symbol}
}

// Available reports whether the quote carries a price.
func (q Quote) Available() bool { return q.Price.Valid }
