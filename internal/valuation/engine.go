// Package valuation turns ledger holdings and quotes into P&L rows,
// totals and a portfolio-value series.
package valuation

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"StockDesk/internal/model"
	"StockDesk/internal/symbol"
)

const (
	moneyPlaces = 2
	// maxConcurrentQuotes bounds parallel quote lookups in one valuation.
	maxConcurrentQuotes = 8
)

var hundred = decimal.NewFromInt(100)

// QuoteSource returns the latest quote for a provider symbol. It must not
// fail: unavailable data is reported through the quote itself.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) model.Quote
}

// HistorySource returns closes for a provider symbol, or an empty series.
type HistorySource interface {
	GetHistory(ctx context.Context, symbol, period, interval string) model.HistorySeries
}

// Book is the read side of the holding ledger.
type Book interface {
	List() []model.Holding
}

// Report is a full portfolio valuation.
type Report struct {
	Rows   []model.Valuation `json:"rows"`
	Totals model.Totals      `json:"totals"`
}

// Value prices every holding in book. Holdings without a quote are still
// reported, flagged PriceUnknown, with a market value of zero.
func Value(ctx context.Context, book Book, quotes QuoteSource) Report {
	holdings := book.List()
	qs := fetchQuotes(ctx, holdings, quotes)

	markets := make([]decimal.Decimal, len(holdings))
	totalInvested, totalMarket := decimal.Zero, decimal.Zero
	unpriced := 0
	for i, h := range holdings {
		markets[i] = decimal.Zero
		if qs[i].Available() {
			markets[i] = qs[i].Price.Decimal.Mul(decimal.NewFromInt(h.Quantity))
		} else {
			unpriced++
		}
		totalInvested = totalInvested.Add(h.Invested())
		totalMarket = totalMarket.Add(markets[i])
	}

	rows := make([]model.Valuation, len(holdings))
	for i, h := range holdings {
		weight := decimal.Zero
		if !totalMarket.IsZero() {
			weight = markets[i].Div(totalMarket).Mul(hundred)
		}
		rows[i] = valueRow(h, qs[i], weight)
	}
	sortRows(rows)

	pl := totalMarket.Sub(totalInvested)
	return Report{
		Rows: rows,
		Totals: model.Totals{
			Invested:    totalInvested.Round(moneyPlaces),
			MarketValue: totalMarket.Round(moneyPlaces),
			PL:          pl.Round(moneyPlaces),
			PLPct:       percentOf(pl, totalInvested),
			Holdings:    len(holdings),
			Unpriced:    unpriced,
			Incomplete:  unpriced > 0,
		},
	}
}

// valueRow computes one row at full precision and rounds on the way out.
func valueRow(h model.Holding, q model.Quote, weight decimal.Decimal) model.Valuation {
	qty := decimal.NewFromInt(h.Quantity)
	invested := h.Invested()
	market := decimal.Zero
	dayChange := decimal.Zero
	if q.Available() {
		market = q.Price.Decimal.Mul(qty)
		if q.PreviousClose.Valid {
			dayChange = q.Price.Decimal.Sub(q.PreviousClose.Decimal).Mul(qty)
		}
	}
	pl := market.Sub(invested)

	v := model.Valuation{
		Symbol:         h.Symbol,
		ProviderSymbol: symbol.ForHolding(h),
		Exchange:       h.Exchange,
		Quantity:       h.Quantity,
		AveragePrice:   h.AveragePrice.Round(moneyPlaces),
		Invested:       invested.Round(moneyPlaces),
		AsOf:           q.AsOf,
		MarketValue:    market.Round(moneyPlaces),
		UnrealizedPL:   pl.Round(moneyPlaces),
		PLPct:          percentOf(pl, invested),
		DayChange:      dayChange.Round(moneyPlaces),
		Weight:         weight.Round(moneyPlaces),
		PriceUnknown:   !q.Available(),
	}
	if q.Available() {
		v.Price = decimal.NewNullDecimal(q.Price.Decimal.Round(moneyPlaces))
	}
	if q.PreviousClose.Valid {
		v.PreviousClose = decimal.NewNullDecimal(q.PreviousClose.Decimal.Round(moneyPlaces))
	}
	return v
}

func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(moneyPlaces)
}

// sortRows orders by descending market value, then ascending symbol.
func sortRows(rows []model.Valuation) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].MarketValue.Cmp(rows[j].MarketValue); c != 0 {
			return c > 0
		}
		return rows[i].Symbol < rows[j].Symbol
	})
}

func fetchQuotes(ctx context.Context, holdings []model.Holding, quotes QuoteSource) []model.Quote {
	out := make([]model.Quote, len(holdings))
	var g errgroup.Group
	g.SetLimit(maxConcurrentQuotes)
	for i, h := range holdings {
		g.Go(func() error {
			out[i] = quotes.GetQuote(ctx, symbol.ForHolding(h))
			return nil
		})
	}
	_ = g.Wait()
	return out
}
