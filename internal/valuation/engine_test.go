package valuation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDesk/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type staticBook []model.Holding

func (b staticBook) List() []model.Holding { return append([]model.Holding(nil), b...) }

// fakeQuotes serves fixed quotes by provider symbol; missing symbols are unavailable.
type fakeQuotes struct {
	mu     sync.Mutex
	quotes map[string]model.Quote
	calls  map[string]int
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{quotes: map[string]model.Quote{}, calls: map[string]int{}}
}

func (f *fakeQuotes) set(sym, price, prev string) {
	f.quotes[sym] = model.Quote{
		Symbol:        sym,
		Price:         decimal.NewNullDecimal(d(price)),
		PreviousClose: decimal.NewNullDecimal(d(prev)),
		AsOf:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeQuotes) GetQuote(_ context.Context, sym string) model.Quote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[sym]++
	if q, ok := f.quotes[sym]; ok {
		return q
	}
	return model.UnavailableQuote(sym)
}

func holding(sym string, qty int64, avg string) model.Holding {
	return model.Holding{Symbol: sym, Quantity: qty, AveragePrice: d(avg), Exchange: model.ExchangeNSE}
}

func TestValue_SingleHolding(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.set("TCS.NS", "120", "118")

	r := Value(context.Background(), staticBook{holding("TCS", 10, "100")}, quotes)

	require.Len(t, r.Rows, 1)
	row := r.Rows[0]
	assert.Equal(t, "TCS.NS", row.ProviderSymbol)
	assert.Equal(t, "1000.00", row.Invested.StringFixed(2))
	assert.Equal(t, "1200.00", row.MarketValue.StringFixed(2))
	assert.Equal(t, "200.00", row.UnrealizedPL.StringFixed(2))
	assert.Equal(t, "20.00", row.PLPct.StringFixed(2))
	assert.Equal(t, "20.00", row.DayChange.StringFixed(2))
	assert.Equal(t, "100.00", row.Weight.StringFixed(2))
	assert.False(t, row.PriceUnknown)

	assert.Equal(t, "1000.00", r.Totals.Invested.StringFixed(2))
	assert.Equal(t, "1200.00", r.Totals.MarketValue.StringFixed(2))
	assert.Equal(t, "200.00", r.Totals.PL.StringFixed(2))
	assert.Equal(t, "20.00", r.Totals.PLPct.StringFixed(2))
	assert.False(t, r.Totals.Incomplete)
}

func TestValue_UnknownPrice(t *testing.T) {
	quotes := newFakeQuotes()

	r := Value(context.Background(), staticBook{holding("GONE", 5, "40")}, quotes)

	require.Len(t, r.Rows, 1)
	row := r.Rows[0]
	assert.True(t, row.PriceUnknown)
	assert.False(t, row.Price.Valid)
	assert.True(t, row.MarketValue.IsZero())
	assert.Equal(t, "-200.00", row.UnrealizedPL.StringFixed(2))
	assert.Equal(t, "-100.00", row.PLPct.StringFixed(2))
	assert.True(t, r.Totals.Incomplete)
	assert.Equal(t, 1, r.Totals.Unpriced)
}

func TestValue_ZeroPriceIsNotUnknown(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.set("PENNY.NS", "0", "0")

	r := Value(context.Background(), staticBook{holding("PENNY", 1, "10")}, quotes)

	assert.False(t, r.Rows[0].PriceUnknown)
	assert.True(t, r.Rows[0].Price.Valid)
	assert.False(t, r.Totals.Incomplete)
}

func TestValue_SortsByMarketValueThenSymbol(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.set("AAA.NS", "10", "10")
	quotes.set("BBB.NS", "50", "50")
	quotes.set("CCC.NS", "10", "10")

	book := staticBook{
		holding("CCC", 10, "1"),
		holding("AAA", 10, "1"),
		holding("BBB", 10, "1"),
	}
	r := Value(context.Background(), book, quotes)

	require.Len(t, r.Rows, 3)
	assert.Equal(t, "BBB", r.Rows[0].Symbol)
	assert.Equal(t, "AAA", r.Rows[1].Symbol)
	assert.Equal(t, "CCC", r.Rows[2].Symbol)
	assert.Equal(t, "71.43", r.Rows[0].Weight.StringFixed(2))
	assert.Equal(t, "14.29", r.Rows[1].Weight.StringFixed(2))
}

func TestValue_BSEUsesRawSymbol(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.set("500325", "2500", "2490")

	h := holding("500325", 2, "2000")
	h.Exchange = model.ExchangeBSE
	r := Value(context.Background(), staticBook{h}, quotes)

	assert.Equal(t, "500325", r.Rows[0].ProviderSymbol)
	assert.Equal(t, "5000.00", r.Rows[0].MarketValue.StringFixed(2))
	assert.Equal(t, 1, quotes.calls["500325"])
}

func TestValue_EmptyBook(t *testing.T) {
	r := Value(context.Background(), staticBook{}, newFakeQuotes())

	assert.Empty(t, r.Rows)
	assert.True(t, r.Totals.Invested.IsZero())
	assert.True(t, r.Totals.PLPct.IsZero())
	assert.False(t, r.Totals.Incomplete)
}

func TestValue_RoundsOnlyAtTheEnd(t *testing.T) {
	quotes := newFakeQuotes()
	quotes.set("X.NS", "10.005", "10")

	r := Value(context.Background(), staticBook{holding("X", 3, "3.333")}, quotes)

	// 3 × 3.333 = 9.999 and 3 × 10.005 = 30.015 before rounding.
	assert.Equal(t, "10.00", r.Rows[0].Invested.StringFixed(2))
	assert.Equal(t, "30.02", r.Rows[0].MarketValue.StringFixed(2))
	assert.Equal(t, "20.02", r.Rows[0].UnrealizedPL.StringFixed(2))
}
