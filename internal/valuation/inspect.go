package valuation

import (
	"context"

	"github.com/shopspring/decimal"

	"StockDesk/internal/calculator"
	"StockDesk/internal/model"
	"StockDesk/internal/symbol"
)

const (
	inspectPeriod = "1y"
	rsiPeriod     = 14
)

// Inspect values a single holding and attaches one year of closes with
// trailing statistics. Statistics that cannot be computed stay invalid.
func Inspect(ctx context.Context, h model.Holding, quotes QuoteSource, history HistorySource) model.HoldingInsight {
	sym := symbol.ForHolding(h)
	q := quotes.GetQuote(ctx, sym)
	hist := history.GetHistory(ctx, sym, inspectPeriod, DefaultInterval)

	out := model.HoldingInsight{
		Valuation: valueRow(h, q, decimal.Zero),
		History:   hist,
	}

	if high, low, err := calculator.Range52Week(hist); err == nil {
		out.High52w = price(high)
		out.Low52w = price(low)
		current := high
		if q.Available() {
			current = q.Price.Decimal.InexactFloat64()
		} else if n := len(hist); n > 0 {
			current = hist[n-1].Close.InexactFloat64()
		}
		if pos, err := calculator.Position(current, high, low); err == nil {
			out.Position52w = decimal.NewNullDecimal(decimal.NewFromFloat(pos).Round(4))
		}
	}
	if high, low, err := calculator.Range30Day(hist); err == nil {
		out.High30d = price(high)
		out.Low30d = price(low)
	}
	if sma, err := calculator.SMA50(hist); err == nil {
		out.SMA50 = price(sma)
	}
	if rsi, err := calculator.RSI(hist, rsiPeriod); err == nil {
		out.RSI14 = price(rsi)
	}
	return out
}

func price(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f).Round(moneyPlaces))
}
