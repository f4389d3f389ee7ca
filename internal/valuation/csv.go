package valuation

import (
	"encoding/csv"
	"io"
	"strconv"

	"StockDesk/internal/model"
)

var csvHeader = []string{
	"stock", "exchange", "qty", "avg_price", "current_price",
	"invested", "market_value", "unrealized_pl", "pl_pct",
}

// WriteCSV exports valuation rows. An unknown price is an empty cell.
func WriteCSV(w io.Writer, rows []model.Valuation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		price := ""
		if r.Price.Valid {
			price = r.Price.Decimal.StringFixed(moneyPlaces)
		}
		rec := []string{
			r.Symbol,
			string(r.Exchange),
			strconv.FormatInt(r.Quantity, 10),
			r.AveragePrice.StringFixed(moneyPlaces),
			price,
			r.Invested.StringFixed(moneyPlaces),
			r.MarketValue.StringFixed(moneyPlaces),
			r.UnrealizedPL.StringFixed(moneyPlaces),
			r.PLPct.StringFixed(moneyPlaces),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
