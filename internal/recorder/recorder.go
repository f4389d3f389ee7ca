// Package recorder keeps a history of portfolio snapshots and fired alerts.
package recorder

import (
	"time"

	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
)

// Snapshot is one scheduled portfolio valuation.
type Snapshot struct {
	Taken  time.Time
	Totals model.Totals
	Rows   []model.Valuation
}

// AlertEvent records a watchlist alert that was sent.
type AlertEvent struct {
	Symbol        string
	AlertPrice    decimal.Decimal
	Price         decimal.Decimal
	PreviousClose decimal.Decimal
	TradingDay    string // YYYY-MM-DD of the quote's AsOf
	Fired         time.Time
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSnapshot(snap *Snapshot) error
	RecordAlert(evt *AlertEvent) error
	// AlertSent reports whether symbol already alerted on tradingDay.
	AlertSent(symbol, tradingDay string) (bool, error)
	Close() error
}
