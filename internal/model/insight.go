package model

import "github.com/shopspring/decimal"

// HoldingInsight is the detail view for a single holding: its valuation
// plus trailing statistics derived from one year of closes.
type HoldingInsight struct {
	Valuation   Valuation           `json:"valuation"`
	History     HistorySeries       `json:"history"`
	High52w     decimal.NullDecimal `json:"high_52w"`
	Low52w      decimal.NullDecimal `json:"low_52w"`
	High30d     decimal.NullDecimal `json:"high_30d"`
	Low30d      decimal.NullDecimal `json:"low_30d"`
	SMA50       decimal.NullDecimal `json:"sma_50"`
	RSI14       decimal.NullDecimal `json:"rsi_14"`
	Position52w decimal.NullDecimal `json:"position_52w"` // 0.0 ~ 1.0
}
