package model

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Exchange identifies the listing venue a symbol was entered for.
type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// ParseExchange maps a user-supplied hint to an Exchange. Empty and unknown
// hints resolve to NSE; ok is false only for hints that were not recognized.
func ParseExchange(s string) (ex Exchange, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NSE", "NIFTY":
		return ExchangeNSE, true
	case "BSE":
		return ExchangeBSE, true
	default:
		return ExchangeNSE, false
	}
}

// Holding is one position in the ledger. Symbol is kept in user form
// (trimmed, upper-case, no provider suffix added).
type Holding struct {
	Symbol       string
	Quantity     int64
	AveragePrice decimal.Decimal
	Exchange     Exchange
}

// Invested is quantity times average price, unrounded.
func (h Holding) Invested() decimal.Decimal {
	return h.AveragePrice.Mul(decimal.NewFromInt(h.Quantity))
}

type holdingJSON struct {
	Stock    string  `json:"stock"`
	Qty      int64   `json:"qty"`
	AvgPrice float64 `json:"avg_price"`
	Exchange string  `json:"exchange,omitempty"`
}

func (h Holding) MarshalJSON() ([]byte, error) {
	return json.Marshal(holdingJSON{
		Stock:    h.Symbol,
		Qty:      h.Quantity,
		AvgPrice: h.AveragePrice.InexactFloat64(),
		Exchange: string(h.Exchange),
	})
}

func (h *Holding) UnmarshalJSON(b []byte) error {
	var w holdingJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	ex, _ := ParseExchange(w.Exchange)
	*h = Holding{
		Symbol:       strings.ToUpper(strings.TrimSpace(w.Stock)),
		Quantity:     w.Qty,
		AveragePrice: decimal.NewFromFloat(w.AvgPrice),
		Exchange:     ex,
	}
	return nil
}

// WatchItem is a symbol the user follows without holding it.
type WatchItem struct {
	Symbol     string
	Exchange   Exchange
	AlertPrice decimal.NullDecimal
}

type watchItemJSON struct {
	Stock      string   `json:"stock"`
	Exchange   string   `json:"exchange,omitempty"`
	AlertPrice *float64 `json:"alert_price,omitempty"`
}

func (w WatchItem) MarshalJSON() ([]byte, error) {
	out := watchItemJSON{Stock: w.Symbol, Exchange: string(w.Exchange)}
	if w.AlertPrice.Valid {
		f := w.AlertPrice.Decimal.InexactFloat64()
		out.AlertPrice = &f
	}
	return json.Marshal(out)
}

func (w *WatchItem) UnmarshalJSON(b []byte) error {
	var in watchItemJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	ex, _ := ParseExchange(in.Exchange)
	*w = WatchItem{Symbol: strings.ToUpper(strings.TrimSpace(in.Stock)), Exchange: ex}
	if in.AlertPrice != nil {
		w.AlertPrice = decimal.NewNullDecimal(decimal.NewFromFloat(*in.AlertPrice))
	}
	return nil
}
