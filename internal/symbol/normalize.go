// Package symbol maps user-entered tickers to the form the market-data
// provider understands.
package symbol

import (
	"strings"

	"StockDesk/internal/model"
)

// suffixSeparator marks a symbol that already carries a provider suffix.
const suffixSeparator = "."

// nseSuffix is the Yahoo suffix for NSE listings.
const nseSuffix = ".NS"

// UserForm returns the ledger form of a symbol: trimmed and upper-cased.
func UserForm(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Normalize returns the provider symbol for raw on the given exchange.
// Qualified symbols pass through unchanged. BSE symbols are returned as-is
// because the provider does not resolve them reliably; callers wanting BSE
// data must pass a fully qualified symbol.
func Normalize(raw string, exchange model.Exchange) string {
	s := UserForm(raw)
	if s == "" || strings.Contains(s, suffixSeparator) {
		return s
	}
	if exchange == model.ExchangeBSE {
		return s
	}
	return s + nseSuffix
}

// NormalizeHint is Normalize with a free-form exchange hint.
func NormalizeHint(raw, hint string) string {
	ex, _ := model.ParseExchange(hint)
	return Normalize(raw, ex)
}

// ForHolding returns the provider symbol of a ledger holding.
func ForHolding(h model.Holding) string {
	return Normalize(h.Symbol, h.Exchange)
}
