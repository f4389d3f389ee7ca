package model

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the display currency for all ledger amounts.
const Currency = money.INR

// Money converts a decimal amount to minor units of Currency, rounding
// half away from zero.
func Money(amount decimal.Decimal) *money.Money {
	cur := money.GetCurrency(Currency)
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), Currency)
}

// FormatMoney renders amount like "₹1,200.00".
func FormatMoney(amount decimal.Decimal) string {
	return Money(amount).Display()
}

// FormatSignedMoney prefixes positive amounts with "+".
func FormatSignedMoney(amount decimal.Decimal) string {
	m := Money(amount)
	if m.IsPositive() {
		return "+" + m.Display()
	}
	return m.Display()
}
