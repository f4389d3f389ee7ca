// Package calculator derives trailing statistics from close series.
package calculator

import (
	"errors"

	"StockDesk/internal/model"
)

// ErrNotEnoughData is returned when a series is shorter than the window.
var ErrNotEnoughData = errors.New("not enough data")

// SMA computes the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrNotEnoughData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMA50 returns the 50-session simple moving average.
func SMA50(series model.HistorySeries) (float64, error) {
	return SMA(extractCloses(series), 50)
}

func extractCloses(series model.HistorySeries) []float64 {
	closes := make([]float64, len(series))
	for i, p := range series {
		closes[i] = p.Close.InexactFloat64()
	}
	return closes
}
