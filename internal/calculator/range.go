package calculator

import (
	"errors"
	"math"

	"StockDesk/internal/model"
)

const (
	sessionsPerYear  = 252
	sessionsPerMonth = 22
)

// TrailingRange returns the highest and lowest close over the last n sessions.
func TrailingRange(series model.HistorySeries, n int) (high, low float64, err error) {
	if len(series) == 0 {
		return 0, 0, ErrNotEnoughData
	}
	closes := extractCloses(series)
	start := len(closes) - n
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range closes[start:] {
		high = math.Max(high, c)
		low = math.Min(low, c)
	}
	return high, low, nil
}

// Range52Week scans the most recent 252 sessions.
func Range52Week(series model.HistorySeries) (high, low float64, err error) {
	return TrailingRange(series, sessionsPerYear)
}

// Range30Day scans the most recent 22 sessions.
func Range30Day(series model.HistorySeries) (high, low float64, err error) {
	return TrailingRange(series, sessionsPerMonth)
}

// Position returns where current sits within [low, high], clamped to 0.0~1.0.
func Position(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}
