package collector

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
)

// StaticFetcher serves fixed closes from memory. It backs the "static"
// provider used for development and offline demos.
type StaticFetcher struct {
	mu     sync.RWMutex
	series map[string][]model.PricePoint
}

// NewStaticFetcher creates an empty StaticFetcher.
func NewStaticFetcher() *StaticFetcher {
	return &StaticFetcher{series: make(map[string][]model.PricePoint)}
}

func (s *StaticFetcher) Name() string { return "static" }

// Set replaces the closes served for symbol. Points must be ascending.
func (s *StaticFetcher) Set(symbol string, points []model.PricePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[strings.ToUpper(symbol)] = points
}

// SetFlat serves days of constant closes at price ending today.
func (s *StaticFetcher) SetFlat(symbol string, price float64, days int) {
	s.Set(symbol, generateFlatSeries(decimal.NewFromFloat(price), days, time.Now()))
}

func (s *StaticFetcher) RecentCloses(_ context.Context, symbol string) ([]model.PricePoint, error) {
	pts := s.get(symbol)
	if len(pts) > 5 {
		pts = pts[len(pts)-5:]
	}
	return pts, nil
}

func (s *StaticFetcher) HistoricalCloses(_ context.Context, symbol, _, _ string) ([]model.PricePoint, error) {
	return s.get(symbol), nil
}

func (s *StaticFetcher) get(symbol string) []model.PricePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pts := s.series[strings.ToUpper(symbol)]
	out := make([]model.PricePoint, len(pts))
	copy(out, pts)
	return out
}

func generateFlatSeries(price decimal.Decimal, days int, end time.Time) []model.PricePoint {
	pts := make([]model.PricePoint, 0, days)
	y, m, d := end.Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, end.Location())
	for i := days - 1; i >= 0; i-- {
		pts = append(pts, model.PricePoint{Date: last.AddDate(0, 0, -i), Close: price})
	}
	return pts
}
