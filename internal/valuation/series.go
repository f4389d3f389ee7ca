package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"StockDesk/internal/collector"
	"StockDesk/internal/model"
	"StockDesk/internal/symbol"
)

const (
	DefaultLocation = "Asia/Kolkata"
	DefaultInterval = "1d"
	// MaxSeriesDays is the longest window served, five years of calendar days.
	MaxSeriesDays = 1827
)

// Aggregator builds the trailing portfolio-value series from cached history.
type Aggregator struct {
	History  HistorySource
	Now      func() time.Time
	Location *time.Location
	Interval string
}

// NewAggregator returns an Aggregator using the wall clock and the market's
// home time zone.
func NewAggregator(history HistorySource) *Aggregator {
	return &Aggregator{History: history, Location: marketLocation(DefaultLocation)}
}

// Series returns one point per calendar day in [today-windowDays, today].
// Each holding contributes quantity times its last known close on or before
// that day; days before its first close contribute zero.
func (a *Aggregator) Series(ctx context.Context, book Book, windowDays int) (model.PortfolioSeries, error) {
	out := model.PortfolioSeries{WindowDays: windowDays}
	if windowDays <= 0 {
		return out, &model.ValidationError{Field: "days", Reason: "must be greater than zero"}
	}
	if windowDays > MaxSeriesDays {
		return out, &model.ValidationError{Field: "days", Reason: fmt.Sprintf("must be at most %d", MaxSeriesDays)}
	}

	loc := a.location()
	today := dayOf(a.now(), loc)
	start := today.AddDate(0, 0, -windowDays)

	index := make([]time.Time, 0, windowDays+1)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		index = append(index, d)
	}
	totals := make([]decimal.Decimal, len(index))
	for i := range totals {
		totals[i] = decimal.Zero
	}

	holdings := book.List()
	histories := a.fetchHistories(ctx, holdings, collector.PeriodForDays(windowDays))
	for i, h := range holdings {
		qty := decimal.NewFromInt(h.Quantity)
		hist := histories[i]
		j := 0
		last, have := decimal.Zero, false
		for k, day := range index {
			for j < len(hist) && !dayOf(hist[j].Date, loc).After(day) {
				last, have = hist[j].Close, true
				j++
			}
			if have {
				totals[k] = totals[k].Add(last.Mul(qty))
			}
		}
	}

	allZero := true
	points := make([]model.ValuePoint, len(index))
	for i, day := range index {
		v := totals[i].Round(moneyPlaces)
		if !v.IsZero() {
			allZero = false
		}
		points[i] = model.ValuePoint{Date: day, Value: v}
	}
	if allZero {
		return out, model.ErrInsufficientData
	}
	out.Points = points
	return out, nil
}

func (a *Aggregator) fetchHistories(ctx context.Context, holdings []model.Holding, period string) []model.HistorySeries {
	interval := a.Interval
	if interval == "" {
		interval = DefaultInterval
	}
	out := make([]model.HistorySeries, len(holdings))
	var g errgroup.Group
	g.SetLimit(maxConcurrentQuotes)
	for i, h := range holdings {
		g.Go(func() error {
			out[i] = a.History.GetHistory(ctx, symbol.ForHolding(h), period, interval)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Aggregator) location() *time.Location {
	if a.Location != nil {
		return a.Location
	}
	return marketLocation(DefaultLocation)
}

// dayOf truncates t to midnight of its calendar date in loc.
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// marketLocation falls back to a fixed IST offset when tzdata is missing.
func marketLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

// LoadLocation resolves a configured zone name, defaulting to the market zone.
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultLocation
	}
	return marketLocation(name)
}
