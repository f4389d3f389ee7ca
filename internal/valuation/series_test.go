package valuation

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDesk/internal/model"
)

type fakeHistory struct {
	series map[string]model.HistorySeries
	asked  []string
}

func (f *fakeHistory) GetHistory(_ context.Context, sym, period, interval string) model.HistorySeries {
	f.asked = append(f.asked, sym+"|"+period+"|"+interval)
	return f.series[sym]
}

func testAggregator(h HistorySource, now time.Time) *Aggregator {
	return &Aggregator{
		History:  h,
		Now:      func() time.Time { return now },
		Location: time.UTC,
	}
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestSeries_ForwardFillsWeekendsAndZeroFillsLeadingGap(t *testing.T) {
	// 2024-03-01 is a Friday; 02 and 03 are the weekend.
	hist := &fakeHistory{series: map[string]model.HistorySeries{
		"TCS.NS": {
			{Date: day(2024, 3, 1), Close: d("100")},
			{Date: day(2024, 3, 4), Close: d("110")},
		},
	}}
	agg := testAggregator(hist, day(2024, 3, 4).Add(10*time.Hour))

	s, err := agg.Series(context.Background(), staticBook{holding("TCS", 2, "90")}, 5)
	require.NoError(t, err)

	require.Len(t, s.Points, 6)
	assert.Equal(t, day(2024, 2, 28), s.Points[0].Date)
	want := []string{"0.00", "0.00", "200.00", "200.00", "200.00", "220.00"}
	for i, p := range s.Points {
		assert.Equal(t, want[i], p.Value.StringFixed(2), "point %d", i)
	}
	assert.Equal(t, []string{"TCS.NS|5d|1d"}, hist.asked)
}

func TestSeries_SumsHoldings(t *testing.T) {
	hist := &fakeHistory{series: map[string]model.HistorySeries{
		"A.NS": {{Date: day(2024, 1, 1), Close: d("10")}},
		"B.NS": {{Date: day(2024, 1, 2), Close: d("5")}},
	}}
	agg := testAggregator(hist, day(2024, 1, 3))

	s, err := agg.Series(context.Background(), staticBook{holding("A", 1, "1"), holding("B", 4, "1")}, 2)
	require.NoError(t, err)

	require.Len(t, s.Points, 3)
	assert.Equal(t, "10.00", s.Points[0].Value.StringFixed(2))
	assert.Equal(t, "30.00", s.Points[1].Value.StringFixed(2))
	assert.Equal(t, "30.00", s.Points[2].Value.StringFixed(2))
}

func TestSeries_CarriesCloseFromBeforeWindow(t *testing.T) {
	hist := &fakeHistory{series: map[string]model.HistorySeries{
		"A.NS": {{Date: day(2023, 12, 1), Close: d("7")}},
	}}
	agg := testAggregator(hist, day(2024, 1, 3))

	s, err := agg.Series(context.Background(), staticBook{holding("A", 1, "1")}, 2)
	require.NoError(t, err)
	assert.Equal(t, "7.00", s.Points[0].Value.StringFixed(2))
}

func TestSeries_InsufficientData(t *testing.T) {
	agg := testAggregator(&fakeHistory{}, day(2024, 1, 3))

	s, err := agg.Series(context.Background(), staticBook{holding("A", 1, "1")}, 180)
	assert.True(t, errors.Is(err, model.ErrInsufficientData))
	assert.Empty(t, s.Points)
}

func TestSeries_EmptyBookIsInsufficient(t *testing.T) {
	agg := testAggregator(&fakeHistory{}, day(2024, 1, 3))

	_, err := agg.Series(context.Background(), staticBook{}, 30)
	assert.ErrorIs(t, err, model.ErrInsufficientData)
}

func TestSeries_RejectsWindowOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		days int
	}{
		{"zero", 0},
		{"negative", -3},
		{"above five years", MaxSeriesDays + 1},
		{"max int", math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := &fakeHistory{}
			agg := testAggregator(hist, day(2024, 1, 3))

			_, err := agg.Series(context.Background(), staticBook{holding("TCS", 1, "10")}, tt.days)
			require.ErrorIs(t, err, model.ErrValidation)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "days", verr.Field)
			assert.Empty(t, hist.asked, "no history is fetched for a rejected window")
		})
	}
}

func TestSeries_AcceptsMaxWindow(t *testing.T) {
	hist := &fakeHistory{series: map[string]model.HistorySeries{"TCS.NS": risingSeries(3)}}
	agg := testAggregator(hist, day(2024, 1, 3))

	s, err := agg.Series(context.Background(), staticBook{holding("TCS", 1, "10")}, MaxSeriesDays)
	require.NoError(t, err)
	assert.Len(t, s.Points, MaxSeriesDays+1)
}

func TestSeries_DatesFollowLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*60*60+30*60)
	// 20:00 UTC on Jan 2 is already Jan 3 in IST.
	now := time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)
	hist := &fakeHistory{series: map[string]model.HistorySeries{
		"A.NS": {{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, ist), Close: d("1")}},
	}}
	agg := &Aggregator{History: hist, Now: func() time.Time { return now }, Location: ist}

	s, err := agg.Series(context.Background(), staticBook{holding("A", 1, "1")}, 1)
	require.NoError(t, err)
	require.Len(t, s.Points, 2)
	assert.Equal(t, 3, s.Points[1].Date.Day())
	assert.Equal(t, "1.00", s.Points[1].Value.StringFixed(2))
}
