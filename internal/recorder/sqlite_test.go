package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDesk/internal/model"
)

func openTest(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "desk.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecordSnapshot(t *testing.T) {
	r := openTest(t)

	snap := &Snapshot{
		Taken: time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC),
		Totals: model.Totals{
			Invested:    decimal.RequireFromString("1000"),
			MarketValue: decimal.RequireFromString("1200"),
			PL:          decimal.RequireFromString("200"),
			PLPct:       decimal.RequireFromString("20"),
			Holdings:    2,
			Unpriced:    1,
		},
		Rows: []model.Valuation{
			{Symbol: "TCS", Exchange: model.ExchangeNSE, Quantity: 10,
				Price: decimal.NewNullDecimal(decimal.RequireFromString("120"))},
			{Symbol: "GONE", Exchange: model.ExchangeBSE, Quantity: 1, PriceUnknown: true},
		},
	}
	require.NoError(t, r.RecordSnapshot(snap))
	require.NoError(t, r.RecordSnapshot(snap))

	n, err := r.SnapshotCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var rows int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM holding_snapshots WHERE current_price IS NULL`).Scan(&rows))
	assert.Equal(t, 2, rows)
}

func TestRecordAlert_OncePerDay(t *testing.T) {
	r := openTest(t)

	sent, err := r.AlertSent("INFY", "2024-03-01")
	require.NoError(t, err)
	assert.False(t, sent)

	evt := &AlertEvent{
		Symbol:     "INFY",
		AlertPrice: decimal.RequireFromString("1500"),
		Price:      decimal.RequireFromString("1502"),
		TradingDay: "2024-03-01",
	}
	require.NoError(t, r.RecordAlert(evt))
	require.NoError(t, r.RecordAlert(evt))

	sent, err = r.AlertSent("INFY", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = r.AlertSent("INFY", "2024-03-04")
	require.NoError(t, err)
	assert.False(t, sent)

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM alert_events`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordSnapshot(&Snapshot{}))
	sent, err := r.AlertSent("X", "2024-01-01")
	assert.NoError(t, err)
	assert.False(t, sent)
	assert.NoError(t, r.Close())
}
