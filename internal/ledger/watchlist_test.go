package ledger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDesk/internal/model"
)

func TestWatchlist_AddUpsertsBySymbol(t *testing.T) {
	store := &memStore[model.WatchItem]{}
	w, err := OpenWatchlist(store, zerolog.Nop())
	require.NoError(t, err)

	_, err = w.Add("tatapower", model.ExchangeNSE, decimal.NullDecimal{})
	require.NoError(t, err)
	item, err := w.Add("TATAPOWER", model.ExchangeNSE, decimal.NewNullDecimal(d("420.555")))
	require.NoError(t, err)

	assert.Equal(t, "420.56", item.AlertPrice.Decimal.StringFixed(2))
	list := w.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].AlertPrice.Valid)
}

func TestWatchlist_Validation(t *testing.T) {
	w, err := OpenWatchlist(&memStore[model.WatchItem]{}, zerolog.Nop())
	require.NoError(t, err)

	_, err = w.Add("", model.ExchangeNSE, decimal.NullDecimal{})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = w.Add("TCS", model.ExchangeNSE, decimal.NewNullDecimal(d("-3")))
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestWatchlist_RemoveAbsentIsNoop(t *testing.T) {
	store := &memStore[model.WatchItem]{}
	w, err := OpenWatchlist(store, zerolog.Nop())
	require.NoError(t, err)

	removed, err := w.Remove("TCS")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, store.saves)
}

func TestOpenWatchlist_RefusesInvalidStoredRows(t *testing.T) {
	store := &memStore[model.WatchItem]{items: []model.WatchItem{
		{Symbol: "INFY", Exchange: model.ExchangeNSE},
		{Symbol: "TCS", AlertPrice: decimal.NewNullDecimal(d("-1"))},
	}}
	_, err := OpenWatchlist(store, zerolog.Nop())
	require.ErrorIs(t, err, model.ErrPersistence)
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "alert_price", ve.Field)
}
