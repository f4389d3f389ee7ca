package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDesk/internal/model"
)

func TestJSONFile_MissingFileIsEmpty(t *testing.T) {
	f := NewJSONFile[model.Holding](filepath.Join(t.TempDir(), "portfolio.json"))
	items, err := f.Load()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestJSONFile_ReadsReferenceShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
    {"stock": "tatapower", "qty": 12, "avg_price": 401.25, "exchange": "NSE"},
    {"stock": "XYZ", "qty": 3, "avg_price": 10}
]`), 0o644))

	items, err := NewJSONFile[model.Holding](path).Load()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "TATAPOWER", items[0].Symbol)
	assert.Equal(t, "401.25", items[0].AveragePrice.String())
	assert.Equal(t, model.ExchangeNSE, items[1].Exchange, "missing exchange defaults to NSE")
}

func TestJSONFile_SaveCreatesDirsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "watchlist.json")
	f := NewJSONFile[model.WatchItem](path)

	require.NoError(t, f.Save([]model.WatchItem{{Symbol: "TCS", Exchange: model.ExchangeNSE}}))
	require.NoError(t, f.Save(nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestJSONFile_CorruptFileIsPersistenceError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := NewJSONFile[model.Holding](path).Load()
	require.ErrorIs(t, err, model.ErrPersistence)
}
