package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockDesk/internal/ledger"
	"StockDesk/internal/model"
)

type workspace struct {
	dir       string
	holdings  string
	watchlist string
}

// newWorkspace points -config at a temporary config using the static
// provider and temporary ledger files.
func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	ws := &workspace{
		dir:       dir,
		holdings:  filepath.Join(dir, "portfolio.json"),
		watchlist: filepath.Join(dir, "watchlist.json"),
	}
	cfg := fmt.Sprintf(`storage:
  holdings_file: %q
  watchlist_file: %q
market_data:
  provider: static
valuation:
  location: UTC
log:
  level: error
`, ws.holdings, ws.watchlist)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	for _, k := range []string{"HOLDINGS_FILE", "WATCHLIST_FILE", "MARKET_DATA_PROVIDER", "VALUATION_LOCATION", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	prev := *configPath
	*configPath = path
	t.Cleanup(func() { *configPath = prev })
	return ws
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func (ws *workspace) stored(t *testing.T) []model.Holding {
	t.Helper()
	items, err := ledger.NewJSONFile[model.Holding](ws.holdings).Load()
	require.NoError(t, err)
	return items
}

func TestAddCmd_MergesLots(t *testing.T) {
	ws := newWorkspace(t)

	assert.Equal(t, subcommands.ExitSuccess, run(t, &addCmd{}, "tcs", "10", "100"))
	assert.Equal(t, subcommands.ExitSuccess, run(t, &addCmd{}, "-e", "BSE", "TCS", "30", "120"))

	items := ws.stored(t)
	require.Len(t, items, 1)
	assert.Equal(t, "TCS", items[0].Symbol)
	assert.Equal(t, int64(40), items[0].Quantity)
	assert.Equal(t, "115", items[0].AveragePrice.String())
	assert.Equal(t, model.ExchangeBSE, items[0].Exchange)
}

func TestAddCmd_ExitCodes(t *testing.T) {
	ws := newWorkspace(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing args", []string{"TCS", "10"}},
		{"bad quantity", []string{"TCS", "ten", "100"}},
		{"bad price", []string{"TCS", "10", "abc"}},
		{"zero quantity", []string{"TCS", "0", "100"}},
		{"negative price", []string{"TCS", "1", "-5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, subcommands.ExitUsageError, run(t, &addCmd{}, tt.args...))
		})
	}
	assert.Empty(t, ws.stored(t))
}

func TestImportCmd_ReplaceAndMerge(t *testing.T) {
	ws := newWorkspace(t)
	require.Equal(t, subcommands.ExitSuccess, run(t, &addCmd{}, "INFY", "10", "1500"))

	file := filepath.Join(ws.dir, "import.json")
	require.NoError(t, os.WriteFile(file, []byte(`[
		{"stock": "tcs", "qty": 5, "avg_price": 3000},
		{"stock": "INFY", "qty": 10, "avg_price": 1700}
	]`), 0o644))

	require.Equal(t, subcommands.ExitSuccess, run(t, &importCmd{}, "-merge", file))
	items := ws.stored(t)
	require.Len(t, items, 2)
	assert.Equal(t, "INFY", items[0].Symbol)
	assert.Equal(t, int64(20), items[0].Quantity)
	assert.Equal(t, "1600", items[0].AveragePrice.String())
	assert.Equal(t, "TCS", items[1].Symbol)

	require.Equal(t, subcommands.ExitSuccess, run(t, &importCmd{}, file))
	items = ws.stored(t)
	require.Len(t, items, 2)
	assert.Equal(t, int64(10), items[1].Quantity, "replace drops the earlier lot")
	assert.Equal(t, "1700", items[1].AveragePrice.String())
}

func TestImportCmd_InvalidRowsAreUsageErrors(t *testing.T) {
	ws := newWorkspace(t)
	file := filepath.Join(ws.dir, "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"stock": "TCS", "qty": 0, "avg_price": 10}]`), 0o644))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &importCmd{}, file))

	require.NoError(t, os.WriteFile(file, []byte(`not json`), 0o644))
	assert.Equal(t, subcommands.ExitUsageError, run(t, &importCmd{}, file))

	assert.Equal(t, subcommands.ExitFailure, run(t, &importCmd{}, filepath.Join(ws.dir, "absent.json")))
	assert.Empty(t, ws.stored(t))
}

func TestExportCmd_CSV(t *testing.T) {
	ws := newWorkspace(t)
	require.Equal(t, subcommands.ExitSuccess, run(t, &addCmd{}, "TCS", "10", "100"))

	out := filepath.Join(ws.dir, "valuations.csv")
	require.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{}, "-format", "csv", "-o", out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "stock", records[0][0])
	// the static provider prices each holding at its average price
	assert.Equal(t, []string{"TCS", "NSE", "10", "100.00", "100.00", "1000.00", "1000.00", "0.00", "0.00"}, records[1])
}

func TestExportCmd_UnknownFormat(t *testing.T) {
	newWorkspace(t)
	assert.Equal(t, subcommands.ExitUsageError, run(t, &exportCmd{}, "-format", "xml"))
}

func TestClearCmd(t *testing.T) {
	ws := newWorkspace(t)
	require.Equal(t, subcommands.ExitSuccess, run(t, &addCmd{}, "TCS", "1", "10"))
	require.Equal(t, subcommands.ExitSuccess, run(t, &watchCmd{}, "-alert", "12", "INFY"))

	require.Equal(t, subcommands.ExitSuccess, run(t, &clearCmd{}, "-watchlist"))
	watched, err := ledger.NewJSONFile[model.WatchItem](ws.watchlist).Load()
	require.NoError(t, err)
	assert.Empty(t, watched)
	assert.Len(t, ws.stored(t), 1, "holdings survive a watchlist clear")

	require.Equal(t, subcommands.ExitSuccess, run(t, &clearCmd{}))
	assert.Empty(t, ws.stored(t))

	assert.Equal(t, subcommands.ExitUsageError, run(t, &clearCmd{}, "extra"))
}
