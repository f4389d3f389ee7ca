package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers (dashboards, the CLI) query while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS valuation_snapshots (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp          INTEGER NOT NULL,
			holdings           INTEGER NOT NULL,
			unpriced           INTEGER NOT NULL,
			total_invested     TEXT NOT NULL,
			total_market_value TEXT NOT NULL,
			total_pl           TEXT NOT NULL,
			total_pl_pct       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON valuation_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS holding_snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id   INTEGER NOT NULL REFERENCES valuation_snapshots(id),
			stock         TEXT NOT NULL,
			exchange      TEXT NOT NULL,
			qty           INTEGER NOT NULL,
			avg_price     TEXT NOT NULL,
			current_price TEXT,
			market_value  TEXT NOT NULL,
			unrealized_pl TEXT NOT NULL,
			pl_pct        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_holding_snap ON holding_snapshots(snapshot_id)`,

		`CREATE TABLE IF NOT EXISTS alert_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			stock          TEXT NOT NULL,
			trading_day    TEXT NOT NULL,
			alert_price    TEXT NOT NULL,
			price          TEXT NOT NULL,
			previous_close TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_alert_day ON alert_events(stock, trading_day)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSnapshot(snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	taken := snap.Taken
	if taken.IsZero() {
		taken = r.now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback()

	t := snap.Totals
	res, err := tx.Exec(`INSERT INTO valuation_snapshots
		(timestamp, holdings, unpriced, total_invested, total_market_value, total_pl, total_pl_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		taken.Unix(), t.Holdings, t.Unpriced,
		t.Invested.String(), t.MarketValue.String(), t.PL.String(), t.PLPct.String())
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	for _, row := range snap.Rows {
		var price any
		if row.Price.Valid {
			price = row.Price.Decimal.String()
		}
		if _, err := tx.Exec(`INSERT INTO holding_snapshots
			(snapshot_id, stock, exchange, qty, avg_price, current_price, market_value, unrealized_pl, pl_pct)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, row.Symbol, string(row.Exchange), row.Quantity, row.AveragePrice.String(), price,
			row.MarketValue.String(), row.UnrealizedPL.String(), row.PLPct.String()); err != nil {
			return fmt.Errorf("insert holding %s: %w", row.Symbol, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordAlert(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fired := evt.Fired
	if fired.IsZero() {
		fired = r.now()
	}
	_, err := r.db.Exec(`INSERT OR IGNORE INTO alert_events
		(timestamp, stock, trading_day, alert_price, price, previous_close)
		VALUES (?, ?, ?, ?, ?, ?)`,
		fired.Unix(), evt.Symbol, evt.TradingDay,
		evt.AlertPrice.String(), evt.Price.String(), evt.PreviousClose.String())
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) AlertSent(symbol, tradingDay string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM alert_events WHERE stock = ? AND trading_day = ?`,
		symbol, tradingDay).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query alert: %w", err)
	}
	return n > 0, nil
}

// SnapshotCount returns the number of stored portfolio snapshots.
func (r *SQLiteRecorder) SnapshotCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM valuation_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
