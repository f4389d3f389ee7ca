package ledger

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
	"StockDesk/internal/symbol"
)

// Watchlist holds unique symbols the user follows, each with an optional
// alert price.
type Watchlist struct {
	mu    sync.RWMutex
	store Store[model.WatchItem]
	items []model.WatchItem
	log   zerolog.Logger
}

// OpenWatchlist loads the watchlist from store.
func OpenWatchlist(store Store[model.WatchItem], log zerolog.Logger) (*Watchlist, error) {
	w := &Watchlist{
		store: store,
		log:   log.With().Str("component", "watchlist").Logger(),
	}
	if err := w.Reload(); err != nil {
		return nil, err
	}
	return w, nil
}

// Reload discards in-memory state and reads the store again. Duplicate
// symbols keep their last entry; an invalid row fails the load.
func (w *Watchlist) Reload() error {
	items, err := w.store.Load()
	if err != nil {
		return asPersistenceError("load", err)
	}
	out := make([]model.WatchItem, 0, len(items))
	for _, it := range items {
		it.Symbol = symbol.UserForm(it.Symbol)
		if err := validateWatch(it.Symbol, it.AlertPrice); err != nil {
			w.log.Error().Err(err).Msg("stored watchlist is invalid")
			return asPersistenceError("load", err)
		}
		if i := indexOfWatch(out, it.Symbol); i >= 0 {
			out[i] = it
			continue
		}
		out = append(out, it)
	}
	w.mu.Lock()
	w.items = out
	w.mu.Unlock()
	return nil
}

// List returns a copy of the watchlist in insertion order.
func (w *Watchlist) List() []model.WatchItem {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]model.WatchItem, len(w.items))
	copy(out, w.items)
	return out
}

// Add inserts sym or, if already present, replaces its exchange and alert.
func (w *Watchlist) Add(sym string, exchange model.Exchange, alert decimal.NullDecimal) (model.WatchItem, error) {
	sym = symbol.UserForm(sym)
	if err := validateWatch(sym, alert); err != nil {
		return model.WatchItem{}, err
	}
	if exchange == "" {
		exchange = model.ExchangeNSE
	}
	if alert.Valid {
		alert.Decimal = alert.Decimal.Round(pricePlaces)
	}
	item := model.WatchItem{Symbol: sym, Exchange: exchange, AlertPrice: alert}

	w.mu.Lock()
	defer w.mu.Unlock()
	next := make([]model.WatchItem, len(w.items))
	copy(next, w.items)
	if i := indexOfWatch(next, sym); i >= 0 {
		next[i] = item
	} else {
		next = append(next, item)
	}
	if err := w.commitLocked(next); err != nil {
		return model.WatchItem{}, err
	}
	w.log.Info().Str("symbol", sym).Msg("watch item saved")
	return item, nil
}

// Remove deletes sym; an absent symbol is a no-op.
func (w *Watchlist) Remove(sym string) (bool, error) {
	sym = symbol.UserForm(sym)
	w.mu.Lock()
	defer w.mu.Unlock()
	i := indexOfWatch(w.items, sym)
	if i < 0 {
		return false, nil
	}
	next := make([]model.WatchItem, 0, len(w.items)-1)
	next = append(next, w.items[:i]...)
	next = append(next, w.items[i+1:]...)
	if err := w.commitLocked(next); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes every item.
func (w *Watchlist) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commitLocked([]model.WatchItem{})
}

func (w *Watchlist) commitLocked(next []model.WatchItem) error {
	if err := w.store.Save(next); err != nil {
		w.log.Error().Err(err).Msg("watchlist save failed, change discarded")
		return asPersistenceError("save", err)
	}
	w.items = next
	return nil
}

func validateWatch(sym string, alert decimal.NullDecimal) error {
	if sym == "" {
		return &model.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if alert.Valid && !alert.Decimal.IsPositive() {
		return &model.ValidationError{Field: "alert_price", Reason: "must be positive"}
	}
	return nil
}

func indexOfWatch(items []model.WatchItem, sym string) int {
	for i, it := range items {
		if it.Symbol == sym {
			return i
		}
	}
	return -1
}
