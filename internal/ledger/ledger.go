// Package ledger owns the user's holdings and watchlist and persists them
// through a whole-document Store.
package ledger

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
	"StockDesk/internal/symbol"
)

// pricePlaces is the display rounding for prices. Alert prices are stored
// rounded to it; average prices keep full precision so merges do not drift.
const pricePlaces = 2

// Ledger holds at most one Holding per symbol. Every mutation is saved
// before it becomes visible; a failed save leaves the ledger unchanged.
type Ledger struct {
	mu       sync.RWMutex
	store    Store[model.Holding]
	holdings []model.Holding
	log      zerolog.Logger
}

// Open loads the ledger from store.
func Open(store Store[model.Holding], log zerolog.Logger) (*Ledger, error) {
	l := &Ledger{
		store: store,
		log:   log.With().Str("component", "ledger").Logger(),
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload discards in-memory state and reads the store again. A stored row
// that fails validation makes the whole load fail, so the next save cannot
// silently drop it from disk.
func (l *Ledger) Reload() error {
	items, err := l.store.Load()
	if err != nil {
		return asPersistenceError("load", err)
	}
	folded, err := fold(items)
	if err != nil {
		l.log.Error().Err(err).Msg("stored holdings are invalid")
		return asPersistenceError("load", err)
	}
	l.mu.Lock()
	l.holdings = folded
	l.mu.Unlock()
	l.log.Debug().Int("holdings", len(folded)).Msg("ledger loaded")
	return nil
}

// List returns a copy of the holdings in insertion order.
func (l *Ledger) List() []model.Holding {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.Holding, len(l.holdings))
	copy(out, l.holdings)
	return out
}

// Get returns the holding for sym, compared case-insensitively.
func (l *Ledger) Get(sym string) (model.Holding, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := indexOf(l.holdings, symbol.UserForm(sym)); i >= 0 {
		return l.holdings[i], true
	}
	return model.Holding{}, false
}

// AddOrUpdate records a purchase of qty shares at price. A second purchase
// of the same symbol merges into the existing holding at the
// quantity-weighted average price. The average is kept unrounded; callers
// round to 2 places for display.
func (l *Ledger) AddOrUpdate(sym string, exchange model.Exchange, qty int64, price decimal.Decimal) (model.Holding, error) {
	sym = symbol.UserForm(sym)
	if err := validateLot(sym, qty, price); err != nil {
		return model.Holding{}, err
	}
	if exchange == "" {
		exchange = model.ExchangeNSE
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]model.Holding, len(l.holdings))
	copy(next, l.holdings)

	var h model.Holding
	if i := indexOf(next, sym); i >= 0 {
		h = mergeLot(next[i], qty, price)
		h.Exchange = exchange
		next[i] = h
	} else {
		h = model.Holding{
			Symbol:       sym,
			Quantity:     qty,
			AveragePrice: price,
			Exchange:     exchange,
		}
		next = append(next, h)
	}

	if err := l.commitLocked(next); err != nil {
		return model.Holding{}, err
	}
	l.log.Info().
		Str("symbol", h.Symbol).
		Int64("qty", h.Quantity).
		Str("avg_price", h.AveragePrice.StringFixed(pricePlaces)).
		Msg("holding saved")
	return h, nil
}

// Remove deletes the holding for sym. Removing an absent symbol is a no-op
// and reports false.
func (l *Ledger) Remove(sym string) (bool, error) {
	sym = symbol.UserForm(sym)

	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexOf(l.holdings, sym)
	if i < 0 {
		return false, nil
	}
	next := make([]model.Holding, 0, len(l.holdings)-1)
	next = append(next, l.holdings[:i]...)
	next = append(next, l.holdings[i+1:]...)
	if err := l.commitLocked(next); err != nil {
		return false, err
	}
	l.log.Info().Str("symbol", sym).Msg("holding removed")
	return true, nil
}

// Replace validates items, merges duplicate symbols and stores the result
// as the whole ledger.
func (l *Ledger) Replace(items []model.Holding) error {
	folded, err := fold(items)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commitLocked(folded)
}

// Clear removes every holding.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commitLocked([]model.Holding{})
}

func (l *Ledger) commitLocked(next []model.Holding) error {
	if err := l.store.Save(next); err != nil {
		l.log.Error().Err(err).Msg("ledger save failed, change discarded")
		return asPersistenceError("save", err)
	}
	l.holdings = next
	return nil
}

// mergeLot folds a new purchase into h.
func mergeLot(h model.Holding, qty int64, price decimal.Decimal) model.Holding {
	total := h.Quantity + qty
	if total == 0 {
		h.AveragePrice = price
		h.Quantity = total
		return h
	}
	cost := h.AveragePrice.Mul(decimal.NewFromInt(h.Quantity)).
		Add(price.Mul(decimal.NewFromInt(qty)))
	h.AveragePrice = cost.Div(decimal.NewFromInt(total))
	h.Quantity = total
	return h
}

// fold validates items and merges duplicate symbols in first-seen order.
func fold(items []model.Holding) ([]model.Holding, error) {
	out := make([]model.Holding, 0, len(items))
	for _, it := range items {
		sym := symbol.UserForm(it.Symbol)
		if err := validateLot(sym, it.Quantity, it.AveragePrice); err != nil {
			return nil, err
		}
		if it.Exchange == "" {
			it.Exchange = model.ExchangeNSE
		}
		if i := indexOf(out, sym); i >= 0 {
			merged := mergeLot(out[i], it.Quantity, it.AveragePrice)
			merged.Exchange = it.Exchange
			out[i] = merged
			continue
		}
		it.Symbol = sym
		out = append(out, it)
	}
	return out, nil
}

func validateLot(sym string, qty int64, price decimal.Decimal) error {
	if sym == "" {
		return &model.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if qty <= 0 {
		return &model.ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if !price.IsPositive() {
		return &model.ValidationError{Field: "price", Reason: "must be positive"}
	}
	return nil
}

func indexOf(holdings []model.Holding, sym string) int {
	for i, h := range holdings {
		if h.Symbol == sym {
			return i
		}
	}
	return -1
}

func asPersistenceError(op string, err error) error {
	var pe *model.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &model.PersistenceError{Op: op, Err: err}
}
