package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
	"StockDesk/internal/symbol"
	"StockDesk/internal/valuation"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  "stockdesk",
		"holdings": len(s.ledger.List()),
	})
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.List())
}

type addHoldingRequest struct {
	Stock    string          `json:"stock"`
	Qty      int64           `json:"qty"`
	Price    decimal.Decimal `json:"price"`
	Exchange string          `json:"exchange"`
}

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req addHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	ex, ok := model.ParseExchange(req.Exchange)
	if !ok {
		s.log.Warn().Str("exchange", req.Exchange).Msg("unknown exchange, using NSE")
	}
	h, err := s.ledger.AddOrUpdate(req.Stock, ex, req.Qty, req.Price)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	removed, err := s.ledger.Remove(chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHoldings(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Clear(); err != nil {
		s.writeErr(w, err)
		return
	}
	s.log.Info().Msg("portfolio cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	h, ok := s.ledger.Get(chi.URLParam(r, "symbol"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	s.writeJSON(w, http.StatusOK, valuation.Inspect(r.Context(), h, s.market, s.market))
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, valuation.Value(r.Context(), s.ledger, s.market))
}

func (s *Server) handleValuationCSV(w http.ResponseWriter, r *http.Request) {
	report := valuation.Value(r.Context(), s.ledger, s.market)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="portfolio_valuations.csv"`)
	if err := valuation.WriteCSV(w, report.Rows); err != nil {
		s.log.Error().Err(err).Msg("write csv")
	}
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	days := s.seriesDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = n
	}
	series, err := s.series.Series(r.Context(), s.ledger, days)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}

type quoteResponse struct {
	Symbol         string              `json:"stock"`
	ProviderSymbol string              `json:"provider_symbol"`
	Price          decimal.NullDecimal `json:"price"`
	PreviousClose  decimal.NullDecimal `json:"previous_close"`
	AsOf           *time.Time          `json:"as_of"`
	Available      bool                `json:"available"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "symbol")
	provider := symbol.NormalizeHint(raw, r.URL.Query().Get("exchange"))
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		s.market.Invalidate(provider)
	}
	q := s.market.GetQuote(r.Context(), provider)

	resp := quoteResponse{
		Symbol:         symbol.UserForm(raw),
		ProviderSymbol: provider,
		Price:          q.Price,
		PreviousClose:  q.PreviousClose,
		Available:      q.Available(),
	}
	if !q.AsOf.IsZero() {
		resp.AsOf = &q.AsOf
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.watchlist.List())
}

type addWatchRequest struct {
	Stock      string              `json:"stock"`
	Exchange   string              `json:"exchange"`
	AlertPrice decimal.NullDecimal `json:"alert_price"`
}

func (s *Server) handleAddWatch(w http.ResponseWriter, r *http.Request) {
	var req addWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	ex, _ := model.ParseExchange(req.Exchange)
	item, err := s.watchlist.Add(req.Stock, ex, req.AlertPrice)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleClearWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := s.watchlist.Clear(); err != nil {
		s.writeErr(w, err)
		return
	}
	s.log.Info().Msg("watchlist cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveWatch(w http.ResponseWriter, r *http.Request) {
	removed, err := s.watchlist.Remove(chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "watch item not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeErr maps domain errors onto HTTP status codes.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, model.ErrInsufficientData):
		s.writeError(w, http.StatusNotFound, "Not enough historical data to plot performance.")
	case errors.Is(err, model.ErrPersistence):
		s.log.Error().Err(err).Msg("persistence failure")
		s.writeError(w, http.StatusInternalServerError, "could not save changes")
	default:
		s.log.Error().Err(err).Msg("request failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
