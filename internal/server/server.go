// Package server exposes the ledger, valuations and market data as a JSON API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"StockDesk/internal/ledger"
	"StockDesk/internal/valuation"
)

// MarketData is the cached quote and history source.
type MarketData interface {
	valuation.QuoteSource
	valuation.HistorySource
	// Invalidate drops cached results for a provider symbol.
	Invalidate(symbol string)
}

// Config holds server configuration
type Config struct {
	Addr           string
	Log            zerolog.Logger
	Ledger         *ledger.Ledger
	Watchlist      *ledger.Watchlist
	Market         MarketData
	Series         *valuation.Aggregator
	SeriesDays     int
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	ledger     *ledger.Ledger
	watchlist  *ledger.Watchlist
	market     MarketData
	series     *valuation.Aggregator
	seriesDays int
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "server").Logger(),
		ledger:     cfg.Ledger,
		watchlist:  cfg.Watchlist,
		market:     cfg.Market,
		series:     cfg.Series,
		seriesDays: cfg.SeriesDays,
	}
	if s.seriesDays <= 0 {
		s.seriesDays = 180
	}
	if s.series == nil {
		s.series = valuation.NewAggregator(cfg.Market)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.setupMiddleware(origins, timeout)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(origins []string, timeout time.Duration) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(timeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/holdings", func(r chi.Router) {
			r.Get("/", s.handleListHoldings)
			r.Post("/", s.handleAddHolding)
			r.Delete("/", s.handleClearHoldings)
			r.Delete("/{symbol}", s.handleRemoveHolding)
			r.Get("/{symbol}/insight", s.handleInsight)
		})
		r.Get("/valuation", s.handleValuation)
		r.Get("/valuation.csv", s.handleValuationCSV)
		r.Get("/series", s.handleSeries)
		r.Get("/quote/{symbol}", s.handleQuote)
		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", s.handleListWatchlist)
			r.Post("/", s.handleAddWatch)
			r.Delete("/", s.handleClearWatchlist)
			r.Delete("/{symbol}", s.handleRemoveWatch)
		})
	})
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
