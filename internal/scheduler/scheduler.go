// Package scheduler runs the daemon's periodic portfolio jobs and answers
// chat commands with the same core operations.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"StockDesk/internal/model"
	"StockDesk/internal/notifier"
	"StockDesk/internal/recorder"
	"StockDesk/internal/symbol"
	"StockDesk/internal/valuation"
)

const sendRetries = 3

// Sender delivers a message, retrying on failure.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// WatchSource is the read side of the watchlist.
type WatchSource interface {
	List() []model.WatchItem
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron       *cron.Cron
	Book       valuation.Book
	Watchlist  WatchSource
	Quotes     valuation.QuoteSource
	Series     *valuation.Aggregator
	Notifier   Sender
	Recorder   recorder.Recorder
	SeriesDays int
	Now        func() time.Time
	Ctx        context.Context

	log zerolog.Logger

	mu      sync.Mutex
	alerted map[string]string // symbol -> trading day of the last alert
}

// NewScheduler creates a new Scheduler. The cron runs in loc.
func NewScheduler(ctx context.Context, book valuation.Book, watch WatchSource, quotes valuation.QuoteSource,
	series *valuation.Aggregator, n Sender, rec recorder.Recorder, loc *time.Location, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Book:       book,
		Watchlist:  watch,
		Quotes:     quotes,
		Series:     series,
		Notifier:   n,
		Recorder:   rec,
		SeriesDays: 180,
		Now:        time.Now,
		Ctx:        ctx,
		log:        log.With().Str("component", "scheduler").Logger(),
		alerted:    make(map[string]string),
	}
}

// RegisterAll registers the snapshot and alert tasks.
func (s *Scheduler) RegisterAll(snapshotCron, alertCron string) error {
	if _, err := s.Cron.AddFunc(snapshotCron, s.SnapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	if _, err := s.Cron.AddFunc(alertCron, s.AlertTask); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// SnapshotTask values the portfolio, records it and sends the summary.
func (s *Scheduler) SnapshotTask() {
	s.log.Info().Msg("running snapshot task")
	report := valuation.Value(s.Ctx, s.Book, s.Quotes)
	now := s.Now()

	if err := s.Recorder.RecordSnapshot(&recorder.Snapshot{
		Taken:  now,
		Totals: report.Totals,
		Rows:   report.Rows,
	}); err != nil {
		s.log.Error().Err(err).Msg("record snapshot")
	}
	if len(report.Rows) > 0 {
		s.trySend(notifier.FormatValuation(report, now))
	}
}

// AlertTask checks every watch item with an alert price against its quote.
func (s *Scheduler) AlertTask() {
	for _, item := range s.Watchlist.List() {
		if !item.AlertPrice.Valid {
			continue
		}
		q := s.Quotes.GetQuote(s.Ctx, symbol.Normalize(item.Symbol, item.Exchange))
		if !Crossed(item.AlertPrice, q) {
			continue
		}
		day := q.AsOf.Format("2006-01-02")
		if s.alreadyAlerted(item.Symbol, day) {
			continue
		}

		s.log.Info().Str("symbol", item.Symbol).Str("day", day).Msg("alert price crossed")
		// An unsent alert stays unmarked so the next run retries it.
		if !s.trySend(notifier.FormatAlert(item, q)) {
			continue
		}
		s.markAlerted(item.Symbol, day)
		if err := s.Recorder.RecordAlert(&recorder.AlertEvent{
			Symbol:        item.Symbol,
			AlertPrice:    item.AlertPrice.Decimal,
			Price:         q.Price.Decimal,
			PreviousClose: q.PreviousClose.Decimal,
			TradingDay:    day,
			Fired:         s.Now(),
		}); err != nil {
			s.log.Error().Err(err).Msg("record alert")
		}
	}
}

// Crossed reports whether alert lies between the previous close and the
// current price, inclusive. Unavailable quotes never trigger.
func Crossed(alert decimal.NullDecimal, q model.Quote) bool {
	if !alert.Valid || !q.Available() || !q.PreviousClose.Valid {
		return false
	}
	lo, hi := q.PreviousClose.Decimal, q.Price.Decimal
	if lo.GreaterThan(hi) {
		lo, hi = hi, lo
	}
	a := alert.Decimal
	return a.GreaterThanOrEqual(lo) && a.LessThanOrEqual(hi)
}

func (s *Scheduler) alreadyAlerted(sym, day string) bool {
	s.mu.Lock()
	last := s.alerted[sym]
	s.mu.Unlock()
	if last == day {
		return true
	}
	sent, err := s.Recorder.AlertSent(sym, day)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", sym).Msg("alert history lookup failed")
		return false
	}
	return sent
}

func (s *Scheduler) markAlerted(sym, day string) {
	s.mu.Lock()
	s.alerted[sym] = day
	s.mu.Unlock()
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch strings.ToLower(fields[0]) {
	case "/value", "/portfolio":
		return notifier.FormatValuation(valuation.Value(ctx, s.Book, s.Quotes), s.Now())
	case "/watchlist":
		items := s.Watchlist.List()
		lines := make([]notifier.WatchLine, len(items))
		for i, item := range items {
			lines[i] = notifier.WatchLine{
				Item:  item,
				Quote: s.Quotes.GetQuote(ctx, symbol.Normalize(item.Symbol, item.Exchange)),
			}
		}
		return notifier.FormatWatchlist(lines)
	case "/series":
		days := s.SeriesDays
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n <= 0 {
				return "Usage: /series [days]"
			}
			days = n
		}
		series, err := s.Series.Series(ctx, s.Book, days)
		if err != nil && !errors.Is(err, model.ErrInsufficientData) {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatSeries(series)
	default:
		return helpText
	}
}

const helpText = "Commands:\n• /value: portfolio valuation\n• /watchlist: watched prices\n• /series [days]: value over time"

func (s *Scheduler) trySend(text string) bool {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		s.log.Error().Err(err).Msg("send notification")
		return false
	}
	return true
}
