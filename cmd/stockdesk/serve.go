package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"StockDesk/internal/logger"
	"StockDesk/internal/notifier"
	"StockDesk/internal/recorder"
	"StockDesk/internal/scheduler"
	"StockDesk/internal/server"
)

// serveCmd runs the HTTP API, the cron jobs and Telegram polling.
type serveCmd struct {
	runOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the API server, scheduled snapshots and alerts" }
func (*serveCmd) Usage() string {
	return `stockdesk serve [-run-on-start]
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "take a snapshot immediately")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		return fail("starting", err)
	}
	log := a.log
	cfg := a.cfg
	log.Info().Str("provider", a.fetcher.Name()).Msg("StockDesk starting")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rec := openRecorder(cfg.Database.SQLitePath, log)
	defer rec.Close()

	var sender scheduler.Sender = logSender{log: logger.Component(log, "notify")}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, notifications go to the log")
	}

	sched := scheduler.NewScheduler(ctx, a.ledger, a.watchlist, a.cache, a.series, sender, rec, a.series.Location, log)
	sched.SeriesDays = cfg.Valuation.SeriesDays
	if err := sched.RegisterAll(cfg.Schedule.SnapshotCron, cfg.Schedule.AlertCron); err != nil {
		return fail("registering cron tasks", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}
	if c.runOnStart {
		go sched.SnapshotTask()
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		Log:            log,
		Ledger:         a.ledger,
		Watchlist:      a.watchlist,
		Market:         a.cache,
		Series:         a.series,
		SeriesDays:     cfg.Valuation.SeriesDays,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, stopping")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fail("serving HTTP", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown")
	}
	log.Info().Msg("StockDesk stopped")
	return subcommands.ExitSuccess
}

func openRecorder(path string, log zerolog.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Msg("create database directory failed, using noop recorder")
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// logSender stands in for Telegram when no bot is configured.
type logSender struct {
	log zerolog.Logger
}

func (s logSender) SendWithRetry(_ context.Context, text string, _ int) error {
	s.log.Info().Str("text", text).Msg("notification")
	return nil
}
