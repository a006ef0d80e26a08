package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nurefexc/rss-bridge-ntfy/internal/config"
	"github.com/nurefexc/rss-bridge-ntfy/internal/delay"
	"github.com/nurefexc/rss-bridge-ntfy/internal/infrastructure/feed"
	"github.com/nurefexc/rss-bridge-ntfy/internal/infrastructure/ntfy"
	"github.com/nurefexc/rss-bridge-ntfy/internal/infrastructure/scheduler"
	"github.com/nurefexc/rss-bridge-ntfy/internal/infrastructure/storage"
	"github.com/nurefexc/rss-bridge-ntfy/internal/infrastructure/summary"
	"github.com/nurefexc/rss-bridge-ntfy/internal/logging"
	"github.com/nurefexc/rss-bridge-ntfy/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	ledger    *storage.SQLiteLedger
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. The seen-entry ledger is opened
// here so a broken database path fails fast instead of on the first cycle.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.File, cfg.Scheduler.Location())
	}

	ledger, err := storage.Open(cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", cfg.Ledger.Path, err)
	}

	fetcher := feed.NewFetcher(nil, cfg.Ntfy.UserAgent)
	dispatcher := ntfy.NewDispatcher(cfg.Ntfy, cfg.Scheduler.Location())

	processor := usecase.NewProcessor(usecase.ProcessorDeps{
		Fetcher:         fetcher,
		Ledger:          ledger,
		Summarizer:      summary.NewHTMLSummarizer(),
		Dispatcher:      dispatcher,
		Delay:           delay.Default(),
		DefaultPriority: cfg.Feeds.DefaultPriority,
		MaxPerSource:    cfg.Feeds.MaxPerSourcePerCycle,
		Logger:          baseLogger.With("component", "processor"),
	})

	runner := usecase.NewRunner(cfg.Feeds.Dir, processor, baseLogger.With("component", "runner"))

	driver := scheduler.New(
		cfg.Scheduler.Interval(),
		cfg.Scheduler.CronExpression,
		cfg.Scheduler.Location(),
	)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		ledger:    ledger,
		scheduler: usecase.NewScheduler(driver, runner),
	}, nil
}

// Run starts the cycle scheduler and blocks until ctx is cancelled, then
// shuts everything down in order.
func (a *Application) Run(ctx context.Context) error {
	a.logger.Info("bridge starting",
		"feeds_dir", a.cfg.Feeds.Dir,
		"ntfy", a.cfg.Ntfy.BaseURL,
		"interval", a.cfg.Scheduler.Interval().String(),
		"cron", a.cfg.Scheduler.CronExpression)

	if err := a.scheduler.Start(ctx); err != nil {
		_ = a.ledger.Close()
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("bridge stopping")

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.scheduler.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler did not stop cleanly", "error", err)
	}

	if err := a.ledger.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}

	return nil
}
