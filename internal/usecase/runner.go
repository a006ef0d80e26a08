package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nurefexc/rss-bridge-ntfy/internal/config"
)

// Runner orchestrates one full pass over all topic files per cycle and owns
// top-level failure containment: one bad cycle never terminates the service.
type Runner struct {
	feedsDir  string
	processor *Processor
	logger    *slog.Logger
}

// NewRunner constructs the cycle orchestrator. Topic files are re-read every
// cycle so edits are picked up without a restart.
func NewRunner(feedsDir string, processor *Processor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{feedsDir: feedsDir, processor: processor, logger: logger}
}

// Cycle processes every topic file in lexicographic order. A broken file or
// a failing source is logged and skipped; only ledger failures abort the
// cycle, because novelty cannot be decided without the ledger.
func (r *Runner) Cycle(ctx context.Context) error {
	paths, err := config.ListSourceFiles(r.feedsDir)
	if err != nil {
		return fmt.Errorf("list source files: %w", err)
	}

	for _, path := range paths {
		file, err := config.LoadSourceFile(path)
		if err != nil {
			r.logger.Error("skipping source file", "path", path, "error", err)
			continue
		}

		for _, src := range file.Sources {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			report, err := r.processor.ProcessSource(ctx, file.Topic, src)
			if err != nil {
				if errors.Is(err, ErrLedger) {
					return err
				}
				r.logger.Error("source failed", "topic", file.Topic, "source", src.Name, "error", err)
				continue
			}

			if report.Attempts() > 0 {
				r.logger.Info("source processed",
					"topic", file.Topic, "source", src.Name,
					"dispatched", report.Dispatched,
					"failed_but_recorded", report.FailedButRecorded,
					"skipped", report.Skipped)
			}
		}
	}

	return nil
}

// SafeCycle runs one cycle and contains every failure, including panics, so
// the scheduler loop keeps going.
func (r *Runner) SafeCycle(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("cycle panicked", "panic", rec)
		}
	}()

	if err := r.Cycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error("cycle failed", "error", err)
	}
}
