package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nurefexc/rss-bridge-ntfy/internal/delay"
	"github.com/nurefexc/rss-bridge-ntfy/internal/domain"
	"github.com/nurefexc/rss-bridge-ntfy/internal/fingerprint"
	"github.com/nurefexc/rss-bridge-ntfy/internal/ports"
)

// ErrLedger marks seen-entry storage failures. Without a readable ledger the
// cycle cannot determine novelty and must abort; the next cycle retries.
var ErrLedger = errors.New("ledger unavailable")

// ProcessorDeps wires all driven adapters into the per-source workflow.
type ProcessorDeps struct {
	Fetcher    ports.FeedFetcher
	Ledger     ports.Ledger
	Summarizer ports.Summarizer
	Dispatcher ports.Dispatcher
	Delay      delay.Policy

	DefaultPriority int
	MaxPerSource    int

	Logger *slog.Logger
}

// Processor handles one configured source per call: fetch, dedup against the
// ledger, summarize, dispatch with flood-control delay, record.
type Processor struct {
	fetcher    ports.FeedFetcher
	ledger     ports.Ledger
	summarizer ports.Summarizer
	dispatcher ports.Dispatcher
	delay      delay.Policy

	defaultPriority int
	maxPerSource    int

	logger *slog.Logger
}

// NewProcessor constructs the per-source workflow component.
func NewProcessor(deps ProcessorDeps) *Processor {
	if deps.DefaultPriority <= 0 {
		deps.DefaultPriority = 3
	}
	if deps.MaxPerSource <= 0 {
		deps.MaxPerSource = 3
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Processor{
		fetcher:         deps.Fetcher,
		ledger:          deps.Ledger,
		summarizer:      deps.Summarizer,
		dispatcher:      deps.Dispatcher,
		delay:           deps.Delay,
		defaultPriority: deps.DefaultPriority,
		maxPerSource:    deps.MaxPerSource,
		logger:          deps.Logger,
	}
}

// ProcessSource runs one source's batch within a cycle. Entries are visited
// in feed order; at most maxPerSource notifications are attempted. Ledger
// failures are wrapped with ErrLedger so the caller aborts the cycle.
func (p *Processor) ProcessSource(ctx context.Context, topic string, src domain.FeedSource) (domain.SourceReport, error) {
	report := domain.SourceReport{Topic: topic, Source: src.Name}

	entries, err := p.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return report, fmt.Errorf("fetch %s: %w", src.Name, err)
	}

	priority := src.Priority
	if priority <= 0 {
		priority = p.defaultPriority
	}

	sent := 0
	for _, entry := range entries {
		if sent >= p.maxPerSource {
			break
		}

		fp := fingerprint.Entry(topic, entry)
		seen, err := p.ledger.Has(ctx, fp)
		if err != nil {
			return report, fmt.Errorf("%w: check %s: %v", ErrLedger, src.Name, err)
		}
		if seen {
			report.Skipped++
			continue
		}

		summaryText, imageURL := p.summarizer.Summarize(entry.Content, entry.MediaRefs)
		notification := buildNotification(topic, src, entry, summaryText, imageURL, priority, p.delay.For(priority, sent))

		// Record-after-send: a crash between the two re-sends the entry on
		// the next cycle instead of dropping it forever.
		if err := p.dispatcher.Send(ctx, notification); err != nil {
			p.logger.Error("dispatch failed, entry marked seen anyway",
				"outcome", domain.OutcomeFailedButRecorded,
				"topic", topic, "source", src.Name, "title", notification.Title, "error", err)
			report.FailedButRecorded++
		} else {
			p.logger.Info("notification sent",
				"topic", topic, "source", src.Name, "title", notification.Title,
				"priority", priority, "delay", notification.Delay.String())
			report.Dispatched++
		}

		if err := p.ledger.Record(ctx, fp); err != nil {
			return report, fmt.Errorf("%w: record %s: %v", ErrLedger, src.Name, err)
		}
		sent++
	}

	return report, nil
}

func buildNotification(topic string, src domain.FeedSource, entry domain.FeedEntry, summary, imageURL string, priority int, d time.Duration) domain.Notification {
	title := entry.Title
	if title == "" {
		title = "No Title"
	}
	link := entry.Link
	if link == "" {
		link = "#"
	}

	return domain.Notification{
		Topic:         topic,
		SourceName:    src.Name,
		Title:         title,
		Link:          link,
		Summary:       summary,
		ImageURL:      imageURL,
		Icon:          src.Icon,
		Priority:      priority,
		Delay:         d,
		PublishedAt:   entry.Published,
		PublishedText: entry.PublishedText,
	}
}
