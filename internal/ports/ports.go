package ports

import (
	"context"
	"time"

	"github.com/nurefexc/rss-bridge-ntfy/internal/domain"
)

// FeedFetcher pulls and normalizes entries from one feed URL.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]domain.FeedEntry, error)
}

// Ledger is the durable record of entry fingerprints already notified.
type Ledger interface {
	Has(ctx context.Context, fingerprint string) (bool, error)
	Record(ctx context.Context, fingerprint string) error
	Close() error
}

// Summarizer converts raw entry HTML to a short plain-text summary and an
// optional lead image URL. Media refs from the feed take precedence over
// images found in the markup.
type Summarizer interface {
	Summarize(html string, mediaRefs []string) (summary string, imageURL string)
}

// Dispatcher sends one push notification to the configured endpoint.
type Dispatcher interface {
	Send(ctx context.Context, n domain.Notification) error
}

// Scheduler controls when cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
