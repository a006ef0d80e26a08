package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nurefexc/rss-bridge-ntfy/internal/domain"
	"github.com/nurefexc/rss-bridge-ntfy/internal/ports"
)

// Fetcher retrieves RSS/Atom documents and normalizes their entries. Entry
// order is preserved as given by the feed document.
type Fetcher struct {
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets a bounded 30s timeout.
// Some sites block generic bots, so callers usually pass a browser-like UA.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		client:    client,
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
	}
}

// Fetch downloads and parses one feed URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]domain.FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]domain.FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, normalizeItem(item))
	}

	return entries, nil
}

func normalizeItem(item *gofeed.Item) domain.FeedEntry {
	entry := domain.FeedEntry{
		GUID:  item.GUID,
		Title: item.Title,
		Link:  item.Link,
	}

	if item.PublishedParsed != nil {
		entry.Published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		entry.Published = *item.UpdatedParsed
	}

	entry.PublishedText = item.Published
	if entry.PublishedText == "" {
		entry.PublishedText = item.Updated
	}

	entry.Content = item.Content
	if entry.Content == "" {
		entry.Content = item.Description
	}

	entry.MediaRefs = mediaRefs(item)

	return entry
}

// mediaRefs collects candidate lead images: Media RSS content first, then
// enclosures, then the item's own image.
func mediaRefs(item *gofeed.Item) []string {
	var refs []string

	if media, ok := item.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if u := content.Attrs["url"]; u != "" {
				refs = append(refs, u)
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" {
			refs = append(refs, enc.URL)
		}
	}

	if item.Image != nil && item.Image.URL != "" {
		refs = append(refs, item.Image.URL)
	}

	return refs
}
