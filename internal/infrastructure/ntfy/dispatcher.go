package ntfy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nurefexc/rss-bridge-ntfy/internal/config"
	"github.com/nurefexc/rss-bridge-ntfy/internal/delay"
	"github.com/nurefexc/rss-bridge-ntfy/internal/domain"
	"github.com/nurefexc/rss-bridge-ntfy/internal/ports"
)

// Dispatcher posts notifications to an ntfy server, one request per entry.
// The topic acts as the routing channel: POST {base_url}/{topic}.
type Dispatcher struct {
	baseURL   string
	token     string
	userAgent string
	tag       string
	client    *http.Client
	limiter   *rate.Limiter
	loc       *time.Location
}

var _ ports.Dispatcher = (*Dispatcher)(nil)

// NewDispatcher builds a dispatcher from configuration. Outbound posts are
// rate limited so a large cycle cannot hammer the endpoint.
func NewDispatcher(cfg config.NtfyConfig, loc *time.Location) *Dispatcher {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		tag:       cfg.Tag,
		client:    &http.Client{Timeout: 20 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(rps), rps),
		loc:       loc,
	}
}

// Send posts one notification. Exactly one outbound call; any transport or
// non-2xx failure is returned for the caller to log.
func (d *Dispatcher) Send(ctx context.Context, n domain.Notification) error {
	if d.baseURL == "" || n.Topic == "" {
		return fmt.Errorf("ntfy dispatcher misconfigured")
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	localDate := d.formatPublished(n)
	message := fmt.Sprintf("**Source:** %s\n**Local Time:** %s\n\n%s\n\n[Read on Website](%s)",
		n.SourceName, localDate, n.Summary, n.Link)

	endpoint := d.baseURL + "/" + url.PathEscape(n.Topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Title", sanitizeHeader(n.Title))
	req.Header.Set("Click", n.Link)
	req.Header.Set("Markdown", "yes")
	req.Header.Set("Tags", d.tag)
	req.Header.Set("Priority", strconv.Itoa(n.Priority))
	req.Header.Set("X-Publish-Date", localDate)

	if token := delay.Token(n.Delay); token != "" {
		req.Header.Set("Delay", token)
	}
	if n.Icon != "" {
		req.Header.Set("Icon", n.Icon)
	}
	if n.ImageURL != "" {
		req.Header.Set("Attach", n.ImageURL)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("ntfy error %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}

func (d *Dispatcher) formatPublished(n domain.Notification) string {
	if !n.PublishedAt.IsZero() {
		return n.PublishedAt.In(d.loc).Format("2006-01-02 15:04:05")
	}
	if n.PublishedText != "" {
		return n.PublishedText
	}
	return "Unknown date"
}

// sanitizeHeader keeps multi-line titles from corrupting the request.
func sanitizeHeader(v string) string {
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.TrimSpace(v)
}
