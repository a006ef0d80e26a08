package ntfy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nurefexc/rss-bridge-ntfy/internal/config"
	"github.com/nurefexc/rss-bridge-ntfy/internal/domain"
)

func testNotification() domain.Notification {
	return domain.Notification{
		Topic:       "world-news",
		SourceName:  "Example Times",
		Title:       "Big Story",
		Link:        "https://example.org/post/1",
		Summary:     "Something happened.",
		ImageURL:    "https://example.org/lead.jpg",
		Icon:        "https://example.org/icon.png",
		Priority:    3,
		Delay:       5 * time.Minute,
		PublishedAt: time.Date(2025, time.November, 8, 10, 0, 0, 0, time.UTC),
	}
}

func TestSendBuildsRequest(t *testing.T) {
	t.Parallel()

	var (
		gotPath    string
		gotHeaders http.Header
		gotBody    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	d := NewDispatcher(config.NtfyConfig{
		BaseURL:    server.URL,
		Token:      "tk_secret",
		UserAgent:  "bridge-test/1.0",
		Tag:        "newspaper",
		RatePerSec: 100,
	}, loc)

	if err := d.Send(context.Background(), testNotification()); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if gotPath != "/world-news" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotHeaders.Get("Authorization") != "Bearer tk_secret" {
		t.Fatalf("missing bearer token")
	}
	if gotHeaders.Get("Title") != "Big Story" {
		t.Fatalf("unexpected title header: %s", gotHeaders.Get("Title"))
	}
	if gotHeaders.Get("Click") != "https://example.org/post/1" {
		t.Fatalf("unexpected click header")
	}
	if gotHeaders.Get("Markdown") != "yes" {
		t.Fatalf("markdown flag missing")
	}
	if gotHeaders.Get("Tags") != "newspaper" {
		t.Fatalf("unexpected tags header: %s", gotHeaders.Get("Tags"))
	}
	if gotHeaders.Get("Priority") != "3" {
		t.Fatalf("unexpected priority header: %s", gotHeaders.Get("Priority"))
	}
	if gotHeaders.Get("Delay") != "5m" {
		t.Fatalf("unexpected delay header: %s", gotHeaders.Get("Delay"))
	}
	if gotHeaders.Get("Icon") != "https://example.org/icon.png" {
		t.Fatalf("icon header missing")
	}
	if gotHeaders.Get("Attach") != "https://example.org/lead.jpg" {
		t.Fatalf("attach header missing")
	}
	// 10:00 UTC is 11:00 in Berlin in November
	if gotHeaders.Get("X-Publish-Date") != "2025-11-08 11:00:00" {
		t.Fatalf("unexpected publish date: %s", gotHeaders.Get("X-Publish-Date"))
	}

	if !strings.Contains(gotBody, "**Source:** Example Times") {
		t.Fatalf("body missing source line: %q", gotBody)
	}
	if !strings.Contains(gotBody, "**Local Time:** 2025-11-08 11:00:00") {
		t.Fatalf("body missing local time: %q", gotBody)
	}
	if !strings.Contains(gotBody, "[Read on Website](https://example.org/post/1)") {
		t.Fatalf("body missing link: %q", gotBody)
	}
}

func TestSendImmediateOmitsDelay(t *testing.T) {
	t.Parallel()

	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
	}))
	defer server.Close()

	d := NewDispatcher(config.NtfyConfig{BaseURL: server.URL, RatePerSec: 100}, time.UTC)

	n := testNotification()
	n.Delay = 0
	n.Priority = 5

	if err := d.Send(context.Background(), n); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if _, ok := gotHeaders["Delay"]; ok {
		t.Fatal("delay header should be absent for immediate sends")
	}
	if gotHeaders.Get("Priority") != "5" {
		t.Fatalf("unexpected priority: %s", gotHeaders.Get("Priority"))
	}
	if gotHeaders.Get("Authorization") != "" {
		t.Fatal("authorization header should be absent without a token")
	}
}

func TestSendPublishDateFallbacks(t *testing.T) {
	t.Parallel()

	var dates []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dates = append(dates, r.Header.Get("X-Publish-Date"))
	}))
	defer server.Close()

	d := NewDispatcher(config.NtfyConfig{BaseURL: server.URL, RatePerSec: 100}, time.UTC)

	n := testNotification()
	n.PublishedAt = time.Time{}
	n.PublishedText = "Sat, 08 Nov 2025 10:00:00 GMT"
	if err := d.Send(context.Background(), n); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	n.PublishedText = ""
	if err := d.Send(context.Background(), n); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	if dates[0] != "Sat, 08 Nov 2025 10:00:00 GMT" {
		t.Fatalf("raw date fallback lost: %s", dates[0])
	}
	if dates[1] != "Unknown date" {
		t.Fatalf("expected unknown-date sentinel, got %s", dates[1])
	}
}

func TestSendReportsEndpointRejection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	d := NewDispatcher(config.NtfyConfig{BaseURL: server.URL, RatePerSec: 100}, time.UTC)

	err := d.Send(context.Background(), testNotification())
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("error should carry status: %v", err)
	}
}
