package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{"RSS_BRIDGE_CONFIG", "CONFIG_DIR", "NTFY_URL", "NTFY_TOKEN", "DB_PATH", "TZ", "USER_AGENT", "SYNC_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Ntfy.BaseURL != "https://ntfy.sh" {
		t.Fatalf("unexpected base url: %s", cfg.Ntfy.BaseURL)
	}
	if cfg.Feeds.Dir != "configs" {
		t.Fatalf("unexpected feeds dir: %s", cfg.Feeds.Dir)
	}
	if cfg.Feeds.DefaultPriority != 3 {
		t.Fatalf("unexpected default priority: %d", cfg.Feeds.DefaultPriority)
	}
	if cfg.Feeds.MaxPerSourcePerCycle != 3 {
		t.Fatalf("unexpected per-source cap: %d", cfg.Feeds.MaxPerSourcePerCycle)
	}
	if cfg.Scheduler.Interval() != 600*time.Second {
		t.Fatalf("unexpected interval: %s", cfg.Scheduler.Interval())
	}
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("unexpected location: %s", cfg.Scheduler.Location())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_DIR", "/tmp/feeds")
	t.Setenv("NTFY_URL", "https://push.example.org")
	t.Setenv("NTFY_TOKEN", "tk_secret")
	t.Setenv("DB_PATH", "/var/lib/bridge/history.db")
	t.Setenv("SYNC_INTERVAL", "120")

	cfg := Load()

	if cfg.Feeds.Dir != "/tmp/feeds" {
		t.Fatalf("feeds dir override ignored: %s", cfg.Feeds.Dir)
	}
	if cfg.Ntfy.BaseURL != "https://push.example.org" {
		t.Fatalf("ntfy url override ignored: %s", cfg.Ntfy.BaseURL)
	}
	if cfg.Ntfy.Token != "tk_secret" {
		t.Fatalf("token override ignored")
	}
	if cfg.Ledger.Path != "/var/lib/bridge/history.db" {
		t.Fatalf("ledger path override ignored: %s", cfg.Ledger.Path)
	}
	if cfg.Scheduler.Interval() != 2*time.Minute {
		t.Fatalf("interval override ignored: %s", cfg.Scheduler.Interval())
	}
}

func TestFileConfigMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
ntfy:
  baseUrl: https://ntfy.internal
  ratePerSec: 5
scheduler:
  intervalSeconds: 300
  timezone: Europe/Berlin
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RSS_BRIDGE_CONFIG", path)

	cfg := Load()

	if cfg.Ntfy.BaseURL != "https://ntfy.internal" {
		t.Fatalf("file base url ignored: %s", cfg.Ntfy.BaseURL)
	}
	if cfg.Ntfy.RatePerSec != 5 {
		t.Fatalf("file rate ignored: %d", cfg.Ntfy.RatePerSec)
	}
	if cfg.Scheduler.Interval() != 5*time.Minute {
		t.Fatalf("file interval ignored: %s", cfg.Scheduler.Interval())
	}
	if cfg.Scheduler.Location().String() != "Europe/Berlin" {
		t.Fatalf("file timezone ignored: %s", cfg.Scheduler.Location())
	}
	// untouched sections keep defaults
	if cfg.Ledger.Path != "rss_history.db" {
		t.Fatalf("default ledger path lost: %s", cfg.Ledger.Path)
	}
}

func TestUnknownTimezoneFallsBack(t *testing.T) {
	t.Setenv("TZ", "Not/AZone")

	cfg := Load()
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("expected UTC fallback, got %s", cfg.Scheduler.Location())
	}
}
