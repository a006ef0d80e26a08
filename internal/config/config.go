package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "RSS_BRIDGE_CONFIG"

	feedsDirEnv   = "CONFIG_DIR"
	ntfyURLEnv    = "NTFY_URL"
	ntfyTokenEnv  = "NTFY_TOKEN"
	ledgerPathEnv = "DB_PATH"
	timezoneEnv   = "TZ"
	userAgentEnv  = "USER_AGENT"
	intervalEnv   = "SYNC_INTERVAL"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds high-level settings required across the application.
type Config struct {
	Feeds     FeedsConfig     `yaml:"feeds"`
	Ntfy      NtfyConfig      `yaml:"ntfy"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// FeedsConfig describes where topic files live and per-source limits.
type FeedsConfig struct {
	Dir                  string `yaml:"dir"`
	DefaultPriority      int    `yaml:"defaultPriority"`
	MaxPerSourcePerCycle int    `yaml:"maxPerSourcePerCycle"`
}

// NtfyConfig wires all data required to reach the notification endpoint.
type NtfyConfig struct {
	BaseURL    string `yaml:"baseUrl"`
	Token      string `yaml:"token"`
	UserAgent  string `yaml:"userAgent"`
	Tag        string `yaml:"tag"`
	RatePerSec int    `yaml:"ratePerSec"`
}

// LedgerConfig describes the seen-entry SQLite file.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when cycles run. CronExpression, when set, takes
// precedence over the fixed interval.
type SchedulerConfig struct {
	IntervalSeconds int            `yaml:"intervalSeconds"`
	CronExpression  string         `yaml:"cronExpression"`
	Timezone        string         `yaml:"timezone"`
	location        *time.Location `yaml:"-"`
}

// Interval resolves the polling interval as a duration.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return 600 * time.Second
	}
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Location resolves the configured timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig controls log level and the optional log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(feedsDirEnv); v != "" {
		c.Feeds.Dir = v
	}

	if v := os.Getenv(ntfyURLEnv); v != "" {
		c.Ntfy.BaseURL = v
	}

	if v := os.Getenv(ntfyTokenEnv); v != "" {
		c.Ntfy.Token = v
	}

	if v := os.Getenv(userAgentEnv); v != "" {
		c.Ntfy.UserAgent = v
	}

	if v := os.Getenv(ledgerPathEnv); v != "" {
		c.Ledger.Path = v
	}

	if v := os.Getenv(timezoneEnv); v != "" {
		c.Scheduler.Timezone = v
	}

	if v := os.Getenv(intervalEnv); v != "" {
		if seconds, err := strconv.Atoi(v); err != nil {
			log.Printf("config: invalid %s=%q: %v", intervalEnv, v, err)
		} else {
			c.Scheduler.IntervalSeconds = seconds
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Feeds.Dir != "" {
		base.Feeds.Dir = override.Feeds.Dir
	}
	if override.Feeds.DefaultPriority != 0 {
		base.Feeds.DefaultPriority = override.Feeds.DefaultPriority
	}
	if override.Feeds.MaxPerSourcePerCycle != 0 {
		base.Feeds.MaxPerSourcePerCycle = override.Feeds.MaxPerSourcePerCycle
	}

	if override.Ntfy.BaseURL != "" {
		base.Ntfy.BaseURL = override.Ntfy.BaseURL
	}
	if override.Ntfy.Token != "" {
		base.Ntfy.Token = override.Ntfy.Token
	}
	if override.Ntfy.UserAgent != "" {
		base.Ntfy.UserAgent = override.Ntfy.UserAgent
	}
	if override.Ntfy.Tag != "" {
		base.Ntfy.Tag = override.Ntfy.Tag
	}
	if override.Ntfy.RatePerSec != 0 {
		base.Ntfy.RatePerSec = override.Ntfy.RatePerSec
	}

	if override.Ledger.Path != "" {
		base.Ledger.Path = override.Ledger.Path
	}

	if override.Scheduler.IntervalSeconds != 0 {
		base.Scheduler.IntervalSeconds = override.Scheduler.IntervalSeconds
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.File != "" {
		base.Logging.File = override.Logging.File
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Feeds: FeedsConfig{
			Dir:                  "configs",
			DefaultPriority:      3,
			MaxPerSourcePerCycle: 3,
		},
		Ntfy: NtfyConfig{
			BaseURL:    "https://ntfy.sh",
			UserAgent:  defaultUserAgent,
			Tag:        "newspaper",
			RatePerSec: 1,
		},
		Ledger:    LedgerConfig{Path: "rss_history.db"},
		Scheduler: SchedulerConfig{IntervalSeconds: 600, Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info", File: "rss_bridge.log"},
	}
}
