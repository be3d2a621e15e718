package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = `
server:
  addr: ":9090"
data_source:
  provider: yahoo
  timeout: 5s
game:
  min_days_back: 60
  max_days_back: 5
  seed: 42
cache:
  backend: redis
  ttl: 1h
  redis:
    addr: "redis:6379"
    db: 2
telegram:
  bot_token: "from-file"
  chat_id: -100123
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.DataSource.Provider != "yahoo" || cfg.DataSource.Timeout != 5*time.Second {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Game.MinDaysBack != 60 || cfg.Game.MaxDaysBack != 5 || cfg.Game.Seed != 42 {
		t.Errorf("unexpected game section %+v", cfg.Game)
	}
	if cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 2 || cfg.Cache.TTL != time.Hour {
		t.Errorf("unexpected cache section %+v", cfg.Cache)
	}
	if cfg.Telegram.ChatID != -100123 {
		t.Errorf("unexpected chat id %d", cfg.Telegram.ChatID)
	}
	if cfg.Schedule.SweepCron != "0 */5 * * * *" || cfg.Schedule.SessionIdle != 30*time.Minute {
		t.Errorf("schedule defaults not applied: %+v", cfg.Schedule)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataSource.Provider != "alphavantage" || cfg.Game.MinDaysBack != 100 || cfg.Game.MaxDaysBack != 7 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "api_key") {
		t.Errorf("expected api_key error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "from-env")
	t.Setenv("DATA_SOURCE_PROVIDER", "alphavantage")
	t.Setenv("DATA_SOURCE_API_KEY", "demo")
	t.Setenv("CACHE_REDIS_ADDR", "cache:6380")
	t.Setenv("SCHEDULE_SESSION_IDLE", "10m")
	t.Setenv("HTTPS_PROXY", "http://proxy:3128")

	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"bot token", cfg.Telegram.BotToken, "from-env"},
		{"provider", cfg.DataSource.Provider, "alphavantage"},
		{"api key", cfg.DataSource.APIKey, "demo"},
		{"redis addr", cfg.Cache.Redis.Addr, "cache:6380"},
		{"session idle", cfg.Schedule.SessionIdle, 10 * time.Minute},
		{"proxy", cfg.Proxy, "http://proxy:3128"},
		{"untouched", cfg.Server.Addr, ":9090"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestLoad_BadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.DataSource.Provider = "mock"
		cfg.applyDefaults()
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "provider"},
		{"alpaca secret", func(c *Config) { c.DataSource.Provider = "alpaca"; c.DataSource.APIKey = "k" }, "api_secret"},
		{"window", func(c *Config) { c.Game.MinDaysBack = 5; c.Game.MaxDaysBack = 7 }, "min_days_back"},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"no cache", func(c *Config) { c.Cache.Backend = "none" }, ""},
		{"ttl", func(c *Config) { c.Cache.TTL = -time.Second }, "cache.ttl"},
		{"idle", func(c *Config) { c.Schedule.SessionIdle = -time.Second }, "session_idle"},
	}
	for _, tt := range tests {
		cfg := valid()
		tt.mutate(cfg)
		err := cfg.Validate()
		if tt.errMsg == "" {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.errMsg, err)
		}
	}
}
