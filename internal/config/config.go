package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
//
// Environment variables override the YAML file. Names are the nested
// envconfig keys, e.g. DATA_SOURCE_API_KEY, CACHE_REDIS_ADDR, TELEGRAM_BOT_TOKEN.
type Config struct {
	Server struct {
		Addr string `yaml:"addr" envconfig:"ADDR"`
	} `yaml:"server" envconfig:"SERVER"`
	DataSource struct {
		Provider  string        `yaml:"provider" envconfig:"PROVIDER"` // alphavantage | yahoo | alpaca | file | mock
		APIKey    string        `yaml:"api_key" envconfig:"API_KEY"`
		APISecret string        `yaml:"api_secret" envconfig:"API_SECRET"`
		BaseURL   string        `yaml:"base_url" envconfig:"BASE_URL"`
		DataDir   string        `yaml:"data_dir" envconfig:"DATA_DIR"`
		Feed      string        `yaml:"feed" envconfig:"FEED"`
		Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
		Lookback  time.Duration `yaml:"lookback" envconfig:"LOOKBACK"`
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Game struct {
		MinDaysBack int   `yaml:"min_days_back" envconfig:"MIN_DAYS_BACK"`
		MaxDaysBack int   `yaml:"max_days_back" envconfig:"MAX_DAYS_BACK"`
		Seed        int64 `yaml:"seed" envconfig:"SEED"` // 0 seeds from the clock
	} `yaml:"game" envconfig:"GAME"`
	Cache struct {
		Backend    string        `yaml:"backend" envconfig:"BACKEND"` // sqlite | redis | none
		SQLitePath string        `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
		TTL        time.Duration `yaml:"ttl" envconfig:"TTL"`
		Redis      struct {
			Addr     string `yaml:"addr" envconfig:"ADDR"`
			Password string `yaml:"password" envconfig:"PASSWORD"`
			DB       int    `yaml:"db" envconfig:"DB"`
		} `yaml:"redis" envconfig:"REDIS"`
	} `yaml:"cache" envconfig:"CACHE"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   int64  `yaml:"chat_id" envconfig:"CHAT_ID"`
		APIBase  string `yaml:"api_base" envconfig:"API_BASE"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Schedule struct {
		PurgeCron   string        `yaml:"purge_cron" envconfig:"PURGE_CRON"`
		SweepCron   string        `yaml:"sweep_cron" envconfig:"SWEEP_CRON"`
		SessionIdle time.Duration `yaml:"session_idle" envconfig:"SESSION_IDLE"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads .env, then the YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "alphavantage"
	}
	if c.DataSource.DataDir == "" {
		c.DataSource.DataDir = "data/series"
	}
	if c.DataSource.Feed == "" {
		c.DataSource.Feed = "iex"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.Lookback == 0 {
		c.DataSource.Lookback = 400 * 24 * time.Hour
	}
	if c.Game.MinDaysBack == 0 && c.Game.MaxDaysBack == 0 {
		c.Game.MinDaysBack = 100
		c.Game.MaxDaysBack = 7
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "sqlite"
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "data/nextday.db"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 12 * time.Hour
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Schedule.PurgeCron == "" {
		c.Schedule.PurgeCron = "0 0 3 * * *"
	}
	if c.Schedule.SweepCron == "" {
		c.Schedule.SweepCron = "0 */5 * * * *"
	}
	if c.Schedule.SessionIdle == 0 {
		c.Schedule.SessionIdle = 30 * time.Minute
	}
}

// Validate checks that the fields required by the chosen backends are set.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "alphavantage":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for alphavantage")
		}
	case "alpaca":
		if c.DataSource.APIKey == "" || c.DataSource.APISecret == "" {
			return fmt.Errorf("data_source.api_key and data_source.api_secret are required for alpaca")
		}
	case "file":
		if c.DataSource.DataDir == "" {
			return fmt.Errorf("data_source.data_dir is required for file")
		}
	case "yahoo", "mock":
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if c.DataSource.Timeout <= 0 {
		return fmt.Errorf("data_source.timeout must be positive")
	}
	if c.Game.MaxDaysBack < 0 || c.Game.MinDaysBack <= c.Game.MaxDaysBack {
		return fmt.Errorf("game.min_days_back must be greater than game.max_days_back >= 0")
	}
	switch c.Cache.Backend {
	case "sqlite":
		if c.Cache.SQLitePath == "" {
			return fmt.Errorf("cache.sqlite_path is required for sqlite")
		}
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for redis")
		}
	case "none":
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Schedule.SessionIdle <= 0 {
		return fmt.Errorf("schedule.session_idle must be positive")
	}
	return nil
}
