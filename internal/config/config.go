package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Market data providers.
const (
	ProviderYahoo  = "yahoo"
	ProviderREST   = "rest"
	ProviderStatic = "static"
)

// maxSeriesDays matches the longest window the series aggregator serves.
const maxSeriesDays = 1827

// Config holds all application configuration.
type Config struct {
	Storage struct {
		HoldingsFile  string `yaml:"holdings_file"`
		WatchlistFile string `yaml:"watchlist_file"`
	} `yaml:"storage"`
	MarketData struct {
		Provider  string        `yaml:"provider"`
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		Timeout   time.Duration `yaml:"timeout"`
		RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables
	} `yaml:"market_data"`
	Cache struct {
		QuoteTTL   time.Duration `yaml:"quote_ttl"`
		HistoryTTL time.Duration `yaml:"history_ttl"`
		MaxItems   int           `yaml:"max_items"`
	} `yaml:"cache"`
	Valuation struct {
		Location   string `yaml:"location"`
		SeriesDays int    `yaml:"series_days"`
	} `yaml:"valuation"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		SnapshotCron string `yaml:"snapshot_cron"`
		AlertCron    string `yaml:"alert_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr           string        `yaml:"addr"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// PathFromEnv returns CONFIG_PATH or DefaultPath.
func PathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
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

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Storage.HoldingsFile, "HOLDINGS_FILE")
	setString(&c.Storage.WatchlistFile, "WATCHLIST_FILE")
	setString(&c.MarketData.Provider, "MARKET_DATA_PROVIDER")
	setString(&c.MarketData.BaseURL, "MARKET_DATA_BASE_URL")
	setString(&c.MarketData.APIKey, "MARKET_DATA_API_KEY")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Schedule.SnapshotCron, "CRON_SNAPSHOT")
	setString(&c.Schedule.AlertCron, "CRON_ALERT")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Valuation.Location, "VALUATION_LOCATION")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Proxy, "HTTPS_PROXY")

	if v := os.Getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if err := setDuration(&c.Cache.QuoteTTL, "QUOTE_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.Cache.HistoryTTL, "HISTORY_TTL"); err != nil {
		return err
	}
	if v := os.Getenv("MARKET_DATA_RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MARKET_DATA_RATE_LIMIT: %w", err)
		}
		c.MarketData.RateLimit = rps
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Storage.HoldingsFile == "" {
		c.Storage.HoldingsFile = "data/portfolio.json"
	}
	if c.Storage.WatchlistFile == "" {
		c.Storage.WatchlistFile = "data/watchlist.json"
	}
	if c.MarketData.Provider == "" {
		c.MarketData.Provider = ProviderYahoo
	}
	c.MarketData.Provider = strings.ToLower(c.MarketData.Provider)
	if c.MarketData.Timeout == 0 {
		c.MarketData.Timeout = 30 * time.Second
	}
	if c.MarketData.RateLimit == 0 && c.MarketData.Provider == ProviderYahoo {
		c.MarketData.RateLimit = 4
	}
	if c.Cache.QuoteTTL == 0 {
		c.Cache.QuoteTTL = 30 * time.Second
	}
	if c.Cache.HistoryTTL == 0 {
		c.Cache.HistoryTTL = 300 * time.Second
	}
	if c.Cache.MaxItems == 0 {
		c.Cache.MaxItems = 5000
	}
	if c.Valuation.Location == "" {
		c.Valuation.Location = "Asia/Kolkata"
	}
	if c.Valuation.SeriesDays == 0 {
		c.Valuation.SeriesDays = 180
	}
	if c.Schedule.SnapshotCron == "" {
		// 16:00 IST after the NSE close, weekdays
		c.Schedule.SnapshotCron = "0 0 16 * * 1-5"
	}
	if c.Schedule.AlertCron == "" {
		c.Schedule.AlertCron = "0 */5 9-15 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 60 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	switch c.MarketData.Provider {
	case ProviderYahoo, ProviderStatic:
	case ProviderREST:
		if c.MarketData.BaseURL == "" {
			return fmt.Errorf("market_data.base_url is required for provider %q", ProviderREST)
		}
	default:
		return fmt.Errorf("market_data.provider %q is not one of yahoo, rest, static", c.MarketData.Provider)
	}
	if c.MarketData.RateLimit < 0 {
		return fmt.Errorf("market_data.rate_limit must not be negative")
	}
	if c.Cache.QuoteTTL < 0 || c.Cache.HistoryTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if c.Cache.MaxItems < 0 {
		return fmt.Errorf("cache.max_items must not be negative")
	}
	if c.Valuation.SeriesDays < 0 || c.Valuation.SeriesDays > maxSeriesDays {
		return fmt.Errorf("valuation.series_days must be between 1 and %d", maxSeriesDays)
	}
	if _, err := time.LoadLocation(c.Valuation.Location); err != nil {
		return fmt.Errorf("valuation.location: %w", err)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
