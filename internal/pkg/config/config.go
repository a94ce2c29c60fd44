package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Browser  BrowserConfig  `yaml:"browser"`
	Study    StudyConfig    `yaml:"study"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type SiteConfig struct {
	BaseURL   string `yaml:"base_url"` // H2H, live and main pages host
	UserAgent string `yaml:"user_agent"`
}

type FetchConfig struct {
	Timeout           time.Duration     `yaml:"timeout"`
	MaxRetries        int               `yaml:"max_retries"`
	BackoffInitial    time.Duration     `yaml:"backoff_initial"`
	BackoffMax        time.Duration     `yaml:"backoff_max"`
	RequestsPerSecond float64           `yaml:"requests_per_second"`
	Burst             int               `yaml:"burst"`
	Headers           map[string]string `yaml:"headers"`
}

type BrowserConfig struct {
	Headless          bool          `yaml:"headless"`
	ExecPath          string        `yaml:"exec_path"` // Empty: chromedp finds Chrome itself
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SelectTimeout     time.Duration `yaml:"select_timeout"` // Wait for each hSelect_N dropdown
	DisableImages     bool          `yaml:"disable_images"`
}

type StudyConfig struct {
	MaxWorkers    int           `yaml:"max_workers"`
	Timeout       time.Duration `yaml:"timeout"` // Whole study, all phases
	UpcomingLimit int           `yaml:"upcoming_limit"`
}

type CacheConfig struct {
	Backend    string        `yaml:"backend"` // "memory", "redis" or "none"
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"` // DEBUG, INFO, WARN, ERROR
	File       string `yaml:"file"`  // JSON log file; empty disables the file sink
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type TelegramConfig struct {
	Enabled        bool          `yaml:"enabled"`
	BotToken       string        `yaml:"bot_token"`
	AllowedChatIDs []int64       `yaml:"allowed_chat_ids"` // Empty: answer everyone
	SendInterval   time.Duration `yaml:"send_interval"`
	PollTimeout    int           `yaml:"poll_timeout"` // Seconds, long polling
}

// Load reads the YAML config at configPath, applies .env and environment overrides, fills
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnv()
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return &config, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	loadDotEnv()
	var config Config
	config.Browser.Headless = true
	config.Browser.DisableImages = true
	config.applyEnv()
	config.ApplyDefaults()
	return &config
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NOWGOAL_BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ApplyDefaults fills every zero value that has a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = "https://live18.nowgoal25.com"
	}
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")
	if c.Site.UserAgent == "" {
		c.Site.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36"
	}

	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 10 * time.Second
	}
	if c.Fetch.MaxRetries == 0 {
		c.Fetch.MaxRetries = 3
	}
	if c.Fetch.BackoffInitial == 0 {
		c.Fetch.BackoffInitial = 500 * time.Millisecond
	}
	if c.Fetch.BackoffMax == 0 {
		c.Fetch.BackoffMax = 5 * time.Second
	}
	if c.Fetch.RequestsPerSecond == 0 {
		c.Fetch.RequestsPerSecond = 4
	}
	if c.Fetch.Burst == 0 {
		c.Fetch.Burst = 4
	}

	if c.Browser.NavigationTimeout == 0 {
		c.Browser.NavigationTimeout = 15 * time.Second
	}
	if c.Browser.SelectTimeout == 0 {
		c.Browser.SelectTimeout = 2 * time.Second
	}

	if c.Study.MaxWorkers == 0 {
		c.Study.MaxWorkers = 8
	}
	if c.Study.Timeout == 0 {
		c.Study.Timeout = 90 * time.Second
	}
	if c.Study.UpcomingLimit == 0 {
		c.Study.UpcomingLimit = 20
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 512
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Cache.Redis.KeyPrefix == "" {
		c.Cache.Redis.KeyPrefix = "estudio:"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 2 * time.Minute
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = 50
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = 5
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = 14
	}

	if c.Telegram.SendInterval == 0 {
		c.Telegram.SendInterval = 2 * time.Second
	}
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = 60
	}
}

// Validate reports every invalid value at once.
func (c *Config) Validate() error {
	var errs []error
	if !strings.HasPrefix(c.Site.BaseURL, "http://") && !strings.HasPrefix(c.Site.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("site.base_url must be an http(s) URL, got %q", c.Site.BaseURL))
	}
	if c.Fetch.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_retries must not be negative"))
	}
	if c.Fetch.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("fetch.requests_per_second must not be negative"))
	}
	if c.Study.MaxWorkers < 1 {
		errs = append(errs, fmt.Errorf("study.max_workers must be at least 1"))
	}
	if c.Study.UpcomingLimit < 1 {
		errs = append(errs, fmt.Errorf("study.upcoming_limit must be at least 1"))
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be memory, redis or none, got %q", c.Cache.Backend))
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not a log level", c.Logging.Level))
	}
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		errs = append(errs, fmt.Errorf("telegram.bot_token is required when telegram is enabled (or set TELEGRAM_BOT_TOKEN)"))
	}
	return errors.Join(errs...)
}
