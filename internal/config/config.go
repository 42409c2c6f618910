package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"StockLens/internal/profile"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider" default:"yahoo" validate:"oneof=yahoo rest mock"`
		BaseURL  string `yaml:"base_url" validate:"required_if=Provider rest"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Profile   string   `yaml:"profile" default:"advanced"`
	Strict    bool     `yaml:"strict"`
	Watchlist []string `yaml:"watchlist" default:"[\"SPY\",\"AAPL\",\"MSFT\"]" validate:"dive,required"`
	Schedule  struct {
		ScanCron         string `yaml:"scan_cron" default:"0 30 16 * * 1-5"`
		WarmCron         string `yaml:"warm_cron" default:"0 0 9 * * 1-5"`
		SessionPruneCron string `yaml:"session_prune_cron" default:"0 0 * * * *"`
	} `yaml:"schedule"`
	Collector struct {
		Concurrency int `yaml:"concurrency" default:"4" validate:"min=1,max=32"`
	} `yaml:"collector"`
	Cache struct {
		TTL             time.Duration `yaml:"ttl" default:"5m" validate:"gt=0"`
		MemoryTTL       time.Duration `yaml:"memory_ttl" default:"1m" validate:"gt=0"`
		MaxSize         int           `yaml:"max_size" default:"512" validate:"min=1"`
		CleanupInterval time.Duration `yaml:"cleanup_interval" default:"5m" validate:"gt=0"`
		RedisAddr       string        `yaml:"redis_addr"`
		RedisPassword   string        `yaml:"redis_password"`
		RedisDB         int           `yaml:"redis_db" validate:"min=0"`
		RedisPrefix     string        `yaml:"redis_prefix" default:"stocklens"`
	} `yaml:"cache"`
	Sessions struct {
		StateFile string        `yaml:"state_file" default:"data/sessions.json"`
		MaxIdle   time.Duration `yaml:"max_idle" default:"168h" validate:"gt=0"`
	} `yaml:"sessions"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" default:"data/stocklens.db"`
	} `yaml:"database"`
	HTTP struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Proxy      string `yaml:"proxy"`
	RunOnStart bool   `yaml:"run_on_start"`
}

// Path returns CONFIG_PATH or the default location.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then fills defaults.
func Load(path string) (*Config, error) {
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

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	for i, sym := range cfg.Watchlist {
		cfg.Watchlist[i] = strings.ToUpper(strings.TrimSpace(sym))
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("REST_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("REST_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("STOCKLENS_PROFILE"); v != "" {
		c.Profile = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = nil
		for _, sym := range strings.Split(v, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				c.Watchlist = append(c.Watchlist, sym)
			}
		}
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse HTTP_PORT %q: %w", v, err)
		}
		c.HTTP.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		c.RunOnStart = v == "true" || v == "1"
	}
	return nil
}

// Validate checks field constraints, the profile name and every cron spec.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if _, err := profile.Lookup(c.Profile); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	var errs []error
	for name, spec := range map[string]string{
		"schedule.scan_cron":          c.Schedule.ScanCron,
		"schedule.warm_cron":          c.Schedule.WarmCron,
		"schedule.session_prune_cron": c.Schedule.SessionPruneCron,
	} {
		if _, err := parser.Parse(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", name, spec, err))
		}
	}
	return errors.Join(errs...)
}

// TelegramEnabled reports whether bot credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ResolveProfile returns the configured indicator profile with the strict flag applied.
func (c *Config) ResolveProfile() (profile.Profile, error) {
	p, err := profile.Lookup(c.Profile)
	if err != nil {
		return profile.Profile{}, err
	}
	return p.WithStrict(c.Strict), nil
}
