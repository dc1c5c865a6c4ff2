package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full configuration for both binaries. Each binary
// validates only the sections it needs.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Lmstfy  LmstfyConfig  `mapstructure:"lmstfy"`
	Shopify ShopifyConfig `mapstructure:"shopify"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Posting PostingConfig `mapstructure:"posting"`
	Worker  WorkerConfig  `mapstructure:"worker"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
	Queue     string `mapstructure:"queue"`
}

// ShopifyConfig covers the order source: the admin API for re-fetching
// orders and the shared secret for webhook signatures.
type ShopifyConfig struct {
	ShopDomain    string `mapstructure:"shop_domain"`
	AccessToken   string `mapstructure:"access_token"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	APIVersion    string `mapstructure:"api_version"`
}

// LedgerConfig covers the remote ledger API client.
type LedgerConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	APIKey          string        `mapstructure:"api_key"`
	RateLimitPerMin int           `mapstructure:"rate_limit_per_min"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
}

// PostingConfig holds the accounting parameters for building postings.
// Amounts are minor units, rates are fractions (0.25 = 25%).
type PostingConfig struct {
	VATRate         float64 `mapstructure:"vat_rate"`
	VATCode         string  `mapstructure:"vat_code"`
	SalesAccount    string  `mapstructure:"sales_account"`
	ShippingAccount string  `mapstructure:"shipping_account"`
	BankAccount     string  `mapstructure:"bank_account"`
	FeeAccount      string  `mapstructure:"fee_account"`
	FeePercent      float64 `mapstructure:"fee_percent"`
	FeeFixedMinor   int64   `mapstructure:"fee_fixed_minor"`
	Currency        string  `mapstructure:"currency"`
}

// WorkerConfig drives the subscriber/processor pipeline.
type WorkerConfig struct {
	Name        string           `mapstructure:"name"`
	MaxAttempts int              `mapstructure:"max_attempts"`
	Subscriber  SubscriberConfig `mapstructure:"subscriber"`
	Processor   ProcessorConfig  `mapstructure:"processor"`
}

type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`
	Rate         time.Duration `mapstructure:"rate"`
	Timeout      time.Duration `mapstructure:"timeout"`
	TTR          time.Duration `mapstructure:"ttr"`
	ErrorBackoff time.Duration `mapstructure:"error_backoff"`
}

type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`
	BufferSize int           `mapstructure:"buffer_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Load reads a YAML config file into Config.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Lmstfy.Queue == "" {
		cfg.Lmstfy.Queue = "ledgersync"
	}
	if cfg.Ledger.RateLimitPerMin <= 0 {
		cfg.Ledger.RateLimitPerMin = 10
	}
	if cfg.Ledger.Timeout <= 0 {
		cfg.Ledger.Timeout = 30 * time.Second
	}
	if cfg.Ledger.MaxRetries <= 0 {
		cfg.Ledger.MaxRetries = 3
	}
	if cfg.Posting.VATRate == 0 {
		cfg.Posting.VATRate = 0.25
	}
	if cfg.Posting.Currency == "" {
		cfg.Posting.Currency = "NOK"
	}
	if cfg.Worker.MaxAttempts <= 0 {
		cfg.Worker.MaxAttempts = 3
	}
	// The remote ledger offers no cross-call isolation, so overlapping
	// business keys must never be processed concurrently. One thread each.
	if cfg.Worker.Subscriber.Threads <= 0 {
		cfg.Worker.Subscriber.Threads = 1
	}
	if cfg.Worker.Processor.Threads <= 0 {
		cfg.Worker.Processor.Threads = 1
	}
	if cfg.Worker.Processor.BufferSize <= 0 {
		cfg.Worker.Processor.BufferSize = 1
	}
	if cfg.Worker.Processor.Timeout <= 0 {
		cfg.Worker.Processor.Timeout = 5 * time.Minute
	}
	if cfg.Worker.Subscriber.Timeout <= 0 {
		cfg.Worker.Subscriber.Timeout = 3 * time.Second
	}
	if cfg.Worker.Subscriber.TTR <= 0 {
		cfg.Worker.Subscriber.TTR = 10 * time.Minute
	}
	if cfg.Worker.Subscriber.ErrorBackoff <= 0 {
		cfg.Worker.Subscriber.ErrorBackoff = 2 * time.Second
	}
}

// ValidateServer checks the sections the API server depends on.
func (c *Config) ValidateServer() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if c.Shopify.WebhookSecret == "" {
		return fmt.Errorf("shopify.webhook_secret is required")
	}
	return nil
}

// ValidateWorker checks the sections the worker depends on.
func (c *Config) ValidateWorker() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if c.Shopify.ShopDomain == "" || c.Shopify.AccessToken == "" {
		return fmt.Errorf("shopify.shop_domain and shopify.access_token are required")
	}
	if c.Ledger.BaseURL == "" || c.Ledger.APIKey == "" {
		return fmt.Errorf("ledger.base_url and ledger.api_key are required")
	}
	if c.Posting.SalesAccount == "" || c.Posting.BankAccount == "" {
		return fmt.Errorf("posting.sales_account and posting.bank_account are required")
	}
	return nil
}
