package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds the whole application configuration. Defaults target the
// Binance USDT-M futures testnet; a config file is optional and environment
// variables override both.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		Binance struct {
			WSURL     string `yaml:"ws_url"`
			RestURL   string `yaml:"rest_url"`
			APIKey    string `yaml:"api_key"`
			SecretKey string `yaml:"secret_key"`
		} `yaml:"binance"`
	} `yaml:"api"`

	Feed struct {
		PingIntervalSec   int `yaml:"ping_interval_sec"`
		PingTimeoutSec    int `yaml:"ping_timeout_sec"`
		MaxRetryCount     int `yaml:"max_retry_count"`
		RetryBaseDelaySec int `yaml:"retry_base_delay_sec"`
		RetryMaxDelaySec  int `yaml:"retry_max_delay_sec"`
	} `yaml:"feed"`

	Trading TradingConfig `yaml:"trading"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`

	Ops struct {
		Addr string `yaml:"addr"` // pprof + /metrics listener, localhost only
	} `yaml:"ops"`
}

// DefaultConfig returns the testnet reference configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "futures-trading-strategy"
	cfg.App.Version = "dev"

	cfg.API.Binance.WSURL = "wss://stream.binancefuture.com"
	cfg.API.Binance.RestURL = "https://testnet.binancefuture.com"

	cfg.Feed.PingIntervalSec = 20
	cfg.Feed.PingTimeoutSec = 20
	cfg.Feed.MaxRetryCount = 6
	cfg.Feed.RetryBaseDelaySec = 2
	cfg.Feed.RetryMaxDelaySec = 30

	cfg.Trading.Symbol = "BTCUSDT"
	cfg.Trading.Quantities = []string{"0.004", "0.005", "0.006", "0.007"}
	cfg.Trading.BuyRatio = 0.95
	cfg.Trading.SellRatio = 1.05
	cfg.Trading.PricePrecision = 1
	cfg.Trading.CancelThreshold = 5
	cfg.Trading.CancelPauseSec = 2
	cfg.Trading.MinWaitSec = 3
	cfg.Trading.MaxWaitSec = 7
	cfg.Trading.StaleAfterSec = 10

	cfg.Logging.Level = "info"
	cfg.Ops.Addr = "localhost:6060"
	return cfg
}

// LoadConfig reads the optional config file on top of the defaults, applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overrideWithEnv applies environment variables on top of the file values.
// Credentials belong in the environment, never in the config file.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("BINANCE_API_KEY"); key != "" {
		cfg.API.Binance.APIKey = key
	}
	if secret := os.Getenv("BINANCE_API_SECRET"); secret != "" {
		cfg.API.Binance.SecretKey = secret
	}
	if ws := os.Getenv("WS_BASE"); ws != "" {
		cfg.API.Binance.WSURL = ws
	}
	if rest := os.Getenv("REST_BASE"); rest != "" {
		cfg.API.Binance.RestURL = rest
	}
	if symbol := os.Getenv("SYMBOL"); symbol != "" {
		cfg.Trading.Symbol = strings.ToUpper(symbol)
	}
}

// Validate checks configuration validity. Credential and shape errors are
// fatal at startup; nothing here is recoverable mid-run.
func (c *Config) Validate() error {
	b := &c.API.Binance
	if !strings.HasPrefix(b.WSURL, "ws://") && !strings.HasPrefix(b.WSURL, "wss://") {
		return fmt.Errorf("invalid Binance WS URL: %s", b.WSURL)
	}
	if !strings.HasPrefix(b.RestURL, "http://") && !strings.HasPrefix(b.RestURL, "https://") {
		return fmt.Errorf("invalid Binance REST URL: %s", b.RestURL)
	}
	if b.APIKey == "" || b.SecretKey == "" {
		return fmt.Errorf("BINANCE_API_KEY / BINANCE_API_SECRET are required")
	}

	t := &c.Trading
	if t.Symbol == "" {
		return fmt.Errorf("trading symbol is required")
	}
	if len(t.Quantities) == 0 {
		return fmt.Errorf("at least one order quantity is required")
	}
	if _, err := t.ParsedQuantities(); err != nil {
		return err
	}
	if !(t.BuyRatio < 1 && 1 < t.SellRatio) {
		return fmt.Errorf("ratios must satisfy buy_ratio < 1 < sell_ratio, got %v / %v",
			t.BuyRatio, t.SellRatio)
	}
	if t.PricePrecision < 0 {
		return fmt.Errorf("price precision must be >= 0")
	}
	if t.CancelThreshold <= 0 {
		return fmt.Errorf("cancel threshold must be positive")
	}
	if t.MinWaitSec <= 0 || t.MaxWaitSec < t.MinWaitSec {
		return fmt.Errorf("wait interval must satisfy 0 < min <= max, got [%d, %d]",
			t.MinWaitSec, t.MaxWaitSec)
	}

	f := &c.Feed
	if f.PingIntervalSec <= 0 || f.PingTimeoutSec <= 0 {
		return fmt.Errorf("feed ping interval and timeout must be positive")
	}
	if f.MaxRetryCount <= 0 || f.RetryBaseDelaySec <= 0 || f.RetryMaxDelaySec <= 0 {
		return fmt.Errorf("feed retry parameters must be positive")
	}

	return nil
}

// TradingConfig drives the decision loop and the cancel sweep policy.
type TradingConfig struct {
	Symbol          string   `yaml:"symbol"`
	Quantities      []string `yaml:"quantities"`
	BuyRatio        float64  `yaml:"buy_ratio"`
	SellRatio       float64  `yaml:"sell_ratio"`
	PricePrecision  int      `yaml:"price_precision"`
	CancelThreshold int      `yaml:"cancel_threshold"`
	CancelPauseSec  int      `yaml:"cancel_pause_sec"`
	MinWaitSec      int      `yaml:"min_wait_sec"`
	MaxWaitSec      int      `yaml:"max_wait_sec"`
	StaleAfterSec   int      `yaml:"stale_after_sec"`
}

// ParsedQuantities returns the quantity pool as decimals, preserving the
// exact string representation given in the config.
func (t *TradingConfig) ParsedQuantities() ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, 0, len(t.Quantities))
	for _, q := range t.Quantities {
		d, err := decimal.NewFromString(q)
		if err != nil || d.Sign() <= 0 {
			return nil, fmt.Errorf("invalid order quantity %q", q)
		}
		out = append(out, d)
	}
	return out, nil
}

// FeedBackoff builds the reconnect policy from the feed settings.
func (c *Config) FeedBackoff() Backoff {
	return Backoff{
		Base:        time.Duration(c.Feed.RetryBaseDelaySec) * time.Second,
		Cap:         time.Duration(c.Feed.RetryMaxDelaySec) * time.Second,
		MaxAttempts: c.Feed.MaxRetryCount,
	}
}
