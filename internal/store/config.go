package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultBaseURL        = "http://localhost:8080/api"
	defaultTimeoutSeconds = 10
	defaultOrderFee       = "9.99"
	defaultDebounceMs     = 500
	defaultStaleSeconds   = 30
)

type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		TokenEnv       string `yaml:"token_env"`
	} `yaml:"api"`
	Trade struct {
		// OrderFee is a decimal string so the configured amount is exact.
		OrderFee   string `yaml:"order_fee"`
		DebounceMs int    `yaml:"debounce_ms"`
	} `yaml:"trade"`
	Cache struct {
		StaleSeconds int `yaml:"stale_seconds"`
	} `yaml:"cache"`

	fee decimal.Decimal
}

// Fee is the fixed order fee used for estimates. Only valid after Validate.
func (c *Config) Fee() decimal.Decimal {
	return c.fee
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Trade.DebounceMs) * time.Millisecond
}

func (c *Config) StaleTime() time.Duration {
	return time.Duration(c.Cache.StaleSeconds) * time.Second
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url '%s': must be an absolute URL", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", c.API.TimeoutSeconds)
	}
	fee, err := decimal.NewFromString(c.Trade.OrderFee)
	if err != nil {
		return fmt.Errorf("invalid trade.order_fee '%s': %w", c.Trade.OrderFee, err)
	}
	if fee.IsNegative() {
		return errors.New("trade.order_fee cannot be negative")
	}
	c.fee = fee
	if c.Trade.DebounceMs < 0 {
		return fmt.Errorf("trade.debounce_ms cannot be negative, got %d", c.Trade.DebounceMs)
	}
	if c.Cache.StaleSeconds < 0 {
		return fmt.Errorf("cache.stale_seconds cannot be negative, got %d", c.Cache.StaleSeconds)
	}
	return nil
}

// Token reads the session bearer token from the configured environment variable.
func (c *Config) Token() string {
	return os.Getenv(c.API.TokenEnv)
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	var c Config
	applyDefaults(&c)
	_ = c.Validate()
	return &c
}

func applyDefaults(c *Config) {
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaultBaseURL
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.API.TokenEnv == "" {
		c.API.TokenEnv = "DAYTRADER_TOKEN"
	}
	if c.Trade.OrderFee == "" {
		c.Trade.OrderFee = defaultOrderFee
	}
	if c.Trade.DebounceMs == 0 {
		c.Trade.DebounceMs = defaultDebounceMs
	}
	if c.Cache.StaleSeconds == 0 {
		c.Cache.StaleSeconds = defaultStaleSeconds
	}
}

// LoadConfig reads path and applies defaults. A missing file yields the
// defaults. DAYTRADER_BASE_URL overrides api.base_url.
func LoadConfig(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("DAYTRADER_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
