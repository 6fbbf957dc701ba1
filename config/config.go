// Package config loads the service configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go-currency-exchange/ecb"
	"go-currency-exchange/money"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen          = ":8080"
	DefaultCacheTTL        = time.Minute
	DefaultRefreshInterval = 5 * time.Minute
	DefaultStartingBalance = "100"
	DefaultLogLevel        = "info"
)

// LogLevels accepted by log_level
var LogLevels = []string{"debug", "info", "warn", "error"}

type Config struct {
	// Listen address of the HTTP server
	Listen string
	// FeedURL of the ECB daily reference rates
	FeedURL string
	// FeedTimeout for one feed request
	FeedTimeout time.Duration
	// CacheTTL how long a fetched feed is reused
	CacheTTL time.Duration
	// RefreshInterval between background rate refreshes
	RefreshInterval time.Duration
	// StartingBalance held in every currency on startup
	StartingBalance money.Amount
	// LogLevel lowest level logged
	LogLevel string
}

type configTmp struct {
	Listen          string        `yaml:"listen"`
	FeedURL         string        `yaml:"feed_url"`
	FeedTimeout     time.Duration `yaml:"feed_timeout"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	StartingBalance string        `yaml:"starting_balance"`
	LogLevel        string        `yaml:"log_level"`
}

// Default the configuration used without a file
func Default() Config {
	c, err := fromTmp(configTmp{})
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads the YAML file at path. Missing keys take their defaults, an empty path gives
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, fmt.Errorf("parsing yaml config %s: %w", path, err)
	}
	return fromTmp(tmp)
}

func fromTmp(c configTmp) (Config, error) {
	config := Config{
		Listen:          c.Listen,
		FeedURL:         c.FeedURL,
		FeedTimeout:     c.FeedTimeout,
		CacheTTL:        c.CacheTTL,
		RefreshInterval: c.RefreshInterval,
		LogLevel:        strings.ToLower(c.LogLevel),
	}
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.FeedURL == "" {
		config.FeedURL = ecb.DailyRatesURL
	}
	if config.FeedTimeout == 0 {
		config.FeedTimeout = ecb.DefaultTimeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultLogLevel
	}

	if config.FeedTimeout < 0 || config.CacheTTL < 0 || config.RefreshInterval < 0 {
		return Config{}, fmt.Errorf("incorrect durations in yaml config, must not be negative")
	}
	if !validLevel(config.LogLevel) {
		return Config{}, fmt.Errorf("incorrect 'log_level' param in yaml config: %q, expected one of %s",
			c.LogLevel, strings.Join(LogLevels, ", "))
	}

	balance := c.StartingBalance
	if balance == "" {
		balance = DefaultStartingBalance
	}
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'starting_balance' param in yaml config (correct format is 100.50), error: %w", err)
	}
	config.StartingBalance, err = money.CheckedFromDecimal(d)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'starting_balance' param in yaml config, error: %w", err)
	}
	return config, nil
}

func validLevel(l string) bool {
	for _, level := range LogLevels {
		if l == level {
			return true
		}
	}
	return false
}
