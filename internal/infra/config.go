package infra

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

// Config holds every tunable of the simulation engine. Values from the yaml
// file are layered over defaults, then overridden by environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		Symbol         string  `yaml:"symbol"`
		StartPrice     float64 `yaml:"start_price"`
		MaxDelta       float64 `yaml:"max_delta"`
		PricePrecision int32   `yaml:"price_precision"`
		MinPrice       float64 `yaml:"min_price"`
		SeedCount      int     `yaml:"seed_count"`
		HistorySize    int     `yaml:"history_size"`
		TickIntervalMS int     `yaml:"tick_interval_ms"`
	} `yaml:"market"`

	Settlement struct {
		SweepIntervalMS int     `yaml:"sweep_interval_ms"`
		FillProbability float64 `yaml:"fill_probability"`
	} `yaml:"settlement"`

	Account struct {
		InitialBalance float64 `yaml:"initial_balance"`
		ResetBalance   float64 `yaml:"reset_balance"`
	} `yaml:"account"`

	Book struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"book"`

	Feed struct {
		Capacity int `yaml:"capacity"`
	} `yaml:"feed"`

	API struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"api"`

	Storage struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// DefaultConfig returns the built-in defaults, matching the reference
// behavior of the demo interface.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "DerivProTrade"
	cfg.App.Version = "1.0.0"
	cfg.Market.Symbol = "EUR/USD"
	cfg.Market.StartPrice = 1.1
	cfg.Market.MaxDelta = 0.004
	cfg.Market.PricePrecision = 5
	cfg.Market.MinPrice = 0.01
	cfg.Market.SeedCount = 80
	cfg.Market.HistorySize = 200
	cfg.Market.TickIntervalMS = 950
	cfg.Settlement.SweepIntervalMS = 3500
	cfg.Settlement.FillProbability = 0.5
	cfg.Account.InitialBalance = 1000.00
	cfg.Account.ResetBalance = 1000.00
	cfg.Book.Capacity = 50
	cfg.Feed.Capacity = 50
	cfg.API.Addr = "localhost:8080"
	cfg.API.AllowedOrigins = []string{"*"}
	cfg.Storage.Enabled = true
	cfg.Storage.Path = "data/journal.db"
	cfg.Logging.Level = "info"
	cfg.Logging.File = "logs/derivpro.log"
	cfg.Logging.MaxSizeMB = 10
	cfg.Logging.MaxBackups = 3
	cfg.Logging.MaxAgeDays = 28
	return cfg
}

// LoadConfig reads and parses the configuration file. A partial file is
// fine: unset fields keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Market.StartPrice <= 0 {
		return &domain.ValidationError{Field: "market.start_price", Err: errors.New("must be positive")}
	}
	if c.Market.MaxDelta <= 0 {
		return &domain.ValidationError{Field: "market.max_delta", Err: errors.New("must be positive")}
	}
	if c.Market.MinPrice <= 0 {
		return &domain.ValidationError{Field: "market.min_price", Err: errors.New("must be positive")}
	}
	if c.Market.PricePrecision < 0 {
		return &domain.ValidationError{Field: "market.price_precision", Err: errors.New("must be non-negative")}
	}
	if c.Market.TickIntervalMS <= 0 {
		return &domain.ValidationError{Field: "market.tick_interval_ms", Err: errors.New("must be positive")}
	}
	if c.Market.HistorySize <= 0 {
		return &domain.ValidationError{Field: "market.history_size", Err: errors.New("must be positive")}
	}
	if c.Settlement.SweepIntervalMS <= 0 {
		return &domain.ValidationError{Field: "settlement.sweep_interval_ms", Err: errors.New("must be positive")}
	}
	if p := c.Settlement.FillProbability; p <= 0 || p > 1 {
		return &domain.ValidationError{Field: "settlement.fill_probability", Err: errors.New("must be in (0, 1]")}
	}
	if c.Book.Capacity <= 0 {
		return &domain.ValidationError{Field: "book.capacity", Err: errors.New("must be positive")}
	}
	if c.Feed.Capacity <= 0 {
		return &domain.ValidationError{Field: "feed.capacity", Err: errors.New("must be positive")}
	}
	if c.API.Addr == "" {
		return &domain.ValidationError{Field: "api.addr", Err: errors.New("must not be empty")}
	}
	return nil
}

// overrideWithEnv applies environment overrides for deployment-specific
// values.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("DERIV_API_ADDR"); addr != "" {
		cfg.API.Addr = addr
	}
	if level := os.Getenv("DERIV_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("DERIV_DB_PATH"); path != "" {
		cfg.Storage.Path = path
	}
}
