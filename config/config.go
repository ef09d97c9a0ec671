// Package config loads the settings of the tl command.
//
// Settings are read, each layer overriding the previous one, from the
// defaults, an optional YAML file, an optional .env file, and TL_ prefixed
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // timezone names on systems without a zoneinfo database

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "TL_"

// Config holds every setting. It is passed explicitly to the components
// that need it.
type Config struct {
	Driver          string        `yaml:"driver" env:"DRIVER"` // "sqlite" or "pgx"
	DSN             string        `yaml:"dsn" env:"DSN"`
	AccountID       int64         `yaml:"account_id" env:"ACCOUNT"`
	TransactionType string        `yaml:"transaction_type" env:"TRANSACTION_TYPE"`
	AssetType       string        `yaml:"asset_type" env:"ASSET_TYPE"`
	Currency        string        `yaml:"currency" env:"CURRENCY"`
	Timezone        string        `yaml:"timezone" env:"TIMEZONE"`
	ScalpThreshold  time.Duration `yaml:"scalp_threshold" env:"SCALP_THRESHOLD"`
	Workers         int           `yaml:"workers" env:"WORKERS"`

	Log struct {
		Level  string `yaml:"level" env:"LEVEL"`
		Format string `yaml:"format" env:"FORMAT"`
	} `yaml:"log" envPrefix:"LOG_"`

	Kafka struct {
		Brokers []string `yaml:"brokers" env:"BROKERS" envSeparator:","`
		Topic   string   `yaml:"topic" env:"TOPIC"`
	} `yaml:"kafka" envPrefix:"KAFKA_"`
}

// Default returns the default settings.
func Default() *Config {
	c := &Config{
		Driver:          "sqlite",
		DSN:             "tradelog.db",
		AccountID:       1,
		TransactionType: "TRADE",
		AssetType:       "EQUITY",
		Currency:        "USD",
		Timezone:        "America/New_York",
		ScalpThreshold:  time.Hour,
		Workers:         1,
	}
	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Kafka.Topic = "trades"
	return c
}

// Load reads the YAML file at path, if path is not empty, then .env in the
// current directory, if any, then the environment.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load %s: %w", dotenv, err)
	}
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Driver {
	case "sqlite", "pgx":
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q, want sqlite or pgx", c.Driver))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("dsn is empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.ScalpThreshold < 0 {
		errs = append(errs, fmt.Errorf("negative scalp threshold %v", c.ScalpThreshold))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the time zone used to turn dates into times. It falls
// back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Publishing reports whether trades are published to Kafka.
func (c *Config) Publishing() bool { return len(c.Kafka.Brokers) > 0 }
