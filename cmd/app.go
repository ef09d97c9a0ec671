// Package cmd implements the tl command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog/config"
	"github.com/etnz/tradelog/logger"
	"github.com/etnz/tradelog/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "transactions")
	c.Register(&processCmd{}, "trades")
	c.Register(&resetCmd{}, "trades")
	c.Register(&tradesCmd{}, "reports")
	c.Register(&graphCmd{}, "reports")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Path to the YAML configuration file")
	dsn        = flag.String("db", "", "Database DSN, overrides the configuration")
	driver     = flag.String("driver", "", "Database driver, sqlite or pgx, overrides the configuration")
	account    = flag.Int64("account", 0, "Account id, overrides the configuration")
	Verbose    = flag.Bool("v", false, "Log debug messages")
)

// app holds what a command needs to run.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
}

// loadConfig loads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *dsn != "" {
		cfg.DSN = *dsn
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *account != 0 {
		cfg.AccountID = *account
	}
	if *Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// openApp loads the configuration, builds the logger and opens the store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	log.Debug("store opened", zap.String("driver", cfg.Driver), zap.Int64("account_id", cfg.AccountID))
	return &app{cfg: cfg, log: log, store: s}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing the database: %v\n", err)
	}
	a.log.Sync()
}

// mustOpen opens the app or prints the error and returns nil.
func mustOpen(ctx context.Context) *app {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil
	}
	return a
}
