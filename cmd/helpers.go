package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/config"
	"github.com/ziadkadry99/instasite/internal/db"
	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/ledger"
	"github.com/ziadkadry99/instasite/internal/llm"
	"github.com/ziadkadry99/instasite/internal/logging"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `instasite init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the process logger. --verbose forces debug output.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(level)
}

// openLedger opens the usage database at the configured path.
func openLedger(cfg *config.Config) (*db.DB, *ledger.Store, error) {
	database, err := db.Open(cfg.LedgerPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening usage ledger: %w", err)
	}
	return database, ledger.NewStore(database), nil
}

// createGeneratorFromConfig creates the provider, applies the configured rate
// limit, and wraps both in a Generator that records usage to recorder.
func createGeneratorFromConfig(cfg *config.Config, recorder generator.UsageRecorder) (*generator.Generator, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.PageModel)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if cfg.RateLimitRPM > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RateLimitRPM)
	}
	opts := generator.Options{
		BlueprintModel: cfg.BlueprintModel,
		PageModel:      cfg.PageModel,
		Temperature:    cfg.PageTemperature,
		Timeout:        cfg.GenerationTimeout,
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	return generator.New(provider, opts), nil
}
