package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StockPredictor/internal/analyze"
	"github.com/Alias1177/StockPredictor/internal/api/openai"
	"github.com/Alias1177/StockPredictor/internal/collector"
	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/internal/database"
)

// App holds the wired pipeline shared by every front-end.
type App struct {
	Config  *config.Config
	Service *analyze.Service
	Journal database.Recorder
}

// New builds the fetcher, LLM client, journal and pipeline from cfg.
// A journal that cannot be opened is replaced by a no-op one.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	fetcher, err := collector.New(cfg)
	if err != nil {
		return nil, err
	}

	journal, err := database.New(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("driver", cfg.Database.Driver).Msg("Journal unavailable, continuing without it")
		journal = database.NewNoopRecorder()
	}

	llm := openai.NewClient(&cfg.LLM, openai.WithMaxRetries(cfg.MaxRetries))
	if cfg.LLM.APIKey == "" {
		log.Warn().Str("provider", cfg.LLM.Provider).Msg("LLM credentials missing, recommendations will fail")
	}

	svc := analyze.NewService(fetcher, llm, journal, analyze.Options{
		FetchTimeout: cfg.DataSource.Timeout,
	})

	return &App{Config: cfg, Service: svc, Journal: journal}, nil
}

// DefaultRequest is the request the configured defaults describe.
func (a *App) DefaultRequest() analyze.Request {
	return analyze.Request{
		Symbol:   a.Config.Defaults.Symbol,
		Interval: a.Config.Defaults.Interval,
		Days:     a.Config.Defaults.LookbackDays,
		Strategy: a.Config.Defaults.Strategy,
	}
}

func (a *App) Close() error {
	return a.Journal.Close()
}
