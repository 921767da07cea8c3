package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/Alias1177/StockPredictor/internal/app"
	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/internal/dashboard"
	"github.com/Alias1177/StockPredictor/internal/platform/logging"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("CONFIG_FILE"), "path to YAML config file")
	addr := pflag.String("addr", "", "listen address (overrides HTTP_ADDR)")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel)
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	log.Info().
		Str("source", cfg.DataSource.Name).
		Str("llm_provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Str("timezone", cfg.DisplayTimezone).
		Msg("Starting stock predictor dashboard")

	def := a.DefaultRequest()
	srv := dashboard.NewServer(a.Service, dashboard.Defaults{
		Symbol:   def.Symbol,
		Interval: def.Interval,
		Days:     def.Days,
		Strategy: def.Strategy,
	})
	if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("Dashboard stopped")
	}
}
