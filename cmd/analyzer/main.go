package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/StockPredictor/internal/analysis/technical"
	"github.com/Alias1177/StockPredictor/internal/analyze"
	"github.com/Alias1177/StockPredictor/internal/app"
	"github.com/Alias1177/StockPredictor/internal/chart"
	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/internal/gpt"
	"github.com/Alias1177/StockPredictor/internal/platform/logging"
	"github.com/Alias1177/StockPredictor/models"
)

var (
	configPath string
	symbol     string
	interval   string
	days       int
	strategy   string
	rows       int
	noLLM      bool
	showPrompt bool
	limit      int
)

var rootCmd = &cobra.Command{
	Use:          "analyzer",
	Short:        "Support/resistance levels and an LLM recommendation for one ticker",
	SilenceUsage: true,
	RunE:         runAnalyze,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analyses from the journal",
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to YAML config file")

	rootCmd.Flags().StringVarP(&symbol, "symbol", "s", "", "ticker symbol (default from config)")
	rootCmd.Flags().StringVarP(&interval, "interval", "i", "", "bar interval, e.g. 5m, 1h, 1d (default from config)")
	rootCmd.Flags().IntVarP(&days, "days", "d", 0, fmt.Sprintf("days of data to fetch, %d-%d (default from config)", models.MinLookbackDays, models.MaxLookbackDays))
	rootCmd.Flags().StringVar(&strategy, "strategy", "", "level strategy: "+fmt.Sprint(technical.StrategyNames()))
	rootCmd.Flags().IntVar(&rows, "rows", 10, "recent candles to print, 0 for all")
	rootCmd.Flags().BoolVar(&noLLM, "no-llm", false, "skip the recommendation call")
	rootCmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "print the prompt sent to the model")

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records")
	rootCmd.AddCommand(historyCmd)
}

func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	return app.New(ctx, cfg)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	req := a.DefaultRequest()
	if symbol != "" {
		req.Symbol = symbol
	}
	if interval != "" {
		req.Interval = interval
	}
	if days != 0 {
		req.Days = days
	}
	if strategy != "" {
		req.Strategy = strategy
	}
	req.SkipRecommendation = noLLM

	report, err := a.Service.Run(cmd.Context(), req)
	if err != nil {
		var empty *models.EmptySeriesError
		if errors.As(err, &empty) {
			return errors.New("no data found, please check the ticker symbol and date period, and try again")
		}
		return err
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *analyze.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, report.Chart.Title)
	chart.RenderTable(out, report.Series, rows)
	fmt.Fprintln(out)

	fmt.Fprint(out, chart.FormatLevels(report.Levels))
	fmt.Fprintf(out, "Last close: %s  Std dev: %s  Avg volume: %s\n",
		gpt.FormatNumber(report.Summary.LastClose),
		gpt.FormatNumber(report.Summary.CloseStdDev),
		humanize.Comma(int64(report.Summary.MeanVolume)))

	if showPrompt {
		fmt.Fprintln(out, "\nPrompt:")
		fmt.Fprintln(out, report.Prompt)
	}

	switch {
	case report.Request.SkipRecommendation:
	case report.RecommendationError != "":
		fmt.Fprintf(out, "\nError interacting with the recommendation service: %s\n", report.RecommendationError)
	default:
		fmt.Fprintf(out, "\nLLM Prediction:\n%s\n", report.Recommendation)
	}
}

func runHistory(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.Journal.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No analyses recorded. Configure database.driver to enable the journal.")
		return nil
	}

	for _, r := range records {
		status := "ok"
		if r.Error != "" {
			status = "llm error"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %-4s %2dd %-9s close %-12s %s (%s)\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Symbol, r.Interval, r.LookbackDays, r.Strategy,
			gpt.FormatNumber(r.LastClose), status, humanize.Time(r.CreatedAt))
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Analysis failed")
		os.Exit(1)
	}
}
