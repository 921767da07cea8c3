package analyze

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/StockPredictor/internal/analysis/technical"
	"github.com/Alias1177/StockPredictor/internal/chart"
	"github.com/Alias1177/StockPredictor/internal/collector"
	"github.com/Alias1177/StockPredictor/internal/database"
	"github.com/Alias1177/StockPredictor/internal/gpt"
	"github.com/Alias1177/StockPredictor/models"
)

// Completer turns a prompt into recommendation text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Request is one user-triggered analysis.
type Request struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Days     int    `json:"days"`
	Strategy string `json:"strategy"`

	// SkipRecommendation computes levels without calling the model.
	SkipRecommendation bool `json:"-"`
}

// Report is the result of a successful fetch. A failed recommendation is
// carried in RecommendationError; the chart and levels remain usable.
type Report struct {
	ID                  string            `json:"id"`
	Request             Request           `json:"request"`
	Series              *models.Series    `json:"series"`
	Levels              models.LevelSet   `json:"levels"`
	Summary             technical.Summary `json:"summary"`
	Chart               chart.Spec        `json:"chart"`
	Prompt              string            `json:"prompt"`
	Recommendation      string            `json:"recommendation,omitempty"`
	RecommendationError string            `json:"recommendation_error,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

// Options tunes the pipeline. The recommendation deadline belongs to the
// Completer.
type Options struct {
	FetchTimeout time.Duration
	Now          func() time.Time
}

// Service runs fetch, level computation, prompt assembly and recommendation
// retrieval in order.
type Service struct {
	fetcher collector.Fetcher
	llm     Completer
	journal database.Recorder
	opts    Options
	logger  zerolog.Logger
}

// NewService wires the pipeline. llm and journal may be nil.
func NewService(fetcher collector.Fetcher, llm Completer, journal database.Recorder, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if journal == nil {
		journal = database.NewNoopRecorder()
	}
	return &Service{
		fetcher: fetcher,
		llm:     llm,
		journal: journal,
		opts:    opts,
		logger:  log.With().Str("component", "analyze").Logger(),
	}
}

// Validate normalizes the request and rejects input that cannot be fetched.
func (r *Request) Validate() error {
	r.Symbol = strings.TrimSpace(r.Symbol)
	r.Interval = strings.TrimSpace(r.Interval)

	if r.Symbol == "" {
		return &models.InvalidRequestError{Field: "symbol", Reason: "must not be empty"}
	}
	if r.Interval == "" {
		return &models.InvalidRequestError{Field: "interval", Reason: "must not be empty"}
	}
	if r.Days < models.MinLookbackDays || r.Days > models.MaxLookbackDays {
		return &models.InvalidRequestError{Field: "days", Reason: "must be between 1 and 59"}
	}
	s, err := technical.StrategyByName(r.Strategy)
	if err != nil {
		return &models.InvalidRequestError{Field: "strategy", Reason: err.Error()}
	}
	r.Strategy = s.Name()
	return nil
}

// Run executes one analysis. Fetch failures abort with a *DataFetchError or
// *EmptySeriesError; recommendation failures do not.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	strategy, _ := technical.StrategyByName(req.Strategy)

	logger := s.logger.With().
		Str("symbol", req.Symbol).
		Str("interval", req.Interval).
		Int("days", req.Days).
		Str("strategy", req.Strategy).
		Logger()

	now := s.opts.Now()
	start, end := models.Window(now, req.Days)
	logger.Info().
		Int("expected_candles", models.EstimateCandleCount(req.Interval, req.Days)).
		Str("source", s.fetcher.Name()).
		Msg("Fetching price history")

	series, err := s.fetch(ctx, req, start, end)
	if err != nil {
		logger.Warn().Err(err).Msg("Fetch failed")
		return nil, err
	}

	levels, err := strategy.Compute(series.Candles)
	if err != nil {
		return nil, err
	}
	summary, err := technical.Summarize(series.Candles)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:        uuid.NewString(),
		Request:   req,
		Series:    series,
		Levels:    levels,
		Summary:   summary,
		Chart:     chart.Build(series, req.Days, levels),
		CreatedAt: now,
	}
	report.Prompt = gpt.BuildPrompt(gpt.PromptInput{
		Ticker:  req.Symbol,
		Summary: summary,
		Levels:  levels,
	})

	logger.Info().
		Int("candles", len(series.Candles)).
		Bool("support", levels.Pair.Support.Valid).
		Bool("resistance", levels.Pair.Resistance.Valid).
		Msg("Levels computed")

	if !req.SkipRecommendation {
		s.recommend(ctx, report, logger)
	}

	if err := s.journal.Record(ctx, report.Record()); err != nil {
		logger.Error().Err(err).Msg("Failed to record analysis")
	}

	return report, nil
}

func (s *Service) fetch(ctx context.Context, req Request, start, end time.Time) (*models.Series, error) {
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	series, err := s.fetcher.Fetch(ctx, req.Symbol, start, end, req.Interval)
	if err != nil {
		var fetchErr *models.DataFetchError
		var emptyErr *models.EmptySeriesError
		if errors.As(err, &fetchErr) || errors.As(err, &emptyErr) {
			return nil, err
		}
		return nil, &models.DataFetchError{Source: s.fetcher.Name(), Symbol: req.Symbol, Err: err}
	}
	if series == nil || len(series.Candles) == 0 {
		return nil, &models.EmptySeriesError{Symbol: req.Symbol, Interval: req.Interval}
	}
	return series, nil
}

func (s *Service) recommend(ctx context.Context, report *Report, logger zerolog.Logger) {
	if s.llm == nil {
		report.RecommendationError = "recommendation service is not configured"
		return
	}

	text, err := s.llm.Complete(ctx, report.Prompt)
	if err != nil {
		logger.Error().Err(err).Msg("Recommendation failed")
		report.RecommendationError = err.Error()
		return
	}
	report.Recommendation = text
}

// Record flattens the report for the journal.
func (r *Report) Record() models.AnalysisRecord {
	rec := models.AnalysisRecord{
		ID:             r.ID,
		Symbol:         r.Request.Symbol,
		Interval:       r.Request.Interval,
		LookbackDays:   r.Request.Days,
		Strategy:       r.Request.Strategy,
		Candles:        len(r.Series.Candles),
		LastClose:      r.Summary.LastClose,
		Recommendation: r.Recommendation,
		Error:          r.RecommendationError,
		CreatedAt:      r.CreatedAt,
	}
	if p, err := r.Levels.SupportPrice(); err == nil {
		rec.Support = &p
	}
	if p, err := r.Levels.ResistancePrice(); err == nil {
		rec.Resistance = &p
	}
	return rec
}
