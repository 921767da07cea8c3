package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Alias1177/StockPredictor/internal/analysis/technical"
	"github.com/Alias1177/StockPredictor/internal/analyze"
	"github.com/Alias1177/StockPredictor/internal/chart"
	"github.com/Alias1177/StockPredictor/models"
)

// NoDataWarning is shown when the source returned nothing for the request.
const NoDataWarning = "No data found. Please check the ticker symbol and date period, and try again."

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, parseErr := s.parseRequest(q)

	page := chart.Page{
		Symbol:     req.Symbol,
		Interval:   req.Interval,
		Days:       req.Days,
		Strategy:   req.Strategy,
		Strategies: technical.StrategyNames(),
	}

	status := http.StatusOK
	switch {
	case !q.Has("symbol"):
	case parseErr != nil:
		status = http.StatusBadRequest
		page.Warning = parseErr.Error()
	default:
		report, err := s.runner.Run(r.Context(), req)
		if err != nil {
			status = statusFor(err)
			page.Warning = warningFor(err)
			break
		}
		page.Strategy = report.Request.Strategy
		page.Chart = &report.Chart
		page.Levels = chart.FormatLevels(report.Levels)
		page.Recommendation = report.Recommendation
		page.RecommendationError = report.RecommendationError
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := chart.RenderHTML(w, page); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render page")
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, newReportResponse(report))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseRequest fills missing parameters from the defaults. The returned
// request is usable for prefilling the form even when err is set.
func (s *Server) parseRequest(q url.Values) (analyze.Request, error) {
	req := analyze.Request{
		Symbol:   valueOr(q, "symbol", s.defaults.Symbol),
		Interval: valueOr(q, "interval", s.defaults.Interval),
		Days:     s.defaults.Days,
		Strategy: valueOr(q, "strategy", s.defaults.Strategy),
	}
	if raw := q.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return req, &models.InvalidRequestError{Field: "days", Reason: fmt.Sprintf("%q is not a number", raw)}
		}
		req.Days = days
	}
	if q.Get("no_llm") == "1" || q.Get("no_llm") == "true" {
		req.SkipRecommendation = true
	}
	return req, nil
}

func valueOr(q url.Values, key, fallback string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return fallback
}

func statusFor(err error) int {
	var (
		invalid *models.InvalidRequestError
		empty   *models.EmptySeriesError
		fetch   *models.DataFetchError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &empty):
		return http.StatusNotFound
	case errors.As(err, &fetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func warningFor(err error) string {
	var empty *models.EmptySeriesError
	var fetch *models.DataFetchError
	switch {
	case errors.As(err, &empty):
		return NoDataWarning
	case errors.As(err, &fetch):
		return "Error fetching data: " + err.Error()
	default:
		return err.Error()
	}
}

type summaryResponse struct {
	LastClose    *float64  `json:"last_close"`
	CloseStdDev  *float64  `json:"close_std_dev"`
	MeanVolume   *float64  `json:"mean_volume"`
	RecentCloses []float64 `json:"recent_closes"`
}

type reportResponse struct {
	ID                  string               `json:"id"`
	Symbol              string               `json:"symbol"`
	Name                string               `json:"name"`
	Interval            string               `json:"interval"`
	Days                int                  `json:"days"`
	Strategy            string               `json:"strategy"`
	Title               string               `json:"title"`
	Support             *float64             `json:"support"`
	Resistance          *float64             `json:"resistance"`
	Retracements        []models.Retracement `json:"retracements,omitempty"`
	Lines               []chart.HLine        `json:"lines"`
	Summary             summaryResponse      `json:"summary"`
	Candles             []models.Candle      `json:"candles"`
	Recommendation      string               `json:"recommendation,omitempty"`
	RecommendationError string               `json:"recommendation_error,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
}

func newReportResponse(r *analyze.Report) reportResponse {
	rec := r.Record()
	return reportResponse{
		ID:           r.ID,
		Symbol:       r.Request.Symbol,
		Name:         r.Series.DisplayName(),
		Interval:     r.Request.Interval,
		Days:         r.Request.Days,
		Strategy:     r.Request.Strategy,
		Title:        r.Chart.Title,
		Support:      rec.Support,
		Resistance:   rec.Resistance,
		Retracements: r.Levels.Retracements,
		Lines:        r.Chart.Lines,
		Summary: summaryResponse{
			LastClose:    finite(r.Summary.LastClose),
			CloseStdDev:  finite(r.Summary.CloseStdDev),
			MeanVolume:   finite(r.Summary.MeanVolume),
			RecentCloses: r.Summary.RecentCloses,
		},
		Candles:             r.Series.Candles,
		Recommendation:      r.Recommendation,
		RecommendationError: r.RecommendationError,
		CreatedAt:           r.CreatedAt,
	}
}

// finite maps NaN and infinities to null; encoding/json rejects them.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Warn().Err(err).Int("status", status).Msg("Request failed")
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
