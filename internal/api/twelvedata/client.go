package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/StockPredictor/internal/platform/http"
	"github.com/Alias1177/StockPredictor/models"
)

const (
	sourceName     = "twelvedata"
	defaultBaseURL = "https://api.twelvedata.com"
	dateLayout     = "2006-01-02 15:04:05"
)

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	location   *time.Location
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetries     int
	Location       *time.Location
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:        options.RequestTimeout,
		RequestsPerSec: options.RequestsPerSec,
		MaxRetries:     options.MaxRetries,
	}

	// Apply defaults if not set
	if httpOpts.Timeout == 0 {
		httpOpts.Timeout = 30 * time.Second
	}
	if httpOpts.RequestsPerSec == 0 {
		httpOpts.RequestsPerSec = 5
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient.NewClient(httpOpts),
		location:   options.Location,
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

func (c *Client) Name() string { return sourceName }

// timeSeriesResponse represents the API response from Twelve Data
type timeSeriesResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
		Currency string `json:"currency"`
		Exchange string `json:"exchange"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   float64 `json:"volume,string,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Fetch fetches candle data from Twelve Data API for [start, end)
func (c *Client) Fetch(ctx context.Context, symbol string, start, end time.Time, interval string) (*models.Series, error) {
	if c.apiKey == "" {
		return nil, &models.DataFetchError{Source: sourceName, Symbol: symbol, Err: errors.New("TWELVE_API_KEY is not set")}
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("start_date", start.UTC().Format(dateLayout))
	q.Set("end_date", end.UTC().Format(dateLayout))
	q.Set("timezone", "UTC")
	q.Set("order", "ASC")
	q.Set("outputsize", "5000")
	q.Set("apikey", c.apiKey)

	u := fmt.Sprintf("%s/time_series?%s", c.baseURL, q.Encode())

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Msg("Fetching candles")

	body, err := c.httpClient.Get(ctx, u, nil)
	if err != nil {
		return nil, &models.DataFetchError{Source: sourceName, Symbol: symbol, Err: err}
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, &models.DataFetchError{Source: sourceName, Symbol: symbol, Err: fmt.Errorf("parsing JSON: %w", err)}
	}

	if data.Status == "error" {
		c.logger.Error().Int("code", data.Code).Str("message", data.Message).Msg("Twelve Data API error")
		// Twelve Data answers "no data in the window" with a 400 error payload.
		if strings.Contains(strings.ToLower(data.Message), "no data is available") {
			return nil, &models.EmptySeriesError{Symbol: symbol, Interval: interval}
		}
		return nil, &models.DataFetchError{Source: sourceName, Symbol: symbol, Err: fmt.Errorf("api error %d: %s", data.Code, data.Message)}
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, &models.EmptySeriesError{Symbol: symbol, Interval: interval}
	}

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, &models.DataFetchError{Source: sourceName, Symbol: symbol, Err: err}
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      v.Open,
			High:      v.High,
			Low:       v.Low,
			Close:     v.Close,
			Volume:    v.Volume,
		})
	}

	series := &models.Series{
		Symbol:   symbol,
		Name:     symbol,
		Currency: data.Meta.Currency,
		Interval: interval,
		Candles:  models.NormalizeCandles(candles, c.location),
	}

	c.logger.Debug().Int("count", len(series.Candles)).Msg("Fetched candles")
	return series, nil
}

// parseDatetime accepts intraday and daily datetime strings, both in UTC.
func parseDatetime(s string) (time.Time, error) {
	if ts, err := time.ParseInLocation(dateLayout, s, time.UTC); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing datetime %q: %w", s, err)
	}
	return ts, nil
}
