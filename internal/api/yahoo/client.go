package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/StockPredictor/internal/platform/http"
	"github.com/Alias1177/StockPredictor/models"
)

const (
	sourceName     = "yahoo"
	defaultBaseURL = "https://query1.finance.yahoo.com"
)

// Client fetches OHLCV history from the Yahoo Finance chart API
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	location   *time.Location
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetries     int
	Proxy          string
	// Location is the zone candle timestamps are converted to.
	Location *time.Location
}

// NewClient creates a new Yahoo Finance client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
			MaxRetries:     options.MaxRetries,
			Proxy:          options.Proxy,
		}),
		location: options.Location,
		logger:   log.With().Str("component", "yahoo_client").Logger(),
	}
}

func (c *Client) Name() string { return sourceName }

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Currency  string `json:"currency"`
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortName"`
		LongName  string `json:"longName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// Fetch downloads candles for symbol in [start, end) at the given interval.
// The interval is passed through; Yahoo decides whether it is legal.
func (c *Client) Fetch(ctx context.Context, symbol string, start, end time.Time, interval string) (*models.Series, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))
	q.Set("interval", interval)
	q.Set("includePrePost", "false")
	q.Set("events", "div,splits")

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())

	c.logger.Debug().Str("url", u).Msg("Fetching candles")

	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")
	header.Set("Accept", "application/json")

	body, err := c.httpClient.Get(ctx, u, header)
	if err != nil {
		return nil, &models.DataFetchError{Source: sourceName, Symbol: symbol, Err: err}
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing JSON")
		return nil, &models.DataFetchError{Source: sourceName, Symbol: symbol, Err: fmt.Errorf("parsing JSON: %w", err)}
	}
	if chart.Chart.Error != nil {
		return nil, &models.DataFetchError{
			Source: sourceName,
			Symbol: symbol,
			Err:    fmt.Errorf("api error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description),
		}
	}
	if len(chart.Chart.Result) == 0 {
		return nil, &models.EmptySeriesError{Symbol: symbol, Interval: interval}
	}

	result := chart.Chart.Result[0]
	candles := decodeCandles(result)
	if len(candles) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, &models.EmptySeriesError{Symbol: symbol, Interval: interval}
	}

	series := &models.Series{
		Symbol:   symbol,
		Name:     firstNonEmpty(result.Meta.ShortName, result.Meta.LongName, result.Meta.Symbol, symbol),
		Currency: result.Meta.Currency,
		Interval: interval,
		Candles:  models.NormalizeCandles(candles, c.location),
	}

	c.logger.Debug().Int("count", len(series.Candles)).Msg("Fetched candles")
	return series, nil
}

func decodeCandles(result chartResult) []models.Candle {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		cl, okC := at(quote.Close, i)
		if !okO || !okH || !okL || !okC {
			continue // null bar
		}
		v, _ := at(quote.Volume, i)
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     cl,
			Volume:    v,
		})
	}
	return candles
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
