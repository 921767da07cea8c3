package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Alias1177/StockPredictor/models"
)

func newTestClient(baseURL string) *Client {
	return NewClient(ClientOptions{
		BaseURL:        baseURL,
		RequestTimeout: 2 * time.Second,
		RequestsPerSec: 100,
		MaxRetries:     0,
		Location:       time.FixedZone("MYT", 8*60*60),
	})
}

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "BTC-USD", "shortName": "Bitcoin USD"},
      "timestamp": [1714615500, 1714615200, 1714615800, 1714616100],
      "indicators": {"quote": [{
        "open":   [101.5, 100.0, null, 103.0],
        "high":   [102.5, 101.0, null, 104.123456],
        "low":    [100.5,  99.0, null, 102.0],
        "close":  [102.0, 100.5, null, 103.5],
        "volume": [20, 10, null, null]
      }]}
    }],
    "error": null
  }
}`

func TestFetch(t *testing.T) {
	var gotPath, gotInterval, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartBody))
	}))
	defer server.Close()

	end := time.Unix(1714620000, 0)
	series, err := newTestClient(server.URL).Fetch(context.Background(), "BTC-USD", end.Add(-72*time.Hour), end, "5m")
	require.NoError(t, err)

	require.Equal(t, "/v8/finance/chart/BTC-USD", gotPath)
	require.Equal(t, "5m", gotInterval)
	require.Equal(t, "Mozilla/5.0", gotUA)

	require.Equal(t, "Bitcoin USD", series.Name)
	require.Equal(t, "USD", series.Currency)
	require.Len(t, series.Candles, 3, "null bar must be skipped")

	require.Equal(t, 100.5, series.Candles[0].Close, "candles must be sorted")
	require.Equal(t, 102.0, series.Candles[1].Close)
	require.Equal(t, 104.1235, series.Candles[2].High)
	require.Equal(t, 0.0, series.Candles[2].Volume)
	require.Equal(t, "MYT", series.Candles[0].Timestamp.Location().String())
}

func TestFetch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "NOPE", time.Now().Add(-time.Hour), time.Now(), "5m")
	var fetchErr *models.DataFetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
	require.Equal(t, "NOPE", fetchErr.Symbol)
}

func TestFetch_ErrorPayloadWithOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Unprocessable Entity","description":"Invalid input - interval=7m is not supported"}}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "AAPL", time.Now().Add(-time.Hour), time.Now(), "7m")
	var fetchErr *models.DataFetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
	require.Contains(t, err.Error(), "interval=7m")
}

func TestFetch_EmptySeries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"AAPL"},"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "AAPL", time.Now().Add(-time.Hour), time.Now(), "1d")
	var empty *models.EmptySeriesError
	require.True(t, errors.As(err, &empty), "got %v", err)
}

func TestFetch_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>rate limited</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "AAPL", time.Now().Add(-time.Hour), time.Now(), "1d")
	var fetchErr *models.DataFetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
}
