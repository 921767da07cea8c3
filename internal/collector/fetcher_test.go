package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/models"
)

func TestNew(t *testing.T) {
	cfg := &config.Config{DisplayTimezone: "UTC"}

	cfg.DataSource.Name = config.SourceYahoo
	f, err := New(cfg)
	require.NoError(t, err)
	require.Equal(t, "yahoo", f.Name())

	cfg.DataSource.Name = config.SourceTwelveData
	f, err = New(cfg)
	require.NoError(t, err)
	require.Equal(t, "twelvedata", f.Name())

	cfg.DataSource.Name = "csv"
	_, err = New(cfg)
	require.Error(t, err)
}

func TestMockFetcher(t *testing.T) {
	end := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := &MockFetcher{Price: 100}

	series, err := m.Fetch(context.Background(), "BTC-USD", end.Add(-time.Hour), end, "5m")
	require.NoError(t, err)
	require.Len(t, series.Candles, 12)
	require.Equal(t, 1, m.Calls)

	m = &MockFetcher{Candles: []models.Candle{}}
	_, err = m.Fetch(context.Background(), "BTC-USD", end.Add(-time.Hour), end, "5m")
	var empty *models.EmptySeriesError
	require.True(t, errors.As(err, &empty))
}
