package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/Alias1177/StockPredictor/internal/api/twelvedata"
	"github.com/Alias1177/StockPredictor/internal/api/yahoo"
	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/models"
)

// Fetcher defines the interface for fetching market data.
// Failures are *models.DataFetchError or *models.EmptySeriesError.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time, interval string) (*models.Series, error)
	Name() string
}

// New builds the fetcher selected by cfg.DataSource.Name.
func New(cfg *config.Config) (Fetcher, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	switch cfg.DataSource.Name {
	case config.SourceYahoo:
		return yahoo.NewClient(yahoo.ClientOptions{
			RequestTimeout: cfg.DataSource.Timeout,
			RequestsPerSec: cfg.DataSource.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
			Proxy:          cfg.DataSource.Proxy,
			Location:       loc,
		}), nil
	case config.SourceTwelveData:
		return twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:         cfg.DataSource.TwelveAPIKey,
			RequestTimeout: cfg.DataSource.Timeout,
			RequestsPerSec: cfg.DataSource.RequestsPerSec,
			MaxRetries:     cfg.MaxRetries,
			Location:       loc,
		}), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.DataSource.Name)
	}
}
