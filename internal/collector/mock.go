package collector

import (
	"context"
	"time"

	"github.com/Alias1177/StockPredictor/models"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price   float64
	Candles []models.Candle
	Err     error

	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol string, start, end time.Time, interval string) (*models.Series, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}

	candles := m.Candles
	if candles == nil {
		candles = generateMockBars(m.Price, start, end, 5*time.Minute)
	}
	if len(candles) == 0 {
		return nil, &models.EmptySeriesError{Symbol: symbol, Interval: interval}
	}

	return &models.Series{
		Symbol:   symbol,
		Name:     symbol,
		Interval: interval,
		Candles:  models.NormalizeCandles(candles, nil),
	}, nil
}

func generateMockBars(basePrice float64, start, end time.Time, step time.Duration) []models.Candle {
	count := int(end.Sub(start) / step)
	bars := make([]models.Candle, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i%12-6)*0.001)
		bars[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      p * 0.999,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1000000,
		}
	}
	return bars
}
