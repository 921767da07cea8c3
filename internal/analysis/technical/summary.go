package technical

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/Alias1177/StockPredictor/models"
)

// RecentCloseCount is how many trailing closes go into the prompt.
const RecentCloseCount = 5

// Summary holds the descriptive statistics quoted to the LLM.
type Summary struct {
	LastClose    float64   `json:"last_close"`
	CloseStdDev  float64   `json:"close_std_dev"`
	MeanVolume   float64   `json:"mean_volume"`
	RecentCloses []float64 `json:"recent_closes"`
}

// Summarize computes the prompt statistics. The close deviation is the
// sample standard deviation, so a single candle yields NaN.
func Summarize(candles []models.Candle) (Summary, error) {
	if len(candles) == 0 {
		return Summary{}, &models.EmptySeriesError{}
	}

	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	sd, err := stats.StandardDeviationSample(closes)
	if err != nil {
		return Summary{}, fmt.Errorf("close standard deviation: %w", err)
	}

	meanVolume, err := stats.Mean(volumes)
	if err != nil {
		return Summary{}, fmt.Errorf("mean volume: %w", err)
	}

	start := len(closes) - RecentCloseCount
	if start < 0 {
		start = 0
	}
	recent := make([]float64, len(closes)-start)
	copy(recent, closes[start:])

	return Summary{
		LastClose:    closes[len(closes)-1],
		CloseStdDev:  sd,
		MeanVolume:   meanVolume,
		RecentCloses: recent,
	}, nil
}
