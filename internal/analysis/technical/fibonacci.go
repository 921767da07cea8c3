package technical

import (
	"fmt"
	"math"

	"github.com/Alias1177/StockPredictor/models"
)

// FibRatio is one retracement ratio and its fixed display colour.
type FibRatio struct {
	Ratio float64
	Color string
}

// FibRatios are the retracement ratios, ascending.
var FibRatios = []FibRatio{
	{Ratio: 0, Color: "support-green"},
	{Ratio: 0.236, Color: "light-blue"},
	{Ratio: 0.382, Color: "orange"},
	{Ratio: 0.5, Color: "gray"},
	{Ratio: 0.618, Color: "gold"},
	{Ratio: 0.786, Color: "purple"},
	{Ratio: 1, Color: "resistance-red"},
}

// Fibonacci spreads the retracement ratios over the observed low/high range.
// Support is the 0% level and resistance the 100% level.
type Fibonacci struct{}

func (Fibonacci) Name() string { return StrategyFibonacci }

func (Fibonacci) Compute(candles []models.Candle) (models.LevelSet, error) {
	set := models.LevelSet{Strategy: StrategyFibonacci}
	if len(candles) == 0 {
		return set, &models.EmptySeriesError{}
	}

	high, low := PriceRange(candles)
	span := high - low

	set.Retracements = make([]models.Retracement, 0, len(FibRatios))
	for _, fr := range FibRatios {
		price := low + span*fr.Ratio
		switch fr.Ratio {
		case 0:
			price = low
		case 1:
			price = high
		}
		set.Retracements = append(set.Retracements, models.Retracement{
			Ratio: fr.Ratio,
			Label: FibLabel(fr.Ratio),
			Color: fr.Color,
			Price: price,
		})
	}

	set.Pair.Support = models.DefinedLevel(low)
	set.Pair.Resistance = models.DefinedLevel(high)
	return set, nil
}

// FibLabel formats a ratio as a percentage, e.g. 0.618 -> "61.8%".
func FibLabel(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// PriceRange returns the highest high and lowest low of the candles.
func PriceRange(candles []models.Candle) (high, low float64) {
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range candles {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	return high, low
}
