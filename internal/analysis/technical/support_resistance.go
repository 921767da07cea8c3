package technical

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Alias1177/StockPredictor/models"
)

// Strategy names accepted by StrategyByName.
const (
	StrategyExtrema   = "extrema"
	StrategyFibonacci = "fibonacci"
)

// LevelStrategy derives support and resistance from a candle series.
// Implementations are pure: the same candles always give the same LevelSet.
type LevelStrategy interface {
	Name() string
	Compute(candles []models.Candle) (models.LevelSet, error)
}

var strategies = map[string]LevelStrategy{
	StrategyExtrema:   Extrema{},
	StrategyFibonacci: Fibonacci{},
}

// StrategyByName looks up a strategy; an empty name selects extrema.
func StrategyByName(name string) (LevelStrategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = StrategyExtrema
	}
	s, ok := strategies[key]
	if !ok {
		return nil, fmt.Errorf("unknown level strategy %q (want one of %s)", name, strings.Join(StrategyNames(), ", "))
	}
	return s, nil
}

// StrategyNames lists the registered strategies in sorted order.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extrema takes support as the lowest interior local minimum of the closes
// and resistance as the highest interior local maximum. Plateaus count as
// neither.
type Extrema struct{}

func (Extrema) Name() string { return StrategyExtrema }

func (Extrema) Compute(candles []models.Candle) (models.LevelSet, error) {
	set := models.LevelSet{Strategy: StrategyExtrema}
	if len(candles) == 0 {
		return set, &models.EmptySeriesError{}
	}

	minima, maxima := LocalExtrema(candles)

	if len(minima) > 0 {
		low := candles[minima[0]].Close
		for _, i := range minima[1:] {
			if candles[i].Close < low {
				low = candles[i].Close
			}
		}
		set.Pair.Support = models.DefinedLevel(low)
	}

	if len(maxima) > 0 {
		high := candles[maxima[0]].Close
		for _, i := range maxima[1:] {
			if candles[i].Close > high {
				high = candles[i].Close
			}
		}
		set.Pair.Resistance = models.DefinedLevel(high)
	}

	return set, nil
}

// LocalExtrema returns the indices of strict local minima and maxima of the
// close column, skipping the first and last candle.
func LocalExtrema(candles []models.Candle) (minima, maxima []int) {
	for i := 1; i < len(candles)-1; i++ {
		prev, cur, next := candles[i-1].Close, candles[i].Close, candles[i+1].Close
		if cur < prev && cur < next {
			minima = append(minima, i)
		} else if cur > prev && cur > next {
			maxima = append(maxima, i)
		}
	}
	return minima, maxima
}
