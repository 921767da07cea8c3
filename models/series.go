package models

import (
	"math"
	"sort"
	"time"
)

// PriceDecimals is the precision prices are rounded to after a fetch.
const PriceDecimals = 4

// NormalizeCandles sorts candles ascending, drops repeated timestamps
// (first one wins), rounds every numeric field and moves timestamps into loc.
// A nil loc leaves timestamps untouched.
func NormalizeCandles(candles []Candle, loc *time.Location) []Candle {
	out := make([]Candle, len(candles))
	copy(out, candles)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	deduped := out[:0]
	for i, c := range out {
		if i > 0 && c.Timestamp.Equal(deduped[len(deduped)-1].Timestamp) {
			continue
		}
		c.Open = Round(c.Open, PriceDecimals)
		c.High = Round(c.High, PriceDecimals)
		c.Low = Round(c.Low, PriceDecimals)
		c.Close = Round(c.Close, PriceDecimals)
		c.Volume = Round(c.Volume, PriceDecimals)
		if loc != nil {
			c.Timestamp = c.Timestamp.In(loc)
		}
		deduped = append(deduped, c)
	}
	return deduped
}

// Round rounds v to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
