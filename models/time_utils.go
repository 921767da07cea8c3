package models

import "time"

// Lookback bounds accepted from users.
const (
	MinLookbackDays = 1
	MaxLookbackDays = 59
)

// Window returns the [start, end) fetch window ending at now.
func Window(now time.Time, days int) (time.Time, time.Time) {
	return now.Add(-time.Duration(days) * 24 * time.Hour), now
}

// EstimateCandleCount guesses how many bars a window holds. Intervals are
// opaque to the pipeline, so unknown tokens return 0 and callers treat the
// value as a hint only.
func EstimateCandleCount(interval string, days int) int {
	candlesPerDay := 0

	switch interval {
	case "1m", "1min":
		candlesPerDay = 24 * 60
	case "2m":
		candlesPerDay = 24 * 30
	case "5m", "5min":
		candlesPerDay = 24 * 12
	case "15m", "15min":
		candlesPerDay = 24 * 4
	case "30m", "30min":
		candlesPerDay = 24 * 2
	case "60m", "1h":
		candlesPerDay = 24
	case "90m":
		candlesPerDay = 24 * 60 / 90
	case "2h":
		candlesPerDay = 12
	case "4h":
		candlesPerDay = 6
	case "1d", "1day":
		candlesPerDay = 1
	case "1wk", "1week":
		candlesPerDay = 1
		days = days / 7
		if days < 1 {
			days = 1
		}
	}

	return candlesPerDay * days
}
