package models

import (
	"time"
)

// Candle represents a single price candle
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is an ordered, de-duplicated run of candles for one symbol.
type Series struct {
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Currency string   `json:"currency,omitempty"`
	Interval string   `json:"interval"`
	Candles  []Candle `json:"candles"`
}

// Closes returns the close column in order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Last returns the most recent candle. The series must not be empty.
func (s *Series) Last() Candle {
	return s.Candles[len(s.Candles)-1]
}

// DisplayName is the instrument name used in titles.
func (s *Series) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Symbol
}

// Level is a price that may be undefined.
type Level struct {
	Price float64 `json:"price"`
	Valid bool    `json:"valid"`
}

// DefinedLevel wraps a known price.
func DefinedLevel(price float64) Level {
	return Level{Price: price, Valid: true}
}

// LevelPair is the support/resistance output of a level strategy.
type LevelPair struct {
	Support    Level `json:"support"`
	Resistance Level `json:"resistance"`
}

// Retracement is one Fibonacci ratio level with its display attributes.
type Retracement struct {
	Ratio float64 `json:"ratio"`
	Label string  `json:"label"` // e.g. "61.8%"
	Color string  `json:"color"`
	Price float64 `json:"price"`
}

// LevelSet is everything a strategy computes for one series.
type LevelSet struct {
	Strategy     string        `json:"strategy"`
	Pair         LevelPair     `json:"pair"`
	Retracements []Retracement `json:"retracements,omitempty"`
}

// SupportPrice returns the support level or an UndefinedLevelError.
func (s LevelSet) SupportPrice() (float64, error) {
	if !s.Pair.Support.Valid {
		return 0, &UndefinedLevelError{Side: "support", Strategy: s.Strategy}
	}
	return s.Pair.Support.Price, nil
}

// ResistancePrice returns the resistance level or an UndefinedLevelError.
func (s LevelSet) ResistancePrice() (float64, error) {
	if !s.Pair.Resistance.Valid {
		return 0, &UndefinedLevelError{Side: "resistance", Strategy: s.Strategy}
	}
	return s.Pair.Resistance.Price, nil
}

// AnalysisRecord is one finished pipeline run as written to the journal.
type AnalysisRecord struct {
	ID             string    `json:"id"`
	Symbol         string    `json:"symbol"`
	Interval       string    `json:"interval"`
	LookbackDays   int       `json:"lookback_days"`
	Strategy       string    `json:"strategy"`
	Candles        int       `json:"candles"`
	LastClose      float64   `json:"last_close"`
	Support        *float64  `json:"support,omitempty"`
	Resistance     *float64  `json:"resistance,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
