package chart

import (
	"fmt"

	"github.com/Alias1177/StockPredictor/internal/analysis/technical"
	"github.com/Alias1177/StockPredictor/models"
)

// Line styles.
const (
	DashDashed = "dash"
	LineWidth  = 2
)

// HLine is a horizontal annotation across the whole chart.
type HLine struct {
	Price float64 `json:"price"`
	Label string  `json:"label"`
	Color string  `json:"color"`
	Dash  string  `json:"dash"`
	Width int     `json:"width"`
}

// Spec describes a candlestick chart independently of how it is drawn.
type Spec struct {
	Title       string          `json:"title"`
	Candles     []models.Candle `json:"candles"`
	Lines       []HLine         `json:"lines"`
	RangeSlider bool            `json:"range_slider"`
}

// Build lays out the candlestick chart for a series and its levels.
// Undefined levels produce no line.
func Build(series *models.Series, days int, levels models.LevelSet) Spec {
	spec := Spec{
		Title:   fmt.Sprintf("%s Price Chart (Last %d Days)", series.DisplayName(), days),
		Candles: series.Candles,
	}

	if levels.Strategy == technical.StrategyFibonacci {
		for _, r := range levels.Retracements {
			spec.Lines = append(spec.Lines, HLine{
				Price: r.Price,
				Label: r.Label,
				Color: r.Color,
				Dash:  DashDashed,
				Width: LineWidth,
			})
		}
		return spec
	}

	if p, err := levels.SupportPrice(); err == nil {
		spec.Lines = append(spec.Lines, HLine{Price: p, Label: "Support", Color: "green", Dash: DashDashed, Width: LineWidth})
	}
	if p, err := levels.ResistancePrice(); err == nil {
		spec.Lines = append(spec.Lines, HLine{Price: p, Label: "Resistance", Color: "red", Dash: DashDashed, Width: LineWidth})
	}
	return spec
}

var cssColors = map[string]string{
	"support-green":  "green",
	"resistance-red": "red",
	"light-blue":     "lightblue",
}

// CSSColor maps a colour token to a colour a browser understands.
func CSSColor(token string) string {
	if c, ok := cssColors[token]; ok {
		return c
	}
	return token
}
