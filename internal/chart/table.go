package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/Alias1177/StockPredictor/models"
)

// RenderTable prints the most recent rows candles as a terminal table.
// rows <= 0 prints every candle.
func RenderTable(w io.Writer, series *models.Series, rows int) {
	candles := series.Candles
	if rows > 0 && len(candles) > rows {
		candles = candles[len(candles)-rows:]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Open", "High", "Low", "Close", "Volume"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, c := range candles {
		table.Append([]string{
			c.Timestamp.Format("2006-01-02 15:04 MST"),
			price(c.Open),
			price(c.High),
			price(c.Low),
			price(c.Close),
			humanize.Comma(int64(c.Volume)),
		})
	}

	table.Render()
}

// FormatLevels renders a LevelSet as plain text for terminals and chat.
func FormatLevels(levels models.LevelSet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Strategy: %s\n", levels.Strategy)

	if len(levels.Retracements) > 0 {
		for _, r := range levels.Retracements {
			fmt.Fprintf(&sb, "Fibonacci %s: %s\n", r.Label, price(r.Price))
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "Support: %s\n", levelText(levels.Pair.Support))
	fmt.Fprintf(&sb, "Resistance: %s\n", levelText(levels.Pair.Resistance))
	return sb.String()
}

func levelText(l models.Level) string {
	if !l.Valid {
		return "N/A"
	}
	return price(l.Price)
}

func price(v float64) string {
	return humanize.CommafWithDigits(v, models.PriceDecimals)
}
