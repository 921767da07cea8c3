package gpt

import (
	"math"
	"strconv"
	"strings"

	"github.com/Alias1177/StockPredictor/internal/analysis/technical"
	"github.com/Alias1177/StockPredictor/models"
)

// NotAvailable stands in for undefined levels and undefined statistics.
const NotAvailable = "N/A"

// PromptInput is everything quoted to the model for one analysis.
type PromptInput struct {
	Ticker  string
	Summary technical.Summary
	Levels  models.LevelSet
}

// BuildPrompt renders the recommendation request. It is a pure function of
// its input.
func BuildPrompt(in PromptInput) string {
	supportLabel, resistanceLabel := levelLabels(in.Levels.Strategy)

	var sb strings.Builder
	sb.WriteString("You are a financial analyst with solid expertise in technical and fundamental analysis.\n")
	sb.WriteString("Based on the data below, provide a recommendation to either 'Buy', 'Sell', or 'Hold' the asset.\n")
	sb.WriteString("Your response should include a decision, reasoning, and any key risks. Here is the data:\n\n")

	writeField(&sb, "Ticker", in.Ticker)
	writeField(&sb, "Last Close Price", FormatNumber(in.Summary.LastClose))
	writeField(&sb, "Price Volatility (Std Dev)", FormatNumber(in.Summary.CloseStdDev))
	writeField(&sb, "Average Volume", FormatNumber(in.Summary.MeanVolume))
	writeField(&sb, "Recent Closing Prices", formatList(in.Summary.RecentCloses))
	writeField(&sb, supportLabel, formatLevel(in.Levels.Pair.Support))
	writeField(&sb, resistanceLabel, formatLevel(in.Levels.Pair.Resistance))

	sb.WriteString("\nConsider both short-term (next week) and long-term (next quarter) factors.\n")
	sb.WriteString("Provide your response in the following format:\n")
	sb.WriteString("- Decision: 'Buy', 'Sell', or 'Hold'\n")
	sb.WriteString("- Reasoning: A concise explanation based on the data above.\n")
	sb.WriteString("- Key Risks: Any potential risks or uncertainties impacting your recommendation.\n\n")
	sb.WriteString("Do not use markdown notation anywhere in the response.\n")

	return sb.String()
}

// FormatNumber prints the shortest decimal that round-trips, or N/A for NaN
// and infinities.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func levelLabels(strategy string) (string, string) {
	if strategy == technical.StrategyFibonacci {
		return "Fibonacci Support (" + technical.FibLabel(0) + ")",
			"Fibonacci Resistance (" + technical.FibLabel(1) + ")"
	}
	return "Support Line", "Resistance Line"
}

func formatLevel(l models.Level) string {
	if !l.Valid {
		return NotAvailable
	}
	return FormatNumber(l.Price)
}

func formatList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = FormatNumber(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func writeField(sb *strings.Builder, name, value string) {
	sb.WriteString("- ")
	sb.WriteString(name)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteByte('\n')
}
