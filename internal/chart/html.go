package chart

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/Alias1177/StockPredictor/models"
)

// TickerLookupURL lists the symbols the default data source understands.
const TickerLookupURL = "https://finance.yahoo.com/lookup/"

// Page is the dashboard view model. Chart is nil until an analysis ran.
type Page struct {
	Symbol     string
	Interval   string
	Days       int
	Strategy   string
	Strategies []string

	Chart               *Spec
	Levels              string
	Recommendation      string
	RecommendationError string
	Warning             string
}

type pageData struct {
	Page
	MinDays   int
	MaxDays   int
	LookupURL string
	Figure    template.JS
}

// RenderHTML writes the dashboard page.
func RenderHTML(w io.Writer, page Page) error {
	data := pageData{
		Page:      page,
		MinDays:   models.MinLookbackDays,
		MaxDays:   models.MaxLookbackDays,
		LookupURL: TickerLookupURL,
	}
	if page.Chart != nil {
		fig, err := PlotlyFigure(*page.Chart)
		if err != nil {
			return err
		}
		data.Figure = template.JS(fig)
	}
	return pageTemplate.Execute(w, data)
}

type plotlyTrace struct {
	Type  string    `json:"type"`
	Name  string    `json:"name"`
	X     []string  `json:"x"`
	Open  []float64 `json:"open"`
	High  []float64 `json:"high"`
	Low   []float64 `json:"low"`
	Close []float64 `json:"close"`
}

type plotlyShape struct {
	Type string         `json:"type"`
	XRef string         `json:"xref"`
	X0   float64        `json:"x0"`
	X1   float64        `json:"x1"`
	Y0   float64        `json:"y0"`
	Y1   float64        `json:"y1"`
	Line map[string]any `json:"line"`
}

type plotlyAnnotation struct {
	XRef      string  `json:"xref"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
}

// PlotlyFigure encodes the spec as a Plotly figure ({data, layout}).
func PlotlyFigure(spec Spec) ([]byte, error) {
	trace := plotlyTrace{
		Type:  "candlestick",
		Name:  "Price",
		X:     make([]string, len(spec.Candles)),
		Open:  make([]float64, len(spec.Candles)),
		High:  make([]float64, len(spec.Candles)),
		Low:   make([]float64, len(spec.Candles)),
		Close: make([]float64, len(spec.Candles)),
	}
	for i, c := range spec.Candles {
		trace.X[i] = c.Timestamp.Format("2006-01-02 15:04:05")
		trace.Open[i] = c.Open
		trace.High[i] = c.High
		trace.Low[i] = c.Low
		trace.Close[i] = c.Close
	}

	shapes := make([]plotlyShape, 0, len(spec.Lines))
	annotations := make([]plotlyAnnotation, 0, len(spec.Lines))
	for _, l := range spec.Lines {
		shapes = append(shapes, plotlyShape{
			Type: "line", XRef: "paper", X0: 0, X1: 1, Y0: l.Price, Y1: l.Price,
			Line: map[string]any{"color": CSSColor(l.Color), "dash": l.Dash, "width": l.Width},
		})
		annotations = append(annotations, plotlyAnnotation{
			XRef: "paper", X: 1, Y: l.Price, Text: l.Label,
			XAnchor: "right", YAnchor: "bottom",
		})
	}

	fig := map[string]any{
		"data": []plotlyTrace{trace},
		"layout": map[string]any{
			"title":       spec.Title,
			"xaxis":       map[string]any{"rangeslider": map[string]any{"visible": spec.RangeSlider}},
			"shapes":      shapes,
			"annotations": annotations,
		},
	}
	out, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("encode figure: %w", err)
	}
	return out, nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>LLM Stock Prediction</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
body { font-family: sans-serif; margin: 0; display: flex; }
aside { width: 260px; padding: 1rem; background: #f0f2f6; min-height: 100vh; }
main { flex: 1; padding: 1rem 2rem; }
label { display: block; margin-top: .75rem; }
.warning { background: #fff3cd; padding: .75rem; }
.error { background: #f8d7da; padding: .75rem; }
pre { white-space: pre-wrap; }
</style>
</head>
<body>
<aside>
<form method="get" action="/">
<label>Enter Ticker Symbol <input type="text" name="symbol" value="{{.Symbol}}"></label>
<label>Enter Interval <input type="text" name="interval" value="{{.Interval}}"></label>
<p><a href="{{.LookupURL}}" target="_blank" rel="noopener">Click here for full list of tickers</a></p>
<label>Days of data to fetch: <output id="days-value">{{.Days}}</output>
<input type="range" name="days" min="{{.MinDays}}" max="{{.MaxDays}}" value="{{.Days}}" oninput="document.getElementById('days-value').value=this.value"></label>
<label>Level strategy <select name="strategy">
{{- range .Strategies}}
<option value="{{.}}"{{if eq . $.Strategy}} selected{{end}}>{{.}}</option>
{{- end}}
</select></label>
<p><button type="submit">Analyze</button></p>
</form>
</aside>
<main>
<h1>LLM-Powered Stock and Crypto Predictor</h1>
{{- if .Warning}}
<div class="warning">{{.Warning}}</div>
{{- end}}
{{- if .Chart}}
<h2>{{.Chart.Title}}</h2>
<div id="chart"></div>
<script>
var fig = {{.Figure}};
Plotly.newPlot("chart", fig.data, fig.layout);
</script>
{{- if .Levels}}
<pre>{{.Levels}}</pre>
{{- end}}
<h2>Prediction Section</h2>
{{- if .RecommendationError}}
<div class="error">Error interacting with the recommendation service: {{.RecommendationError}}</div>
{{- else}}
<p><strong>LLM Prediction:</strong></p>
<pre>{{.Recommendation}}</pre>
{{- end}}
{{- end}}
</main>
</body>
</html>
`))
