package models

// Stats status values.
const (
	StatsOK            = "ok"
	StatsEmpty         = "empty"
	StatsIndeterminate = "indeterminate"
)

// Summary holds the metric-card values of a series. Nil means undefined.
type Summary struct {
	Count  int      `json:"count"`
	Last   *float64 `json:"last"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	ZScore *float64 `json:"z_score"`
	Status string   `json:"status"`
}

// Trace is one line of a chart.
type Trace struct {
	Name    string    `json:"name"`
	X       []string  `json:"x"`
	Y       []float64 `json:"y"`
	Markers bool      `json:"markers,omitempty"`
}

// Figure is a chart description the page renders as-is.
type Figure struct {
	Title  string    `json:"title"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`
	Traces []Trace   `json:"traces"`
	HLines []float64 `json:"h_lines,omitempty"`
}

// Panel is what a dashboard endpoint returns: a chart plus its metric cards.
type Panel struct {
	Figure  Figure  `json:"figure"`
	Stats   Summary `json:"stats"`
	NoData  bool    `json:"no_data"`
	Message string  `json:"message,omitempty"`
}

// CurvePoint is one long-form rate-curve row.
type CurvePoint struct {
	Maturity string   `json:"maturity"`
	Issuer   string   `json:"issuer"`
	Value    *float64 `json:"value"`
}

// RateCurve is the curve view: the long-form table and its chart.
type RateCurve struct {
	Figure Figure       `json:"figure"`
	Rows   []CurvePoint `json:"rows"`
	Start  string       `json:"start,omitempty"`
	End    string       `json:"end,omitempty"`
	NoData bool         `json:"no_data"`
}
