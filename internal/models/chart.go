package models

// ChartSpec is a renderer-independent chart description: a list of traces
// plus display configuration. Data is never empty for a generated chart.
type ChartSpec struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single data series within a chart
type Trace struct {
	Type        string        `json:"type"`
	Mode        string        `json:"mode,omitempty"`
	Name        string        `json:"name,omitempty"`
	Orientation string        `json:"orientation,omitempty"`
	X           []interface{} `json:"x,omitempty"`
	Y           []interface{} `json:"y,omitempty"`
	Z           [][]float64   `json:"z,omitempty"`
	Labels      []string      `json:"labels,omitempty"`
	Values      []float64     `json:"values,omitempty"`
	Hole        float64       `json:"hole,omitempty"`
	NBinsX      int           `json:"nbinsx,omitempty"`
	Colorscale  string        `json:"colorscale,omitempty"`
	ZMid        *float64      `json:"zmid,omitempty"`
	Marker      *Marker       `json:"marker,omitempty"`
	Line        *Line         `json:"line,omitempty"`
}

// Marker styles the points or bars of a trace
type Marker struct {
	Color   string   `json:"color,omitempty"`
	Colors  []string `json:"colors,omitempty"`
	Opacity float64  `json:"opacity,omitempty"`
	Size    int      `json:"size,omitempty"`
}

// Line styles a line trace
type Line struct {
	Color string `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
	Dash  string `json:"dash,omitempty"`
}

// Layout holds chart-level display configuration
type Layout struct {
	Title      string `json:"title,omitempty"`
	XAxis      *Axis  `json:"xaxis,omitempty"`
	YAxis      *Axis  `json:"yaxis,omitempty"`
	BarMode    string `json:"barmode,omitempty"`
	ShowLegend bool   `json:"showlegend,omitempty"`
	PaperBG    string `json:"paper_bgcolor,omitempty"`
	PlotBG     string `json:"plot_bgcolor,omitempty"`
	Font       *Font  `json:"font,omitempty"`
}

// Axis titles one chart axis
type Axis struct {
	Title string `json:"title,omitempty"`
}

// Font styles chart text
type Font struct {
	Color string `json:"color,omitempty"`
}
