package service

import (
	"strings"
)

// Intent is the classification outcome deciding which responder handles a
// query
type Intent string

const (
	IntentStats    Intent = "stats"
	IntentChart    Intent = "chart"
	IntentAnalysis Intent = "analysis"
)

// Chart type constants
const (
	ChartBar           = "bar"
	ChartHorizontalBar = "horizontal_bar"
	ChartGroupedBar    = "grouped_bar"
	ChartScatter       = "scatter"
	ChartHistogram     = "histogram"
	ChartLine          = "line"
	ChartPie           = "pie"
	ChartHeatmap       = "heatmap"
	ChartBox           = "box"
)

// Classification pairs an intent with a chart subtype (chart intent only)
type Classification struct {
	Intent    Intent
	ChartType string
}

// Classifier maps free-text queries to intents with ordered keyword rules.
// It is pure and total: any string classifies, unmatched text is Analysis.
type Classifier struct {
	// DefaultChartType is used when a chart keyword matched but no subtype
	// keyword did
	DefaultChartType string

	rules []rule
}

type rule struct {
	matches func(q string) bool
	outcome func(c *Classifier, q string) Classification
}

var chartKeywords = []string{
	"chart", "plot", "graph", "visualiz", "distribution",
	"histogram", "scatter", "bar", "pie", "heatmap", "box",
}

var statsKeywords = []string{
	"row", "column", "feature", "missing", "null", "mean", "average",
	"median", "mode", "count", "unique", "describe", "schema",
	"data type", "dtype",
}

// NewClassifier builds the default rule set: chart keywords take precedence
// over stats keywords, everything else is analysis.
func NewClassifier() *Classifier {
	c := &Classifier{DefaultChartType: ChartBar}
	c.rules = []rule{
		{
			matches: func(q string) bool { return containsAny(q, chartKeywords) },
			outcome: func(c *Classifier, q string) Classification {
				return Classification{Intent: IntentChart, ChartType: c.detectChartType(q)}
			},
		},
		{
			matches: func(q string) bool { return containsAny(q, statsKeywords) },
			outcome: func(c *Classifier, q string) Classification {
				return Classification{Intent: IntentStats}
			},
		},
		{
			// Catch-all
			matches: func(q string) bool { return true },
			outcome: func(c *Classifier, q string) Classification {
				return Classification{Intent: IntentAnalysis}
			},
		},
	}
	return c
}

// Classify maps a query to an intent and, for charts, a subtype
func (c *Classifier) Classify(query string) Classification {
	q := strings.ToLower(query)
	for _, r := range c.rules {
		if r.matches(q) {
			return r.outcome(c, q)
		}
	}
	// Unreachable with the catch-all in place
	return Classification{Intent: IntentAnalysis}
}

// detectChartType runs the secondary subtype pass over an already-lowered
// query
func (c *Classifier) detectChartType(q string) string {
	switch {
	case strings.Contains(q, "scatter") || strings.Contains(q, "relationship") || strings.Contains(q, " vs "):
		return ChartScatter
	case strings.Contains(q, "horizontal"):
		return ChartHorizontalBar
	case strings.Contains(q, "pie") || strings.Contains(q, "proportion"):
		return ChartPie
	case strings.Contains(q, "histogram"):
		return ChartHistogram
	case strings.Contains(q, "heatmap") || strings.Contains(q, "correlation matrix"):
		return ChartHeatmap
	case strings.Contains(q, "box"):
		return ChartBox
	case strings.Contains(q, "line") && (strings.Contains(q, "trend") || strings.Contains(q, "time")):
		return ChartLine
	case strings.Contains(q, " by ") || strings.Contains(q, "across") || strings.Contains(q, "within"):
		return ChartGroupedBar
	default:
		return c.DefaultChartType
	}
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
