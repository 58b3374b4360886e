package service

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"datachat-backend/internal/analysis"
	"datachat-backend/internal/llm"
	"datachat-backend/internal/models"
	"datachat-backend/internal/state"
)

// Limits on how much raw data a single chart carries
const (
	maxBarCategories = 8
	maxPieSlices     = 6
	maxScatterPoints = 500
	maxHistogramVals = 1000
	maxGroupSeries   = 5
	histogramBins    = 25
)

// ChartGenerator produces a chart specification for a chart-intent query.
// Generation is a tier chain: LLM-planned, then deterministic rules, then an
// ultimate fallback that cannot fail for a non-empty table.
type ChartGenerator struct {
	llm Generator
}

func NewChartGenerator(llm Generator) *ChartGenerator {
	return &ChartGenerator{llm: llm}
}

type chartAttempt func(df *state.DataFrame, summary analysis.ContextSummary, query, chartType string) (models.ChartSpec, error)

// Generate runs the tier chain and returns the first successful chart. The
// result always has at least one trace.
func (g *ChartGenerator) Generate(df *state.DataFrame, summary analysis.ContextSummary, query, chartType string) models.ChartSpec {
	attempts := []chartAttempt{g.llmChart, g.directChart}
	for i, attempt := range attempts {
		spec, err := attempt(df, summary, query, chartType)
		if err == nil {
			return spec
		}
		log.Printf("[CHART] tier %d failed: %v", i+1, err)
	}
	return g.fallbackChart(df, summary)
}

// ============================================================================
// Tier 1: LLM-planned generation
// ============================================================================

// chartPlan is the structured payload the model is asked to emit. Values are
// filled from the table afterwards, so only structure can go wrong.
type chartPlan struct {
	ChartType string `json:"chart_type"`
	XColumn   string `json:"x_column"`
	YColumn   string `json:"y_column,omitempty"`
	GroupBy   string `json:"group_by,omitempty"`
	Title     string `json:"title,omitempty"`
}

func (g *ChartGenerator) llmChart(df *state.DataFrame, summary analysis.ContextSummary, query, chartType string) (models.ChartSpec, error) {
	prompt := fmt.Sprintf(`You are a data visualization expert. Pick the columns for a chart answering the user's request.

USER REQUEST: %s

CHART TYPE: %s

%s

SUGGESTED COLUMNS TO USE: %s

%s

Respond with ONLY a JSON object, no markdown, no explanation:
{"chart_type": "%s", "x_column": "...", "y_column": "...", "group_by": "...", "title": "..."}

RULES:
1. ONLY use column names from the AVAILABLE COLUMNS section above
2. chart_type is one of: bar, horizontal_bar, grouped_bar, scatter, histogram, line, pie, heatmap, box
3. y_column and group_by may be empty when the chart type does not need them
4. Give the chart a short descriptive title`,
		query, chartType, summary.Render(),
		strings.Join(analysis.SuggestColumns(summary, query), ", "),
		stylingInstructions(chartType), chartType)

	response, err := g.llm.Generate(prompt)
	if err != nil {
		return models.ChartSpec{}, fmt.Errorf("llm call failed: %w", err)
	}

	jsonStr := llm.ExtractJSON(response)
	if jsonStr == "" {
		return models.ChartSpec{}, fmt.Errorf("no JSON found in response")
	}

	var plan chartPlan
	if err := json.Unmarshal([]byte(jsonStr), &plan); err != nil {
		return models.ChartSpec{}, fmt.Errorf("malformed chart plan: %w", err)
	}

	return g.buildPlanned(df, summary, plan)
}

// buildPlanned validates a chart plan against the table and fills trace
// values from real data. Any column the plan references must exist.
func (g *ChartGenerator) buildPlanned(df *state.DataFrame, summary analysis.ContextSummary, plan chartPlan) (models.ChartSpec, error) {
	resolve := func(name string) (*analysis.ColumnInfo, error) {
		if name == "" {
			return nil, nil
		}
		col := summary.Column(name)
		if col == nil {
			return nil, fmt.Errorf("plan references unknown column %q", name)
		}
		return col, nil
	}

	x, err := resolve(plan.XColumn)
	if err != nil {
		return models.ChartSpec{}, err
	}
	y, err := resolve(plan.YColumn)
	if err != nil {
		return models.ChartSpec{}, err
	}
	group, err := resolve(plan.GroupBy)
	if err != nil {
		return models.ChartSpec{}, err
	}

	switch strings.ToLower(strings.TrimSpace(plan.ChartType)) {
	case ChartBar:
		if x == nil {
			return models.ChartSpec{}, fmt.Errorf("bar plan missing x_column")
		}
		return buildBar(df, *x, plan.Title, false), nil
	case ChartHorizontalBar:
		if x == nil {
			return models.ChartSpec{}, fmt.Errorf("horizontal bar plan missing x_column")
		}
		return buildBar(df, *x, plan.Title, true), nil
	case ChartGroupedBar:
		if x == nil || group == nil {
			return models.ChartSpec{}, fmt.Errorf("grouped bar plan needs x_column and group_by")
		}
		return buildGroupedBar(df, *x, *group, plan.Title)
	case ChartScatter:
		if x == nil || y == nil || x.Type != analysis.TypeNumeric || y.Type != analysis.TypeNumeric {
			return models.ChartSpec{}, fmt.Errorf("scatter plan needs two numeric columns")
		}
		return buildScatter(df, *x, *y, plan.Title), nil
	case ChartHistogram:
		if x == nil || x.Type != analysis.TypeNumeric {
			return models.ChartSpec{}, fmt.Errorf("histogram plan needs a numeric x_column")
		}
		return buildHistogram(df, *x, plan.Title), nil
	case ChartLine:
		if x == nil || y == nil || y.Type != analysis.TypeNumeric {
			return models.ChartSpec{}, fmt.Errorf("line plan needs an x_column and a numeric y_column")
		}
		return buildLine(df, *x, *y, plan.Title)
	case ChartPie:
		if x == nil {
			return models.ChartSpec{}, fmt.Errorf("pie plan missing x_column")
		}
		return buildPie(df, *x, plan.Title), nil
	case ChartHeatmap:
		return buildHeatmap(df, summary)
	case ChartBox:
		if y == nil && x != nil && x.Type == analysis.TypeNumeric {
			y = x
		}
		if y == nil || y.Type != analysis.TypeNumeric {
			return models.ChartSpec{}, fmt.Errorf("box plan needs a numeric column")
		}
		return buildBox(df, *y, plan.Title), nil
	default:
		return models.ChartSpec{}, fmt.Errorf("plan has unknown chart type %q", plan.ChartType)
	}
}

// ============================================================================
// Tier 2: deterministic generation by fixed rules
// ============================================================================

func (g *ChartGenerator) directChart(df *state.DataFrame, summary analysis.ContextSummary, query, chartType string) (models.ChartSpec, error) {
	categorical := summary.ColumnsOfType(analysis.TypeCategorical)
	numeric := summary.ColumnsOfType(analysis.TypeNumeric)
	datetime := summary.ColumnsOfType(analysis.TypeDatetime)

	switch chartType {
	case ChartScatter:
		if len(numeric) >= 2 {
			return buildScatter(df, numeric[0], numeric[1], ""), nil
		}
		return models.ChartSpec{}, fmt.Errorf("scatter needs two numeric columns")

	case ChartHistogram:
		if len(numeric) >= 1 {
			return buildHistogram(df, numeric[0], ""), nil
		}
		return models.ChartSpec{}, fmt.Errorf("histogram needs a numeric column")

	case ChartLine:
		if len(datetime) >= 1 && len(numeric) >= 1 {
			return buildLine(df, datetime[0], numeric[0], "")
		}
		if len(numeric) >= 2 {
			return buildLine(df, numeric[0], numeric[1], "")
		}
		return models.ChartSpec{}, fmt.Errorf("line needs a time or numeric x and a numeric y")

	case ChartPie:
		if len(categorical) >= 1 {
			return buildPie(df, categorical[0], ""), nil
		}
		return models.ChartSpec{}, fmt.Errorf("pie needs a categorical column")

	case ChartHeatmap:
		return buildHeatmap(df, summary)

	case ChartBox:
		if len(numeric) >= 1 {
			return buildBox(df, numeric[0], ""), nil
		}
		return models.ChartSpec{}, fmt.Errorf("box needs a numeric column")

	case ChartGroupedBar:
		if len(categorical) >= 2 {
			return buildGroupedBar(df, categorical[0], categorical[1], "")
		}
		fallthrough

	default: // bar, horizontal_bar and anything unrecognized
		if len(categorical) >= 1 {
			return buildBar(df, categorical[0], "", chartType == ChartHorizontalBar), nil
		}
		return models.ChartSpec{}, fmt.Errorf("bar needs a categorical column")
	}
}

// ============================================================================
// Tier 3: ultimate fallback
// ============================================================================

// fallbackChart is a bar of value counts over the first categorical column,
// or the first column of any type. It cannot fail for a non-empty table.
func (g *ChartGenerator) fallbackChart(df *state.DataFrame, summary analysis.ContextSummary) models.ChartSpec {
	col := summary.FirstOfType(analysis.TypeCategorical)
	if col == nil && len(summary.Columns) > 0 {
		col = &summary.Columns[0]
	}
	if col == nil {
		// Empty table is an upstream error; still return a well-formed spec
		return models.ChartSpec{
			Data:   []models.Trace{{Type: "bar"}},
			Layout: baseLayout("No data"),
		}
	}

	counts := analysis.ValueCounts(df, col.Index, 5)
	x, y := countAxes(counts)
	return models.ChartSpec{
		Data: []models.Trace{{
			Type:   "bar",
			X:      x,
			Y:      y,
			Marker: &models.Marker{Color: ColorPrimary},
		}},
		Layout: baseLayout(col.Name),
	}
}

// ============================================================================
// Builders shared across tiers
// ============================================================================

func baseLayout(title string) models.Layout {
	return models.Layout{
		Title:   title,
		PaperBG: ColorBG,
		PlotBG:  ColorBG,
		Font:    &models.Font{Color: "#e5e7eb"},
	}
}

func countAxes(counts []analysis.ValueCount) ([]interface{}, []interface{}) {
	x := make([]interface{}, len(counts))
	y := make([]interface{}, len(counts))
	for i, vc := range counts {
		x[i] = vc.Value
		y[i] = vc.Count
	}
	return x, y
}

func orDefault(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}

func buildBar(df *state.DataFrame, col analysis.ColumnInfo, title string, horizontal bool) models.ChartSpec {
	counts := analysis.ValueCounts(df, col.Index, maxBarCategories)
	x, y := countAxes(counts)

	trace := models.Trace{
		Type:   "bar",
		Marker: &models.Marker{Color: ColorPrimary},
	}
	layout := baseLayout(orDefault(title, fmt.Sprintf("Count of %s", col.Name)))
	if horizontal {
		trace.Orientation = "h"
		trace.X, trace.Y = y, x
		layout.XAxis = &models.Axis{Title: "Count"}
		layout.YAxis = &models.Axis{Title: col.Name}
	} else {
		trace.X, trace.Y = x, y
		layout.XAxis = &models.Axis{Title: col.Name}
		layout.YAxis = &models.Axis{Title: "Count"}
	}

	return models.ChartSpec{Data: []models.Trace{trace}, Layout: layout}
}

func buildGroupedBar(df *state.DataFrame, xCol, groupCol analysis.ColumnInfo, title string) (models.ChartSpec, error) {
	// Cross-tabulate: count rows per (x value, group value)
	crossed := make(map[string]map[string]int)
	groupTotals := make(map[string]int)
	xOrder := []string{}

	for i := range df.Rows {
		xv := strings.TrimSpace(df.Value(i, xCol.Index))
		gv := strings.TrimSpace(df.Value(i, groupCol.Index))
		if xv == "" || gv == "" {
			continue
		}
		if crossed[xv] == nil {
			crossed[xv] = make(map[string]int)
			xOrder = append(xOrder, xv)
		}
		crossed[xv][gv]++
		groupTotals[gv]++
	}
	if len(xOrder) == 0 {
		return models.ChartSpec{}, fmt.Errorf("no values to group by %s", groupCol.Name)
	}

	sort.Strings(xOrder)
	if len(xOrder) > maxBarCategories {
		xOrder = xOrder[:maxBarCategories]
	}

	// Keep the largest group values as series
	groups := make([]string, 0, len(groupTotals))
	for g := range groupTotals {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groupTotals[groups[i]] != groupTotals[groups[j]] {
			return groupTotals[groups[i]] > groupTotals[groups[j]]
		}
		return groups[i] < groups[j]
	})
	if len(groups) > maxGroupSeries {
		groups = groups[:maxGroupSeries]
	}

	traces := make([]models.Trace, 0, len(groups))
	for i, g := range groups {
		x := make([]interface{}, len(xOrder))
		y := make([]interface{}, len(xOrder))
		for j, xv := range xOrder {
			x[j] = xv
			y[j] = crossed[xv][g]
		}
		traces = append(traces, models.Trace{
			Type:   "bar",
			Name:   g,
			X:      x,
			Y:      y,
			Marker: &models.Marker{Color: Palette[i%len(Palette)]},
		})
	}

	layout := baseLayout(orDefault(title, fmt.Sprintf("%s by %s", groupCol.Name, xCol.Name)))
	layout.BarMode = "group"
	layout.ShowLegend = true
	return models.ChartSpec{Data: traces, Layout: layout}, nil
}

func buildScatter(df *state.DataFrame, xCol, yCol analysis.ColumnInfo, title string) models.ChartSpec {
	x := []interface{}{}
	y := []interface{}{}
	for i := range df.Rows {
		xv, errX := strconv.ParseFloat(strings.TrimSpace(df.Value(i, xCol.Index)), 64)
		yv, errY := strconv.ParseFloat(strings.TrimSpace(df.Value(i, yCol.Index)), 64)
		if errX != nil || errY != nil {
			continue
		}
		x = append(x, xv)
		y = append(y, yv)
		if len(x) >= maxScatterPoints {
			break
		}
	}

	layout := baseLayout(orDefault(title, fmt.Sprintf("%s vs %s", yCol.Name, xCol.Name)))
	layout.XAxis = &models.Axis{Title: xCol.Name}
	layout.YAxis = &models.Axis{Title: yCol.Name}

	return models.ChartSpec{
		Data: []models.Trace{{
			Type:   "scatter",
			Mode:   "markers",
			Name:   "Data",
			X:      x,
			Y:      y,
			Marker: &models.Marker{Color: ColorPrimary, Size: 8, Opacity: 0.7},
		}},
		Layout: layout,
	}
}

func buildHistogram(df *state.DataFrame, col analysis.ColumnInfo, title string) models.ChartSpec {
	values := analysis.NumericValues(df, col.Index)
	if len(values) > maxHistogramVals {
		values = values[:maxHistogramVals]
	}
	x := make([]interface{}, len(values))
	for i, v := range values {
		x[i] = v
	}

	layout := baseLayout(orDefault(title, fmt.Sprintf("Distribution of %s", col.Name)))
	layout.XAxis = &models.Axis{Title: col.Name}
	layout.YAxis = &models.Axis{Title: "Frequency"}

	return models.ChartSpec{
		Data: []models.Trace{{
			Type:   "histogram",
			X:      x,
			NBinsX: histogramBins,
			Marker: &models.Marker{Color: ColorPrimary},
		}},
		Layout: layout,
	}
}

func buildLine(df *state.DataFrame, xCol, yCol analysis.ColumnInfo, title string) (models.ChartSpec, error) {
	type point struct {
		x    string
		xNum float64
		y    float64
	}
	numericX := xCol.Type == analysis.TypeNumeric

	points := []point{}
	for i := range df.Rows {
		xv := strings.TrimSpace(df.Value(i, xCol.Index))
		yv, err := strconv.ParseFloat(strings.TrimSpace(df.Value(i, yCol.Index)), 64)
		if xv == "" || err != nil {
			continue
		}
		p := point{x: xv, y: yv}
		if numericX {
			xNum, err := strconv.ParseFloat(xv, 64)
			if err != nil {
				continue
			}
			p.xNum = xNum
		}
		points = append(points, p)
		if len(points) >= maxScatterPoints {
			break
		}
	}
	if len(points) == 0 {
		return models.ChartSpec{}, fmt.Errorf("no plottable points for %s over %s", yCol.Name, xCol.Name)
	}

	// Numeric axes order by value, everything else lexicographically
	if numericX {
		sort.SliceStable(points, func(i, j int) bool { return points[i].xNum < points[j].xNum })
	} else {
		sort.SliceStable(points, func(i, j int) bool { return points[i].x < points[j].x })
	}

	x := make([]interface{}, len(points))
	y := make([]interface{}, len(points))
	for i, p := range points {
		if numericX {
			x[i] = p.xNum
		} else {
			x[i] = p.x
		}
		y[i] = p.y
	}

	layout := baseLayout(orDefault(title, fmt.Sprintf("%s over %s", yCol.Name, xCol.Name)))
	layout.XAxis = &models.Axis{Title: xCol.Name}
	layout.YAxis = &models.Axis{Title: yCol.Name}

	return models.ChartSpec{
		Data: []models.Trace{{
			Type: "scatter",
			Mode: "lines+markers",
			Name: yCol.Name,
			X:    x,
			Y:    y,
			Line: &models.Line{Color: ColorPrimary, Width: 2},
		}},
		Layout: layout,
	}, nil
}

func buildPie(df *state.DataFrame, col analysis.ColumnInfo, title string) models.ChartSpec {
	counts := analysis.ValueCounts(df, col.Index, maxPieSlices)
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, vc := range counts {
		labels[i] = vc.Value
		values[i] = float64(vc.Count)
	}

	return models.ChartSpec{
		Data: []models.Trace{{
			Type:   "pie",
			Labels: labels,
			Values: values,
			Hole:   0.4,
			Marker: &models.Marker{Colors: Palette},
		}},
		Layout: baseLayout(orDefault(title, fmt.Sprintf("%s Distribution", col.Name))),
	}
}

func buildHeatmap(df *state.DataFrame, summary analysis.ContextSummary) (models.ChartSpec, error) {
	numeric := summary.ColumnsOfType(analysis.TypeNumeric)
	if len(numeric) < 2 {
		return models.ChartSpec{}, fmt.Errorf("heatmap needs at least two numeric columns")
	}

	names := make([]string, len(numeric))
	for i, col := range numeric {
		names[i] = col.Name
	}

	z := make([][]float64, len(numeric))
	for i := range numeric {
		z[i] = make([]float64, len(numeric))
		for j := range numeric {
			xs, ys := analysis.PairedColumns(df, numeric[i].Index, numeric[j].Index)
			z[i][j] = analysis.PearsonCorrelation(xs, ys)
		}
	}

	x := make([]interface{}, len(names))
	y := make([]interface{}, len(names))
	for i, n := range names {
		x[i] = n
		y[i] = n
	}

	zmid := 0.0
	return models.ChartSpec{
		Data: []models.Trace{{
			Type:       "heatmap",
			X:          x,
			Y:          y,
			Z:          z,
			Colorscale: "RdBu",
			ZMid:       &zmid,
		}},
		Layout: baseLayout("Correlation Matrix"),
	}, nil
}

func buildBox(df *state.DataFrame, col analysis.ColumnInfo, title string) models.ChartSpec {
	values := analysis.NumericValues(df, col.Index)
	y := make([]interface{}, len(values))
	for i, v := range values {
		y[i] = v
	}

	return models.ChartSpec{
		Data: []models.Trace{{
			Type:   "box",
			Name:   col.Name,
			Y:      y,
			Marker: &models.Marker{Color: ColorPrimary},
		}},
		Layout: baseLayout(orDefault(title, fmt.Sprintf("Spread of %s", col.Name))),
	}
}
