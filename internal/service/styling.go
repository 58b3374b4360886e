package service

// Fixed chart palette
const (
	ColorPrimary   = "#8b5cf6"
	ColorSecondary = "#3b82f6"
	ColorGreen     = "#10b981"
	ColorAmber     = "#f59e0b"
	ColorRed       = "#ef4444"
	ColorBG        = "#0a0a0a"
)

// Palette is the trace color rotation for multi-series charts
var Palette = []string{ColorPrimary, ColorSecondary, ColorGreen, ColorAmber, ColorRed}

const generalStyling = `GENERAL STYLING RULES:
- Dark background (` + ColorBG + `), white/light gray text
- Primary color: ` + ColorPrimary + ` (purple)
- Secondary colors: ` + ColorSecondary + ` (blue), ` + ColorGreen + ` (green), ` + ColorAmber + ` (amber)
- Always include a descriptive title`

var chartStyling = map[string]string{
	ChartBar: `BAR CHART:
- Colorful bars with the primary palette
- Keep x-axis labels readable`,

	ChartHorizontalBar: `HORIZONTAL BAR CHART:
- orientation='h' for all traces
- Order bars by value, good for long category names`,

	ChartGroupedBar: `GROUPED BAR CHART:
- barmode='group', distinct color per group, legend on`,

	ChartScatter: `SCATTER PLOT:
- mode='markers', opacity 0.6-0.8 for overlapping points
- Axis labels for both x and y`,

	ChartHistogram: `HISTOGRAM:
- 20-30 bins for a smooth distribution, count on y-axis`,

	ChartPie: `PIE CHART:
- At most 6-8 slices, hole=0.4 for donut style`,

	ChartLine: `LINE CHART:
- mode='lines+markers', different colors for multiple lines`,

	ChartHeatmap: `HEATMAP:
- 'RdBu' colorscale for correlation matrices, zmid=0`,

	ChartBox: `BOX PLOT:
- One box per category, include outliers`,
}

// stylingInstructions returns the prompt styling block for a chart type
func stylingInstructions(chartType string) string {
	specific, ok := chartStyling[chartType]
	if !ok {
		specific = chartStyling[ChartBar]
	}
	return generalStyling + "\n\n" + specific
}
