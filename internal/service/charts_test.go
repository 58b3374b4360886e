package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datachat-backend/internal/analysis"
	"datachat-backend/internal/state"
)

type fakeLLM struct {
	response string
	err      error
}

func (f fakeLLM) Generate(prompt string) (string, error) {
	return f.response, f.err
}

var errLLMDown = errors.New("connection refused")

func testFrame() *state.DataFrame {
	return &state.DataFrame{
		Headers: []string{"PassengerId", "Pclass", "Name", "Sex", "Age", "Fare", "Cabin"},
		Rows: [][]string{
			{"1", "3", "Braund, Mr. Owen", "male", "22", "7.25", ""},
			{"2", "1", "Cumings, Mrs. John", "female", "38", "71.28", ""},
			{"3", "3", "Heikkinen, Miss Laina", "female", "26", "7.92", ""},
			{"4", "1", "Futrelle, Mrs. Jacques", "female", "35", "53.1", ""},
			{"5", "3", "Allen, Mr. William", "male", "", "8.05", ""},
			{"6", "3", "Moran, Mr. James", "male", "27", "8.46", ""},
		},
	}
}

func TestGenerateUsesLLMPlan(t *testing.T) {
	g := NewChartGenerator(fakeLLM{
		response: `{"chart_type": "bar", "x_column": "Sex", "title": "Passengers by Sex"}`,
	})
	df := testFrame()
	summary := analysis.BuildContext(df)

	spec := g.Generate(df, summary, "bar chart of sex", ChartBar)

	require.Len(t, spec.Data, 1)
	assert.Equal(t, "bar", spec.Data[0].Type)
	assert.Equal(t, "Passengers by Sex", spec.Layout.Title)
	assert.Contains(t, spec.Data[0].X, "female")
	assert.Contains(t, spec.Data[0].X, "male")
}

func TestGenerateAcceptsFencedPlan(t *testing.T) {
	g := NewChartGenerator(fakeLLM{
		response: "Here you go:\n```json\n{\"chart_type\": \"pie\", \"x_column\": \"Sex\"}\n```",
	})
	df := testFrame()
	summary := analysis.BuildContext(df)

	spec := g.Generate(df, summary, "pie chart of sex", ChartPie)

	require.Len(t, spec.Data, 1)
	assert.Equal(t, "pie", spec.Data[0].Type)
	assert.Contains(t, spec.Data[0].Labels, "female")
}

func TestGenerateRejectsPlanWithUnknownColumn(t *testing.T) {
	g := NewChartGenerator(fakeLLM{
		response: `{"chart_type": "bar", "x_column": "Gender", "title": "Invented"}`,
	})
	df := testFrame()
	summary := analysis.BuildContext(df)

	spec := g.Generate(df, summary, "bar chart of gender", ChartBar)

	// Plan references a column that does not exist: the deterministic tier
	// takes over and never uses the plan's title
	require.NotEmpty(t, spec.Data)
	assert.NotEqual(t, "Invented", spec.Layout.Title)
}

func TestGenerateFallsBackWhenLLMDown(t *testing.T) {
	g := NewChartGenerator(fakeLLM{err: errLLMDown})
	df := testFrame()
	summary := analysis.BuildContext(df)

	for _, chartType := range []string{
		ChartBar, ChartHorizontalBar, ChartGroupedBar, ChartScatter,
		ChartHistogram, ChartLine, ChartPie, ChartHeatmap, ChartBox,
	} {
		spec := g.Generate(df, summary, "some chart", chartType)
		assert.NotEmpty(t, spec.Data, "chart type: %s", chartType)
	}
}

func TestGenerateGarbageResponseFallsThrough(t *testing.T) {
	g := NewChartGenerator(fakeLLM{response: "I cannot help with that."})
	df := testFrame()
	summary := analysis.BuildContext(df)

	spec := g.Generate(df, summary, "bar chart", ChartBar)
	require.NotEmpty(t, spec.Data)
	assert.Equal(t, "bar", spec.Data[0].Type)
}

func TestUltimateFallbackNeverEmpty(t *testing.T) {
	// Numeric-only table: the deterministic bar tier has no categorical
	// column to use, so the last tier must still produce a chart
	df := &state.DataFrame{
		Headers: []string{"x"},
		Rows:    [][]string{{"1"}, {"2"}, {"3"}},
	}
	summary := analysis.BuildContext(df)

	g := NewChartGenerator(fakeLLM{err: errLLMDown})
	spec := g.Generate(df, summary, "bar chart", ChartBar)

	require.NotEmpty(t, spec.Data)
	assert.Equal(t, "bar", spec.Data[0].Type)
}

func TestScatterDropsUnparseableRows(t *testing.T) {
	df := testFrame()
	summary := analysis.BuildContext(df)
	age := summary.Column("Age")
	fare := summary.Column("Fare")
	require.NotNil(t, age)
	require.NotNil(t, fare)

	spec := buildScatter(df, *age, *fare, "")
	require.Len(t, spec.Data, 1)
	// One row has a blank Age
	assert.Len(t, spec.Data[0].X, 5)
	assert.Len(t, spec.Data[0].Y, 5)
}

func TestHeatmapDiagonalIsOne(t *testing.T) {
	df := testFrame()
	summary := analysis.BuildContext(df)

	spec, err := buildHeatmap(df, summary)
	require.NoError(t, err)
	require.Len(t, spec.Data, 1)

	z := spec.Data[0].Z
	require.NotEmpty(t, z)
	for i := range z {
		assert.InDelta(t, 1.0, z[i][i], 1e-9)
	}
}

func TestHeatmapPairsRowsAcrossNullGaps(t *testing.T) {
	// A and B move together, but A has a gap on the row where B is 10.
	// Pairing cells by row (not by position after dropping nulls) keeps
	// the correlation strongly positive.
	df := &state.DataFrame{
		Headers: []string{"A", "B"},
		Rows: [][]string{
			{"", "10"},
			{"1", "1"},
			{"2", "2"},
			{"3", "3"},
			{"4", "100"},
		},
	}
	summary := analysis.BuildContext(df)

	spec, err := buildHeatmap(df, summary)
	require.NoError(t, err)
	require.Len(t, spec.Data, 1)

	z := spec.Data[0].Z
	require.Len(t, z, 2)
	assert.Greater(t, z[0][1], 0.5)
	assert.InDelta(t, z[0][1], z[1][0], 1e-9)
}

func TestLineSortsNumericAxisByValue(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"x", "y"},
		Rows: [][]string{
			{"10", "3"},
			{"2", "1"},
			{"1", "0"},
		},
	}
	summary := analysis.BuildContext(df)
	xCol := summary.Column("x")
	yCol := summary.Column("y")
	require.NotNil(t, xCol)
	require.NotNil(t, yCol)

	spec, err := buildLine(df, *xCol, *yCol, "")
	require.NoError(t, err)
	require.Len(t, spec.Data, 1)
	// "10" must come after "2", not before it
	assert.Equal(t, []interface{}{1.0, 2.0, 10.0}, spec.Data[0].X)
	assert.Equal(t, []interface{}{0.0, 1.0, 3.0}, spec.Data[0].Y)
}

func TestGroupedBarCrossTabulates(t *testing.T) {
	df := testFrame()
	summary := analysis.BuildContext(df)
	sex := summary.Column("Sex")
	name := summary.Column("Name")
	require.NotNil(t, sex)
	require.NotNil(t, name)

	spec, err := buildGroupedBar(df, *sex, *name, "")
	require.NoError(t, err)
	assert.NotEmpty(t, spec.Data)
	assert.Equal(t, "group", spec.Layout.BarMode)
	assert.True(t, spec.Layout.ShowLegend)
}

func TestChartsCarryDarkLayout(t *testing.T) {
	g := NewChartGenerator(fakeLLM{err: errLLMDown})
	df := testFrame()
	summary := analysis.BuildContext(df)

	spec := g.Generate(df, summary, "histogram of age", ChartHistogram)
	assert.Equal(t, ColorBG, spec.Layout.PaperBG)
	assert.Equal(t, ColorBG, spec.Layout.PlotBG)
}
