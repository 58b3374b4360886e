package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datachat-backend/internal/analysis"
	"datachat-backend/internal/models"
	"datachat-backend/internal/state"
)

func TestHandleWithoutTable(t *testing.T) {
	d := NewDispatcher(fakeLLM{err: errLLMDown})

	resp := d.Handle(nil, "how many rows")
	assert.Equal(t, models.ResponseTypeText, resp.Type)
	assert.Equal(t, "Please upload a CSV file first.", resp.Response)
	assert.Empty(t, resp.ChartType)

	empty := &state.DataFrame{Headers: []string{"a"}}
	resp = d.Handle(empty, "how many rows")
	assert.Equal(t, "Please upload a CSV file first.", resp.Response)
}

func TestHandleStatsQuery(t *testing.T) {
	// Stats answers are deterministic even with the LLM down
	d := NewDispatcher(fakeLLM{err: errLLMDown})

	resp := d.Handle(testFrame(), "how many rows are there?")
	assert.Equal(t, models.ResponseTypeText, resp.Type)
	assert.Contains(t, resp.Response, "6 rows")
	assert.Empty(t, resp.ChartType)
}

func TestHandleChartQuery(t *testing.T) {
	d := NewDispatcher(fakeLLM{err: errLLMDown})

	resp := d.Handle(testFrame(), "bar chart of sex")
	assert.Equal(t, models.ResponseTypeChart, resp.Type)
	assert.Equal(t, ChartBar, resp.ChartType)

	spec, ok := resp.Response.(models.ChartSpec)
	require.True(t, ok)
	assert.NotEmpty(t, spec.Data)
}

func TestHandleAnalysisQuery(t *testing.T) {
	d := NewDispatcher(fakeLLM{response: "The dataset looks balanced."})

	resp := d.Handle(testFrame(), "tell me about this dataset")
	assert.Equal(t, models.ResponseTypeText, resp.Type)
	assert.Equal(t, "The dataset looks balanced.", resp.Response)
}

func TestHandleAnalysisQueryLLMDown(t *testing.T) {
	d := NewDispatcher(fakeLLM{err: errLLMDown})

	resp := d.Handle(testFrame(), "tell me about this dataset")
	assert.Equal(t, models.ResponseTypeText, resp.Type)
	assert.Contains(t, resp.Response, "temporarily unavailable")
}

func TestHandleSeesReplacedTable(t *testing.T) {
	d := NewDispatcher(fakeLLM{err: errLLMDown})

	resp := d.Handle(testFrame(), "how many rows?")
	assert.Contains(t, resp.Response, "6 rows")

	smaller := &state.DataFrame{
		Headers: []string{"a"},
		Rows:    [][]string{{"1"}, {"2"}},
	}
	resp = d.Handle(smaller, "how many rows?")
	assert.Contains(t, resp.Response, "2 rows")
}

func TestSuggestQueries(t *testing.T) {
	summary := analysis.BuildContext(testFrame())

	got := SuggestQueries(summary)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 6)
	assert.Contains(t, got, "How many rows does the dataset have?")

	found := false
	for _, s := range got {
		if s == "What is the average PassengerId?" || s == "Show a bar chart of Name" {
			found = true
		}
	}
	assert.True(t, found, "suggestions should reference real columns: %v", got)
}
