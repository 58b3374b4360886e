package service

import (
	"fmt"

	"datachat-backend/internal/analysis"
)

// SuggestQueries builds a few starter questions tailored to the loaded
// table. Deterministic, no LLM involved.
func SuggestQueries(summary analysis.ContextSummary) []string {
	suggestions := []string{
		"How many rows does the dataset have?",
		"Are there any missing values?",
	}

	if cat := summary.FirstOfType(analysis.TypeCategorical); cat != nil {
		suggestions = append(suggestions,
			fmt.Sprintf("Show a bar chart of %s", cat.Name))
	}
	if num := summary.FirstOfType(analysis.TypeNumeric); num != nil {
		suggestions = append(suggestions,
			fmt.Sprintf("What is the average %s?", num.Name),
			fmt.Sprintf("Plot the distribution of %s", num.Name))
	}
	numeric := summary.ColumnsOfType(analysis.TypeNumeric)
	if len(numeric) >= 2 {
		suggestions = append(suggestions,
			fmt.Sprintf("Scatter plot of %s vs %s", numeric[0].Name, numeric[1].Name))
	}
	if dt := summary.FirstOfType(analysis.TypeDatetime); dt != nil && len(numeric) >= 1 {
		suggestions = append(suggestions,
			fmt.Sprintf("Show the trend of %s over %s", numeric[0].Name, dt.Name))
	}

	if len(suggestions) > 6 {
		suggestions = suggestions[:6]
	}
	return suggestions
}
