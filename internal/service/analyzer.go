package service

import (
	"fmt"
	"log"

	"datachat-backend/internal/analysis"
	"datachat-backend/internal/state"
)

// Generator is the language-model dependency shared by the responders that
// need free-form text. *llm.Service satisfies it.
type Generator interface {
	Generate(prompt string) (string, error)
}

// Analyzer answers open-ended analysis questions with the LLM, grounded in
// the table's column summary and a small sample of rows.
type Analyzer struct {
	llm Generator
}

func NewAnalyzer(llm Generator) *Analyzer {
	return &Analyzer{llm: llm}
}

// Analyze returns the model's answer, or a friendly unavailability message
// when the model cannot be reached. It never returns an error to the caller.
func (a *Analyzer) Analyze(df *state.DataFrame, summary analysis.ContextSummary, query string) string {
	prompt := fmt.Sprintf(`You are a data analyst. Answer the user's question about their dataset.

QUESTION: %s

%s

SAMPLE ROWS (first 5):
%s

RULES:
1. Answer directly and concisely based on the dataset info above
2. Use markdown, put key numbers in **bold**
3. If the dataset info cannot answer the question, say what additional data would be needed
4. Do not invent values that are not derivable from the info above`,
		query, summary.Render(), analysis.SampleRows(df, 5))

	response, err := a.llm.Generate(prompt)
	if err != nil {
		log.Printf("[ANALYZER] llm call failed: %v", err)
		return "Analysis is temporarily unavailable. Please check that the language model is running and try again."
	}
	return response
}
