package service

import (
	"log"

	"datachat-backend/internal/analysis"
	"datachat-backend/internal/models"
	"datachat-backend/internal/state"
)

// Dispatcher wires the classifier to the three responders and wraps every
// answer in the chat response envelope.
type Dispatcher struct {
	classifier *Classifier
	analyzer   *Analyzer
	charts     *ChartGenerator
}

func NewDispatcher(llm Generator) *Dispatcher {
	return &Dispatcher{
		classifier: NewClassifier(),
		analyzer:   NewAnalyzer(llm),
		charts:     NewChartGenerator(llm),
	}
}

// Handle answers one chat query against the given table. A nil or empty
// table short-circuits to an upload prompt. The column summary is rebuilt
// per request so replacing the table is picked up immediately.
func (d *Dispatcher) Handle(df *state.DataFrame, query string) models.ChatResponse {
	if df == nil || df.NumRows() == 0 {
		return models.ChatResponse{
			Response: "Please upload a CSV file first.",
			Type:     models.ResponseTypeText,
		}
	}

	summary := analysis.BuildContext(df)
	classification := d.classifier.Classify(query)
	log.Printf("[DISPATCH] intent=%s chart=%s query=%q",
		classification.Intent, classification.ChartType, query)

	switch classification.Intent {
	case IntentStats:
		return models.ChatResponse{
			Response: analysis.ComputeStat(df, summary, query),
			Type:     models.ResponseTypeText,
		}
	case IntentChart:
		spec := d.charts.Generate(df, summary, query, classification.ChartType)
		return models.ChatResponse{
			Response:  spec,
			Type:      models.ResponseTypeChart,
			ChartType: classification.ChartType,
		}
	default:
		return models.ChatResponse{
			Response: d.analyzer.Analyze(df, summary, query),
			Type:     models.ResponseTypeText,
		}
	}
}
