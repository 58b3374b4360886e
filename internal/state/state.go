package state

import (
	"strings"
	"sync"
)

// DataFrame represents a loaded tabular dataset
type DataFrame struct {
	Headers  []string
	Rows     [][]string
	FilePath string
	FileName string
}

// NumRows returns the number of data rows
func (df *DataFrame) NumRows() int {
	return len(df.Rows)
}

// NumColumns returns the number of columns
func (df *DataFrame) NumColumns() int {
	return len(df.Headers)
}

// ColumnIndex returns the index of the named column (case-insensitive),
// or -1 if absent
func (df *DataFrame) ColumnIndex(name string) int {
	for i, h := range df.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Value returns the cell at (row, col), "" for ragged rows
func (df *DataFrame) Value(row, col int) string {
	if row >= len(df.Rows) || col >= len(df.Rows[row]) {
		return ""
	}
	return df.Rows[row][col]
}

// AppState holds the global application state. A single table is active at a
// time; an upload replaces it wholesale. In-flight requests finish against
// whichever table was current when they read the reference.
type AppState struct {
	mu sync.RWMutex

	table *DataFrame

	// LLM Config
	llmBaseURL string
	llmModel   string
}

// Global state instance
var State = &AppState{
	llmBaseURL: "http://localhost:11434",
	llmModel:   "qwen3-vl:2b",
}

// LLMConfig returns the configured model endpoint and name
func (s *AppState) LLMConfig() (baseURL, model string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmBaseURL, s.llmModel
}

// SetLLMConfig updates the model settings; empty fields keep their value
func (s *AppState) SetLLMConfig(baseURL, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if baseURL != "" {
		s.llmBaseURL = baseURL
	}
	if model != "" {
		s.llmModel = model
	}
}

// SetTable replaces the active table
func (s *AppState) SetTable(df *DataFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = df
}

// GetTable retrieves the active table, nil if none loaded
func (s *AppState) GetTable() *DataFrame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// ClearTable drops the active table
func (s *AppState) ClearTable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
}
