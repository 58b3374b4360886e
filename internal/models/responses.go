package models

// ChatRequest is the body of POST /chat
type ChatRequest struct {
	Query string `json:"query"`
}

// ChatResponse is the envelope returned by POST /chat. Response is either a
// formatted text answer or a ChartSpec, Type tells the frontend which.
type ChatResponse struct {
	Response  interface{} `json:"response"`
	Type      string      `json:"type"`
	ChartType string      `json:"chart_type,omitempty"`
}

// Response type constants
const (
	ResponseTypeText  = "text"
	ResponseTypeChart = "chart"
)

// UploadResponse is returned after successful file upload
type UploadResponse struct {
	Message     string   `json:"message"`
	FileID      string   `json:"file_id"`
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
	Profile     *Profile `json:"profile,omitempty"`
}

// ColumnsResponse is returned by GET /columns
type ColumnsResponse struct {
	Columns []string `json:"columns"`
}

// StatusResponse is returned by GET /status
type StatusResponse struct {
	Loaded   bool   `json:"loaded"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	Filename string `json:"filename,omitempty"`
}

// HealthResponse is returned by GET /
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Mode    string `json:"mode"`
}

// LLMConfig for the /config/llm endpoint
type LLMConfig struct {
	BaseURL string `json:"baseUrl"`
	Model   string `json:"model"`
}

// SuggestionsResponse is returned by GET /suggestions
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}
