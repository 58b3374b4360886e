package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"datachat-backend/internal/analysis"
	"datachat-backend/internal/llm"
	"datachat-backend/internal/models"
	"datachat-backend/internal/service"
	"datachat-backend/internal/state"
)

const (
	UploadDir   = "./uploads"
	MaxFileSize = 50 * 1024 * 1024 // 50MB
	MaxColumns  = 500
)

type Handler struct {
	Dispatcher *service.Dispatcher
	LLMService *llm.Service
	CurrentDB  service.DataSource // Active DB connection
}

func NewHandler(dispatcher *service.Dispatcher, llmSvc *llm.Service) *Handler {
	return &Handler{
		Dispatcher: dispatcher,
		LLMService: llmSvc,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HealthCheck)
	r.Post("/upload", h.Upload)
	r.Post("/chat", h.Chat)
	r.Get("/columns", h.GetColumns)
	r.Get("/status", h.GetStatus)
	r.Get("/preview", h.GetPreview)
	r.Get("/column-types", h.GetColumnTypes)
	r.Get("/profile", h.GetProfile)
	r.Get("/suggestions", h.GetSuggestions)

	// DB Routes
	r.Post("/db/connect", h.ConnectDB)
	r.Get("/db/tables", h.ListTables)
	r.Post("/db/load", h.LoadTable)

	r.Get("/config/llm", h.GetLLMConfig)
	r.Post("/config/llm", h.SaveLLMConfig)
}

// ============================================================================
// Health
// ============================================================================

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(models.HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
		Mode:    "csv",
	})
}

// ============================================================================
// Upload
// ============================================================================

// Upload accepts a CSV file, parses it and replaces the active table
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize)
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		http.Error(w, "File too large (max 50MB)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		http.Error(w, "Only .csv files are supported", http.StatusBadRequest)
		return
	}

	df, err := analysis.ParseCSV(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to parse CSV: %v", err), http.StatusBadRequest)
		return
	}
	if df.NumColumns() > MaxColumns {
		http.Error(w, fmt.Sprintf("Too many columns: %d (max %d)", df.NumColumns(), MaxColumns), http.StatusBadRequest)
		return
	}

	fileID := uuid.New().String()
	df.FileName = header.Filename
	df.FilePath = filepath.Join(UploadDir, fileID+".csv")

	// Best-effort copy to disk so the raw file survives a restart
	if err := os.MkdirAll(UploadDir, 0755); err == nil {
		if _, err := file.Seek(0, io.SeekStart); err == nil {
			if dst, err := os.Create(df.FilePath); err == nil {
				io.Copy(dst, file)
				dst.Close()
			}
		}
	}

	state.State.SetTable(df)
	log.Printf("[Upload] loaded %s: %d rows, %d columns", header.Filename, df.NumRows(), df.NumColumns())

	summary := analysis.BuildContext(df)
	json.NewEncoder(w).Encode(models.UploadResponse{
		Message:     "File uploaded successfully",
		FileID:      fileID,
		Rows:        df.NumRows(),
		Columns:     df.NumColumns(),
		ColumnNames: df.Headers,
		Profile:     analysis.ProfileTable(df, summary),
	})
}

// ============================================================================
// Chat
// ============================================================================

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "Query must not be empty", http.StatusBadRequest)
		return
	}

	resp := h.Dispatcher.Handle(state.State.GetTable(), req.Query)
	json.NewEncoder(w).Encode(resp)
}

// ============================================================================
// Table inspection
// ============================================================================

func (h *Handler) GetColumns(w http.ResponseWriter, r *http.Request) {
	df := state.State.GetTable()
	if df == nil {
		http.Error(w, "No data loaded", http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(models.ColumnsResponse{Columns: df.Headers})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	df := state.State.GetTable()
	resp := models.StatusResponse{}
	if df != nil {
		resp.Loaded = true
		resp.Rows = df.NumRows()
		resp.Columns = df.NumColumns()
		resp.Filename = df.FileName
	}
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	df := df400(w)
	if df == nil {
		return
	}

	limit := 10
	if s := r.URL.Query().Get("rows"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if limit > df.NumRows() {
		limit = df.NumRows()
	}

	records := make([]map[string]string, 0, limit)
	for i := 0; i < limit; i++ {
		record := make(map[string]string, len(df.Headers))
		for j, h := range df.Headers {
			record[h] = df.Value(i, j)
		}
		records = append(records, record)
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"columns": df.Headers,
		"rows":    records,
	})
}

func (h *Handler) GetColumnTypes(w http.ResponseWriter, r *http.Request) {
	df := df400(w)
	if df == nil {
		return
	}

	summary := analysis.BuildContext(df)
	types := make(map[string]string, len(summary.Columns))
	for _, col := range summary.Columns {
		types[col.Name] = col.Type
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"column_types": types})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	df := df400(w)
	if df == nil {
		return
	}
	summary := analysis.BuildContext(df)
	json.NewEncoder(w).Encode(analysis.ProfileTable(df, summary))
}

func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	df := df400(w)
	if df == nil {
		return
	}
	summary := analysis.BuildContext(df)
	json.NewEncoder(w).Encode(models.SuggestionsResponse{
		Suggestions: service.SuggestQueries(summary),
	})
}

// df400 fetches the active table, writing a 400 when nothing is loaded
func df400(w http.ResponseWriter) *state.DataFrame {
	df := state.State.GetTable()
	if df == nil {
		http.Error(w, "No data loaded", http.StatusBadRequest)
	}
	return df
}

// ============================================================================
// Database sources
// ============================================================================

// ConnectDB establishes a database connection
func (h *Handler) ConnectDB(w http.ResponseWriter, r *http.Request) {
	var config service.DataSourceConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	// Currently only Postgres supported
	if config.Type != "postgres" {
		http.Error(w, "Only postgres is supported currently", http.StatusBadRequest)
		return
	}

	ds := &service.PostgresDataSource{}
	if err := ds.Connect(config); err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect: %v", err), http.StatusInternalServerError)
		return
	}

	// Close previous if exists
	if h.CurrentDB != nil {
		h.CurrentDB.Close()
	}
	h.CurrentDB = ds

	json.NewEncoder(w).Encode(map[string]string{"status": "connected"})
}

// ListTables returns tables from connected DB
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	if h.CurrentDB == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	tables, err := h.CurrentDB.ListTables()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error listing tables: %v", err), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{"tables": tables})
}

// LoadTable fetches a database table and makes it the active table
func (h *Handler) LoadTable(w http.ResponseWriter, r *http.Request) {
	if h.CurrentDB == nil {
		http.Error(w, "No database connection", http.StatusBadRequest)
		return
	}

	var req struct {
		TableName string `json:"table_name"`
		Limit     int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	df, err := h.CurrentDB.LoadTable(req.TableName, req.Limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error loading table: %v", err), http.StatusInternalServerError)
		return
	}
	if df.NumColumns() > MaxColumns {
		http.Error(w, fmt.Sprintf("Too many columns: %d (max %d)", df.NumColumns(), MaxColumns), http.StatusBadRequest)
		return
	}

	state.State.SetTable(df)
	log.Printf("[DB] loaded table %s: %d rows, %d columns", req.TableName, df.NumRows(), df.NumColumns())

	summary := analysis.BuildContext(df)
	json.NewEncoder(w).Encode(models.UploadResponse{
		Message:     "Table loaded successfully",
		FileID:      req.TableName,
		Rows:        df.NumRows(),
		Columns:     df.NumColumns(),
		ColumnNames: df.Headers,
		Profile:     analysis.ProfileTable(df, summary),
	})
}

// ============================================================================
// LLM configuration
// ============================================================================

func (h *Handler) GetLLMConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.LLMService.GetConfig()
	json.NewEncoder(w).Encode(models.LLMConfig{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
}

func (h *Handler) SaveLLMConfig(w http.ResponseWriter, r *http.Request) {
	var req models.LLMConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	h.LLMService.SetConfig(req.BaseURL, req.Model)
	cfg := h.LLMService.GetConfig()
	state.State.SetLLMConfig(cfg.BaseURL, cfg.Model)

	log.Printf("[Config] LLM config updated: %s / %s", cfg.BaseURL, cfg.Model)
	json.NewEncoder(w).Encode(models.LLMConfig{BaseURL: cfg.BaseURL, Model: cfg.Model})
}
