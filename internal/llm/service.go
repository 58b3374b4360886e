package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

type Config struct {
	BaseURL string
	Model   string
}

// Service is a thin client for a local Ollama instance. The model is treated
// as an unreliable collaborator: one bounded call, no retries, callers own
// their fallback policy.
type Service struct {
	mu     sync.RWMutex
	config Config
	client *http.Client
}

func NewService(baseURL, model string) *Service {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "qwen3-vl:2b"
	}
	return &Service{
		config: Config{
			BaseURL: baseURL,
			Model:   model,
		},
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetConfig returns the current connection settings
func (s *Service) GetConfig() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetConfig updates connection settings; empty fields keep their value
func (s *Service) SetConfig(baseURL, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if baseURL != "" {
		s.config.BaseURL = baseURL
	}
	if model != "" {
		s.config.Model = model
	}
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Response string `json:"response"`
}

// Generate sends a prompt to the Ollama API and returns the raw completion
func (s *Service) Generate(prompt string) (string, error) {
	cfg := s.GetConfig()

	reqBody := GenerateRequest{
		Model:  cfg.Model,
		Prompt: prompt,
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Post(cfg.BaseURL+"/api/generate", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", err
	}

	return strings.TrimSpace(genResp.Response), nil
}

var jsonRegex = regexp.MustCompile(`\{[\s\S]*\}`)

// ExtractJSON pulls the first JSON object out of a completion, stripping
// markdown fences and any prose around it. Returns "" when none is found.
func ExtractJSON(response string) string {
	if i := strings.Index(response, "```json"); i >= 0 {
		response = response[i+len("```json"):]
		if j := strings.Index(response, "```"); j >= 0 {
			response = response[:j]
		}
	} else if i := strings.Index(response, "```"); i >= 0 {
		response = response[i+3:]
		if j := strings.Index(response, "```"); j >= 0 {
			response = response[:j]
		}
	}
	return jsonRegex.FindString(response)
}
