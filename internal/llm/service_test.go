package llm

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around", "Sure, here it is: {\"a\": 1} hope that helps", `{"a": 1}`},
		{"no json", "I cannot answer that.", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJSON(tc.in))
		})
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		w.Write([]byte(`{"response": "  hello  "}`))
	}))
	defer srv.Close()

	s := NewService(srv.URL, "test-model")
	got, err := s.Generate("say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewService(srv.URL, "test-model")
	_, err := s.Generate("say hello")
	require.Error(t, err)
}

func TestSetConfigKeepsUnsetFields(t *testing.T) {
	s := NewService("http://example:1234", "model-a")

	s.SetConfig("", "model-b")
	cfg := s.GetConfig()
	assert.Equal(t, "http://example:1234", cfg.BaseURL)
	assert.Equal(t, "model-b", cfg.Model)
}
