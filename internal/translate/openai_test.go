package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, content string, capture *chatCompletionRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"content": content},
				"finish_reason": "stop",
			}},
		})
	}))
}

func newTestTranslator(t *testing.T, baseURL string) *OpenAITranslator {
	t.Helper()
	tr, err := NewOpenAITranslator(OpenAIConfig{APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)
	return tr
}

func TestTranslate(t *testing.T) {
	var captured chatCompletionRequest
	srv := completionServer(t, `site:linkedin.com/in ("golang" OR "go developer") "Berlin"`, &captured)
	defer srv.Close()

	tr := newTestTranslator(t, srv.URL)

	query, err := tr.Translate(context.Background(), "golang developers in Berlin")
	require.NoError(t, err)
	assert.Equal(t, `site:linkedin.com/in ("golang" OR "go developer") "Berlin"`, query)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "site:linkedin.com/in")
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Contains(t, captured.Messages[1].Content, "golang developers in Berlin")
}

func TestRefineSendsOriginalQuery(t *testing.T) {
	var captured chatCompletionRequest
	srv := completionServer(t, `site:linkedin.com/in "golang" "Berlin" "Kubernetes"`, &captured)
	defer srv.Close()

	tr := newTestTranslator(t, srv.URL)

	query, err := tr.Refine(context.Background(), `site:linkedin.com/in "golang" "Berlin"`, "add Kubernetes")
	require.NoError(t, err)
	assert.Contains(t, query, "Kubernetes")

	require.Len(t, captured.Messages, 2)
	assert.Contains(t, captured.Messages[1].Content, `site:linkedin.com/in "golang" "Berlin"`)
	assert.Contains(t, captured.Messages[1].Content, "add Kubernetes")
}

func TestTranslateStripsCodeFences(t *testing.T) {
	srv := completionServer(t, "```\nsite:linkedin.com/in \"golang\"\n```", nil)
	defer srv.Close()

	tr := newTestTranslator(t, srv.URL)

	query, err := tr.Translate(context.Background(), "golang developers")
	require.NoError(t, err)
	assert.Equal(t, `site:linkedin.com/in "golang"`, query)
}

func TestTranslateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "Incorrect API key provided",
				"type":    "invalid_request_error",
			},
		})
	}))
	defer srv.Close()

	tr := newTestTranslator(t, srv.URL)

	_, err := tr.Translate(context.Background(), "golang developers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
}

func TestTranslateEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	tr := newTestTranslator(t, srv.URL)

	_, err := tr.Translate(context.Background(), "golang developers")
	assert.Error(t, err)
}

func TestNewOpenAITranslatorRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAITranslator(OpenAIConfig{})
	assert.Error(t, err)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `site:linkedin.com/in "golang"`, `site:linkedin.com/in "golang"`},
		{"fenced", "```\nquery\n```", "query"},
		{"fenced with language", "```text\nquery\n```", "query"},
		{"surrounding whitespace", "  query  ", "query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}
