package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4"
	DefaultTimeout = 30 * time.Second
)

const generateSystemPrompt = `You are an expert at creating optimized search queries for finding professionals on LinkedIn via Google search.

Your task is to convert natural language descriptions into precise Google search queries that:
1. Target LinkedIn profiles using site:linkedin.com/in
2. Use Boolean operators (AND, OR) effectively
3. Include relevant job titles, skills, and variations
4. Include location variations (e.g., Bengaluru/Bangalore, Hyderabad/Hyd)
5. Optionally include phrases like "open to work" or "seeking opportunities" when relevant

Guidelines:
- Always start with site:linkedin.com/in
- Group related terms with parentheses
- Use OR for synonyms and variations
- Use quotes for exact phrases
- Include common title variations for the role
- Include location name variations

Output ONLY the search query string, nothing else. No explanations, no markdown formatting.`

const refineSystemPrompt = `You are an expert at refining Google search queries for finding professionals on LinkedIn.

You will be given an existing search query and instructions on how to modify it. Apply the modifications while maintaining proper search query syntax.

Output ONLY the refined search query string, nothing else.`

// OpenAIConfig holds configuration for the OpenAI translator.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4).
	Model string

	// Timeout bounds each translation request (default: 30s).
	Timeout time.Duration
}

// OpenAITranslator implements Translator against the OpenAI chat completions API.
type OpenAITranslator struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

var _ Translator = (*OpenAITranslator)(nil)

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAITranslator{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
	}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, text string) (string, error) {
	userPrompt := fmt.Sprintf("Convert this into a LinkedIn search query:\n\n%q\n\nGenerate an optimized search query for finding these professionals on LinkedIn via Google.", text)
	return t.complete(ctx, generateSystemPrompt, userPrompt)
}

func (t *OpenAITranslator) Refine(ctx context.Context, originalQuery, instructions string) (string, error) {
	userPrompt := fmt.Sprintf("Original query:\n%s\n\nRefinement instructions:\n%s\n\nGenerate the refined search query.", originalQuery, instructions)
	return t.complete(ctx, refineSystemPrompt, userPrompt)
}

func (t *OpenAITranslator) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: t.model,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   500,
		Temperature: 0.3,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}

	if payload.Error != nil {
		return "", fmt.Errorf("openai: API error (%s): %s", payload.Error.Type, payload.Error.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("openai: empty completion")
	}

	return stripCodeFences(payload.Choices[0].Message.Content), nil
}

// stripCodeFences removes markdown code block markers the model sometimes
// wraps its output in despite the prompt.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
