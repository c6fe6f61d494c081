package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/models"
)

const (
	serperDefaultBaseURL  = "https://google.serper.dev/search"
	serperDefaultPageSize = 10
	serperTimeout         = 30 * time.Second
)

// SerperProvider executes searches via the Serper API, a Google Search
// alternative with 1-based page numbering.
type SerperProvider struct {
	apiKey   string
	baseURL  string
	pageSize int
	client   *http.Client
}

var _ SearchProvider = (*SerperProvider)(nil)

type SerperConfig struct {
	APIKey     string
	BaseURL    string
	PageSize   int
	HTTPClient *http.Client
}

func NewSerperProvider(cfg SerperConfig) (*SerperProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("serper: api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = serperDefaultBaseURL
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = serperDefaultPageSize
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: serperTimeout}
	}

	return &SerperProvider{apiKey: cfg.APIKey, baseURL: baseURL, pageSize: pageSize, client: client}, nil
}

type serperRequest struct {
	Q    string `json:"q"`
	Page int    `json:"page"`
	Num  int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []serperOrganic `json:"organic"`
}

type serperOrganic struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
	Position int    `json:"position"`
	Pagemap  struct {
		Metatags []map[string]string `json:"metatags"`
	} `json:"pagemap"`
}

func (p *SerperProvider) FetchPage(ctx context.Context, query string, offset, size int) ([]models.ResultPayload, bool, error) {
	// Page numbers derive from the provider's fixed page size, never from the
	// caller's size: a short final request (offset 20, size 3) still lives on
	// page 3, not page 7 of three-item pages. The full page is fetched and
	// trimmed to the requested window.
	page := offset/p.pageSize + 1
	start := offset % p.pageSize

	body, err := json.Marshal(serperRequest{Q: query, Page: page, Num: p.pageSize})
	if err != nil {
		return nil, false, fmt.Errorf("serper: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("serper: build request: %w", err)
	}
	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, false, apperrors.Wrap(apperrors.KindProviderTimeout, "serper search timed out", err)
		}
		return nil, false, apperrors.Wrap(apperrors.KindProviderError, "serper request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, false, apperrors.Wrap(apperrors.KindProviderError,
			fmt.Sprintf("serper returned %d", resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(raw))))
	}

	var payload serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, apperrors.Wrap(apperrors.KindProviderError, "serper decode response", err)
	}

	items := make([]models.ResultPayload, 0, len(payload.Organic))
	for _, item := range payload.Organic {
		result := models.ResultPayload{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: displayLink(item.Link),
		}
		if len(item.Pagemap.Metatags) > 0 {
			meta := item.Pagemap.Metatags[0]
			result.Name = strings.TrimSpace(meta["profile:first_name"] + " " + meta["profile:last_name"])
			result.Description = meta["og:description"]
		}
		items = append(items, result)
	}

	hasMore := len(items) == p.pageSize || start+size < len(items)
	if start >= len(items) {
		return nil, false, nil
	}
	items = items[start:]
	if len(items) > size {
		items = items[:size]
	}
	return items, hasMore, nil
}

func displayLink(link string) string {
	s := strings.TrimPrefix(link, "https://")
	s = strings.TrimPrefix(s, "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
