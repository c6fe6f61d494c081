package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/models"
)

// Google Custom Search caps page size at 10 and total results at 100.
const (
	googleMaxPageSize = 10
	googleMaxResults  = 100
)

// GoogleProvider executes searches via the Google Custom Search JSON API.
type GoogleProvider struct {
	svc   *customsearch.Service
	cseID string
}

var _ SearchProvider = (*GoogleProvider)(nil)

func NewGoogleProvider(ctx context.Context, apiKey, cseID string, opts ...option.ClientOption) (*GoogleProvider, error) {
	if apiKey == "" || cseID == "" {
		return nil, fmt.Errorf("google search: api key and cse id are required")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("google search: create service: %w", err)
	}

	return &GoogleProvider{svc: svc, cseID: cseID}, nil
}

func (p *GoogleProvider) FetchPage(ctx context.Context, query string, offset, pageSize int) ([]models.ResultPayload, bool, error) {
	if offset >= googleMaxResults {
		return nil, false, nil
	}

	size := pageSize
	if size > googleMaxPageSize {
		size = googleMaxPageSize
	}
	if offset+size > googleMaxResults {
		size = googleMaxResults - offset
	}

	// The API uses a 1-based start index.
	resp, err := p.svc.Cse.List().
		Q(query).
		Cx(p.cseID).
		Num(int64(size)).
		Start(int64(offset + 1)).
		Context(ctx).
		Do()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, false, apperrors.Wrap(apperrors.KindProviderTimeout, "google search timed out", err)
		}
		return nil, false, apperrors.Wrap(apperrors.KindProviderError, "google search failed", err)
	}

	items := make([]models.ResultPayload, 0, len(resp.Items))
	for _, item := range resp.Items {
		payload := models.ResultPayload{
			Title:       item.Title,
			Link:        item.Link,
			Snippet:     item.Snippet,
			DisplayLink: item.DisplayLink,
		}
		payload.Name, payload.Description = parsePagemap(item.Pagemap)
		items = append(items, payload)
	}

	hasMore := len(items) == size && offset+len(items) < googleMaxResults
	return items, hasMore, nil
}

// parsePagemap extracts the profile name and description from the result's
// pagemap metatags, the same fields LinkedIn profile pages expose.
func parsePagemap(raw []byte) (name, description string) {
	if len(raw) == 0 {
		return "", ""
	}

	var pagemap struct {
		Metatags []map[string]string `json:"metatags"`
	}
	if err := json.Unmarshal(raw, &pagemap); err != nil || len(pagemap.Metatags) == 0 {
		return "", ""
	}

	meta := pagemap.Metatags[0]
	name = strings.TrimSpace(meta["profile:first_name"] + " " + meta["profile:last_name"])

	description = meta["og:description"]
	if description == "" {
		description = meta["twitter:description"]
	}
	return name, description
}
