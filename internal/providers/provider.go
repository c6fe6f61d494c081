// Package providers implements the web search collaborator boundary.
package providers

import (
	"context"

	"sourcingagent/backend/internal/models"
)

// SearchProvider fetches one page of results for a query string. offset is a
// zero-based item offset; implementations translate it into their own paging
// scheme. hasMore reports whether another page may follow.
type SearchProvider interface {
	FetchPage(ctx context.Context, query string, offset, pageSize int) (items []models.ResultPayload, hasMore bool, err error)
}
