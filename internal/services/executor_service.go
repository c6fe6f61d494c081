package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/locks"
	"sourcingagent/backend/internal/logging"
	"sourcingagent/backend/internal/models"
	"sourcingagent/backend/internal/providers"
)

// ExecutorService drives the search provider across pages for a saved query
// and persists the deduplicated candidate set.
type ExecutorService struct {
	queries  QueryStore
	results  ResultStore
	provider providers.SearchProvider
	locker   locks.RunLocker
	log      *logging.Logger

	maxResults    int
	pageSize      int
	retryAttempts int
	pageTimeout   time.Duration
}

type ExecutorConfig struct {
	MaxResults    int
	PageSize      int
	RetryAttempts int
	PageTimeout   time.Duration
}

func NewExecutorService(queries QueryStore, results ResultStore, provider providers.SearchProvider, locker locks.RunLocker, cfg ExecutorConfig, log *logging.Logger) *ExecutorService {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 100
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 30 * time.Second
	}

	return &ExecutorService{
		queries:       queries,
		results:       results,
		provider:      provider,
		locker:        locker,
		log:           log,
		maxResults:    cfg.MaxResults,
		pageSize:      cfg.PageSize,
		retryAttempts: cfg.RetryAttempts,
		pageTimeout:   cfg.PageTimeout,
	}
}

// ExecutionSummary reports one run. ResultsCount counts only the current
// run's deduplicated candidates, not the query's cumulative total.
type ExecutionSummary struct {
	SearchQueryID   uuid.UUID `json:"search_query_id"`
	ResultsCount    int       `json:"results_count"`
	SearchTimestamp time.Time `json:"search_timestamp"`
}

// Execute runs the saved query against the search provider. Any authenticated
// caller may execute; ownership only restricts deletion. At most one run per
// query may be in flight: a concurrent attempt fails with ExecutionInProgress.
func (s *ExecutorService) Execute(ctx context.Context, queryID, callerID uuid.UUID) (*ExecutionSummary, error) {
	query, err := s.queries.GetByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "search query not found")
	}

	acquired, err := s.locker.TryLock(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperrors.New(apperrors.KindExecutionInProgress, "an execution is already in progress for this query")
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), queryID); err != nil {
			s.log.Error("failed to release run lock", "query_id", queryID, "error", err)
		}
	}()

	runStart := time.Now().UTC()
	candidates := s.fetchAll(ctx, query.GeneratedQuery)

	count, err := s.results.CreateBatch(ctx, queryID, candidates, callerID, runStart)
	if err != nil {
		return nil, err
	}

	if err := s.queries.UpdateLastSearch(ctx, queryID, callerID, runStart); err != nil {
		return nil, err
	}

	s.log.Info("search executed",
		"query_id", queryID,
		"caller_id", callerID,
		"results_count", count,
	)

	return &ExecutionSummary{
		SearchQueryID:   queryID,
		ResultsCount:    count,
		SearchTimestamp: runStart,
	}, nil
}

// fetchAll pages through the provider until it is exhausted or maxResults is
// reached, then deduplicates by link in first-seen order. A page that fails
// after its retry budget truncates the run; pages fetched so far are kept.
func (s *ExecutorService) fetchAll(ctx context.Context, generatedQuery string) []models.ResultPayload {
	var fetched []models.ResultPayload

	for offset := 0; offset < s.maxResults; {
		size := s.pageSize
		if offset+size > s.maxResults {
			size = s.maxResults - offset
		}

		items, hasMore, err := s.fetchPageWithRetry(ctx, generatedQuery, offset, size)
		if err != nil {
			s.log.Warn("page fetch failed after retries, truncating run",
				"offset", offset,
				"fetched_so_far", len(fetched),
				"error", err,
			)
			break
		}

		fetched = append(fetched, items...)
		offset += len(items)

		if !hasMore || len(items) < size {
			break
		}
	}

	return dedupeByLink(fetched)
}

func (s *ExecutorService) fetchPageWithRetry(ctx context.Context, query string, offset, size int) ([]models.ResultPayload, bool, error) {
	var (
		items   []models.ResultPayload
		hasMore bool
	)

	operation := func() error {
		pctx, cancel := context.WithTimeout(ctx, s.pageTimeout)
		defer cancel()

		var err error
		items, hasMore, err = s.provider.FetchPage(pctx, query, offset, size)
		return err
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.retryAttempts-1))
	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))
	return items, hasMore, err
}

// dedupeByLink keeps the first occurrence of each link. Results without a
// link are kept as-is.
func dedupeByLink(items []models.ResultPayload) []models.ResultPayload {
	seen := make(map[string]struct{}, len(items))
	deduped := items[:0]

	for _, item := range items {
		if item.Link != "" {
			if _, ok := seen[item.Link]; ok {
				continue
			}
			seen[item.Link] = struct{}{}
		}
		deduped = append(deduped, item)
	}
	return deduped
}
