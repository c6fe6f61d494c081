package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/models"
)

// Default page sizes for list operations.
const (
	DefaultQueryPageLimit  = 50
	DefaultResultPageLimit = 100
)

// SearchService orchestrates generation and execution and serves stored
// queries and results under the ownership rules: an owner or an admin sees a
// query, anyone else gets NotFound; only delete distinguishes Forbidden.
type SearchService struct {
	generator *GeneratorService
	executor  *ExecutorService
	queries   QueryStore
	results   ResultStore
}

func NewSearchService(generator *GeneratorService, executor *ExecutorService, queries QueryStore, results ResultStore) *SearchService {
	return &SearchService{
		generator: generator,
		executor:  executor,
		queries:   queries,
		results:   results,
	}
}

func (s *SearchService) Generate(ctx context.Context, ident models.Identity, userInput string) (*models.SearchQuery, error) {
	return s.generator.Generate(ctx, ident.UserID, userInput)
}

func (s *SearchService) Refine(ctx context.Context, ident models.Identity, queryID uuid.UUID, instructions string) (*models.SearchQuery, error) {
	return s.generator.Refine(ctx, ident, queryID, instructions)
}

func (s *SearchService) Execute(ctx context.Context, ident models.Identity, queryID uuid.UUID) (*ExecutionSummary, error) {
	return s.executor.Execute(ctx, queryID, ident.UserID)
}

// GenerateAndExecute composes both steps. A generation failure leaves no
// query behind; an execution failure after a successful generation keeps the
// generated query and surfaces the execution error alongside it.
func (s *SearchService) GenerateAndExecute(ctx context.Context, ident models.Identity, userInput string) (*models.SearchQuery, *ExecutionSummary, error) {
	query, err := s.generator.Generate(ctx, ident.UserID, userInput)
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.executor.Execute(ctx, query.ID, ident.UserID)
	if err != nil {
		return query, nil, err
	}
	return query, summary, nil
}

// ListQueries returns the caller's queries in insertion order; admins see all
// users' queries.
func (s *SearchService) ListQueries(ctx context.Context, ident models.Identity, skip, limit int) ([]models.SearchQuery, error) {
	skip, limit = normalizePage(skip, limit, DefaultQueryPageLimit)

	if ident.IsAdmin {
		return s.queries.ListAll(ctx, skip, limit)
	}
	return s.queries.ListByUser(ctx, ident.UserID, skip, limit)
}

// ListQueriesByUser returns another user's queries; admin only.
func (s *SearchService) ListQueriesByUser(ctx context.Context, ident models.Identity, userID uuid.UUID, skip, limit int) ([]models.SearchQuery, error) {
	if !ident.IsAdmin {
		return nil, apperrors.New(apperrors.KindForbidden, "admin privileges required")
	}
	skip, limit = normalizePage(skip, limit, DefaultQueryPageLimit)
	return s.queries.ListByUser(ctx, userID, skip, limit)
}

func (s *SearchService) GetQuery(ctx context.Context, ident models.Identity, queryID uuid.UUID) (*models.SearchQuery, error) {
	query, err := s.queries.GetByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	// Invisible queries read as missing so their existence does not leak.
	if query == nil || !ident.CanAccess(query.CreatedUserID) {
		return nil, apperrors.New(apperrors.KindNotFound, "search query not found")
	}
	return query, nil
}

// ResultsPage is a slice of a query's results plus the query's total count.
type ResultsPage struct {
	SearchQueryID uuid.UUID             `json:"search_query_id"`
	TotalResults  int                   `json:"total_results"`
	Results       []models.SearchResult `json:"results"`
}

func (s *SearchService) ListResults(ctx context.Context, ident models.Identity, queryID uuid.UUID, skip, limit int) (*ResultsPage, error) {
	if _, err := s.GetQuery(ctx, ident, queryID); err != nil {
		return nil, err
	}

	skip, limit = normalizePage(skip, limit, DefaultResultPageLimit)

	results, err := s.results.ListByQuery(ctx, queryID, skip, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.results.CountByQuery(ctx, queryID)
	if err != nil {
		return nil, err
	}

	return &ResultsPage{
		SearchQueryID: queryID,
		TotalResults:  total,
		Results:       results,
	}, nil
}

// DeleteQuery removes a query and all of its results. Only the owner or an
// admin may delete; other callers that can name the id get Forbidden.
func (s *SearchService) DeleteQuery(ctx context.Context, ident models.Identity, queryID uuid.UUID) error {
	query, err := s.queries.GetByID(ctx, queryID)
	if err != nil {
		return err
	}
	if query == nil {
		return apperrors.New(apperrors.KindNotFound, "search query not found")
	}
	if !ident.CanAccess(query.CreatedUserID) {
		return apperrors.New(apperrors.KindForbidden, "not authorized to delete this query")
	}

	return s.queries.DeleteCascade(ctx, queryID)
}

// AdminDeleteQuery deletes any query without an ownership check.
func (s *SearchService) AdminDeleteQuery(ctx context.Context, ident models.Identity, queryID uuid.UUID) error {
	if !ident.IsAdmin {
		return apperrors.New(apperrors.KindForbidden, "admin privileges required")
	}

	query, err := s.queries.GetByID(ctx, queryID)
	if err != nil {
		return err
	}
	if query == nil {
		return apperrors.New(apperrors.KindNotFound, "search query not found")
	}
	return s.queries.DeleteCascade(ctx, queryID)
}

// MarkEnriched stamps a result's enriched_timestamp. Repeated calls re-stamp
// rather than erroring.
func (s *SearchService) MarkEnriched(ctx context.Context, ident models.Identity, resultID uuid.UUID) (*models.SearchResult, error) {
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "search result not found")
	}

	// Visibility follows the owning query.
	if _, err := s.GetQuery(ctx, ident, result.SearchQueryID); err != nil {
		return nil, apperrors.New(apperrors.KindNotFound, "search result not found")
	}

	updated, err := s.results.MarkEnriched(ctx, resultID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "search result not found")
	}
	return updated, nil
}

func normalizePage(skip, limit, defaultLimit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return skip, limit
}
