package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/models"
)

// In-memory stores shared by the service tests. They mirror the persistence
// semantics of the pgx repositories: missing rows read as (nil, nil), batch
// inserts are atomic, deletes cascade.

type fakeQueryStore struct {
	mu      sync.Mutex
	queries map[uuid.UUID]models.SearchQuery
	order   []uuid.UUID

	// results, when set, is cascaded into by DeleteCascade the way the pgx
	// repository's transaction does.
	results *fakeResultStore

	createErr error
}

func newFakeQueryStore() *fakeQueryStore {
	return &fakeQueryStore{queries: make(map[uuid.UUID]models.SearchQuery)}
}

func (s *fakeQueryStore) Create(_ context.Context, query *models.SearchQuery) error {
	if s.createErr != nil {
		return s.createErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query.Prepare()
	now := time.Now().UTC()
	query.CreatedAt = now
	query.UpdatedAt = now
	s.queries[query.ID] = *query
	s.order = append(s.order, query.ID)
	return nil
}

func (s *fakeQueryStore) GetByID(_ context.Context, id uuid.UUID) (*models.SearchQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, ok := s.queries[id]
	if !ok {
		return nil, nil
	}
	return &query, nil
}

func (s *fakeQueryStore) ListByUser(_ context.Context, userID uuid.UUID, skip, limit int) ([]models.SearchQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.SearchQuery
	for _, id := range s.order {
		if q, ok := s.queries[id]; ok && q.CreatedUserID == userID {
			out = append(out, q)
		}
	}
	return paginate(out, skip, limit), nil
}

func (s *fakeQueryStore) ListAll(_ context.Context, skip, limit int) ([]models.SearchQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.SearchQuery
	for _, id := range s.order {
		if q, ok := s.queries[id]; ok {
			out = append(out, q)
		}
	}
	return paginate(out, skip, limit), nil
}

func (s *fakeQueryStore) UpdateLastSearch(_ context.Context, id, runUserID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, ok := s.queries[id]
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "search query not found")
	}
	query.LastSearchDate = &at
	query.LastRunUserID = &runUserID
	query.UpdatedAt = time.Now().UTC()
	s.queries[id] = query
	return nil
}

func (s *fakeQueryStore) DeleteCascade(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	_, ok := s.queries[id]
	delete(s.queries, id)
	s.mu.Unlock()

	if !ok {
		return apperrors.New(apperrors.KindNotFound, "search query not found")
	}
	if s.results != nil {
		s.results.deleteByQuery(id)
	}
	return nil
}

type fakeResultStore struct {
	mu      sync.Mutex
	results map[uuid.UUID]models.SearchResult

	batchErr error
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[uuid.UUID]models.SearchResult)}
}

func (s *fakeResultStore) GetByID(_ context.Context, id uuid.UUID) (*models.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[id]
	if !ok {
		return nil, nil
	}
	return &result, nil
}

func (s *fakeResultStore) ListByQuery(_ context.Context, queryID uuid.UUID, skip, limit int) ([]models.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.SearchResult
	for _, r := range s.results {
		if r.SearchQueryID == queryID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, skip, limit), nil
}

func (s *fakeResultStore) CountByQuery(_ context.Context, queryID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.results {
		if r.SearchQueryID == queryID {
			count++
		}
	}
	return count, nil
}

func (s *fakeResultStore) CreateBatch(_ context.Context, queryID uuid.UUID, payloads []models.ResultPayload, executedBy uuid.UUID, runStart time.Time) (int, error) {
	if s.batchErr != nil {
		return 0, s.batchErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, payload := range payloads {
		id := uuid.New()
		s.results[id] = models.SearchResult{
			ID:               id,
			SearchQueryID:    queryID,
			LinkedInURL:      payload.Link,
			Name:             payload.Name,
			Snippet:          payload.Snippet,
			Description:      payload.Description,
			ResultPayload:    payload,
			SearchTimestamp:  runStart,
			ExecutedByUserID: executedBy,
			CreatedAt:        runStart.Add(time.Duration(i) * time.Microsecond),
		}
	}
	return len(payloads), nil
}

func (s *fakeResultStore) MarkEnriched(_ context.Context, id uuid.UUID, at time.Time) (*models.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[id]
	if !ok {
		return nil, nil
	}
	result.EnrichedTimestamp = &at
	s.results[id] = result
	return &result, nil
}

func (s *fakeResultStore) deleteByQuery(queryID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.results {
		if r.SearchQueryID == queryID {
			delete(s.results, id)
		}
	}
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return nil
	}
	items = items[skip:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

// fakeTranslator returns a canned translation, or an error if set.
type fakeTranslator struct {
	output string
	err    error

	calls int
}

func (t *fakeTranslator) Translate(_ context.Context, _ string) (string, error) {
	t.calls++
	if t.err != nil {
		return "", t.err
	}
	return t.output, nil
}

func (t *fakeTranslator) Refine(_ context.Context, _, _ string) (string, error) {
	return t.Translate(nil, "")
}

// fakeProvider serves a fixed corpus of payloads page by page. Pages listed
// in failAt error out every time they are requested.
type fakeProvider struct {
	mu     sync.Mutex
	corpus []models.ResultPayload
	failAt map[int]error

	fetchCalls int
	block      chan struct{}
}

func (p *fakeProvider) FetchPage(ctx context.Context, _ string, offset, pageSize int) ([]models.ResultPayload, bool, error) {
	p.mu.Lock()
	p.fetchCalls++
	block := p.block
	p.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	if err, ok := p.failAt[offset]; ok {
		return nil, false, err
	}

	if offset >= len(p.corpus) {
		return nil, false, nil
	}
	end := offset + pageSize
	if end > len(p.corpus) {
		end = len(p.corpus)
	}
	page := p.corpus[offset:end]
	return page, end < len(p.corpus), nil
}

func makeCorpus(n int) []models.ResultPayload {
	payloads := make([]models.ResultPayload, n)
	for i := range payloads {
		payloads[i] = models.ResultPayload{
			Title:   "Profile " + strconv.Itoa(i),
			Link:    "https://www.linkedin.com/in/candidate-" + strconv.Itoa(i),
			Snippet: "Experienced engineer",
			Name:    "Candidate " + strconv.Itoa(i),
		}
	}
	return payloads
}
