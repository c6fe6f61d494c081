package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sourcingagent/backend/internal/models"
)

type SearchResultRepository struct {
	pool *pgxpool.Pool
}

func NewSearchResultRepository(pool *pgxpool.Pool) *SearchResultRepository {
	return &SearchResultRepository{pool: pool}
}

const searchResultColumns = `id, search_query_id, linkedin_url, name, snippet, description,
	result_payload, search_timestamp, enriched_timestamp, executed_by_user_id, created_at`

func scanSearchResult(row pgx.Row) (*models.SearchResult, error) {
	var res models.SearchResult
	err := row.Scan(
		&res.ID,
		&res.SearchQueryID,
		&res.LinkedInURL,
		&res.Name,
		&res.Snippet,
		&res.Description,
		&res.ResultPayload,
		&res.SearchTimestamp,
		&res.EnrichedTimestamp,
		&res.ExecutedByUserID,
		&res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *SearchResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SearchResult, error) {
	sql := fmt.Sprintf(`SELECT %s FROM search_results WHERE id = $1`, searchResultColumns)
	return scanSearchResult(r.pool.QueryRow(ctx, sql, id))
}

func (r *SearchResultRepository) ListByQuery(ctx context.Context, queryID uuid.UUID, skip, limit int) ([]models.SearchResult, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM search_results
		WHERE search_query_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3
	`, searchResultColumns)

	rows, err := r.pool.Query(ctx, sql, queryID, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var res models.SearchResult
		err := rows.Scan(
			&res.ID,
			&res.SearchQueryID,
			&res.LinkedInURL,
			&res.Name,
			&res.Snippet,
			&res.Description,
			&res.ResultPayload,
			&res.SearchTimestamp,
			&res.EnrichedTimestamp,
			&res.ExecutedByUserID,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *SearchResultRepository) CountByQuery(ctx context.Context, queryID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM search_results WHERE search_query_id = $1`, queryID).Scan(&count)
	return count, err
}

// CreateBatch persists one execution run's candidate set. The batch is written
// inside a transaction so a run's rows either all persist or none do. Each row
// gets created_at = runStart plus its position in microseconds, so sorting by
// created_at reproduces the order candidates were fetched in.
func (r *SearchResultRepository) CreateBatch(ctx context.Context, queryID uuid.UUID, payloads []models.ResultPayload, executedBy uuid.UUID, runStart time.Time) (int, error) {
	if len(payloads) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `
		INSERT INTO search_results
			(id, search_query_id, linkedin_url, name, snippet, description,
			 result_payload, search_timestamp, executed_by_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	for i, payload := range payloads {
		_, err := tx.Exec(ctx, sql,
			uuid.New(),
			queryID,
			payload.Link,
			payload.Name,
			payload.Snippet,
			payload.Description,
			payload,
			runStart,
			executedBy,
			runStart.Add(time.Duration(i)*time.Microsecond),
		)
		if err != nil {
			return 0, fmt.Errorf("insert result: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return len(payloads), nil
}

// MarkEnriched stamps enriched_timestamp. Re-stamping is allowed and
// overwrites the previous value.
func (r *SearchResultRepository) MarkEnriched(ctx context.Context, id uuid.UUID, at time.Time) (*models.SearchResult, error) {
	sql := fmt.Sprintf(`
		UPDATE search_results SET enriched_timestamp = $2
		WHERE id = $1
		RETURNING %s
	`, searchResultColumns)

	return scanSearchResult(r.pool.QueryRow(ctx, sql, id, at))
}
