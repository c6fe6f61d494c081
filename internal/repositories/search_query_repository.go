package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/models"
)

type SearchQueryRepository struct {
	pool *pgxpool.Pool
}

func NewSearchQueryRepository(pool *pgxpool.Pool) *SearchQueryRepository {
	return &SearchQueryRepository{pool: pool}
}

const searchQueryColumns = `id, user_input, generated_query, last_search_date,
	created_user_id, last_run_user_id, created_at, updated_at`

func scanSearchQuery(row pgx.Row) (*models.SearchQuery, error) {
	var q models.SearchQuery
	err := row.Scan(
		&q.ID,
		&q.UserInput,
		&q.GeneratedQuery,
		&q.LastSearchDate,
		&q.CreatedUserID,
		&q.LastRunUserID,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *SearchQueryRepository) Create(ctx context.Context, query *models.SearchQuery) error {
	query.Prepare()

	sql := `
		INSERT INTO search_queries (id, user_input, generated_query, created_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at
	`

	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, sql,
		query.ID,
		query.UserInput,
		query.GeneratedQuery,
		query.CreatedUserID,
		now,
	).Scan(&query.CreatedAt, &query.UpdatedAt)

	return err
}

func (r *SearchQueryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SearchQuery, error) {
	sql := fmt.Sprintf(`SELECT %s FROM search_queries WHERE id = $1`, searchQueryColumns)
	return scanSearchQuery(r.pool.QueryRow(ctx, sql, id))
}

func (r *SearchQueryRepository) ListByUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]models.SearchQuery, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM search_queries
		WHERE created_user_id = $1
		ORDER BY created_at
		OFFSET $2 LIMIT $3
	`, searchQueryColumns)

	rows, err := r.pool.Query(ctx, sql, userID, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSearchQueries(rows)
}

func (r *SearchQueryRepository) ListAll(ctx context.Context, skip, limit int) ([]models.SearchQuery, error) {
	sql := fmt.Sprintf(`
		SELECT %s FROM search_queries
		ORDER BY created_at
		OFFSET $1 LIMIT $2
	`, searchQueryColumns)

	rows, err := r.pool.Query(ctx, sql, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSearchQueries(rows)
}

func collectSearchQueries(rows pgx.Rows) ([]models.SearchQuery, error) {
	var queries []models.SearchQuery
	for rows.Next() {
		var q models.SearchQuery
		err := rows.Scan(
			&q.ID,
			&q.UserInput,
			&q.GeneratedQuery,
			&q.LastSearchDate,
			&q.CreatedUserID,
			&q.LastRunUserID,
			&q.CreatedAt,
			&q.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// UpdateLastSearch records a completed execution run on the query.
func (r *SearchQueryRepository) UpdateLastSearch(ctx context.Context, id, runUserID uuid.UUID, at time.Time) error {
	sql := `
		UPDATE search_queries SET
			last_search_date = $2, last_run_user_id = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, sql, id, at, runUserID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.New(apperrors.KindNotFound, "search query not found")
	}
	return nil
}

// DeleteCascade removes a query and all of its results in one transaction.
// The child delete is explicit rather than relying on the FK cascade alone.
func (r *SearchQueryRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM search_results WHERE search_query_id = $1`, id); err != nil {
		return fmt.Errorf("delete results: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM search_queries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.New(apperrors.KindNotFound, "search query not found")
	}

	return tx.Commit(ctx)
}
