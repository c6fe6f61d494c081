package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sourcingagent/backend/internal/models"
)

// Store interfaces declared on the consumer side; the pgx repositories
// satisfy them, and tests substitute fakes.

type QueryStore interface {
	Create(ctx context.Context, query *models.SearchQuery) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SearchQuery, error)
	ListByUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]models.SearchQuery, error)
	ListAll(ctx context.Context, skip, limit int) ([]models.SearchQuery, error)
	UpdateLastSearch(ctx context.Context, id, runUserID uuid.UUID, at time.Time) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type ResultStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.SearchResult, error)
	ListByQuery(ctx context.Context, queryID uuid.UUID, skip, limit int) ([]models.SearchResult, error)
	CountByQuery(ctx context.Context, queryID uuid.UUID) (int, error)
	CreateBatch(ctx context.Context, queryID uuid.UUID, payloads []models.ResultPayload, executedBy uuid.UUID, runStart time.Time) (int, error)
	MarkEnriched(ctx context.Context, id uuid.UUID, at time.Time) (*models.SearchResult, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, skip, limit int) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SessionStore interface {
	StoreSession(ctx context.Context, jti string, userID string, ttl time.Duration) error
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
}
