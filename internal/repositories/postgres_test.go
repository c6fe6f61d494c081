package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/database"
	"sourcingagent/backend/internal/models"
)

// setupPostgres starts a throwaway postgres container with the schema applied.
// Skipped under -short so unit runs stay docker-free.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("sourcing_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, testcontainers.TerminateContainer(container))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.RunMigrations(pool))
	return pool
}

func seedUser(t *testing.T, repo *UserRepository, username string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func seedQuery(t *testing.T, repo *SearchQueryRepository, ownerID uuid.UUID) *models.SearchQuery {
	t.Helper()

	query := &models.SearchQuery{
		UserInput:      "golang engineers in Berlin",
		GeneratedQuery: `site:linkedin.com/in "golang" "Berlin"`,
		CreatedUserID:  ownerID,
	}
	require.NoError(t, repo.Create(context.Background(), query))
	return query
}

func TestUserRepository(t *testing.T) {
	pool := setupPostgres(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	user := seedUser(t, repo, "alice")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	// ── lookups ──
	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	byUsername, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byUsername)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	// ── uniqueness ──
	dup := &models.User{Email: "alice@example.com", Username: "alice2", PasswordHash: "x"}
	assert.Error(t, repo.Create(ctx, dup))

	// ── update ──
	fullName := "Alice Example"
	user.FullName = &fullName
	user.Email = "alice2@example.com"
	require.NoError(t, repo.Update(ctx, user))

	updated, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.FullName)
	assert.Equal(t, "Alice Example", *updated.FullName)
	assert.Equal(t, "alice2@example.com", updated.Email)

	// ── password and active flag ──
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "argon2id$v=19$m=65536,t=1,p=4$bmV3$bmV3"))
	require.NoError(t, repo.SetActive(ctx, user.ID, false))

	updated, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	// ── list and delete ──
	seedUser(t, repo, "bob")
	users, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, repo.Delete(ctx, user.ID))
	gone, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSearchQueryRepository(t *testing.T) {
	pool := setupPostgres(t)
	users := NewUserRepository(pool)
	queries := NewSearchQueryRepository(pool)
	results := NewSearchResultRepository(pool)
	ctx := context.Background()

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")

	first := seedQuery(t, queries, alice.ID)
	second := seedQuery(t, queries, alice.ID)
	third := seedQuery(t, queries, bob.ID)

	// ── get ──
	got, err := queries.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.UserInput, got.UserInput)
	assert.Nil(t, got.LastSearchDate)

	missing, err := queries.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	// ── listing ──
	mine, err := queries.ListByUser(ctx, alice.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, first.ID, mine[0].ID)
	assert.Equal(t, second.ID, mine[1].ID)

	all, err := queries.ListAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	paged, err := queries.ListAll(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, third.ID, paged[0].ID)

	// ── run stamp ──
	runAt := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, queries.UpdateLastSearch(ctx, first.ID, bob.ID, runAt))

	stamped, err := queries.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, stamped.LastSearchDate)
	assert.True(t, stamped.LastSearchDate.Equal(runAt))
	require.NotNil(t, stamped.LastRunUserID)
	assert.Equal(t, bob.ID, *stamped.LastRunUserID)

	// ── cascade delete ──
	_, err = results.CreateBatch(ctx, first.ID, []models.ResultPayload{
		{Title: "hit", Link: "https://www.linkedin.com/in/hit"},
	}, alice.ID, runAt)
	require.NoError(t, err)

	require.NoError(t, queries.DeleteCascade(ctx, first.ID))

	gone, err := queries.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	count, err := results.CountByQuery(ctx, first.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchResultRepository(t *testing.T) {
	pool := setupPostgres(t)
	users := NewUserRepository(pool)
	queries := NewSearchQueryRepository(pool)
	results := NewSearchResultRepository(pool)
	ctx := context.Background()

	alice := seedUser(t, users, "alice")
	query := seedQuery(t, queries, alice.ID)

	runAt := time.Now().UTC().Truncate(time.Microsecond)
	payloads := []models.ResultPayload{
		{
			Title:       "Jane Doe - Staff Engineer - LinkedIn",
			Link:        "https://www.linkedin.com/in/janedoe",
			Snippet:     "Berlin, Germany",
			DisplayLink: "www.linkedin.com",
			Name:        "Jane Doe",
			Description: "Staff engineer at Example",
		},
		{
			Title: "John Roe - LinkedIn",
			Link:  "https://www.linkedin.com/in/johnroe",
		},
	}

	n, err := results.CreateBatch(ctx, query.ID, payloads, alice.ID, runAt)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Empty batches are a no-op, not an error.
	n, err = results.CreateBatch(ctx, query.ID, nil, alice.ID, runAt)
	require.NoError(t, err)
	assert.Zero(t, n)

	count, err := results.CountByQuery(ctx, query.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stored, err := results.ListByQuery(ctx, query.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	// Batch rows come back in insertion order.
	jane := stored[0]
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", jane.LinkedInURL)
	assert.Equal(t, "https://www.linkedin.com/in/johnroe", stored[1].LinkedInURL)
	assert.True(t, stored[0].CreatedAt.Before(stored[1].CreatedAt))
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "Berlin, Germany", jane.Snippet)
	assert.True(t, jane.SearchTimestamp.Equal(runAt))
	assert.Equal(t, alice.ID, jane.ExecutedByUserID)
	assert.Nil(t, jane.EnrichedTimestamp)

	// The raw payload round-trips through jsonb.
	assert.Equal(t, payloads[0], jane.ResultPayload)

	// ── enrichment ──
	at := time.Now().UTC().Truncate(time.Microsecond)
	enriched, err := results.MarkEnriched(ctx, jane.ID, at)
	require.NoError(t, err)
	require.NotNil(t, enriched)
	require.NotNil(t, enriched.EnrichedTimestamp)
	assert.True(t, enriched.EnrichedTimestamp.Equal(at))

	// Re-stamping overwrites.
	later := at.Add(time.Hour)
	restamped, err := results.MarkEnriched(ctx, jane.ID, later)
	require.NoError(t, err)
	assert.True(t, restamped.EnrichedTimestamp.Equal(later))

	none, err := results.MarkEnriched(ctx, uuid.New(), at)
	require.NoError(t, err)
	assert.Nil(t, none)

	// ── fetch single ──
	byID, err := results.GetByID(ctx, jane.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, jane.ID, byID.ID)
}

func TestSearchResultRepositoryPaginationIsStable(t *testing.T) {
	pool := setupPostgres(t)
	users := NewUserRepository(pool)
	queries := NewSearchQueryRepository(pool)
	results := NewSearchResultRepository(pool)
	ctx := context.Background()

	alice := seedUser(t, users, "alice")
	query := seedQuery(t, queries, alice.ID)

	links := make([]string, 12)
	payloads := make([]models.ResultPayload, 12)
	for i := range payloads {
		links[i] = fmt.Sprintf("https://www.linkedin.com/in/candidate-%d", i)
		payloads[i] = models.ResultPayload{Title: fmt.Sprintf("Candidate %d", i), Link: links[i]}
	}

	runAt := time.Now().UTC().Truncate(time.Microsecond)
	_, err := results.CreateBatch(ctx, query.ID, payloads, alice.ID, runAt)
	require.NoError(t, err)

	// Reading the batch in pages smaller than the batch must reproduce the
	// full set in insertion order, with no row repeated or skipped.
	var got []string
	for skip := 0; skip < len(payloads); skip += 5 {
		page, err := results.ListByQuery(ctx, query.ID, skip, 5)
		require.NoError(t, err)
		for _, res := range page {
			got = append(got, res.LinkedInURL)
		}
	}
	assert.Equal(t, links, got)
}

func TestSearchQueryRepositoryMissingRows(t *testing.T) {
	pool := setupPostgres(t)
	queries := NewSearchQueryRepository(pool)
	ctx := context.Background()

	err := queries.UpdateLastSearch(ctx, uuid.New(), uuid.New(), time.Now().UTC())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	err = queries.DeleteCascade(ctx, uuid.New())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
