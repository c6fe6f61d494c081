package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/logging"
	"sourcingagent/backend/internal/models"
	"sourcingagent/backend/internal/translate"
)

// GeneratorService turns free-text input into a persisted SearchQuery.
type GeneratorService struct {
	queries    QueryStore
	translator translate.Translator
	timeout    time.Duration
	log        *logging.Logger
}

func NewGeneratorService(queries QueryStore, translator translate.Translator, timeout time.Duration, log *logging.Logger) *GeneratorService {
	return &GeneratorService{
		queries:    queries,
		translator: translator,
		timeout:    timeout,
		log:        log,
	}
}

// Generate translates text and persists exactly one new SearchQuery owned by
// userID. Nothing is persisted when translation fails.
func (s *GeneratorService) Generate(ctx context.Context, userID uuid.UUID, text string) (*models.SearchQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "user_input must not be empty")
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	generated, err := s.translator.Translate(tctx, text)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTranslationUnavailable, "query translation failed", err)
	}
	generated = strings.TrimSpace(generated)
	if generated == "" {
		return nil, apperrors.New(apperrors.KindTranslationUnavailable, "translator returned an empty query")
	}

	query := &models.SearchQuery{
		UserInput:      text,
		GeneratedQuery: generated,
		CreatedUserID:  userID,
	}

	if err := s.queries.Create(ctx, query); err != nil {
		return nil, err
	}

	s.log.Info("search query generated", "query_id", query.ID, "user_id", userID)
	return query, nil
}

// Refine derives a new SearchQuery from an existing one plus modification
// instructions. generated_query is immutable, so refinement always creates a
// new row rather than editing the original.
func (s *GeneratorService) Refine(ctx context.Context, ident models.Identity, queryID uuid.UUID, instructions string) (*models.SearchQuery, error) {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return nil, apperrors.New(apperrors.KindInvalidInput, "instructions must not be empty")
	}

	original, err := s.queries.GetByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if original == nil || !ident.CanAccess(original.CreatedUserID) {
		return nil, apperrors.New(apperrors.KindNotFound, "search query not found")
	}

	tctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	refined, err := s.translator.Refine(tctx, original.GeneratedQuery, instructions)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTranslationUnavailable, "query refinement failed", err)
	}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		return nil, apperrors.New(apperrors.KindTranslationUnavailable, "translator returned an empty query")
	}

	query := &models.SearchQuery{
		UserInput:      original.UserInput + " | " + instructions,
		GeneratedQuery: refined,
		CreatedUserID:  ident.UserID,
	}

	if err := s.queries.Create(ctx, query); err != nil {
		return nil, err
	}

	s.log.Info("search query refined", "query_id", query.ID, "source_query_id", original.ID)
	return query, nil
}
