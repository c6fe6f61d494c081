package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/logging"
	"sourcingagent/backend/internal/models"
	"sourcingagent/backend/internal/utils"
)

// AuthService issues and revokes access tokens. It is the identity-provider
// collaborator: the core only ever sees the resolved models.Identity.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	secret   []byte
	tokenTTL time.Duration
	log      *logging.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, secret []byte, tokenTTL time.Duration, log *logging.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates by username or email and returns a signed access token
// whose JTI is tracked server-side for revocation.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, *models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		user, err = s.users.FindByEmail(ctx, username)
		if err != nil {
			return nil, nil, err
		}
	}

	if user == nil {
		return nil, nil, apperrors.New(apperrors.KindUnauthorized, "incorrect username or password")
	}

	ok, err := utils.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil, apperrors.New(apperrors.KindUnauthorized, "incorrect username or password")
	}

	if !user.IsActive {
		return nil, nil, apperrors.New(apperrors.KindForbidden, "user account is inactive")
	}

	token, jti, err := utils.GenerateToken(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, nil, err
	}

	if err := s.sessions.StoreSession(ctx, jti, user.ID.String(), s.tokenTTL); err != nil {
		return nil, nil, err
	}

	s.log.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, user, nil
}

// Logout blacklists the token's JTI for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, jti string) error {
	return s.sessions.Blacklist(ctx, jti, s.tokenTTL)
}

// ChangePassword updates the caller's own password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.New(apperrors.KindNotFound, "user not found")
	}

	ok, err := utils.Verify(currentPassword, user.PasswordHash)
	if err != nil || !ok {
		return apperrors.New(apperrors.KindInvalidInput, "current password is incorrect")
	}

	hash, err := utils.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}
