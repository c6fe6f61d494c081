package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"sourcingagent/backend/internal/apperrors"
	"sourcingagent/backend/internal/logging"
	"sourcingagent/backend/internal/models"
	"sourcingagent/backend/internal/utils"
)

// UserService is the admin-only user management surface. There is no
// self-registration: accounts are created here.
type UserService struct {
	users UserStore
	log   *logging.Logger
}

func NewUserService(users UserStore, log *logging.Logger) *UserService {
	return &UserService{users: users, log: log}
}

type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName *string `json:"full_name,omitempty"`
	IsAdmin  bool    `json:"is_admin"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if existing, err := s.users.FindByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.New(apperrors.KindConflict, "email already registered")
	}

	if existing, err := s.users.FindByUsername(ctx, req.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.New(apperrors.KindConflict, "username already taken")
	}

	hash, err := utils.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		IsActive:     true,
		IsAdmin:      req.IsAdmin,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user created", "user_id", user.ID, "username", user.Username, "is_admin", user.IsAdmin)
	return user, nil
}

func (s *UserService) List(ctx context.Context, skip, limit int) ([]models.User, error) {
	skip, limit = normalizePage(skip, limit, DefaultResultPageLimit)
	return s.users.List(ctx, skip, limit)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.New(apperrors.KindNotFound, "user not found")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.users.FindByEmail(ctx, *req.Email); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, apperrors.New(apperrors.KindConflict, "email already registered")
		}
		user.Email = *req.Email
	}

	if req.Username != nil && *req.Username != user.Username {
		if existing, err := s.users.FindByUsername(ctx, *req.Username); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, apperrors.New(apperrors.KindConflict, "username already taken")
		}
		user.Username = *req.Username
	}

	if req.FullName != nil {
		user.FullName = req.FullName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetActive activates or deactivates an account. Admins cannot deactivate
// themselves.
func (s *UserService) SetActive(ctx context.Context, adminID, id uuid.UUID, active bool) (*models.User, error) {
	if !active && adminID == id {
		return nil, apperrors.New(apperrors.KindInvalidInput, "cannot deactivate your own account")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	user.IsActive = active
	return user, nil
}

func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apperrors.New(apperrors.KindInvalidInput, "new password must not be empty")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	hash, err := utils.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

// Delete removes a user. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	if adminID == id {
		return apperrors.New(apperrors.KindInvalidInput, "cannot delete your own account")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}
