package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog_api/internal/common"
	"catalog_api/internal/common/security"
	"catalog_api/internal/domain/model"
	"catalog_api/internal/domain/repository"
	"catalog_api/internal/platform/logger"
	"catalog_api/internal/platform/metrics"
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) *AuthService {
	return &AuthService{userRepo: userRepo, sessionRepo: sessionRepo}
}

type LoginRequest struct {
	ID       int    `json:"id"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int         `json:"expiresIn"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (resp *LoginResponse, err error) {
	defer func() { metrics.LoginAttempts.WithLabelValues(metrics.Outcome(err)).Inc() }()

	if req.Password == "" {
		return nil, common.ErrUnauthorized
	}

	user, err := s.userRepo.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	accessToken, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refreshToken := security.NewRefreshToken()
	if err := s.sessionRepo.Save(ctx, refreshToken, user.ID); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	logger.WithFields(map[string]any{"user_id": user.ID, "role": user.Role}).Info("user logged in")

	user.HashedPassword = ""
	return &LoginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    security.ExpiresInSeconds(),
	}, nil
}

// Refresh issues a new access token for a known refresh token. The user's
// role is re-read so a role change takes effect here, at most one access
// token lifetime after it was made. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (resp *RefreshResponse, err error) {
	defer func() { metrics.TokenRefreshes.WithLabelValues(metrics.Outcome(err)).Inc() }()

	if req.RefreshToken == "" {
		return nil, common.ErrUnauthorized
	}

	userID, err := s.sessionRepo.FindUserID(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	accessToken, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &RefreshResponse{AccessToken: accessToken, ExpiresIn: security.ExpiresInSeconds()}, nil
}

// Logout forgets the refresh token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, req RefreshRequest) error {
	if req.RefreshToken == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, req.RefreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// UpgradeStoredUsers gives every user without a role the default role and
// hashes any password still stored in plain text. It returns the number of
// users rewritten.
func (s *AuthService) UpgradeStoredUsers(ctx context.Context) (int, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	upgraded := 0
	for i := range users {
		user := &users[i]
		changed := false

		if strings.TrimSpace(user.Role) == "" {
			user.Role = model.RoleUser
			changed = true
		}
		if !security.IsPasswordHash(user.HashedPassword) {
			hashed, err := security.HashPassword(user.HashedPassword)
			if err != nil {
				return upgraded, fmt.Errorf("failed to hash password for user %d: %w", user.ID, err)
			}
			user.HashedPassword = hashed
			changed = true
		}

		if !changed {
			continue
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return upgraded, fmt.Errorf("failed to upgrade user %d: %w", user.ID, err)
		}
		upgraded++
	}

	if upgraded > 0 {
		logger.WithField("count", upgraded).Info("upgraded stored users")
	}
	return upgraded, nil
}
