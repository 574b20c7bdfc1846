package services

import (
	"context"
	"errors"
	"fmt"

	"useradmin/internal/metrics"
	"useradmin/internal/models"
	"useradmin/internal/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService resolves inbound credentials to users.
type AuthService struct {
	userRepo repositories.UserRepository
	logger   *logrus.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, logger *logrus.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// ResolveAPIKey returns the active user holding apiKey.
func (s *AuthService) ResolveAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	if apiKey == "" {
		metrics.AuthFailures.WithLabelValues("api_key", "missing").Inc()
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.AuthFailures.WithLabelValues("api_key", "unknown").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to resolve API key: %w", err)
	}

	if !user.CanAuthenticate() {
		metrics.AuthFailures.WithLabelValues("api_key", "blocked").Inc()
		s.logger.WithField("user_id", user.ID).Info("blocked user attempted API key authentication")
		return nil, ErrUserInactive
	}
	return user, nil
}

// Authenticate verifies an e-mail and password pair. Unknown e-mails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.AuthFailures.WithLabelValues("basic", "unknown").Inc()
			s.logger.Debug("user not found during authentication")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.AuthFailures.WithLabelValues("basic", "password").Inc()
		s.logger.WithField("user_id", user.ID).Debug("invalid password during authentication")
		return nil, ErrInvalidCredentials
	}

	// Checked after the password so the block state is not revealed to guesses.
	if !user.CanAuthenticate() {
		metrics.AuthFailures.WithLabelValues("basic", "blocked").Inc()
		s.logger.WithField("user_id", user.ID).Info("blocked user attempted login")
		return nil, ErrUserInactive
	}

	s.logger.WithField("user_id", user.ID).Info("user authenticated")
	return user, nil
}
