package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"useradmin/internal/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyLength is the length of generated API keys.
	APIKeyLength = 32
	// PasswordLength is the length of generated plaintext passwords.
	PasswordLength = 32

	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// CredentialService generates API keys and passwords.
type CredentialService struct {
	userRepo    repositories.UserRepository
	bcryptCost  int
	maxAttempts int
	logger      *logrus.Logger
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(userRepo repositories.UserRepository, bcryptCost, maxAttempts int, logger *logrus.Logger) *CredentialService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CredentialService{
		userRepo:    userRepo,
		bcryptCost:  bcryptCost,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// GenerateAPIKey returns a random API key no other user holds. It gives up
// with ErrAPIKeyExhausted after maxAttempts collisions.
func (s *CredentialService) GenerateAPIKey(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		apiKey, err := randomString(APIKeyLength, alphanumeric)
		if err != nil {
			return "", err
		}

		_, err = s.userRepo.GetByAPIKey(ctx, apiKey)
		if errors.Is(err, repositories.ErrNotFound) {
			return apiKey, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check API key uniqueness: %w", err)
		}
		s.logger.WithField("attempt", attempt).Warn("generated API key collides with an existing one")
	}
	return "", ErrAPIKeyExhausted
}

// GeneratePassword returns a random plaintext password and its bcrypt hash.
// The plaintext is meant for one-time delivery only.
func (s *CredentialService) GeneratePassword() (plain string, hash string, err error) {
	plain, err = randomString(PasswordLength, alphanumeric)
	if err != nil {
		return "", "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}
	return plain, string(hashed), nil
}

// randomString draws length characters from charset using crypto/rand.
// Bytes above the largest multiple of len(charset) are rejected so every
// character is equally likely.
func randomString(length int, charset string) (string, error) {
	limit := 256 - 256%len(charset)
	result := make([]byte, 0, length)
	buf := make([]byte, length)

	for len(result) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, charset[int(b)%len(charset)])
			if len(result) == length {
				break
			}
		}
	}
	return string(result), nil
}
