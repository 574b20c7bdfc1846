package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"useradmin/internal/metrics"
	"useradmin/internal/models"
	"useradmin/internal/repositories"
	"useradmin/internal/validation"

	"github.com/sirupsen/logrus"
)

// UserService handles business logic related to user accounts.
type UserService struct {
	userRepo    repositories.UserRepository
	credentials *CredentialService
	validator   *validation.UserValidator
	mailer      CredentialMailer
	logger      *logrus.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, credentials *CredentialService, mailer CredentialMailer, logger *logrus.Logger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		credentials: credentials,
		validator:   validation.NewUserValidator(),
		mailer:      mailer,
		logger:      logger,
	}
}

// CreateUserInput contains the data needed to create a new user.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Admin     bool
}

// CreateUserOutput contains the created user and its generated plaintext
// password. The password is only exposed to in-process callers such as the CLI.
type CreateUserOutput struct {
	User     *models.User
	Password string
}

// UpdateUserInput holds the fields to change; nil fields are left untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// CreateUser validates the input, generates credentials and stores a new user.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*CreateUserOutput, error) {
	if err := s.validateField("firstName", "first name", input.FirstName, s.validator.ValidateFirstName); err != nil {
		return nil, err
	}
	if err := s.validateField("lastName", "last name", input.LastName, s.validator.ValidateLastName); err != nil {
		return nil, err
	}
	if err := s.validateField("email", "e-mail", input.Email, s.validator.ValidateEmail); err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, input.Email, 0); err != nil {
		return nil, err
	}

	plainPassword, passwordHash, err := s.credentials.GeneratePassword()
	if err != nil {
		return nil, err
	}
	apiKey, err := s.credentials.GenerateAPIKey(ctx)
	if err != nil {
		return nil, err
	}

	var roles []string
	if input.Admin {
		roles = append(roles, models.RoleAdmin)
	}
	user := models.NewUser(input.FirstName, input.LastName, input.Email, passwordHash, apiKey, roles...)

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// Lost a race with a concurrent registration.
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.UsersCreated.Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin(),
	}).Info("user created")

	s.deliverPassword(ctx, user, "Your account has been created", plainPassword)

	return &CreateUserOutput{User: user, Password: plainPassword}, nil
}

// GetUser retrieves a single user by its ID.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by its login e-mail.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by e-mail: %w", err)
	}
	return user, nil
}

// ListUsers returns one page of users ordered by ID and the total count.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	if page < 1 || limit < 1 {
		return nil, 0, &ValidationError{Field: "page", Message: "The page and page limit must be positive integers.", Err: validation.ErrFieldInvalid}
	}
	// The row offset (page-1)*limit must fit in an int.
	if page-1 > math.MaxInt/limit {
		return nil, 0, &ValidationError{Field: "page", Message: "The page is out of range.", Err: validation.ErrFieldInvalid}
	}
	users, total, err := s.userRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUser applies the provided fields. Every provided field is validated
// before anything is written, so a rejected update leaves the user unchanged.
func (s *UserService) UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*models.User, error) {
	if input.FirstName != nil {
		if err := s.validateField("firstName", "first name", *input.FirstName, s.validator.ValidateFirstName); err != nil {
			return nil, err
		}
	}
	if input.LastName != nil {
		if err := s.validateField("lastName", "last name", *input.LastName, s.validator.ValidateLastName); err != nil {
			return nil, err
		}
	}
	if input.Email != nil {
		if err := s.validateField("email", "e-mail", *input.Email, s.validator.ValidateEmail); err != nil {
			return nil, err
		}
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	firstName, lastName := user.FirstName, user.LastName
	if input.FirstName != nil {
		firstName = *input.FirstName
	}
	if input.LastName != nil {
		lastName = *input.LastName
	}
	user.Rename(firstName, lastName)

	if input.Email != nil && *input.Email != user.Email {
		if err := s.ensureEmailAvailable(ctx, *input.Email, user.ID); err != nil {
			return nil, err
		}
		user.ChangeEmail(*input.Email)
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", user.ID).Info("user updated")
	return user, nil
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	s.logger.WithField("user_id", id).Info("user deleted")
	return nil
}

// BlockUser deactivates a user. Blocking a blocked user is a no-op.
func (s *UserService) BlockUser(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, false)
}

// UnblockUser reactivates a user. Unblocking an active user is a no-op.
func (s *UserService) UnblockUser(ctx context.Context, id uint) error {
	return s.setActive(ctx, id, true)
}

func (s *UserService) setActive(ctx context.Context, id uint, active bool) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Active == active {
		return nil
	}

	if active {
		user.Unblock()
	} else {
		user.Block()
	}
	if err := s.save(ctx, user); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"user_id": id, "active": active}).Info("user active flag changed")
	return nil
}

// ResetAPIKey replaces the API key of user and returns the old and new key.
func (s *UserService) ResetAPIKey(ctx context.Context, user *models.User) (oldKey, newKey string, err error) {
	oldKey = user.APIKey
	newKey, err = s.credentials.GenerateAPIKey(ctx)
	if err != nil {
		return "", "", err
	}

	user.SetAPIKey(newKey)
	if err := s.save(ctx, user); err != nil {
		user.SetAPIKey(oldKey)
		return "", "", err
	}

	metrics.CredentialRotations.WithLabelValues("api_key").Inc()
	s.logger.WithField("user_id", user.ID).Info("API key reset")
	return oldKey, newKey, nil
}

// ResetPassword generates a new password for user and e-mails it. The
// plaintext never leaves this method otherwise.
func (s *UserService) ResetPassword(ctx context.Context, user *models.User) error {
	plainPassword, passwordHash, err := s.credentials.GeneratePassword()
	if err != nil {
		return err
	}

	user.SetPasswordHash(passwordHash)
	if err := s.save(ctx, user); err != nil {
		return err
	}

	metrics.CredentialRotations.WithLabelValues("password").Inc()
	s.logger.WithField("user_id", user.ID).Info("password reset")

	s.deliverPassword(ctx, user, "Your password has been reset", plainPassword)
	return nil
}

func (s *UserService) save(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Save(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return ErrUserNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}
	return nil
}

// ensureEmailAvailable fails with ErrEmailTaken when a user other than
// ownerID already uses email.
func (s *UserService) ensureEmailAvailable(ctx context.Context, email string, ownerID uint) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check e-mail uniqueness: %w", err)
	}
	if existing.ID != ownerID {
		return ErrEmailTaken
	}
	return nil
}

func (s *UserService) validateField(field, label, value string, check func(string) error) error {
	err := check(value)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, validation.ErrFieldMissing):
		return &ValidationError{Field: field, Message: fmt.Sprintf("The %s has not been provided.", label), Err: err}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("The provided %s is not valid.", label), Err: err}
	}
}

// deliverPassword sends the plaintext password. Failures are logged, never returned.
func (s *UserService) deliverPassword(ctx context.Context, user *models.User, subject, plainPassword string) {
	body := fmt.Sprintf("Hello %s,\n\nyour new password is: %s\n", user.FirstName, plainPassword)
	if err := s.mailer.SendCredentialEmail(ctx, user.Email, subject, body); err != nil {
		metrics.EmailDeliveryFailures.Inc()
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to deliver credential e-mail")
	}
}
