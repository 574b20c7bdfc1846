package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"useradmin/internal/models"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users  map[uint]models.User
	nextID uint
	mu     sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]models.User),
		nextID: 1,
	}
}

// Create adds a new user and assigns the next ID. IDs are never reused.
func (r *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	now := time.Now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.nextID++
	r.users[user.ID] = copyUser(*user)
	return nil
}

// Save modifies an existing user.
func (r *MockUserRepository) Save(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user with ID %d not found for update: %w", user.ID, ErrNotFound)
	}
	if err := r.checkUnique(user); err != nil {
		return fmt.Errorf("failed to save user %d: %w", user.ID, err)
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = copyUser(*user)
	return nil
}

// Delete removes a user by its ID.
func (r *MockUserRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user with ID %d not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

// GetByID returns a user by its ID.
func (r *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user = copyUser(user)
	return &user, nil
}

// GetByEmail returns a user by its e-mail.
func (r *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

// GetByAPIKey returns a user by its API key.
func (r *MockUserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.APIKey == apiKey })
}

// List returns a page of users ordered by ascending ID.
func (r *MockUserRepository) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := make([]models.User, 0, limit)
	start := (page - 1) * limit
	if page < 1 || limit < 1 || start < 0 {
		return users, int64(len(ids)), nil
	}
	for i := start; i < len(ids) && len(users) < limit; i++ {
		users = append(users, copyUser(r.users[ids[i]]))
	}
	return users, int64(len(ids)), nil
}

func (r *MockUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if match(user) {
			user = copyUser(user)
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// checkUnique mirrors the unique indexes of the users table. Callers hold mu.
func (r *MockUserRepository) checkUnique(user *models.User) error {
	for id, existing := range r.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email || existing.APIKey == user.APIKey {
			return ErrDuplicateKey
		}
	}
	return nil
}

func copyUser(user models.User) models.User {
	user.Roles = append(models.Roles(nil), user.Roles...)
	return user
}
