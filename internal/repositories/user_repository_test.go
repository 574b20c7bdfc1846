package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"useradmin/internal/database"
	"useradmin/internal/models"
	"useradmin/internal/repositories"
	"useradmin/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both implementations must honour the same contract.
func repositoryFactories(t *testing.T) map[string]func() repositories.UserRepository {
	return map[string]func() repositories.UserRepository{
		"gorm": func() repositories.UserRepository {
			dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
			db, err := database.Open("sqlite", dsn, logger.Discard())
			require.NoError(t, err)
			require.NoError(t, database.Migrate(db))
			return repositories.NewGORMUserRepository(db)
		},
		"memory": func() repositories.UserRepository {
			return repositories.NewMockUserRepository()
		},
	}
}

func newUser(n int) *models.User {
	return models.NewUser("Test", "User", fmt.Sprintf("user%d@example.com", n), "hash", fmt.Sprintf("key-%d", n))
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	for name, factory := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory()
			ctx := context.Background()

			user := models.NewUser("Jan", "Kowalski", "jan@example.com", "hash", "key-1", models.RoleAdmin)
			require.NoError(t, repo.Create(ctx, user))
			assert.NotZero(t, user.ID)

			byID, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "jan@example.com", byID.Email)
			assert.True(t, byID.Active)
			assert.Equal(t, models.Roles{models.RoleUser, models.RoleAdmin}, byID.Roles)

			byEmail, err := repo.GetByEmail(ctx, "jan@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)

			byKey, err := repo.GetByAPIKey(ctx, "key-1")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byKey.ID)

			_, err = repo.GetByID(ctx, user.ID+100)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = repo.GetByAPIKey(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestUserRepository_UniqueColumns(t *testing.T) {
	for name, factory := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory()
			ctx := context.Background()

			require.NoError(t, repo.Create(ctx, models.NewUser("Jan", "Kowalski", "jan@example.com", "hash", "key-1")))

			err := repo.Create(ctx, models.NewUser("Anna", "Nowak", "jan@example.com", "hash", "key-2"))
			assert.ErrorIs(t, err, repositories.ErrDuplicateKey)

			err = repo.Create(ctx, models.NewUser("Anna", "Nowak", "anna@example.com", "hash", "key-1"))
			assert.ErrorIs(t, err, repositories.ErrDuplicateKey)

			first, err := repo.GetByEmail(ctx, "jan@example.com")
			require.NoError(t, err)
			assert.Equal(t, "Jan", first.FirstName)
		})
	}
}

func TestUserRepository_SaveAndDelete(t *testing.T) {
	for name, factory := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory()
			ctx := context.Background()

			user := newUser(1)
			require.NoError(t, repo.Create(ctx, user))

			user.Block()
			user.Rename("Changed", "Name")
			require.NoError(t, repo.Save(ctx, user))

			stored, err := repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.False(t, stored.Active)
			assert.Equal(t, "Changed", stored.FirstName)

			require.NoError(t, repo.Delete(ctx, user.ID))
			_, err = repo.GetByID(ctx, user.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			assert.ErrorIs(t, repo.Delete(ctx, user.ID), repositories.ErrNotFound)
			assert.ErrorIs(t, repo.Save(ctx, user), repositories.ErrNotFound)
		})
	}
}

func TestUserRepository_IDsAreNotReused(t *testing.T) {
	for name, factory := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory()
			ctx := context.Background()

			first := newUser(1)
			require.NoError(t, repo.Create(ctx, first))
			require.NoError(t, repo.Delete(ctx, first.ID))

			second := newUser(2)
			require.NoError(t, repo.Create(ctx, second))
			assert.Greater(t, second.ID, first.ID)
		})
	}
}

func TestUserRepository_List(t *testing.T) {
	for name, factory := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			repo := factory()
			ctx := context.Background()

			for i := 1; i <= 15; i++ {
				require.NoError(t, repo.Create(ctx, newUser(i)))
			}

			page1, total, err := repo.List(ctx, 1, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(15), total)
			require.Len(t, page1, 10)
			for i := 1; i < len(page1); i++ {
				assert.Less(t, page1[i-1].ID, page1[i].ID)
			}
			assert.Equal(t, "user1@example.com", page1[0].Email)

			page2, _, err := repo.List(ctx, 2, 10)
			require.NoError(t, err)
			require.Len(t, page2, 5)
			assert.Equal(t, "user11@example.com", page2[0].Email)

			page3, _, err := repo.List(ctx, 3, 10)
			require.NoError(t, err)
			assert.Empty(t, page3)
		})
	}
}
