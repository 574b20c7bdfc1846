package models_test

import (
	"encoding/json"
	"testing"

	"useradmin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user := models.NewUser("Jan", "Kowalski", "jan@example.com", "hash", "key", models.RoleAdmin)

	assert.Equal(t, "Jan", user.FirstName)
	assert.Equal(t, "Kowalski", user.LastName)
	assert.Equal(t, "jan@example.com", user.Email)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, "key", user.APIKey)
	assert.True(t, user.Active)
	assert.True(t, user.IsAdmin())
	assert.True(t, user.HasRole(models.RoleUser))
}

func TestNewUser_AlwaysHasRoleUser(t *testing.T) {
	plain := models.NewUser("Jan", "Kowalski", "jan@example.com", "hash", "key")
	assert.Equal(t, models.Roles{models.RoleUser}, plain.Roles)
	assert.False(t, plain.IsAdmin())

	admin := models.NewUser("Jan", "Kowalski", "jan@example.com", "hash", "key", models.RoleAdmin, models.RoleUser, models.RoleAdmin, "")
	assert.Equal(t, models.Roles{models.RoleUser, models.RoleAdmin}, admin.Roles)
}

func TestUser_BlockUnblock(t *testing.T) {
	user := models.NewUser("Jan", "Kowalski", "jan@example.com", "hash", "key")

	user.Block()
	user.Block()
	assert.False(t, user.Active)
	assert.False(t, user.CanAuthenticate())

	user.Unblock()
	user.Unblock()
	assert.True(t, user.Active)
	assert.True(t, user.CanAuthenticate())
}

func TestRoles_ValueAndScan(t *testing.T) {
	value, err := models.Roles{models.RoleAdmin}.Value()
	require.NoError(t, err)
	assert.Equal(t, "ROLE_USER,ROLE_ADMIN", value)

	var roles models.Roles
	require.NoError(t, roles.Scan([]byte("ROLE_ADMIN, ROLE_USER")))
	assert.Equal(t, models.Roles{models.RoleUser, models.RoleAdmin}, roles)

	require.NoError(t, roles.Scan(nil))
	assert.Equal(t, models.Roles{models.RoleUser}, roles)

	assert.Error(t, roles.Scan(42))
}

func TestUser_JSONHidesCredentials(t *testing.T) {
	user := models.NewUser("Jan", "Kowalski", "jan@example.com", "secret-hash", "secret-key")
	user.ID = 7

	body, err := json.Marshal(user)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &fields))
	assert.Equal(t, float64(7), fields["id"])
	assert.Equal(t, "jan@example.com", fields["email"])
	assert.NotContains(t, string(body), "secret-hash")
	assert.NotContains(t, string(body), "secret-key")
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, fields, "apiKey")
}
