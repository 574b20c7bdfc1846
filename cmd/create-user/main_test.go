package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"useradmin/internal/models"
	"useradmin/internal/repositories"
	"useradmin/internal/services"
	"useradmin/internal/validation"
	"useradmin/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService() (*services.UserService, *repositories.MockUserRepository) {
	repo := repositories.NewMockUserRepository()
	log := logger.Discard()
	credentials := services.NewCredentialService(repo, bcrypt.MinCost, 5, log)
	return services.NewUserService(repo, credentials, services.NewLogMailer(log), log), repo
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-admin", "-first", "Jan", "-last", "Kowalski", "-email", "jan@example.com"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, options{admin: true, firstName: "Jan", lastName: "Kowalski", email: "jan@example.com"}, opts)

	_, err = parseFlags([]string{"-unknown"}, io.Discard)
	assert.Error(t, err)
}

func TestRun_FromFlags(t *testing.T) {
	service, repo := newService()
	var out bytes.Buffer

	err := run(context.Background(), service, options{admin: true, firstName: "Jan", lastName: "Kowalski", email: "jan@example.com"}, strings.NewReader(""), &out)
	require.NoError(t, err)

	user, err := repo.GetByEmail(context.Background(), "jan@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
	assert.True(t, user.HasRole(models.RoleUser))

	var password string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "Password: ") {
			password = strings.TrimPrefix(line, "Password: ")
		}
	}
	require.NotEmpty(t, password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)))
}

func TestRun_PromptsForMissingValues(t *testing.T) {
	service, repo := newService()
	var out bytes.Buffer

	// The first answer for the first name is rejected and asked again.
	input := strings.NewReader("J4n\nJan\nKowalski\njan@example.com\n")
	err := run(context.Background(), service, options{}, input, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Invalid first name, try again.")
	user, err := repo.GetByEmail(context.Background(), "jan@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Jan", user.FirstName)
	assert.False(t, user.IsAdmin())
}

func TestRun_Failures(t *testing.T) {
	service, _ := newService()

	err := run(context.Background(), service, options{firstName: "Jan", lastName: "Kowalski"}, strings.NewReader("not-an-email"), io.Discard)
	assert.ErrorIs(t, err, validation.ErrFieldInvalid)

	opts := options{firstName: "Jan", lastName: "Kowalski", email: "jan@example.com"}
	require.NoError(t, run(context.Background(), service, opts, strings.NewReader(""), io.Discard))
	err = run(context.Background(), service, opts, strings.NewReader(""), io.Discard)
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}
