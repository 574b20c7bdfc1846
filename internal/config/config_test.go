package config_test

import (
	"testing"

	"useradmin/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg := config.FromViper(v)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "credential_emails", cfg.RabbitMQEmailQueue)
	assert.Equal(t, "Secured Area", cfg.AuthRealm)
	assert.Equal(t, 10, cfg.PageLimitDefault)
	assert.Equal(t, 100, cfg.PageLimitMax)
	assert.Equal(t, 5, cfg.APIKeyMaxAttempts)
	assert.False(t, cfg.MailgunConfigured())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("PAGE_LIMIT_DEFAULT", "25")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 25, cfg.PageLimitDefault)
	assert.Equal(t, 4, cfg.BcryptCost)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)

	cfg := config.FromViper(v)
	cfg.DatabaseDriver = "mysql"
	cfg.BcryptCost = 1
	cfg.APIKeyMaxAttempts = 0
	cfg.PageLimitDefault = 200

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DRIVER")
	assert.Contains(t, err.Error(), "BCRYPT_COST")
	assert.Contains(t, err.Error(), "API_KEY_MAX_ATTEMPTS")
	assert.Contains(t, err.Error(), "PAGE_LIMIT_DEFAULT")
}
