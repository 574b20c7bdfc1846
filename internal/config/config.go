// Package config loads the service configuration from the environment,
// an optional .env file and an optional config file.
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds every setting of the API server, the CLI and the email worker.
type Config struct {
	AppName  string
	Env      string
	Port     string
	LogLevel string

	DatabaseDriver      string
	DatabaseDSN         string
	DatabaseAutoMigrate bool

	RabbitMQURL        string
	RabbitMQEmailQueue string

	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string

	BcryptCost        int
	APIKeyMaxAttempts int
	AuthRealm         string

	PageLimitDefault int
	PageLimitMax     int

	MetricsEnabled bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "useradmin")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=useradmin port=5432 sslmode=disable")
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EMAIL_QUEUE", "credential_emails")
	v.SetDefault("MAILGUN_DOMAIN", "")
	v.SetDefault("MAILGUN_API_KEY", "")
	v.SetDefault("MAILGUN_SENDER", "")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("API_KEY_MAX_ATTEMPTS", 5)
	v.SetDefault("AUTH_REALM", "Secured Area")
	v.SetDefault("PAGE_LIMIT_DEFAULT", 10)
	v.SetDefault("PAGE_LIMIT_MAX", 100)
	v.SetDefault("METRICS_ENABLED", true)
}

// Load reads the configuration. A missing .env file is not an error; a
// CONFIG_FILE that cannot be read is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := FromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:             v.GetString("APP_NAME"),
		Env:                 v.GetString("APP_ENV"),
		Port:                v.GetString("APP_PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		DatabaseDriver:      v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		DatabaseAutoMigrate: v.GetBool("DATABASE_AUTO_MIGRATE"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		RabbitMQEmailQueue:  v.GetString("RABBITMQ_EMAIL_QUEUE"),
		MailgunDomain:       v.GetString("MAILGUN_DOMAIN"),
		MailgunAPIKey:       v.GetString("MAILGUN_API_KEY"),
		MailgunSender:       v.GetString("MAILGUN_SENDER"),
		BcryptCost:          v.GetInt("BCRYPT_COST"),
		APIKeyMaxAttempts:   v.GetInt("API_KEY_MAX_ATTEMPTS"),
		AuthRealm:           v.GetString("AUTH_REALM"),
		PageLimitDefault:    v.GetInt("PAGE_LIMIT_DEFAULT"),
		PageLimitMax:        v.GetInt("PAGE_LIMIT_MAX"),
		MetricsEnabled:      v.GetBool("METRICS_ENABLED"),
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.APIKeyMaxAttempts < 1 {
		errs = append(errs, errors.New("API_KEY_MAX_ATTEMPTS must be at least 1"))
	}
	if c.PageLimitDefault < 1 || c.PageLimitMax < c.PageLimitDefault {
		errs = append(errs, errors.New("PAGE_LIMIT_DEFAULT must be at least 1 and not above PAGE_LIMIT_MAX"))
	}
	if c.RabbitMQURL != "" && c.RabbitMQEmailQueue == "" {
		errs = append(errs, errors.New("RABBITMQ_EMAIL_QUEUE is required when RABBITMQ_URL is set"))
	}
	return errors.Join(errs...)
}

// MailgunConfigured reports whether the email worker can deliver mail.
func (c *Config) MailgunConfigured() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != "" && c.MailgunSender != ""
}
