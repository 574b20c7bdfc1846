package middleware

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"useradmin/internal/models"
	"useradmin/internal/services"
	"useradmin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const userLocalsKey = "user"

// APIKeyRequired resolves the API key in the Authorization header and binds
// the active user holding it to the request. Both "Bearer <key>" and the
// bare key are accepted.
func APIKeyRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := apiKeyFromHeader(c.Get(fiber.HeaderAuthorization))

		user, err := authService.ResolveAPIKey(c.UserContext(), apiKey)
		if err != nil {
			return err
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

func apiKeyFromHeader(header string) string {
	header = strings.TrimSpace(header)
	// "Bearer" with nothing after it carries no key.
	if scheme, key, _ := strings.Cut(header, " "); strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(key)
	}
	return header
}

// CurrentUser returns the user bound by APIKeyRequired or BasicAuth, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalsKey).(*models.User)
	return user
}

// RequirePermission rejects the request unless the current user may perform
// action. It must run after APIKeyRequired.
func RequirePermission(action services.Action, logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return services.ErrMissingCredentials
		}
		if !services.IsAuthorized(user, action) {
			logger.WithFields(logrus.Fields{
				"user_id": user.ID,
				"action":  action,
			}).Info("access denied")
			return services.ErrForbidden
		}
		return c.Next()
	}
}

// BasicAuth guards the login endpoint with e-mail and password credentials
// and binds the authenticated user like APIKeyRequired does. Bad or absent
// credentials answer 401 with a Basic challenge for realm; any other failure
// is returned to the error handler.
func BasicAuth(authService *services.AuthService, realm string) fiber.Handler {
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(c *fiber.Ctx) error {
		email, password, ok := basicCredentials(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, challenge)
		}

		user, err := authService.Authenticate(c.UserContext(), email, password)
		if err != nil {
			if isCredentialError(err) {
				return unauthorized(c, challenge)
			}
			return err
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// basicCredentials decodes "Basic base64(email:password)".
func basicCredentials(header string) (email, password string, ok bool) {
	scheme, encoded, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(raw), ":")
}

func unauthorized(c *fiber.Ctx, challenge string) error {
	c.Set(fiber.HeaderWWWAuthenticate, challenge)
	return response.Fail(c, fiber.StatusUnauthorized, "Invalid credentials.")
}

func isCredentialError(err error) bool {
	return errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrUserInactive)
}
