package handlers

import (
	"errors"

	"useradmin/internal/services"
	"useradmin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	msgNotFound           = "The desired resource could not be found."
	msgForbidden          = "You are not authorized to access this resource."
	msgMissingCredentials = "The API token has not been given."
	msgInvalidCredentials = "The provided API token is not valid."
	msgUserInactive       = "The user account is blocked."
	msgEmailTaken         = "The provided e-mail is already registered."
	msgUnexpected         = "An unexpected error occurred."
)

// ErrorHandler translates every error returned by a handler or middleware
// into a JSend envelope.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var validationErr *services.ValidationError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &validationErr):
			return response.Fail(c, fiber.StatusBadRequest, validationErr.Message)
		case errors.Is(err, services.ErrEmailTaken):
			return response.Fail(c, fiber.StatusBadRequest, msgEmailTaken)
		case errors.Is(err, services.ErrUserNotFound):
			return response.Fail(c, fiber.StatusNotFound, msgNotFound)
		case errors.Is(err, services.ErrMissingCredentials):
			return response.Fail(c, fiber.StatusUnauthorized, msgMissingCredentials)
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Fail(c, fiber.StatusUnauthorized, msgInvalidCredentials)
		case errors.Is(err, services.ErrUserInactive):
			return response.Fail(c, fiber.StatusUnauthorized, msgUserInactive)
		case errors.Is(err, services.ErrForbidden):
			return response.Fail(c, fiber.StatusForbidden, msgForbidden)
		case errors.As(err, &fiberErr):
			if fiberErr.Code < fiber.StatusInternalServerError {
				return response.Fail(c, fiberErr.Code, fiberErr.Message)
			}
			logger.WithError(err).WithField("path", c.Path()).Error("request failed")
			return response.Error(c, fiberErr.Code, fiberErr.Message)
		}

		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("unhandled error")
		return response.Error(c, fiber.StatusInternalServerError, msgUnexpected)
	}
}
