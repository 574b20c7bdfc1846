package handlers

import (
	"useradmin/internal/middleware"
	"useradmin/internal/services"
	"useradmin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AccountHandler handles login and the self-service routes of the current user.
type AccountHandler struct {
	service *services.UserService
	logger  *logrus.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *services.UserService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the account routes. basicAuth guards login;
// authRequired must bind the current user.
func (h *AccountHandler) RegisterRoutes(router fiber.Router, basicAuth, authRequired fiber.Handler) {
	router.Get("/login", basicAuth, h.HandleLogin)
	router.Get("/profile", authRequired, middleware.RequirePermission(services.ActionViewProfile, h.logger), h.HandleProfile)
	router.Post("/reset-key", authRequired, middleware.RequirePermission(services.ActionResetAPIKey, h.logger), h.HandleResetAPIKey)
	router.Post("/reset-password", authRequired, middleware.RequirePermission(services.ActionResetPassword, h.logger), h.HandleResetPassword)
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	ID     uint   `json:"id"`
	Email  string `json:"email"`
	APIKey string `json:"apiKey"`
}

// ResetAPIKeyResponse is returned by POST /reset-key.
type ResetAPIKeyResponse struct {
	OldAPIKey string `json:"oldApiKey"`
	NewAPIKey string `json:"newApiKey"`
}

// HandleLogin exchanges Basic credentials for the user's API key.
func (h *AccountHandler) HandleLogin(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return services.ErrInvalidCredentials
	}
	return response.Success(c, fiber.StatusOK, LoginResponse{
		ID:     user.ID,
		Email:  user.Email,
		APIKey: user.APIKey,
	})
}

// HandleProfile returns the current user.
func (h *AccountHandler) HandleProfile(c *fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, middleware.CurrentUser(c))
}

// HandleResetAPIKey replaces the current user's API key.
func (h *AccountHandler) HandleResetAPIKey(c *fiber.Ctx) error {
	oldKey, newKey, err := h.service.ResetAPIKey(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, ResetAPIKeyResponse{
		OldAPIKey: oldKey,
		NewAPIKey: newKey,
	})
}

// HandleResetPassword generates and e-mails a new password. The password is
// not part of the response.
func (h *AccountHandler) HandleResetPassword(c *fiber.Ctx) error {
	if err := h.service.ResetPassword(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, nil)
}
