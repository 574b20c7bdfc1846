package handlers

import (
	"strconv"

	"useradmin/internal/middleware"
	"useradmin/internal/services"
	"useradmin/internal/validation"
	"useradmin/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Paging holds the list defaults.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// UserHandler handles the admin-only user management routes.
type UserHandler struct {
	service *services.UserService
	paging  Paging
	logger  *logrus.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, paging Paging, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		paging:  paging,
		logger:  logger,
	}
}

// RegisterRoutes registers the user routes. authRequired must bind the
// current user.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	userRoutes := router.Group("/users", authRequired)
	userRoutes.Get("/", h.allow(services.ActionListUsers), h.HandleListUsers)
	userRoutes.Post("/", h.allow(services.ActionCreateUser), h.HandleCreateUser)
	userRoutes.Get("/:id", h.allow(services.ActionViewUser), h.HandleGetUser)
	userRoutes.Patch("/:id", h.allow(services.ActionUpdateUser), h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.allow(services.ActionDeleteUser), h.HandleDeleteUser)
	userRoutes.Post("/:id/block", h.allow(services.ActionBlockUser), h.HandleBlockUser)
	userRoutes.Post("/:id/unblock", h.allow(services.ActionBlockUser), h.HandleUnblockUser)
}

func (h *UserHandler) allow(action services.Action) fiber.Handler {
	return middleware.RequirePermission(action, h.logger)
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// UpdateUserRequest is the body of PATCH /users/:id. Absent fields are left untouched.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

// HandleListUsers returns one page of users ordered by id.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page, err := h.queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := h.queryInt(c, "pageLimit", h.paging.DefaultLimit)
	if err != nil {
		return err
	}
	if h.paging.MaxLimit > 0 && limit > h.paging.MaxLimit {
		limit = h.paging.MaxLimit
	}

	users, total, err := h.service.ListUsers(c.UserContext(), page, limit)
	if err != nil {
		return err
	}

	c.Set("X-Total-Count", strconv.FormatInt(total, 10))
	return response.Success(c, fiber.StatusOK, users)
}

// HandleCreateUser registers a new user with generated credentials.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	out, err := h.service.CreateUser(c.UserContext(), services.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, out.User)
}

// HandleGetUser returns a single user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, user)
}

// HandleUpdateUser applies a partial update.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}

	if _, err := h.service.UpdateUser(c.UserContext(), id, services.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, nil)
}

// HandleDeleteUser removes a user.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.UserContext(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, nil)
}

// HandleBlockUser deactivates a user.
func (h *UserHandler) HandleBlockUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.service.BlockUser(c.UserContext(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, nil)
}

// HandleUnblockUser reactivates a user.
func (h *UserHandler) HandleUnblockUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.service.UnblockUser(c.UserContext(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, nil)
}

// userID parses the :id parameter. Anything but a positive integer cannot
// name a user.
func userID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, services.ErrUserNotFound
	}
	return uint(id), nil
}

func (h *UserHandler) queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, &services.ValidationError{
			Field:   key,
			Message: "The " + key + " parameter must be a positive integer.",
			Err:     validation.ErrFieldInvalid,
		}
	}
	return value, nil
}

func invalidBody(err error) error {
	return &services.ValidationError{
		Field:   "body",
		Message: "The request body is not valid.",
		Err:     err,
	}
}
