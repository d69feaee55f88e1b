package handlers

import (
	"errors"
	"strconv"
	"strings"

	"taskhub/internal/adapters/http/middleware"
	"taskhub/internal/core/domain"
	"taskhub/internal/core/services"
	"taskhub/internal/pkg/pagination"
	"taskhub/internal/pkg/response"
	"taskhub/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles admin-initiated user creation. This is the only
// request path that may assign the ADMIN role.
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User data"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := validation.Struct(&req); fields != nil {
		return response.ValidationFailed(c, fields)
	}

	user, err := h.userService.CreateUser(c.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			return response.Conflict(c, "Username already exists")
		case errors.Is(err, domain.ErrEmailTaken):
			return response.Conflict(c, "Email already exists")
		case errors.Is(err, domain.ErrInvalidRole):
			return response.BadRequest(c, "Invalid role")
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	return response.Created(c, "User created successfully", user)
}

// ListUsers handles listing all users (admin only)
// @Summary List all users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.userService.ListUsers(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully",
		pagination.NewResponse(result.Users, params, result.Total))
}

// GetUser handles getting a user by ID; callers may only read their own
// profile unless they are admin.
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if !caller.CanAccess(id) {
		return response.Forbidden(c, "You can only view your own profile")
	}

	user, err := h.userService.GetUserByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", user)
}

// UpdateUser handles partial user update; owner or admin only
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if !caller.CanAccess(id) {
		return response.Forbidden(c, "You can only update your own profile")
	}

	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		req.Username = &trimmed
	}
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		req.Email = &trimmed
	}
	// An empty password means "do not change", so it skips validation.
	if req.Password != nil && *req.Password == "" {
		req.Password = nil
	}

	fields := validation.Struct(&req)
	if req.Username != nil && *req.Username == "" {
		fields = validation.Require(fields, "username")
	}
	if req.Email != nil && *req.Email == "" {
		fields = validation.Require(fields, "email")
	}
	if fields != nil {
		return response.ValidationFailed(c, fields)
	}

	user, err := h.userService.UpdateUser(c.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrUsernameTaken):
			return response.Conflict(c, "Username already exists")
		case errors.Is(err, domain.ErrEmailTaken):
			return response.Conflict(c, "Email already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Password must be at least 8 characters")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	return response.Success(c, "User updated successfully", user)
}

// DeleteUser handles user deletion (admin only); the user's tasks are
// removed with them.
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.DeleteUser(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.NoContent(c)
}

// parseIDParam parses a positive integer path parameter
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
