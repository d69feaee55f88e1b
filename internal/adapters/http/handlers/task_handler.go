package handlers

import (
	"errors"

	"taskhub/internal/adapters/http/middleware"
	"taskhub/internal/core/domain"
	"taskhub/internal/core/services"
	"taskhub/internal/pkg/pagination"
	"taskhub/internal/pkg/response"
	"taskhub/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// CreateTask handles task creation for a user; the caller must own the
// target user id or be admin.
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Owner user ID"
// @Param body body services.CreateTaskInput true "Task data"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{userId}/tasks [post]
func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ownerID, err := parseIDParam(c, "userId")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if !caller.CanAccess(ownerID) {
		return response.Forbidden(c, "You can only create tasks for yourself")
	}

	var req services.CreateTaskInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if fields := validation.Struct(&req); fields != nil {
		return response.ValidationFailed(c, fields)
	}

	task, err := h.taskService.CreateTask(c.Context(), ownerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrInvalidTaskState):
			return response.BadRequest(c, "Invalid task status")
		default:
			return response.InternalServerError(c, "Failed to create task")
		}
	}

	return response.Created(c, "Task created successfully", task)
}

// ListTasks handles listing all tasks (admin only)
// @Summary List all tasks
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.taskService.ListTasks(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list tasks")
	}

	return response.Success(c, "Tasks retrieved successfully",
		pagination.NewResponse(result.Tasks, params, result.Total))
}

// ListTasksByUser handles listing a user's tasks; owner or admin only
// @Summary List tasks by user
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Owner user ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{userId}/tasks [get]
func (h *TaskHandler) ListTasksByUser(c *fiber.Ctx) error {
	ownerID, err := parseIDParam(c, "userId")
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if !caller.CanAccess(ownerID) {
		return response.Forbidden(c, "You can only view your own tasks")
	}

	tasks, err := h.taskService.ListTasksByUser(c.Context(), ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to list tasks")
	}

	return response.Success(c, "Tasks retrieved successfully", tasks)
}

// GetTask handles getting a task by ID. The owner is resolved first: a
// missing task is a 404 for everyone, an existing foreign task a 403.
// @Summary Get task by ID
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id, _, errResp := h.resolveTaskAccess(c, "view")
	if errResp != nil {
		return errResp(c)
	}

	task, err := h.taskService.GetTaskByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return response.NotFound(c, "Task not found")
		}
		return response.InternalServerError(c, "Failed to get task")
	}

	return response.Success(c, "Task retrieved successfully", task)
}

// UpdateTask handles partial task update; owner or admin only
// @Summary Update task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Param body body services.UpdateTaskInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id, _, errResp := h.resolveTaskAccess(c, "update")
	if errResp != nil {
		return errResp(c)
	}

	var req services.UpdateTaskInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	fields := validation.Struct(&req)
	if req.Title != nil && *req.Title == "" {
		fields = validation.Require(fields, "title")
	}
	if fields != nil {
		return response.ValidationFailed(c, fields)
	}

	task, err := h.taskService.UpdateTask(c.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTaskNotFound):
			return response.NotFound(c, "Task not found")
		case errors.Is(err, domain.ErrInvalidTaskState):
			return response.BadRequest(c, "Invalid task status")
		default:
			return response.InternalServerError(c, "Failed to update task")
		}
	}

	return response.Success(c, "Task updated successfully", task)
}

// DeleteTask handles task deletion; owner or admin only
// @Summary Delete task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, _, errResp := h.resolveTaskAccess(c, "delete")
	if errResp != nil {
		return errResp(c)
	}

	if err := h.taskService.DeleteTask(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return response.NotFound(c, "Task not found")
		}
		return response.InternalServerError(c, "Failed to delete task")
	}

	return response.NoContent(c)
}

// resolveTaskAccess parses the task id, resolves the owning user and
// applies the ownership policy. Admins skip the owner lookup entirely.
// Returns a non-nil responder when the request must be rejected.
func (h *TaskHandler) resolveTaskAccess(c *fiber.Ctx, verb string) (uint, domain.Caller, func(*fiber.Ctx) error) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return 0, domain.Caller{}, func(c *fiber.Ctx) error {
			return response.BadRequest(c, "Invalid task ID")
		}
	}

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return 0, domain.Caller{}, func(c *fiber.Ctx) error {
			return response.Unauthorized(c, "Unauthorized")
		}
	}

	if caller.IsAdmin() {
		return id, caller, nil
	}

	ownerID, err := h.taskService.GetTaskOwnerID(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return 0, caller, func(c *fiber.Ctx) error {
				return response.NotFound(c, "Task not found")
			}
		}
		return 0, caller, func(c *fiber.Ctx) error {
			return response.InternalServerError(c, "Failed to resolve task")
		}
	}

	if !caller.CanAccess(ownerID) {
		msg := "You can only " + verb + " your own tasks"
		return 0, caller, func(c *fiber.Ctx) error {
			return response.Forbidden(c, msg)
		}
	}

	return id, caller, nil
}
