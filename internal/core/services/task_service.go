package services

import (
	"context"
	"errors"
	"log"

	"taskhub/internal/adapters/persistence/models"
	"taskhub/internal/adapters/persistence/repositories"
	"taskhub/internal/core/domain"

	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repositories.TaskRepository
	userRepo repositories.UserRepository
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo repositories.TaskRepository, userRepo repositories.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTaskInput represents task creation input
type CreateTaskInput struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description" validate:"max=1000"`
	Status      domain.TaskStatus `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

// UpdateTaskInput represents partial task update input; nil fields are
// left untouched.
type UpdateTaskInput struct {
	Title       *string            `json:"title" validate:"omitempty,max=255"`
	Description *string            `json:"description" validate:"omitempty,max=1000"`
	Status      *domain.TaskStatus `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
}

// ListTasksOutput represents list tasks output
type ListTasksOutput struct {
	Tasks []*models.TaskResponse
	Total int64
}

// CreateTask creates a task owned by ownerID. The owner must exist.
func (s *TaskService) CreateTask(ctx context.Context, ownerID uint, input *CreateTaskInput) (*models.TaskResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = domain.StatusTodo
	}
	if !status.IsValid() {
		return nil, domain.ErrInvalidTaskState
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		UserID:      ownerID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	log.Printf("Task created: id=%d owner=%d", task.ID, ownerID)

	return task.ToResponse(), nil
}

// GetTaskByID gets a task by ID
func (s *TaskService) GetTaskByID(ctx context.Context, id uint) (*models.TaskResponse, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return task.ToResponse(), nil
}

// GetTaskOwnerID resolves the owning user of a task, for the ownership
// gate on id-addressed operations.
func (s *TaskService) GetTaskOwnerID(ctx context.Context, id uint) (uint, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrTaskNotFound
		}
		return 0, err
	}
	return task.UserID, nil
}

// ListTasks lists all tasks with pagination
func (s *TaskService) ListTasks(ctx context.Context, offset, limit int) (*ListTasksOutput, error) {
	tasks, total, err := s.taskRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.TaskResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = task.ToResponse()
	}

	return &ListTasksOutput{Tasks: responses, Total: total}, nil
}

// ListTasksByUser lists all tasks owned by a user. The user must exist.
func (s *TaskService) ListTasksByUser(ctx context.Context, userID uint) ([]*models.TaskResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	tasks, err := s.taskRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.TaskResponse, len(tasks))
	for i, task := range tasks {
		responses[i] = task.ToResponse()
	}
	return responses, nil
}

// UpdateTask applies a partial update to a task
func (s *TaskService) UpdateTask(ctx context.Context, id uint, input *UpdateTaskInput) (*models.TaskResponse, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if input.Status != nil && !input.Status.IsValid() {
		return nil, domain.ErrInvalidTaskState
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	return task.ToResponse(), nil
}

// DeleteTask permanently removes a task
func (s *TaskService) DeleteTask(ctx context.Context, id uint) error {
	if _, err := s.taskRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("Task deleted: id=%d", id)
	return nil
}
