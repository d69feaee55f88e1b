package services

import (
	"context"
	"testing"

	"taskhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }

func newTaskFixture(t *testing.T) (*TaskService, *fakeUserRepo, *fakeTaskRepo, uint) {
	t.Helper()
	userRepo := newFakeUserRepo()
	taskRepo := newFakeTaskRepo()
	svc := NewTaskService(taskRepo, userRepo)
	ownerID := seedUser(t, userRepo, "alice", "alice@example.com", "password123", domain.RoleUser)
	return svc, userRepo, taskRepo, ownerID
}

func TestTaskServiceCreateDefaultsToTodo(t *testing.T) {
	svc, _, _, ownerID := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{
		Title:       "write report",
		Description: "quarterly numbers",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, task.Status)
	assert.Equal(t, ownerID, task.UserID)
}

func TestTaskServiceCreateWithExplicitStatus(t *testing.T) {
	svc, _, _, ownerID := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{
		Title:  "review PR",
		Status: domain.StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, task.Status)
}

func TestTaskServiceCreateOwnerMissing(t *testing.T) {
	svc, _, _, _ := newTaskFixture(t)

	_, err := svc.CreateTask(context.Background(), 999, &CreateTaskInput{Title: "orphan"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTaskServiceGetOwnerID(t *testing.T) {
	svc, _, _, ownerID := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	got, err := svc.GetTaskOwnerID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, got)

	_, err = svc.GetTaskOwnerID(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskServiceUpdatePartial(t *testing.T) {
	svc, _, _, ownerID := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{
		Title:       "write report",
		Description: "quarterly numbers",
	})
	require.NoError(t, err)

	// Only the status changes; title and description survive
	updated, err := svc.UpdateTask(context.Background(), task.ID, &UpdateTaskInput{
		Status: statusPtr(domain.StatusDone),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, updated.Status)
	assert.Equal(t, "write report", updated.Title)
	assert.Equal(t, "quarterly numbers", updated.Description)
}

func TestTaskServiceUpdateInvalidStatus(t *testing.T) {
	svc, _, _, ownerID := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	bad := domain.TaskStatus("ARCHIVED")
	_, err = svc.UpdateTask(context.Background(), task.ID, &UpdateTaskInput{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
}

func TestTaskServiceUpdateNotFound(t *testing.T) {
	svc, _, _, _ := newTaskFixture(t)

	title := "ghost"
	_, err := svc.UpdateTask(context.Background(), 999, &UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskServiceDelete(t *testing.T) {
	svc, _, _, ownerID := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{Title: "t"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), task.ID))
	assert.ErrorIs(t, svc.DeleteTask(context.Background(), task.ID), domain.ErrTaskNotFound)
}

func TestTaskServiceListByUser(t *testing.T) {
	svc, userRepo, _, ownerID := newTaskFixture(t)
	otherID := seedUser(t, userRepo, "bob", "bob@example.com", "password123", domain.RoleUser)

	_, err := svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{Title: "a"})
	require.NoError(t, err)
	_, err = svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{Title: "b"})
	require.NoError(t, err)
	_, err = svc.CreateTask(context.Background(), otherID, &CreateTaskInput{Title: "c"})
	require.NoError(t, err)

	tasks, err := svc.ListTasksByUser(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	_, err = svc.ListTasksByUser(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTaskServiceListAll(t *testing.T) {
	svc, _, _, ownerID := newTaskFixture(t)

	for _, title := range []string{"a", "b", "c"} {
		_, err := svc.CreateTask(context.Background(), ownerID, &CreateTaskInput{Title: title})
		require.NoError(t, err)
	}

	out, err := svc.ListTasks(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)
	assert.Len(t, out.Tasks, 2)
}
