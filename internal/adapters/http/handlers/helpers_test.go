package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"taskhub/internal/adapters/http/middleware"
	"taskhub/internal/adapters/persistence/models"
	"taskhub/internal/config"
	"taskhub/internal/core/domain"
	"taskhub/internal/core/services"
	"taskhub/internal/pkg/jwt"
	"taskhub/internal/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// memUserRepo is an in-memory UserRepository for handler tests
type memUserRepo struct {
	users  map[uint]*models.User
	nextID uint
	tasks  *memTaskRepo
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.ID != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uint) error {
	if r.tasks != nil {
		for tid, task := range r.tasks.tasks {
			if task.UserID == id {
				delete(r.tasks.tasks, tid)
			}
		}
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// memTaskRepo is an in-memory TaskRepository for handler tests
type memTaskRepo struct {
	tasks  map[uint]*models.Task
	nextID uint
}

func (r *memTaskRepo) Create(_ context.Context, task *models.Task) error {
	task.ID = r.nextID
	r.nextID++
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id uint) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTaskRepo) Update(_ context.Context, task *models.Task) error {
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id uint) error {
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) List(_ context.Context, offset, limit int) ([]*models.Task, int64, error) {
	all := make([]*models.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		cp := *t
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memTaskRepo) ListByUserID(_ context.Context, userID uint) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// testEnv wires real handlers and services over in-memory repositories
type testEnv struct {
	app      *fiber.App
	userRepo *memUserRepo
	taskRepo *memTaskRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		AppMode: "dev",
		JWT:     config.JWTConfig{Secret: testSecret, ExpiryHours: 24},
	}
	config.AppConfig = cfg

	taskRepo := &memTaskRepo{tasks: make(map[uint]*models.Task), nextID: 1}
	userRepo := &memUserRepo{users: make(map[uint]*models.User), nextID: 1, tasks: taskRepo}

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo)

	authHandler := NewAuthHandler(authService, userService)
	userHandler := NewUserHandler(userService)
	taskHandler := NewTaskHandler(taskService)

	app := fiber.New()
	api := app.Group("/api/v1")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	userRoutes := api.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Post("", middleware.AdminOnly(), userHandler.CreateUser)
	userRoutes.Get("", middleware.AdminOnly(), userHandler.ListUsers)
	userRoutes.Get("/:id", userHandler.GetUser)
	userRoutes.Put("/:id", userHandler.UpdateUser)
	userRoutes.Delete("/:id", middleware.AdminOnly(), userHandler.DeleteUser)
	userRoutes.Post("/:userId/tasks", taskHandler.CreateTask)
	userRoutes.Get("/:userId/tasks", taskHandler.ListTasksByUser)

	taskRoutes := api.Group("/tasks")
	taskRoutes.Use(middleware.AuthMiddleware(cfg))
	taskRoutes.Get("", middleware.AdminOnly(), taskHandler.ListTasks)
	taskRoutes.Get("/:id", taskHandler.GetTask)
	taskRoutes.Put("/:id", taskHandler.UpdateTask)
	taskRoutes.Delete("/:id", taskHandler.DeleteTask)

	return &testEnv{app: app, userRepo: userRepo, taskRepo: taskRepo}
}

// addUser seeds a user directly into the store and returns its id
func (e *testEnv) addUser(t *testing.T, username string, role domain.Role) uint {
	t.Helper()
	hashed, err := password.Hash("password123")
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     role,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return user.ID
}

// tokenFor issues a valid token for the given identity
func (e *testEnv) tokenFor(t *testing.T, userID uint, username string, role domain.Role) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(userID, username, role, testSecret, 24)
	require.NoError(t, err)
	return token
}

// do runs a request against the test app and decodes the JSON body
func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 && resp.StatusCode != http.StatusNoContent {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp.StatusCode, decoded
}
