package models

import (
	"time"

	"taskhub/internal/core/domain"

	"gorm.io/gorm"
)

// User represents the users table. The unique indexes on username and email
// are the authoritative guard against duplicates; service-level existence
// checks only exist for friendlier error messages.
type User struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Username  string      `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string      `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string      `gorm:"size:255;not null" json:"-"`
	Role      domain.Role `gorm:"size:20;default:'USER'" json:"role"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Tasks []Task `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse is the allow-listed projection returned to clients.
// The password hash never leaves the persistence layer.
type UserResponse struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Task represents the tasks table. Every task belongs to exactly one user.
type Task struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Title       string            `gorm:"size:255;not null" json:"title"`
	Description string            `gorm:"size:1000" json:"description"`
	Status      domain.TaskStatus `gorm:"size:20;not null;default:'TODO'" json:"status"`
	UserID      uint              `gorm:"not null;index" json:"user_id"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskResponse DTO
type TaskResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	UserID      uint              `json:"user_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (t *Task) ToResponse() *TaskResponse {
	return &TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Task{},
	)
}
