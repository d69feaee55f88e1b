package services

import (
	"context"
	"errors"
	"log"

	"taskhub/internal/adapters/persistence/models"
	"taskhub/internal/adapters/persistence/repositories"
	"taskhub/internal/core/domain"
	"taskhub/internal/pkg/password"

	"gorm.io/gorm"
)

// UserService handles user management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserInput represents admin-initiated user creation input.
// Unlike self-registration this path may assign a privileged role.
type CreateUserInput struct {
	Username string      `json:"username" validate:"required,min=3,max=50"`
	Email    string      `json:"email" validate:"required,email,max=100"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// UpdateUserInput represents partial user update input. Nil fields are
// left untouched; an empty password string means "do not change".
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=100"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users []*models.UserResponse
	Total int64
}

// CreateUser creates a user on behalf of an admin
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.UserResponse, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return nil, domain.ErrInvalidRole
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashedPassword,
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(ctx, input.Username)
		}
		return nil, err
	}

	log.Printf("User created by admin: %s (role: %s)", user.Username, user.Role)

	return user.ToResponse(), nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, offset, limit int) (*ListUsersOutput, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	return &ListUsersOutput{Users: responses, Total: total}, nil
}

// UpdateUser applies a partial update. All uniqueness checks run before
// any field is mutated, so a conflict leaves the record untouched.
// Setting a field to its current value is a no-op, not a conflict.
func (s *UserService) UpdateUser(ctx context.Context, id uint, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if input.Username != nil && *input.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(ctx, *input.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrUsernameTaken
		}
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrEmailTaken
		}
	}

	usernameChanged := input.Username != nil && *input.Username != user.Username

	changePassword := input.Password != nil && *input.Password != ""
	if changePassword && !password.Validate(*input.Password) {
		return nil, domain.ErrInvalidInput
	}

	// All checks passed; apply the fields.
	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if changePassword {
		hashed, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// An unchanged username cannot clash with itself, so the
			// race must have been on the new name or the email.
			if usernameChanged {
				return nil, s.duplicateError(ctx, user.Username)
			}
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}

	return user.ToResponse(), nil
}

// DeleteUser permanently removes a user and all tasks they own
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("User deleted: id=%d", id)
	return nil
}

// duplicateError decides which uniqueness constraint a lost write race
// tripped on.
func (s *UserService) duplicateError(ctx context.Context, username string) error {
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err == nil && taken {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailTaken
}
