package services

import (
	"context"
	"errors"
	"log"

	"taskhub/internal/adapters/persistence/models"
	"taskhub/internal/adapters/persistence/repositories"
	"taskhub/internal/config"
	"taskhub/internal/core/domain"
	"taskhub/internal/pkg/jwt"
	"taskhub/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *models.UserResponse `json:"user"`
	AccessToken string               `json:"access_token"`
}

// Register registers a new user. Self-registration always yields the
// REGULAR role; admins are created through the admin-only user endpoint
// or the boot seeder.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	// 1. Check if username already exists
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	// 2. Check if email already exists
	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	// 3. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create user. The unique indexes are the authoritative guard:
	// the checks above can race with a concurrent registration, in which
	// case the insert fails with a duplicated-key error.
	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashedPassword,
		Role:     domain.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateError(ctx, input.Username)
		}
		return nil, err
	}

	// 5. Issue token with the freshly assigned role
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	log.Printf("User registered: %s", user.Username)

	return &AuthResponse{
		User:        user.ToResponse(),
		AccessToken: token,
	}, nil
}

// Login authenticates a user. Unknown username and wrong password return
// the same error, and both cost one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			password.VerifyDummy(input.Password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	log.Printf("User logged in: %s", user.Username)

	return &AuthResponse{
		User:        user.ToResponse(),
		AccessToken: token,
	}, nil
}

// issueToken generates an access token carrying the user's current role
func (s *AuthService) issueToken(user *models.User) (string, error) {
	return jwt.GenerateAccessToken(
		user.ID,
		user.Username,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.ExpiryHours,
	)
}

// duplicateError decides which uniqueness constraint a lost insert race
// tripped, so the caller still gets a field-accurate conflict.
func (s *AuthService) duplicateError(ctx context.Context, username string) error {
	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err == nil && taken {
		return domain.ErrUsernameTaken
	}
	return domain.ErrEmailTaken
}
