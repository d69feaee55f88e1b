package config

import (
	"fmt"
	"log"

	"taskhub/internal/adapters/persistence/models"
	"taskhub/internal/core/domain"
	"taskhub/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedAdminUser creates the bootstrap ADMIN account if no admin exists yet.
// Self-registration is always REGULAR-role; this is the only way the first
// admin comes into existence.
func SeedAdminUser(db *gorm.DB, cfg *Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if cfg.Admin.Password == "" {
		if cfg.IsProd() {
			return fmt.Errorf("no admin user exists and ADMIN_PASSWORD is not set")
		}
		log.Println("Warning: ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	hashed, err := password.Hash(cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: hashed,
		Role:     domain.RoleAdmin,
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded admin user: %s", admin.Username)
	return nil
}
