package database

import (
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/zaqqye/presentation_analytics/internal/config"
	"github.com/zaqqye/presentation_analytics/internal/models"
	"github.com/zaqqye/presentation_analytics/internal/utils"
)

// SeedAdmin creates the initial admin account when no admin exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := utils.NormalizeEmail(cfg.AdminEmail)
	if email == "" {
		email = "admin@example.com"
	}
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}
	password := cfg.AdminPassword
	if password == "" {
		password = "admin123"
	}
	hashed, err := utils.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:          email,
		Username:       username,
		HashedPassword: hashed,
		Role:           models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("seeded initial admin", "email", email)
	return nil
}
