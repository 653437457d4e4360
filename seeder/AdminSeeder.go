package seeder

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"batterymart/model"
	"batterymart/util"
)

// SeedAdmin makes sure the configured admin account exists and has the admin role.
func SeedAdmin(db *gorm.DB, cfg util.AdminConfig, logger *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" {
		logger.Info("ADMIN_EMAIL not set, skipping admin seed")
		return nil
	}

	admin := model.User{
		Name:       cfg.Name,
		Email:      email,
		Role:       model.RoleAdmin,
		IsApproved: true,
	}

	// Email is the unique key; an existing user is promoted rather than duplicated.
	if err := db.Where(model.User{Email: email}).
		Assign(model.User{Role: model.RoleAdmin, IsApproved: true}).
		FirstOrCreate(&admin).Error; err != nil {
		return err
	}

	logger.Info("admin account ready", zap.String("email", email), zap.String("user_id", admin.ID.String()))
	return nil
}
