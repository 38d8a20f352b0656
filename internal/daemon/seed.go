package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/shopkeep/shopkeep/internal/auth"
	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/db/models"
)

const (
	seedUsername = "admin"
	seedPassword = "changeme"
)

// seed creates an initial user when the user table is empty, so a fresh
// installation can log in and create its first store.
func seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	user, err := auth.NewLocalProvider(db).CreateUser(
		ctx, seedUsername, seedUsername+"@localhost", seedPassword, "", "",
	)
	if err != nil {
		return fmt.Errorf("failed to seed initial user: %w", err)
	}

	log.Warn().Str("user_id", user.ID).Str("username", seedUsername).Bool("dev", cfg.DevMode).
		Msg("created initial user with default password, change it")

	return nil
}
