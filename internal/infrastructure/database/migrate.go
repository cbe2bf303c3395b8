package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"jan-server/services/video-conference-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies the video session schema.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(&entities.VideoSession{}); err != nil {
		return err
	}

	var count int64
	if err := db.WithContext(ctx).Model(&entities.VideoSession{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		return err
	}
	log.Info().Int64("active_sessions", count).Msg("video session schema ready")
	return nil
}
