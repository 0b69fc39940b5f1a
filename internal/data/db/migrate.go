package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}
