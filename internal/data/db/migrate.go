package db

import (
	types "github.com/yungbote/lecture-studio/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.LectureRecord{},
	)
}
