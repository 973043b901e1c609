package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/lecture-studio/internal/data/repos/lectures"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

type Repos struct {
	Lectures lectures.LectureRecordRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{Lectures: lectures.NewLectureRecordRepo(db, log)}
}
