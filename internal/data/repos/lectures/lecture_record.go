package lectures

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/pkg/dbctx"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

type LectureRecordRepo interface {
	// Upsert inserts rec or overwrites the row with the same path.
	Upsert(dbc dbctx.Context, rec *types.LectureRecord) (*types.LectureRecord, error)
	GetByPath(dbc dbctx.Context, path string) (*types.LectureRecord, error)
	ListGrades(dbc dbctx.Context) ([]string, error)
	ListByGrade(dbc dbctx.Context, grade string) ([]*types.LectureRecord, error)
}

type lectureRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureRecordRepo(db *gorm.DB, baseLog *logger.Logger) LectureRecordRepo {
	return &lectureRecordRepo{
		db:  db,
		log: baseLog.With("repo", "LectureRecordRepo"),
	}
}

func (r *lectureRecordRepo) Upsert(dbc dbctx.Context, rec *types.LectureRecord) (*types.LectureRecord, error) {
	if rec == nil || strings.TrimSpace(rec.Path) == "" {
		return nil, errors.New("lecture record path required")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.PublishedAt.IsZero() {
		rec.PublishedAt = time.Now().UTC()
	}
	err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "path"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"grade", "slug", "title", "url", "cover_url",
				"topic_count", "question_count", "quiz_summary",
				"published_at", "updated_at",
			}),
		}).
		Create(rec).Error
	if err != nil {
		return nil, err
	}
	return r.GetByPath(dbc, rec.Path)
}

func (r *lectureRecordRepo) GetByPath(dbc dbctx.Context, path string) (*types.LectureRecord, error) {
	var rec types.LectureRecord
	err := dbc.DB(r.db).Where("path = ?", path).Limit(1).Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == uuid.Nil {
		return nil, nil
	}
	return &rec, nil
}

func (r *lectureRecordRepo) ListGrades(dbc dbctx.Context) ([]string, error) {
	var out []string
	err := dbc.DB(r.db).
		Model(&types.LectureRecord{}).
		Distinct("grade").
		Order("grade ASC").
		Pluck("grade", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *lectureRecordRepo) ListByGrade(dbc dbctx.Context, grade string) ([]*types.LectureRecord, error) {
	var out []*types.LectureRecord
	err := dbc.DB(r.db).
		Where("grade = ?", grade).
		Order("title ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
