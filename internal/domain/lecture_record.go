package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LectureRecord is the catalog row written on every publish, keyed by storage path.
type LectureRecord struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Path          string         `gorm:"uniqueIndex;not null" json:"path"`
	Grade         string         `gorm:"index;not null" json:"grade"`
	Slug          string         `gorm:"not null" json:"slug"`
	Title         string         `gorm:"not null" json:"title"`
	URL           string         `gorm:"not null" json:"url"`
	CoverURL      string         `json:"cover_url,omitempty"`
	TopicCount    int            `json:"topic_count"`
	QuestionCount int            `json:"question_count"`
	QuizSummary   datatypes.JSON `json:"quiz_summary,omitempty"`
	PublishedAt   time.Time      `gorm:"index" json:"published_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (LectureRecord) TableName() string { return "lecture_record" }
