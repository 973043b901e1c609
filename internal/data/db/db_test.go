package db

import (
	"path/filepath"
	"testing"

	types "github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

func TestOpenSQLiteMigrates(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "catalog.db")
	svc, err := Open(logger.Nop(), Config{Driver: DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer svc.Close()
	if !svc.DB().Migrator().HasTable(&types.LectureRecord{}) {
		t.Fatalf("lecture_record table missing after migrate")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(logger.Nop(), Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := Open(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
