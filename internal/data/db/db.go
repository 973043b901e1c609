package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

type Config struct {
	Driver Driver `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether a catalog database is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.DSN) != "" }

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func Open(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "DatabaseService", "driver", cfg.Driver)
	if !cfg.Enabled() {
		return nil, fmt.Errorf("database dsn required")
	}

	var dialector gorm.Dialector
	switch Driver(strings.ToLower(strings.TrimSpace(string(cfg.Driver)))) {
	case DriverPostgres, "":
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	if err := AutoMigrateAll(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	serviceLog.Info("catalog database ready")
	return &Service{db: db, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
