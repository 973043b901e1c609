package app

import (
	"fmt"
	"io"

	"github.com/yungbote/lecture-studio/internal/data/db"
	"github.com/yungbote/lecture-studio/internal/data/repos"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

// wireRepos opens the catalog database when one is configured. Without it the catalog reads storage listings.
func wireRepos(log *logger.Logger, cfg Config) (repos.Repos, io.Closer, error) {
	if !cfg.Database.Enabled() {
		log.Info("No catalog database configured; viewer reads storage listings")
		return repos.Repos{}, nil, nil
	}
	log.Info("Wiring repos...", "driver", cfg.Database.Driver)
	svc, err := db.Open(log, cfg.Database)
	if err != nil {
		return repos.Repos{}, nil, fmt.Errorf("init catalog database: %w", err)
	}
	return repos.New(svc.DB(), log), svc, nil
}
