package app

import (
	lecturehttp "github.com/yungbote/lecture-studio/internal/http"
	"github.com/yungbote/lecture-studio/internal/http/handlers"
	"github.com/yungbote/lecture-studio/internal/jobs/pipeline/lecture_build"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/sse"
)

func wireRouter(log *logger.Logger, cfg Config, clients Clients, svcs Services, runner *lecture_build.Runner, hub *sse.SSEHub) lecturehttp.RouterConfig {
	log.Info("Wiring router...")
	return lecturehttp.RouterConfig{
		Log:               log,
		ServiceName:       cfg.ServiceName,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		RunHandler:        handlers.NewRunHandler(log, runner, cfg.HTTP.MaxUploadBytes),
		EventsHandler:     handlers.NewEventsHandler(log, hub),
		CatalogHandler:    handlers.NewCatalogHandler(svcs.Catalog),
		CredentialHandler: handlers.NewCredentialHandler(log, clients.Credentials, hub),
		HealthHandler:     handlers.NewHealthHandler(),
	}
}
