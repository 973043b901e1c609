package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lecture-studio/internal/http/handlers"
	httpMW "github.com/yungbote/lecture-studio/internal/http/middleware"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	RunHandler        *httpH.RunHandler
	EventsHandler     *httpH.EventsHandler
	CatalogHandler    *httpH.CatalogHandler
	CredentialHandler *httpH.CredentialHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Runs
		if cfg.RunHandler != nil {
			api.POST("/runs", cfg.RunHandler.StartRun)
			api.GET("/runs/current", cfg.RunHandler.CurrentRun)
			api.GET("/runs/current/slides/:index", cfg.RunHandler.Slide)
			api.POST("/runs/current/publish", cfg.RunHandler.Publish)
		}

		// Run status (SSE)
		if cfg.EventsHandler != nil {
			api.GET("/runs/events", cfg.EventsHandler.Stream)
		}

		// Viewer
		if cfg.CatalogHandler != nil {
			api.GET("/grades", cfg.CatalogHandler.ListGrades)
			api.GET("/grades/:grade/lectures", cfg.CatalogHandler.ListLectures)
		}

		// API key
		if cfg.CredentialHandler != nil {
			api.GET("/credentials", cfg.CredentialHandler.Status)
			api.PUT("/credentials", cfg.CredentialHandler.Set)
			api.DELETE("/credentials", cfg.CredentialHandler.Clear)
		}
	}

	return r
}
