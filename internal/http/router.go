package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/sprint-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sprint-backend/internal/http/middleware"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string

	WebhookHandler *httpH.WebhookHandler
	PulseHandler   *httpH.PulseHandler
	HealthHandler  *httpH.HealthHandler

	// PulseSecret guards /api/pulse. Empty rejects every trigger.
	PulseSecret string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Telegram
		if cfg.WebhookHandler != nil {
			api.POST("/webhook", cfg.WebhookHandler.Handle)
		}

		// Pulse trigger
		if cfg.PulseHandler != nil {
			pulse := api.Group("/pulse", httpMW.RequirePulseSecret(cfg.PulseSecret))
			pulse.GET("", cfg.PulseHandler.Trigger)
			pulse.POST("", cfg.PulseHandler.Trigger)
		}
	}

	return r
}
