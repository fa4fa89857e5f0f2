package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/sprint-backend/internal/http"
	httpH "github.com/yungbote/sprint-backend/internal/http/handlers"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Webhook *httpH.WebhookHandler
	Pulse   *httpH.PulseHandler
}

func wireHandlers(log *logger.Logger, theDB *gorm.DB, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(theDB),
		Webhook: httpH.NewWebhookHandler(log, services.Router, cfg.TelegramWebhookSecret),
		Pulse:   httpH.NewPulseHandler(log, services.Scheduler),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers) *http.Server {
	if cfg.PulseSecret == "" {
		log.Warn("PULSE_SECRET not set; /api/pulse will reject every request")
	}
	return http.NewServer(http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		WebhookHandler: handlers.Webhook,
		PulseHandler:   handlers.Pulse,
		HealthHandler:  handlers.Health,
		PulseSecret:    cfg.PulseSecret,
	})
}
