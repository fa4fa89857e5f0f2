package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sprint-backend/internal/conversation"
	repos "github.com/yungbote/sprint-backend/internal/data/repos"
	"github.com/yungbote/sprint-backend/internal/messaging"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/pulse"
	"github.com/yungbote/sprint-backend/internal/services"
)

type Services struct {
	Trial     services.TrialService
	Router    conversation.Router
	Generator pulse.Generator
	Scheduler pulse.Scheduler
	Notifier  messaging.Notifier
}

func wireServices(theDB *gorm.DB, log *logger.Logger, cfg Config, set repos.Set, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	trial := services.NewTrialServiceWithClock(log, set.Config, cfg.TrialLength, time.Now)

	copyCatalog, err := conversation.DefaultCopy()
	if err != nil {
		return Services{}, fmt.Errorf("load message catalog: %w", err)
	}
	router, err := conversation.NewRouter(conversation.Deps{
		DB:     theDB,
		Repos:  set,
		Sender: clients.Telegram,
		Trial:  trial,
		Copy:   copyCatalog,
		Log:    log,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init conversation router: %w", err)
	}

	notifier := wireNotifier(log, cfg, clients)

	generator := pulse.NewGenerator(log, set, trial, clients.Model, clients.Telegram, pulse.GeneratorOptions{
		DedupeWindow: cfg.TaskDedupeWindow,
	})
	coordinator := pulse.NewCoordinator(log, notifier, cfg.BatchSize, cfg.BatchPause)
	scheduler := pulse.NewScheduler(log, set.Config, generator, coordinator, notifier, pulse.SchedulerOptions{
		Schedule: pulse.ScheduleOptions{WeekendReduced: cfg.WeekendReduced},
	})

	return Services{
		Trial:     trial,
		Router:    router,
		Generator: generator,
		Scheduler: scheduler,
		Notifier:  notifier,
	}, nil
}

// wireNotifier always logs; the admin chat and the redis bus are added when
// configured.
func wireNotifier(log *logger.Logger, cfg Config, clients Clients) messaging.Notifier {
	multi := pulse.MultiNotifier{pulse.LogNotifier{Log: log.With("service", "OperatorReports")}}
	if cfg.AdminChatID != 0 && clients.Telegram != nil {
		multi = append(multi, pulse.AdminChatNotifier{Sender: clients.Telegram, ChatID: cfg.AdminChatID})
	} else {
		log.Warn("ADMIN_CHAT_ID not set; operator reports go to the log only")
	}
	if clients.OpsBus != nil {
		multi = append(multi, clients.OpsBus)
	}
	return multi
}
