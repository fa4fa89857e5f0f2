package app

import (
	"context"
	"fmt"
	"net"

	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	repos "github.com/yungbote/sprint-backend/internal/data/repos"
	"github.com/yungbote/sprint-backend/internal/http"
	"github.com/yungbote/sprint-backend/internal/observability"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/temporalx"
	"github.com/yungbote/sprint-backend/internal/temporalx/temporalworker"
	"github.com/yungbote/sprint-backend/internal/utils"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    repos.Set
	Clients  Clients
	Services Services
	Server   *http.Server

	temporalCfg  temporalx.Config
	temporal     temporalsdkclient.Client
	otelShutdown func(context.Context) error
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	log, err := logger.New(utils.GetEnv("LOG_MODE", "development", nil))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func New(ctx context.Context, log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(log, cfg.ServiceName))

	theDB, err := OpenDB(log, cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart {
		if err := Migrate(theDB, cfg.DBDriver); err != nil {
			return nil, err
		}
	}

	reposet := wireRepos(theDB, log)

	clientset, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, clientset)
	if err != nil {
		clientset.Close()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, cfg, serviceset)
	server := wireServer(log, cfg, handlerset)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		Server:       server,
		temporalCfg:  temporalx.LoadConfig(log),
		otelShutdown: otelShutdown,
	}, nil
}

// Start brings up the Temporal worker and the hourly pulse schedule when a
// Temporal frontend is configured. Without one, pulses come from the HTTP
// trigger or the CLI.
func (a *App) Start(ctx context.Context) error {
	if a == nil {
		return fmt.Errorf("app not initialized")
	}
	if !a.Cfg.TemporalWorker || !a.temporalCfg.Enabled() {
		return nil
	}
	tc, err := temporalx.NewClient(ctx, a.Log, a.temporalCfg)
	if err != nil {
		return err
	}
	a.temporal = tc

	runner, err := temporalworker.NewRunner(a.Log, a.temporalCfg, tc, a.Services.Scheduler)
	if err != nil {
		return err
	}
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start temporal worker: %w", err)
	}
	if a.Cfg.TemporalSchedule {
		if err := runner.EnsurePulseSchedule(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := net.JoinHostPort("", a.Cfg.Port)
	a.Log.Info("Serving", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.temporal != nil {
		a.temporal.Close()
		a.temporal = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
