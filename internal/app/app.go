package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/abhayporwals/taskyn/internal/data/db"
	httpx "github.com/abhayporwals/taskyn/internal/http"
	"github.com/abhayporwals/taskyn/internal/http/response"
	"github.com/abhayporwals/taskyn/internal/jobs/sweeper"
	"github.com/abhayporwals/taskyn/internal/observability"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *httpx.Server
	Sweeper  *sweeper.Sweeper

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("config: %w", err)
	}
	log.Info("Configuration loaded", "env", cfg.Env, "port", cfg.Port, "provider", cfg.GenerationProvider)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Env,
		Version:     cfg.Version,
	})
	response.ExposeStack(!cfg.IsProduction())

	dbService, err := db.NewService(log, db.ConfigFromEnv())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := dbService.DB()

	metrics := observability.NewMetrics()

	clientset, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clientset)
	handlerset := wireHandlers(theDB, log, cfg, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := httpx.NewServer(routerConfig(log, cfg, metrics, handlerset, middleware))

	var sw *sweeper.Sweeper
	if cfg.SweeperEnabled {
		sw = sweeper.New(log, metrics, cfg.SweeperSchedule, reposet.User, reposet.Assignment)
	}

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		Server:       server,
		Sweeper:      sw,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and runs the sweeper until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Sweeper != nil {
		if err := a.Sweeper.Start(ctx); err != nil {
			return fmt.Errorf("start sweeper: %w", err)
		}
	}
	return a.Server.Run(ctx, a.Cfg.Address(), a.Cfg.ShutdownGrace)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Sweeper != nil {
		a.Sweeper.Stop()
	}
	a.Clients.Close()
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Log.Sync()
}
