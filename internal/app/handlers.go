package app

import (
	"gorm.io/gorm"

	httpx "github.com/abhayporwals/taskyn/internal/http"
	httpH "github.com/abhayporwals/taskyn/internal/http/handlers"
	httpMW "github.com/abhayporwals/taskyn/internal/http/middleware"
	"github.com/abhayporwals/taskyn/internal/observability"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Preferences *httpH.PreferencesHandler
	Track       *httpH.TrackHandler
	Assignment  *httpH.AssignmentHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(db),
		Auth:        httpH.NewAuthHandler(services.Auth, services.Verification, cfg.CookieSecure),
		User:        httpH.NewUserHandler(services.User, cfg.CookieSecure),
		Preferences: httpH.NewPreferencesHandler(services.Preferences),
		Track:       httpH.NewTrackHandler(services.Track, services.Generation),
		Assignment:  httpH.NewAssignmentHandler(services.Assignment, services.Generation),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func routerConfig(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) httpx.RouterConfig {
	serviceName := ""
	if observability.OtelEnabled() {
		serviceName = cfg.ServiceName
	}
	return httpx.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		CORSOrigins:        cfg.CORSOrigins,
		ServiceName:        serviceName,
		AuthMiddleware:     middleware.Auth,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		PreferencesHandler: handlers.Preferences,
		TrackHandler:       handlers.Track,
		AssignmentHandler:  handlers.Assignment,
		HealthHandler:      handlers.Health,
	}
}
