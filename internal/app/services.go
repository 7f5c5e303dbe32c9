package app

import (
	"gorm.io/gorm"

	"github.com/abhayporwals/taskyn/internal/platform/logger"
	"github.com/abhayporwals/taskyn/internal/services"
)

type Services struct {
	Avatar       services.AvatarService
	Auth         services.AuthService
	Verification services.VerificationService
	User         services.UserService
	Preferences  services.PreferencesService
	Track        services.TrackService
	Assignment   services.AssignmentService
	Generation   services.GenerationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	avatars := services.NewAvatarService(log, clients.AvatarStore())
	auth := services.NewAuthService(db, log, services.AuthConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}, repos.User, avatars)

	return Services{
		Avatar:       avatars,
		Auth:         auth,
		Verification: services.NewVerificationService(log, repos.User, clients.Mailer),
		User: services.NewUserService(
			db, log, repos.User, repos.Preferences, repos.Track, repos.Assignment, repos.Feedback, avatars,
		),
		Preferences: services.NewPreferencesService(db, log, repos.User, repos.Preferences),
		Track:       services.NewTrackService(db, log, repos.Track, repos.Assignment, repos.Feedback),
		Assignment: services.NewAssignmentService(
			db, log, repos.User, repos.Preferences, repos.Track, repos.Assignment, repos.Feedback, clients.Generation,
		),
		Generation: services.NewGenerationService(
			db, log, clients.Generation, clients.Locker, repos.Preferences, repos.Track, repos.Assignment,
		),
	}
}
