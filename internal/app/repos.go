package app

import (
	"gorm.io/gorm"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	userrepo "github.com/abhayporwals/taskyn/internal/data/repos/user"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type Repos struct {
	User        userrepo.UserRepo
	Preferences userrepo.PreferencesRepo
	Track       learningrepo.TrackRepo
	Assignment  learningrepo.AssignmentRepo
	Feedback    learningrepo.FeedbackRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        userrepo.NewUserRepo(db, log),
		Preferences: userrepo.NewPreferencesRepo(db, log),
		Track:       learningrepo.NewTrackRepo(db, log),
		Assignment:  learningrepo.NewAssignmentRepo(db, log),
		Feedback:    learningrepo.NewFeedbackRepo(db, log),
	}
}
