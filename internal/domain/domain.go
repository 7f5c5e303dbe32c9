package domain

import (
	"github.com/abhayporwals/taskyn/internal/domain/learning"
	"github.com/abhayporwals/taskyn/internal/domain/user"
)

type (
	User            = user.User
	OTP             = user.OTP
	UserPreferences = user.UserPreferences

	Track      = learning.Track
	Assignment = learning.Assignment
	Feedback   = learning.Feedback
)

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserPreferences{},
		&Track{},
		&Assignment{},
		&Feedback{},
	}
}
