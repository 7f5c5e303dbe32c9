package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/learning"
	"github.com/abhayporwals/taskyn/internal/domain/user"
)

// SeedUser inserts a user whose password is the bcrypt hash of password.
func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, userName, email, password string) *types.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &types.User{
		ID:           uuid.New(),
		FullName:     "Test User",
		UserName:     userName,
		Email:        email,
		Password:     string(hash),
		AvatarURL:    "https://cdn.example.com/avatars/" + userName + ".png",
		AuthProvider: user.AuthProviderLocal,
		Role:         user.RoleUser,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPreferences(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.UserPreferences {
	tb.Helper()
	p := &types.UserPreferences{
		ID:                      uuid.New(),
		UserID:                  userID,
		Interests:               datatypes.JSONSlice[string]{"backend", "databases"},
		PrimaryGoals:            datatypes.JSONSlice[string]{"get a backend job"},
		SkillLevels:             datatypes.NewJSONType(map[string]string{"go": user.SkillIntermediate}),
		PreferredTopics:         datatypes.JSONSlice[string]{"concurrency"},
		PreferredLanguage:       "Go",
		LearningStyle:           user.LearningStyleBoth,
		PreferredAssignmentType: user.AssignmentTypeMixed,
		YearsOfExperience:       2,
		AvailableHoursPerWeek:   6,
		WantsFeedback:           true,
		Version:                 1,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed preferences: %v", err)
	}
	return p
}

func SeedTrack(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string) *types.Track {
	tb.Helper()
	t := &types.Track{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Category:    datatypes.JSONSlice[string]{"backend"},
		Status:      learning.TrackStatusActive,
		GeneratedBy: learning.GeneratedByAI,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed track: %v", err)
	}
	return t
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, track *types.Track, title, typ, difficulty string) *types.Assignment {
	tb.Helper()
	a := &types.Assignment{
		ID:             uuid.New(),
		UserID:         track.UserID,
		TrackID:        track.ID,
		Title:          title,
		Description:    "do the thing",
		Type:           typ,
		Difficulty:     difficulty,
		Language:       "Go",
		FeedbackStatus: learning.FeedbackStatusNone,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}
