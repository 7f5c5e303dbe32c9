package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type PreferencesRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreferences, error)
	Upsert(dbc dbctx.Context, row *types.UserPreferences) (*types.UserPreferences, error)
	DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error
}

type preferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return &preferencesRepo{db: db, log: baseLog.With("repo", "PreferencesRepo")}
}

func (r *preferencesRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.UserPreferences
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

var upsertColumns = []string{
	"interests",
	"primary_goals",
	"secondary_goals",
	"skill_levels",
	"preferred_topics",
	"preferred_language",
	"learning_style",
	"preferred_assignment_type",
	"years_of_experience",
	"available_hours_per_week",
	"prior_projects",
	"github_url",
	"portfolio_url",
	"wants_feedback",
	"submitted_at",
	"updated_at",
}

// Upsert inserts the row or overwrites the existing one for the same user,
// bumping version by one, and returns the stored row.
func (r *preferencesRepo) Upsert(dbc dbctx.Context, row *types.UserPreferences) (*types.UserPreferences, error) {
	if row == nil || row.UserID == uuid.Nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	row.Version = 1
	row.SubmittedAt = now
	row.UpdatedAt = now

	assignments := clause.AssignmentColumns(upsertColumns)
	assignments = append(assignments, clause.Assignment{
		Column: clause.Column{Name: "version"},
		Value:  gorm.Expr("user_preferences.version + 1"),
	})

	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: assignments,
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByUserID(dbc, row.UserID)
}

func (r *preferencesRepo) DeleteByUserID(dbc dbctx.Context, userID uuid.UUID) error {
	return dbc.DB(r.db).Where("user_id = ?", userID).Delete(&types.UserPreferences{}).Error
}
