package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/learning"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type TrackFilter struct {
	Status      string
	GeneratedBy string
}

type TrackRepo interface {
	Create(dbc dbctx.Context, t *types.Track) error
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Track, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, f TrackFilter) ([]*types.Track, error)
	Update(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]any) (bool, error)
	Delete(dbc dbctx.Context, id, userID uuid.UUID) (bool, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
	ReconcileProgress(dbc dbctx.Context, trackID uuid.UUID) error
}

type trackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrackRepo(db *gorm.DB, baseLog *logger.Logger) TrackRepo {
	return &trackRepo{db: db, log: baseLog.With("repo", "TrackRepo")}
}

func (r *trackRepo) Create(dbc dbctx.Context, t *types.Track) error {
	if t == nil {
		return nil
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(t).Error
}

func (r *trackRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Track, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Track
	if err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *trackRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, f TrackFilter) ([]*types.Track, error) {
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.GeneratedBy != "" {
		q = q.Where("generated_by = ?", f.GeneratedBy)
	}
	var rows []*types.Track
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *trackRepo) Update(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return true, nil
	}
	res := dbc.DB(r.db).
		Model(&types.Track{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *trackRepo) Delete(dbc dbctx.Context, id, userID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.Track{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *trackRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	return dbc.DB(r.db).Where("user_id = ?", userID).Delete(&types.Track{}).Error
}

const (
	totalTasksExpr     = "(SELECT COUNT(*) FROM assignment WHERE assignment.track_id = track.id)"
	completedTasksExpr = "(SELECT COUNT(*) FROM assignment WHERE assignment.track_id = track.id AND assignment.is_completed = ?)"
)

// ReconcileProgress recounts the track's assignments and flips status to
// completed once every task is done. It is one UPDATE statement, so concurrent
// submissions on the same track cannot interleave a stale count. Status is
// never moved away from completed here.
func (r *trackRepo) ReconcileProgress(dbc dbctx.Context, trackID uuid.UUID) error {
	statusExpr := "CASE WHEN " + completedTasksExpr + " = " + totalTasksExpr +
		" AND " + totalTasksExpr + " > 0 THEN ? ELSE status END"
	return dbc.DB(r.db).
		Model(&types.Track{}).
		Where("id = ?", trackID).
		Updates(map[string]any{
			"total_tasks":     gorm.Expr(totalTasksExpr),
			"completed_tasks": gorm.Expr(completedTasksExpr, true),
			"status":          gorm.Expr(statusExpr, true, learning.TrackStatusCompleted),
		}).Error
}
