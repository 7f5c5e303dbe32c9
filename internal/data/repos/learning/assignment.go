package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type AssignmentFilter struct {
	TrackID     *uuid.UUID
	Type        string
	Difficulty  string
	IsCompleted *bool
}

// StatRow is one (type, difficulty) bucket of a user's assignments.
type StatRow struct {
	Type       string
	Difficulty string
	Total      int64
	Completed  int64
}

type AssignmentRepo interface {
	Create(dbc dbctx.Context, a *types.Assignment) error
	GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Assignment, error)
	ListByTrack(dbc dbctx.Context, userID, trackID uuid.UUID, f AssignmentFilter) ([]*types.Assignment, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, f AssignmentFilter) ([]*types.Assignment, error)
	Update(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]any) (bool, error)
	MarkSubmitted(dbc dbctx.Context, a *types.Assignment) (bool, error)
	Delete(dbc dbctx.Context, id, userID uuid.UUID) (bool, error)
	DeleteByTrack(dbc dbctx.Context, trackID uuid.UUID) (int64, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
	DeleteOrphans(dbc dbctx.Context) (int64, error)
	Stats(dbc dbctx.Context, userID uuid.UUID) ([]StatRow, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{db: db, log: baseLog.With("repo", "AssignmentRepo")}
}

func (r *assignmentRepo) Create(dbc dbctx.Context, a *types.Assignment) error {
	if a == nil {
		return nil
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(a).Error
}

func (r *assignmentRepo) GetForUser(dbc dbctx.Context, id, userID uuid.UUID) (*types.Assignment, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Assignment
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

func applyAssignmentFilter(q *gorm.DB, f AssignmentFilter) *gorm.DB {
	if f.TrackID != nil {
		q = q.Where("track_id = ?", *f.TrackID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.IsCompleted != nil {
		q = q.Where("is_completed = ?", *f.IsCompleted)
	}
	return q
}

func (r *assignmentRepo) ListByTrack(dbc dbctx.Context, userID, trackID uuid.UUID, f AssignmentFilter) ([]*types.Assignment, error) {
	f.TrackID = &trackID
	q := applyAssignmentFilter(dbc.DB(r.db).Where("user_id = ?", userID), f)
	var rows []*types.Assignment
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, f AssignmentFilter) ([]*types.Assignment, error) {
	q := applyAssignmentFilter(dbc.DB(r.db).Where("user_id = ?", userID), f)
	var rows []*types.Assignment
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assignmentRepo) Update(dbc dbctx.Context, id, userID uuid.UUID, updates map[string]any) (bool, error) {
	if len(updates) == 0 {
		return true, nil
	}
	res := dbc.DB(r.db).
		Model(&types.Assignment{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkSubmitted persists the submission fields of a, but only while the row is
// still incomplete. false means another submission got there first.
func (r *assignmentRepo) MarkSubmitted(dbc dbctx.Context, a *types.Assignment) (bool, error) {
	submittedAt := a.SubmittedAt
	if submittedAt == nil {
		now := time.Now().UTC()
		submittedAt = &now
	}
	res := dbc.DB(r.db).
		Model(&types.Assignment{}).
		Where("id = ? AND user_id = ? AND is_completed = ?", a.ID, a.UserID, false).
		Updates(map[string]any{
			"is_completed":       true,
			"submitted_at":       submittedAt,
			"submission_content": a.SubmissionContent,
			"submission_type":    a.SubmissionType,
			"reflection":         a.Reflection,
			"ai_feedback_id":     a.AIFeedbackID,
			"feedback_status":    a.FeedbackStatus,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *assignmentRepo) Delete(dbc dbctx.Context, id, userID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.Assignment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *assignmentRepo) DeleteByTrack(dbc dbctx.Context, trackID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("track_id = ?", trackID).Delete(&types.Assignment{})
	return res.RowsAffected, res.Error
}

func (r *assignmentRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	return dbc.DB(r.db).Where("user_id = ?", userID).Delete(&types.Assignment{}).Error
}

// DeleteOrphans removes assignments whose track no longer exists.
func (r *assignmentRepo) DeleteOrphans(dbc dbctx.Context) (int64, error) {
	res := dbc.DB(r.db).
		Where("NOT EXISTS (SELECT 1 FROM track WHERE track.id = assignment.track_id)").
		Delete(&types.Assignment{})
	return res.RowsAffected, res.Error
}

func (r *assignmentRepo) Stats(dbc dbctx.Context, userID uuid.UUID) ([]StatRow, error) {
	var rows []StatRow
	if err := dbc.DB(r.db).
		Model(&types.Assignment{}).
		Select("type, difficulty, COUNT(*) AS total, SUM(CASE WHEN is_completed = ? THEN 1 ELSE 0 END) AS completed", true).
		Where("user_id = ?", userID).
		Group("type, difficulty").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
