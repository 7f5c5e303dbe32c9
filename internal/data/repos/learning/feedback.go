package learning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type FeedbackRepo interface {
	Create(dbc dbctx.Context, f *types.Feedback) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Feedback, error)
	DeleteByAssignment(dbc dbctx.Context, assignmentID uuid.UUID) error
	DeleteByTrack(dbc dbctx.Context, trackID uuid.UUID) error
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return &feedbackRepo{db: db, log: baseLog.With("repo", "FeedbackRepo")}
}

func (r *feedbackRepo) Create(dbc dbctx.Context, f *types.Feedback) error {
	if f == nil {
		return nil
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(f).Error
}

func (r *feedbackRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Feedback, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []*types.Feedback
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *feedbackRepo) DeleteByAssignment(dbc dbctx.Context, assignmentID uuid.UUID) error {
	return dbc.DB(r.db).Where("assignment_id = ?", assignmentID).Delete(&types.Feedback{}).Error
}

func (r *feedbackRepo) DeleteByTrack(dbc dbctx.Context, trackID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("assignment_id IN (SELECT id FROM assignment WHERE track_id = ?)", trackID).
		Delete(&types.Feedback{}).Error
}

func (r *feedbackRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	return dbc.DB(r.db).
		Where("assignment_id IN (SELECT id FROM assignment WHERE user_id = ?)", userID).
		Delete(&types.Feedback{}).Error
}
