package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/learning"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

var trackProtectedFields = []string{"id", "userId", "generatedBy", "totalTasks", "completedTasks", "createdAt", "updatedAt"}

type TrackProgress struct {
	Track                *types.Track        `json:"track"`
	TotalAssignments     int                 `json:"totalAssignments"`
	CompletedAssignments int                 `json:"completedAssignments"`
	ProgressPercentage   float64             `json:"progressPercentage"`
	Assignments          []*types.Assignment `json:"assignments"`
}

type TrackService interface {
	List(ctx context.Context, f learningrepo.TrackFilter) ([]*types.Track, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Track, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*types.Track, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Progress(ctx context.Context, id uuid.UUID) (*TrackProgress, error)
	Archive(ctx context.Context, id uuid.UUID) (*types.Track, error)
	Reactivate(ctx context.Context, id uuid.UUID) (*types.Track, error)
}

type trackService struct {
	db             *gorm.DB
	log            *logger.Logger
	trackRepo      learningrepo.TrackRepo
	assignmentRepo learningrepo.AssignmentRepo
	feedbackRepo   learningrepo.FeedbackRepo
}

func NewTrackService(
	db *gorm.DB,
	log *logger.Logger,
	trackRepo learningrepo.TrackRepo,
	assignmentRepo learningrepo.AssignmentRepo,
	feedbackRepo learningrepo.FeedbackRepo,
) TrackService {
	return &trackService{
		db:             db,
		log:            log.With("service", "TrackService"),
		trackRepo:      trackRepo,
		assignmentRepo: assignmentRepo,
		feedbackRepo:   feedbackRepo,
	}
}

func (ts *trackService) List(ctx context.Context, f learningrepo.TrackFilter) ([]*types.Track, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if f.Status != "" && !learning.IsTrackStatus(f.Status) {
		return nil, apierr.BadRequest("Invalid status filter")
	}
	if f.GeneratedBy != "" && !learning.IsGeneratedBy(f.GeneratedBy) {
		return nil, apierr.BadRequest("Invalid generatedBy filter")
	}
	rows, err := ts.trackRepo.ListByUser(dbctx.New(ctx), userID, f)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to fetch tracks")
	}
	return rows, nil
}

func (ts *trackService) load(dbc dbctx.Context, id, userID uuid.UUID) (*types.Track, error) {
	t, err := ts.trackRepo.GetForUser(dbc, id, userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to fetch track")
	}
	if t == nil {
		return nil, apierr.NotFound("Track not found")
	}
	return t, nil
}

func (ts *trackService) Get(ctx context.Context, id uuid.UUID) (*types.Track, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return ts.load(dbctx.New(ctx), id, userID)
}

func (ts *trackService) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*types.Track, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := rejectProtected(patch, trackProtectedFields); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if title, ok, err := patchString(patch, "title"); err != nil {
		return nil, err
	} else if ok {
		if title == "" {
			return nil, apierr.BadRequest("title cannot be empty")
		}
		updates["title"] = title
	}
	if desc, ok, err := patchString(patch, "description"); err != nil {
		return nil, err
	} else if ok {
		updates["description"] = desc
	}
	if status, ok, err := patchString(patch, "status"); err != nil {
		return nil, err
	} else if ok {
		// completed is set only by submissions.
		if status != learning.TrackStatusActive && status != learning.TrackStatusArchived {
			return nil, apierr.BadRequest("Invalid status", "status must be one of active, archived")
		}
		updates["status"] = status
	}
	if cats, ok, err := patchStringList(patch, "category"); err != nil {
		return nil, err
	} else if ok {
		updates["category"] = datatypes.JSONSlice[string](cats)
	}

	dbc := dbctx.New(ctx)
	found, err := ts.trackRepo.Update(dbc, id, userID, updates)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to update track")
	}
	if !found {
		return nil, apierr.NotFound("Track not found")
	}
	return ts.load(dbc, id, userID)
}

// Delete removes the track with its assignments and their feedback atomically.
func (ts *trackService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	var removed int64
	if err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := ts.load(inner, id, userID); err != nil {
			return err
		}
		if err := ts.feedbackRepo.DeleteByTrack(inner, id); err != nil {
			return err
		}
		n, err := ts.assignmentRepo.DeleteByTrack(inner, id)
		if err != nil {
			return err
		}
		removed = n
		_, err = ts.trackRepo.Delete(inner, id, userID)
		return err
	}); err != nil {
		return apierr.Wrap(err, "Failed to delete track")
	}
	ts.log.Info("track deleted", "trackId", id, "assignments", removed)
	return nil
}

func (ts *trackService) Progress(ctx context.Context, id uuid.UUID) (*TrackProgress, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	t, err := ts.load(dbc, id, userID)
	if err != nil {
		return nil, err
	}
	rows, err := ts.assignmentRepo.ListByTrack(dbc, userID, id, learningrepo.AssignmentFilter{})
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to get track progress")
	}
	completed := 0
	for _, a := range rows {
		if a.IsCompleted {
			completed++
		}
	}
	pct := 0.0
	if len(rows) > 0 {
		pct = float64(completed) / float64(len(rows)) * 100
	}
	return &TrackProgress{
		Track:                t,
		TotalAssignments:     len(rows),
		CompletedAssignments: completed,
		ProgressPercentage:   pct,
		Assignments:          rows,
	}, nil
}

func (ts *trackService) setStatus(ctx context.Context, id uuid.UUID, status string) (*types.Track, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	found, err := ts.trackRepo.Update(dbc, id, userID, map[string]any{"status": status})
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to update track status")
	}
	if !found {
		return nil, apierr.NotFound("Track not found")
	}
	return ts.load(dbc, id, userID)
}

func (ts *trackService) Archive(ctx context.Context, id uuid.UUID) (*types.Track, error) {
	return ts.setStatus(ctx, id, learning.TrackStatusArchived)
}

func (ts *trackService) Reactivate(ctx context.Context, id uuid.UUID) (*types.Track, error) {
	return ts.setStatus(ctx, id, learning.TrackStatusActive)
}
