package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	userrepo "github.com/abhayporwals/taskyn/internal/data/repos/user"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/learning"
	"github.com/abhayporwals/taskyn/internal/modules/learning/generation"
	"github.com/abhayporwals/taskyn/internal/modules/learning/prompts"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

var assignmentProtectedFields = []string{
	"id",
	"userId",
	"trackId",
	"isCompleted",
	"submittedAt",
	"submissionContent",
	"submissionType",
	"reflection",
	"aiFeedbackId",
	"feedbackStatus",
	"createdAt",
	"updatedAt",
}

// FeedbackGenerator reviews a submission. *generation.Client satisfies it.
type FeedbackGenerator interface {
	ProviderName() string
	GenerateFeedback(ctx context.Context, p prompts.Prompt) (generation.FeedbackDraft, error)
}

type SubmitInput struct {
	SubmissionContent string `json:"submissionContent" binding:"required"`
	SubmissionType    string `json:"submissionType" binding:"omitempty,oneof=text file code"`
	Reflection        string `json:"reflection"`
}

type StatBucket struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
}

type AssignmentStats struct {
	TotalAssignments     int64                 `json:"totalAssignments"`
	CompletedAssignments int64                 `json:"completedAssignments"`
	CompletionRate       float64               `json:"completionRate"`
	TypeBreakdown        map[string]StatBucket `json:"typeBreakdown"`
	DifficultyBreakdown  map[string]StatBucket `json:"difficultyBreakdown"`
}

type AssignmentService interface {
	ListByTrack(ctx context.Context, trackID uuid.UUID, f learningrepo.AssignmentFilter) ([]*types.Assignment, error)
	List(ctx context.Context, f learningrepo.AssignmentFilter) ([]*types.Assignment, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Assignment, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*types.Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Submit(ctx context.Context, id uuid.UUID, in SubmitInput) (*types.Assignment, error)
	Stats(ctx context.Context) (*AssignmentStats, error)
}

type assignmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       userrepo.UserRepo
	prefsRepo      userrepo.PreferencesRepo
	trackRepo      learningrepo.TrackRepo
	assignmentRepo learningrepo.AssignmentRepo
	feedbackRepo   learningrepo.FeedbackRepo
	reviewer       FeedbackGenerator
	now            func() time.Time
}

func NewAssignmentService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo userrepo.UserRepo,
	prefsRepo userrepo.PreferencesRepo,
	trackRepo learningrepo.TrackRepo,
	assignmentRepo learningrepo.AssignmentRepo,
	feedbackRepo learningrepo.FeedbackRepo,
	reviewer FeedbackGenerator,
) AssignmentService {
	return &assignmentService{
		db:             db,
		log:            log.With("service", "AssignmentService"),
		userRepo:       userRepo,
		prefsRepo:      prefsRepo,
		trackRepo:      trackRepo,
		assignmentRepo: assignmentRepo,
		feedbackRepo:   feedbackRepo,
		reviewer:       reviewer,
		now:            time.Now,
	}
}

func validateAssignmentFilter(f learningrepo.AssignmentFilter) error {
	if f.Type != "" && !learning.IsAssignmentType(f.Type) {
		return apierr.BadRequest("Invalid type filter")
	}
	if f.Difficulty != "" && !learning.IsDifficulty(f.Difficulty) {
		return apierr.BadRequest("Invalid difficulty filter")
	}
	return nil
}

func (as *assignmentService) ListByTrack(ctx context.Context, trackID uuid.UUID, f learningrepo.AssignmentFilter) ([]*types.Assignment, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateAssignmentFilter(f); err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	t, err := as.trackRepo.GetForUser(dbc, trackID, userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to fetch track")
	}
	if t == nil {
		return nil, apierr.NotFound("Track not found")
	}
	rows, err := as.assignmentRepo.ListByTrack(dbc, userID, trackID, f)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to fetch assignments")
	}
	return rows, nil
}

func (as *assignmentService) List(ctx context.Context, f learningrepo.AssignmentFilter) ([]*types.Assignment, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateAssignmentFilter(f); err != nil {
		return nil, err
	}
	rows, err := as.assignmentRepo.ListByUser(dbctx.New(ctx), userID, f)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to fetch assignments")
	}
	return rows, nil
}

func (as *assignmentService) load(dbc dbctx.Context, id, userID uuid.UUID) (*types.Assignment, error) {
	a, err := as.assignmentRepo.GetForUser(dbc, id, userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to fetch assignment")
	}
	if a == nil {
		return nil, apierr.NotFound("Assignment not found")
	}
	return a, nil
}

func (as *assignmentService) attachFeedback(dbc dbctx.Context, a *types.Assignment) error {
	if a.AIFeedbackID == nil {
		return nil
	}
	fb, err := as.feedbackRepo.GetByID(dbc, *a.AIFeedbackID)
	if err != nil {
		return apierr.Wrap(err, "Failed to fetch feedback")
	}
	a.Feedback = fb
	return nil
}

func (as *assignmentService) Get(ctx context.Context, id uuid.UUID) (*types.Assignment, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	a, err := as.load(dbc, id, userID)
	if err != nil {
		return nil, err
	}
	if err := as.attachFeedback(dbc, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (as *assignmentService) Update(ctx context.Context, id uuid.UUID, patch map[string]any) (*types.Assignment, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := rejectProtected(patch, assignmentProtectedFields); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	columns := []struct {
		key, column string
		required    bool
		valid       func(string) bool
	}{
		{key: "title", column: "title", required: true},
		{key: "description", column: "description", required: true},
		{key: "type", column: "type", required: true, valid: learning.IsAssignmentType},
		{key: "difficulty", column: "difficulty", required: true, valid: learning.IsDifficulty},
		{key: "language", column: "language"},
		{key: "sampleSolution", column: "sample_solution"},
		{key: "expectedOutput", column: "expected_output"},
	}
	for _, c := range columns {
		v, ok, err := patchString(patch, c.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if c.required && v == "" {
			return nil, apierr.BadRequest(c.key + " cannot be empty")
		}
		if c.valid != nil && !c.valid(v) {
			return nil, apierr.BadRequest("Invalid " + c.key)
		}
		updates[c.column] = v
	}

	dbc := dbctx.New(ctx)
	found, err := as.assignmentRepo.Update(dbc, id, userID, updates)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to update assignment")
	}
	if !found {
		return nil, apierr.NotFound("Assignment not found")
	}
	return as.load(dbc, id, userID)
}

// Delete drops the assignment and its feedback, then recounts the track.
func (as *assignmentService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		a, err := as.load(inner, id, userID)
		if err != nil {
			return err
		}
		if err := as.feedbackRepo.DeleteByAssignment(inner, a.ID); err != nil {
			return apierr.Wrap(err, "Failed to delete assignment")
		}
		if _, err := as.assignmentRepo.Delete(inner, a.ID, userID); err != nil {
			return apierr.Wrap(err, "Failed to delete assignment")
		}
		if err := as.trackRepo.ReconcileProgress(inner, a.TrackID); err != nil {
			return apierr.Wrap(err, "Failed to update track progress")
		}
		return nil
	})
}

func (as *assignmentService) Submit(ctx context.Context, id uuid.UUID, in SubmitInput) (*types.Assignment, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.SubmissionContent) == "" {
		return nil, apierr.BadRequest("Submission content is required")
	}
	subType := strings.TrimSpace(in.SubmissionType)
	if subType == "" {
		subType = learning.SubmissionText
	}
	if !learning.IsSubmissionType(subType) {
		return nil, apierr.BadRequest("Invalid submissionType", "submissionType must be one of text, file, code")
	}

	dbc := dbctx.New(ctx)
	a, err := as.load(dbc, id, userID)
	if err != nil {
		return nil, err
	}
	if a.IsCompleted {
		return nil, apierr.InvalidState("Assignment already completed")
	}

	now := as.now().UTC()
	a.IsCompleted = true
	a.SubmittedAt = &now
	a.SubmissionContent = in.SubmissionContent
	a.SubmissionType = subType
	a.Reflection = in.Reflection
	a.FeedbackStatus = learning.FeedbackStatusSkipped

	var fb *types.Feedback
	if strings.TrimSpace(a.Reflection) != "" {
		fb = as.review(ctx, a)
		if fb != nil {
			a.AIFeedbackID = &fb.ID
			a.FeedbackStatus = learning.FeedbackStatusGenerated
		} else {
			a.FeedbackStatus = learning.FeedbackStatusFailed
		}
	}

	if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if fb != nil {
			if err := as.feedbackRepo.Create(inner, fb); err != nil {
				return apierr.Wrap(err, "Failed to save feedback")
			}
		}
		ok, err := as.assignmentRepo.MarkSubmitted(inner, a)
		if err != nil {
			return apierr.Wrap(err, "Failed to submit assignment")
		}
		if !ok {
			return apierr.InvalidState("Assignment already completed")
		}
		return nil
	}); err != nil {
		return nil, err
	}
	a.Feedback = fb

	if err := as.trackRepo.ReconcileProgress(dbc, a.TrackID); err != nil {
		as.log.Error("track progress reconcile failed", "trackId", a.TrackID, "error", err)
	}
	if err := as.bumpStats(dbc, userID, now); err != nil {
		as.log.Warn("user stats update failed", "userId", userID, "error", err)
	}
	return a, nil
}

// review returns nil when feedback could not be produced.
func (as *assignmentService) review(ctx context.Context, a *types.Assignment) *types.Feedback {
	if as.reviewer == nil {
		return nil
	}
	prefs, err := as.prefsRepo.GetByUserID(dbctx.New(ctx), a.UserID)
	if err != nil {
		as.log.Warn("preferences lookup failed", "userId", a.UserID, "error", err)
		prefs = nil
	}
	p := prompts.Feedback(prompts.FromPreferences(prefs).WithSubmission(a, a.SubmissionContent, a.Reflection))
	draft, err := as.reviewer.GenerateFeedback(ctx, p)
	if err != nil {
		as.log.Error("Failed to generate AI feedback", "assignmentId", a.ID, "error", err)
		return nil
	}
	return &types.Feedback{
		ID:                  uuid.New(),
		AssignmentID:        a.ID,
		GeneratedBy:         learning.GeneratedByAI,
		Score:               draft.Score,
		FeedbackText:        draft.Feedback,
		Suggestions:         datatypes.JSONSlice[string](draft.Suggestions),
		Strengths:           datatypes.JSONSlice[string](draft.Strengths),
		AreasForImprovement: datatypes.JSONSlice[string](draft.AreasForImprovement),
	}
}

func (as *assignmentService) bumpStats(dbc dbctx.Context, userID uuid.UUID, now time.Time) error {
	u, err := as.userRepo.GetByID(dbc, userID)
	if err != nil || u == nil {
		return err
	}
	return as.userRepo.Update(dbc, userID, map[string]any{
		"total_completed":   gorm.Expr("total_completed + 1"),
		"streak_count":      nextStreak(u.StreakCount, u.LastCompletedAt, now),
		"last_completed_at": now,
	})
}

// nextStreak keeps the count for a same-day completion, extends it for the
// following day and restarts it otherwise. Days are UTC calendar days.
func nextStreak(prev int, last *time.Time, now time.Time) int {
	if last == nil || prev <= 0 {
		return 1
	}
	day := func(t time.Time) time.Time {
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	switch day(now).Sub(day(*last)) {
	case 0:
		return prev
	case 24 * time.Hour:
		return prev + 1
	default:
		return 1
	}
}

func (as *assignmentService) Stats(ctx context.Context) (*AssignmentStats, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := as.assignmentRepo.Stats(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to get assignment stats")
	}
	out := &AssignmentStats{
		TypeBreakdown:       map[string]StatBucket{},
		DifficultyBreakdown: map[string]StatBucket{},
	}
	for _, r := range rows {
		out.TotalAssignments += r.Total
		out.CompletedAssignments += r.Completed

		tb := out.TypeBreakdown[r.Type]
		tb.Total += r.Total
		tb.Completed += r.Completed
		out.TypeBreakdown[r.Type] = tb

		db := out.DifficultyBreakdown[r.Difficulty]
		db.Total += r.Total
		db.Completed += r.Completed
		out.DifficultyBreakdown[r.Difficulty] = db
	}
	if out.TotalAssignments > 0 {
		out.CompletionRate = float64(out.CompletedAssignments) / float64(out.TotalAssignments) * 100
	}
	return out, nil
}
