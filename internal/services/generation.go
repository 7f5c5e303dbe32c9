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
	"github.com/abhayporwals/taskyn/internal/platform/redislock"
)

const trackLockTTL = 15 * time.Minute

// Generator produces drafts from prompts. *generation.Client satisfies it.
type Generator interface {
	ProviderName() string
	GenerateTrack(ctx context.Context, p prompts.Prompt) (generation.TrackDraft, error)
	GenerateAssignment(ctx context.Context, p prompts.Prompt) (generation.AssignmentDraft, error)
}

type TrackOptions struct {
	Focus string `json:"focus"`
}

type AssignmentOptions struct {
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
}

type GenerationService interface {
	GenerateTrack(ctx context.Context, opts TrackOptions) (*types.Track, error)
	GenerateAssignment(ctx context.Context, trackID uuid.UUID, opts AssignmentOptions) (*types.Assignment, error)
}

type generationService struct {
	db             *gorm.DB
	log            *logger.Logger
	gen            Generator
	locker         redislock.Locker
	prefsRepo      userrepo.PreferencesRepo
	trackRepo      learningrepo.TrackRepo
	assignmentRepo learningrepo.AssignmentRepo
}

// NewGenerationService accepts a nil locker, in which case generations are not serialized.
func NewGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	gen Generator,
	locker redislock.Locker,
	prefsRepo userrepo.PreferencesRepo,
	trackRepo learningrepo.TrackRepo,
	assignmentRepo learningrepo.AssignmentRepo,
) GenerationService {
	return &generationService{
		db:             db,
		log:            log.With("service", "GenerationService"),
		gen:            gen,
		locker:         locker,
		prefsRepo:      prefsRepo,
		trackRepo:      trackRepo,
		assignmentRepo: assignmentRepo,
	}
}

func (gs *generationService) preferences(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreferences, error) {
	p, err := gs.prefsRepo.GetByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to load preferences")
	}
	if p == nil {
		return nil, apierr.NotFound("User preferences not found. Please complete onboarding first")
	}
	return p, nil
}

func (gs *generationService) lock(ctx context.Context, userID uuid.UUID) (func(), error) {
	if gs.locker == nil {
		return func() {}, nil
	}
	release, ok, err := gs.locker.Acquire(ctx, "generate:track:"+userID.String(), trackLockTTL)
	if err != nil {
		// lock backend down: proceed unserialized
		gs.log.Warn("generation lock unavailable", "userId", userID, "error", err)
		return func() {}, nil
	}
	if !ok {
		return nil, apierr.Conflict("A track generation is already in progress")
	}
	return release, nil
}

// GenerateTrack plans a track and then generates its assignments one at a time.
// A failure part way leaves the already created rows in place.
func (gs *generationService) GenerateTrack(ctx context.Context, opts TrackOptions) (*types.Track, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	prefs, err := gs.preferences(dbc, userID)
	if err != nil {
		return nil, err
	}

	release, err := gs.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	base := prompts.FromPreferences(prefs)
	draft, err := gs.gen.GenerateTrack(ctx, prompts.Track(base.WithFocus(opts.Focus)))
	if err != nil {
		gs.log.Error("track generation failed", "userId", userID, "error", err)
		return nil, apierr.Internal("Failed to generate track", err)
	}

	track := &types.Track{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       draft.Title,
		Category:    datatypes.JSONSlice[string](draft.Categories),
		Description: draft.Description,
		Status:      learning.TrackStatusActive,
		TotalTasks:  draft.TotalTasks,
		GeneratedBy: learning.GeneratedByAI,
	}
	if err := gs.trackRepo.Create(dbc, track); err != nil {
		return nil, apierr.Wrap(err, "Failed to save track")
	}

	for pos := 1; pos <= draft.TotalTasks; pos++ {
		in := base.WithTrack(track.Title, track.Category, pos, draft.TotalTasks)
		if _, err := gs.createAssignment(ctx, dbc, track, in, AssignmentOptions{}); err != nil {
			gs.log.Error("assignment generation failed", "trackId", track.ID, "position", pos, "error", err)
			return nil, err
		}
	}

	gs.log.Info("track generated", "trackId", track.ID, "tasks", draft.TotalTasks, "provider", gs.gen.ProviderName())
	return track, nil
}

func (gs *generationService) GenerateAssignment(ctx context.Context, trackID uuid.UUID, opts AssignmentOptions) (*types.Assignment, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	opts.Type = strings.TrimSpace(opts.Type)
	opts.Difficulty = strings.TrimSpace(opts.Difficulty)
	if opts.Type != "" && !learning.IsAssignmentType(opts.Type) {
		return nil, apierr.BadRequest("Invalid type", "type must be one of code, reading, project, mcq, mixed")
	}
	if opts.Difficulty != "" && !learning.IsDifficulty(opts.Difficulty) {
		return nil, apierr.BadRequest("Invalid difficulty", "difficulty must be one of easy, medium, hard")
	}

	dbc := dbctx.New(ctx)
	prefs, err := gs.preferences(dbc, userID)
	if err != nil {
		return nil, err
	}
	track, err := gs.trackRepo.GetForUser(dbc, trackID, userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to fetch track")
	}
	if track == nil {
		return nil, apierr.NotFound("Track not found")
	}

	in := prompts.FromPreferences(prefs).
		WithTrack(track.Title, track.Category, 0, 0).
		WithOverrides(opts.Type, opts.Difficulty)
	a, err := gs.createAssignment(ctx, dbc, track, in, opts)
	if err != nil {
		return nil, err
	}
	if err := gs.trackRepo.ReconcileProgress(dbc, track.ID); err != nil {
		gs.log.Error("track progress reconcile failed", "trackId", track.ID, "error", err)
	}
	return a, nil
}

func (gs *generationService) createAssignment(ctx context.Context, dbc dbctx.Context, track *types.Track, in prompts.Input, opts AssignmentOptions) (*types.Assignment, error) {
	draft, err := gs.gen.GenerateAssignment(ctx, prompts.Assignment(in))
	if err != nil {
		return nil, apierr.Internal("Failed to generate assignment", err)
	}
	if opts.Type != "" {
		draft.Type = opts.Type
	}
	if opts.Difficulty != "" {
		draft.Difficulty = opts.Difficulty
	}
	a := &types.Assignment{
		ID:             uuid.New(),
		UserID:         track.UserID,
		TrackID:        track.ID,
		Title:          draft.Title,
		Description:    draft.Description,
		Type:           draft.Type,
		Difficulty:     draft.Difficulty,
		Language:       draft.Language,
		SampleSolution: draft.SampleSolution,
		ExpectedOutput: draft.ExpectedOutput,
		FeedbackStatus: learning.FeedbackStatusNone,
	}
	if err := gs.assignmentRepo.Create(dbc, a); err != nil {
		return nil, apierr.Wrap(err, "Failed to save assignment")
	}
	return a, nil
}
