package services

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	userrepo "github.com/abhayporwals/taskyn/internal/data/repos/user"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/user"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type PreferencesInput struct {
	Interests               []string          `json:"interests"`
	PrimaryGoals            []string          `json:"primaryGoals"`
	SecondaryGoals          []string          `json:"secondaryGoals"`
	SkillLevels             map[string]string `json:"skillLevels"`
	PreferredTopics         []string          `json:"preferredTopics"`
	PreferredLanguage       string            `json:"preferredLanguage" binding:"required"`
	LearningStyle           string            `json:"learningStyle" binding:"omitempty,oneof=assignment-only resources-only both"`
	PreferredAssignmentType string            `json:"preferredAssignmentType" binding:"omitempty,oneof=project problem-solving reading-based mixed"`
	YearsOfExperience       int               `json:"yearsOfExperience" binding:"gte=0"`
	AvailableHoursPerWeek   int               `json:"availableHoursPerWeek" binding:"required,gt=0"`
	PriorProjects           []string          `json:"priorProjects"`
	GithubURL               string            `json:"githubUrl" binding:"omitempty,url"`
	PortfolioURL            string            `json:"portfolioUrl" binding:"omitempty,url"`
	WantsFeedback           *bool             `json:"wantsFeedback"`
}

type PreferencesService interface {
	Get(ctx context.Context) (*types.UserPreferences, error)
	Upsert(ctx context.Context, in PreferencesInput) (*types.UserPreferences, error)
}

type preferencesService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  userrepo.UserRepo
	prefsRepo userrepo.PreferencesRepo
}

func NewPreferencesService(db *gorm.DB, log *logger.Logger, userRepo userrepo.UserRepo, prefsRepo userrepo.PreferencesRepo) PreferencesService {
	return &preferencesService{
		db:        db,
		log:       log.With("service", "PreferencesService"),
		userRepo:  userRepo,
		prefsRepo: prefsRepo,
	}
}

func (ps *preferencesService) Get(ctx context.Context) (*types.UserPreferences, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	p, err := ps.prefsRepo.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to load preferences")
	}
	if p == nil {
		return nil, apierr.NotFound("User onboarding data not found")
	}
	return p, nil
}

func (ps *preferencesService) Upsert(ctx context.Context, in PreferencesInput) (*types.UserPreferences, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	row, err := preferencesRow(in)
	if err != nil {
		return nil, err
	}
	row.UserID = userID

	var out *types.UserPreferences
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		saved, err := ps.prefsRepo.Upsert(inner, row)
		if err != nil {
			return err
		}
		if err := ps.userRepo.Update(inner, userID, map[string]any{"onboarding_completed": true}); err != nil {
			return err
		}
		out = saved
		return nil
	}); err != nil {
		ps.log.Warn("Upsert preferences transaction error", "userId", userID, "error", err)
		return nil, apierr.Wrap(err, "Failed to save preferences")
	}
	return out, nil
}

func preferencesRow(in PreferencesInput) (*types.UserPreferences, error) {
	lang := strings.TrimSpace(in.PreferredLanguage)
	if in.AvailableHoursPerWeek <= 0 || lang == "" {
		return nil, apierr.BadRequest("availableHoursPerWeek and preferredLanguage are required")
	}
	if in.YearsOfExperience < 0 {
		return nil, apierr.BadRequest("yearsOfExperience cannot be negative")
	}

	style := strings.TrimSpace(in.LearningStyle)
	switch style {
	case "":
		style = user.LearningStyleBoth
	case user.LearningStyleAssignmentOnly, user.LearningStyleResourcesOnly, user.LearningStyleBoth:
	default:
		return nil, apierr.BadRequest("Invalid learningStyle", "learningStyle must be one of assignment-only, resources-only, both")
	}

	atype := strings.TrimSpace(in.PreferredAssignmentType)
	switch atype {
	case "":
		atype = user.AssignmentTypeMixed
	case user.AssignmentTypeProject, user.AssignmentTypeProblemSolving, user.AssignmentTypeReadingBased, user.AssignmentTypeMixed:
	default:
		return nil, apierr.BadRequest("Invalid preferredAssignmentType", "preferredAssignmentType must be one of project, problem-solving, reading-based, mixed")
	}

	skills := map[string]string{}
	var bad []string
	for k, v := range in.SkillLevels {
		k = strings.TrimSpace(k)
		v = strings.ToLower(strings.TrimSpace(v))
		if k == "" {
			continue
		}
		switch v {
		case user.SkillBeginner, user.SkillIntermediate, user.SkillAdvanced:
			skills[k] = v
		default:
			bad = append(bad, "skillLevels."+k+" must be beginner, intermediate or advanced")
		}
	}
	if len(bad) > 0 {
		return nil, apierr.BadRequest("Invalid skillLevels", bad...)
	}

	wants := true
	if in.WantsFeedback != nil {
		wants = *in.WantsFeedback
	}

	return &types.UserPreferences{
		Interests:               cleanList(in.Interests),
		PrimaryGoals:            cleanList(in.PrimaryGoals),
		SecondaryGoals:          cleanList(in.SecondaryGoals),
		SkillLevels:             datatypes.NewJSONType(skills),
		PreferredTopics:         cleanList(in.PreferredTopics),
		PreferredLanguage:       lang,
		LearningStyle:           style,
		PreferredAssignmentType: atype,
		YearsOfExperience:       in.YearsOfExperience,
		AvailableHoursPerWeek:   in.AvailableHoursPerWeek,
		PriorProjects:           cleanList(in.PriorProjects),
		GithubURL:               strings.TrimSpace(in.GithubURL),
		PortfolioURL:            strings.TrimSpace(in.PortfolioURL),
		WantsFeedback:           wants,
	}, nil
}

func cleanList(items []string) datatypes.JSONSlice[string] {
	out := datatypes.JSONSlice[string]{}
	for _, it := range items {
		if s := strings.TrimSpace(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}
