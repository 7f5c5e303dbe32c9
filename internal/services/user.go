package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	userrepo "github.com/abhayporwals/taskyn/internal/data/repos/user"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type UpdateAccountInput struct {
	FullName string
	Email    string
}

type UserService interface {
	Me(ctx context.Context) (*types.User, error)
	UpdateAccount(ctx context.Context, in UpdateAccountInput) (*types.User, error)
	UpdateAvatar(ctx context.Context, up AvatarUpload) (*types.User, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, password string) error
}

type userService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       userrepo.UserRepo
	prefsRepo      userrepo.PreferencesRepo
	trackRepo      learningrepo.TrackRepo
	assignmentRepo learningrepo.AssignmentRepo
	feedbackRepo   learningrepo.FeedbackRepo
	avatars        AvatarService
}

func NewUserService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo userrepo.UserRepo,
	prefsRepo userrepo.PreferencesRepo,
	trackRepo learningrepo.TrackRepo,
	assignmentRepo learningrepo.AssignmentRepo,
	feedbackRepo learningrepo.FeedbackRepo,
	avatars AvatarService,
) UserService {
	return &userService{
		db:             db,
		log:            log.With("service", "UserService"),
		userRepo:       userRepo,
		prefsRepo:      prefsRepo,
		trackRepo:      trackRepo,
		assignmentRepo: assignmentRepo,
		feedbackRepo:   feedbackRepo,
		avatars:        avatars,
	}
}

func (us *userService) current(ctx context.Context) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := us.userRepo.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to load user")
	}
	if u == nil {
		return nil, apierr.NotFound("User not found")
	}
	return u, nil
}

func (us *userService) Me(ctx context.Context) (*types.User, error) {
	return us.current(ctx)
}

func (us *userService) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*types.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := normalizeEmail(in.Email)
	if fullName == "" || email == "" {
		return nil, apierr.BadRequest("All fields are required")
	}
	if !isEmail(email) {
		return nil, apierr.BadRequest("Invalid email format")
	}

	u, err := us.current(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	taken, err := us.userRepo.EmailTakenByOther(dbc, email, u.ID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to check email")
	}
	if taken {
		return nil, apierr.Conflict("Email is already taken by another user")
	}

	updates := map[string]any{"full_name": fullName, "email": email}
	if email != u.Email {
		// a new address has to be verified again
		updates["is_email_verified"] = false
	}
	if err := us.userRepo.Update(dbc, u.ID, updates); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("Email is already taken by another user")
		}
		return nil, apierr.Wrap(err, "Failed to update account")
	}
	return us.userRepo.GetByID(dbc, u.ID)
}

func (us *userService) UpdateAvatar(ctx context.Context, up AvatarUpload) (*types.User, error) {
	u, err := us.current(ctx)
	if err != nil {
		return nil, err
	}
	key, publicURL, err := us.avatars.Replace(ctx, u.ID, u.AvatarBucketKey, up)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	if err := us.userRepo.Update(dbc, u.ID, map[string]any{
		"avatar_url":        publicURL,
		"avatar_bucket_key": key,
	}); err != nil {
		return nil, apierr.Wrap(err, "Failed to update avatar")
	}
	u.AvatarURL = publicURL
	u.AvatarBucketKey = key
	return u, nil
}

func (us *userService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apierr.BadRequest("Current password and new password are required")
	}
	if len(newPassword) < 6 {
		return apierr.BadRequest("New password must be at least 6 characters long")
	}
	u, err := us.current(ctx)
	if err != nil {
		return err
	}
	if !passwordMatches(u.Password, currentPassword) {
		return apierr.Unauthorized("Current password is incorrect")
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return apierr.Internal("Failed to hash password", err)
	}
	if err := us.userRepo.Update(dbctx.New(ctx), u.ID, map[string]any{"password": hash}); err != nil {
		return apierr.Wrap(err, "Failed to change password")
	}
	return nil
}

// DeleteAccount removes the user and everything they own in one transaction.
func (us *userService) DeleteAccount(ctx context.Context, password string) error {
	if password == "" {
		return apierr.BadRequest("Password is required")
	}
	u, err := us.current(ctx)
	if err != nil {
		return err
	}
	if !passwordMatches(u.Password, password) {
		return apierr.Unauthorized("Password is incorrect")
	}

	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := us.feedbackRepo.DeleteByUser(inner, u.ID); err != nil {
			return err
		}
		if err := us.assignmentRepo.DeleteByUser(inner, u.ID); err != nil {
			return err
		}
		if err := us.trackRepo.DeleteByUser(inner, u.ID); err != nil {
			return err
		}
		if err := us.prefsRepo.DeleteByUserID(inner, u.ID); err != nil {
			return err
		}
		return us.userRepo.Delete(inner, u.ID)
	}); err != nil {
		us.log.Warn("DeleteAccount transaction error", "userId", u.ID, "error", err)
		return apierr.Wrap(err, "Failed to delete account")
	}

	us.avatars.Remove(ctx, u.AvatarBucketKey)
	us.log.Info("account deleted", "userId", u.ID)
	return nil
}
