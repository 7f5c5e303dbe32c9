package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

// OTP column prefixes, matching the embedded prefixes on types.User.
const (
	EmailVerificationOTP = "email_verification_otp_"
	PasswordResetOTP     = "password_reset_otp_"
)

type UserRepo interface {
	Create(dbc dbctx.Context, u *types.User) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	GetByIdentifier(dbc dbctx.Context, identifier string) (*types.User, error)
	Taken(dbc dbctx.Context, email, userName string) (emailTaken bool, userNameTaken bool, err error)
	EmailTakenByOther(dbc dbctx.Context, email string, exceptID uuid.UUID) (bool, error)
	Update(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
	SetOTP(dbc dbctx.Context, id uuid.UUID, prefix, code string, expiresAt *time.Time) error
	SetRefreshToken(dbc dbctx.Context, id uuid.UUID, token string) error
	RotateRefreshToken(dbc dbctx.Context, id uuid.UUID, presented, next string) (bool, error)
	ClearExpiredOTPs(dbc dbctx.Context, now time.Time) (int64, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, u *types.User) error {
	if u == nil {
		return nil
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(u).Error
}

func (r *userRepo) first(dbc dbctx.Context, query string, args ...any) (*types.User, error) {
	var rows []*types.User
	if err := dbc.DB(r.db).Where(query, args...).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc, "id = ?", id)
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	if email == "" {
		return nil, nil
	}
	return r.first(dbc, "email = ?", email)
}

// GetByIdentifier matches either the email or the user name.
func (r *userRepo) GetByIdentifier(dbc dbctx.Context, identifier string) (*types.User, error) {
	if identifier == "" {
		return nil, nil
	}
	return r.first(dbc, "email = ? OR user_name = ?", identifier, identifier)
}

func (r *userRepo) Taken(dbc dbctx.Context, email, userName string) (bool, bool, error) {
	var rows []*types.User
	if err := dbc.DB(r.db).
		Select("id", "email", "user_name").
		Where("email = ? OR user_name = ?", email, userName).
		Find(&rows).Error; err != nil {
		return false, false, err
	}
	var emailTaken, userNameTaken bool
	for _, u := range rows {
		if u.Email == email {
			emailTaken = true
		}
		if u.UserName == userName {
			userNameTaken = true
		}
	}
	return emailTaken, userNameTaken, nil
}

func (r *userRepo) EmailTakenByOther(dbc dbctx.Context, email string, exceptID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.User{}).
		Where("email = ? AND id <> ?", email, exceptID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepo) Update(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetOTP writes or clears (empty code, nil expiry) one of the inline OTPs.
func (r *userRepo) SetOTP(dbc dbctx.Context, id uuid.UUID, prefix, code string, expiresAt *time.Time) error {
	return r.Update(dbc, id, map[string]any{
		prefix + "code":       code,
		prefix + "expires_at": expiresAt,
	})
}

func (r *userRepo) SetRefreshToken(dbc dbctx.Context, id uuid.UUID, token string) error {
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", id).
		Update("refresh_token", token).Error
}

// RotateRefreshToken swaps the stored token only if it still equals presented.
func (r *userRepo) RotateRefreshToken(dbc dbctx.Context, id uuid.UUID, presented, next string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	res := dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ? AND refresh_token = ?", id, presented).
		Update("refresh_token", next)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepo) ClearExpiredOTPs(dbc dbctx.Context, now time.Time) (int64, error) {
	var total int64
	for _, prefix := range []string{EmailVerificationOTP, PasswordResetOTP} {
		res := dbc.DB(r.db).
			Model(&types.User{}).
			Where(prefix+"expires_at IS NOT NULL AND "+prefix+"expires_at < ?", now).
			Updates(map[string]any{
				prefix + "code":       "",
				prefix + "expires_at": nil,
			})
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
	}
	return total, nil
}

func (r *userRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.User{}).Error
}
