package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

// OTP is a one-time code stored inline on the user row.
type OTP struct {
	Code      string     `json:"-"`
	ExpiresAt *time.Time `json:"-"`
}

// Active reports whether a code is set and has not expired at now.
func (o OTP) Active(now time.Time) bool {
	return o.Code != "" && o.ExpiresAt != nil && now.Before(*o.ExpiresAt)
}

// Remaining is the time left before expiry, zero when unset or expired.
func (o OTP) Remaining(now time.Time) time.Duration {
	if o.ExpiresAt == nil {
		return 0
	}
	if d := o.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

type User struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName             string     `gorm:"not null;column:full_name" json:"fullName"`
	UserName             string     `gorm:"uniqueIndex;not null;column:user_name" json:"userName"`
	Email                string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password             string     `gorm:"not null;column:password" json:"-"`
	AvatarURL            string     `gorm:"column:avatar_url" json:"avatarUrl"`
	AvatarBucketKey      string     `gorm:"column:avatar_bucket_key" json:"-"`
	AuthProvider         string     `gorm:"not null;column:auth_provider" json:"authProvider"`
	Role                 string     `gorm:"not null;column:role" json:"role"`
	IsEmailVerified      bool       `gorm:"not null;column:is_email_verified" json:"isEmailVerified"`
	EmailVerificationOTP OTP        `gorm:"embedded;embeddedPrefix:email_verification_otp_" json:"-"`
	PasswordResetOTP     OTP        `gorm:"embedded;embeddedPrefix:password_reset_otp_" json:"-"`
	RefreshToken         string     `gorm:"column:refresh_token" json:"-"`
	StreakCount          int        `gorm:"not null;column:streak_count" json:"streakCount"`
	TotalCompleted       int        `gorm:"not null;column:total_completed" json:"totalCompleted"`
	LastCompletedAt      *time.Time `gorm:"column:last_completed_at" json:"lastCompletedAt,omitempty"`
	OnboardingCompleted  bool       `gorm:"not null;column:onboarding_completed" json:"onboardingCompleted"`
	CreatedAt            time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "user" }
