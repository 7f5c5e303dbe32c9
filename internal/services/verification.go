package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	userrepo "github.com/abhayporwals/taskyn/internal/data/repos/user"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
	"github.com/abhayporwals/taskyn/internal/platform/sendgrid"
)

type otpPurpose string

const (
	purposeEmailVerification otpPurpose = "email_verification"
	purposePasswordReset     otpPurpose = "password_reset"
)

const (
	OTPTTL = 10 * time.Minute
	// a resend is refused while the live code has more than this left
	otpResendGuard = 9 * time.Minute
)

type VerificationService interface {
	SendEmailVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, otp string) (*types.User, error)
	ResendEmailVerification(ctx context.Context, email string) error

	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error
	ResendPasswordReset(ctx context.Context, email string) error
}

type verificationService struct {
	log      *logger.Logger
	userRepo userrepo.UserRepo
	mailer   sendgrid.Client
	now      func() time.Time
	newCode  func() (string, error)
}

func NewVerificationService(log *logger.Logger, userRepo userrepo.UserRepo, mailer sendgrid.Client) VerificationService {
	return &verificationService{
		log:      log.With("service", "VerificationService"),
		userRepo: userRepo,
		mailer:   mailer,
		now:      time.Now,
		newCode:  generateOTP,
	}
}

// generateOTP returns a uniformly random six digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func otpPrefix(p otpPurpose) string {
	if p == purposePasswordReset {
		return userrepo.PasswordResetOTP
	}
	return userrepo.EmailVerificationOTP
}

func otpOf(u *types.User, p otpPurpose) types.OTP {
	if p == purposePasswordReset {
		return u.PasswordResetOTP
	}
	return u.EmailVerificationOTP
}

func (s *verificationService) lookup(ctx context.Context, email string) (*types.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, apierr.BadRequest("Email is required")
	}
	u, err := s.userRepo.GetByEmail(dbctx.New(ctx), email)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to load user")
	}
	if u == nil {
		return nil, apierr.NotFound("User not found")
	}
	return u, nil
}

// issue stores a fresh code on the user and mails it.
func (s *verificationService) issue(ctx context.Context, u *types.User, p otpPurpose) error {
	code, err := s.newCode()
	if err != nil {
		return apierr.Internal("Failed to generate OTP", err)
	}
	expiresAt := s.now().Add(OTPTTL).UTC()
	if err := s.userRepo.SetOTP(dbctx.New(ctx), u.ID, otpPrefix(p), code, &expiresAt); err != nil {
		return apierr.Wrap(err, "Failed to store OTP")
	}

	subject, text, html, err := otpEmailFor(p, u.FullName, code)
	if err != nil {
		return apierr.Internal("Failed to render email", err)
	}
	if err := s.mailer.Send(ctx, sendgrid.Message{
		ToEmail: u.Email,
		ToName:  u.FullName,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}); err != nil {
		s.log.Error("otp email send failed", "userId", u.ID, "purpose", p, "error", err)
		return apierr.Internal("Failed to send email", err)
	}
	s.log.Info("otp issued", "userId", u.ID, "purpose", p)
	return nil
}

func (s *verificationService) throttle(u *types.User, p otpPurpose) error {
	if otpOf(u, p).Remaining(s.now()) > otpResendGuard {
		return apierr.BadRequest("Please wait before requesting another OTP")
	}
	return nil
}

// check compares the presented code against the live one. Any mismatch or
// expiry leaves the stored state untouched.
func (s *verificationService) check(u *types.User, p otpPurpose, presented string) error {
	stored := otpOf(u, p)
	presented = strings.TrimSpace(presented)
	if !stored.Active(s.now()) ||
		subtle.ConstantTimeCompare([]byte(stored.Code), []byte(presented)) != 1 {
		return apierr.BadRequest("Invalid or expired OTP")
	}
	return nil
}

func (s *verificationService) SendEmailVerification(ctx context.Context, email string) error {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if u.IsEmailVerified {
		return apierr.BadRequest("Email is already verified")
	}
	return s.issue(ctx, u, purposeEmailVerification)
}

func (s *verificationService) VerifyEmail(ctx context.Context, email, otp string) (*types.User, error) {
	if strings.TrimSpace(otp) == "" {
		return nil, apierr.BadRequest("Email and OTP are required")
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if u.IsEmailVerified {
		return nil, apierr.BadRequest("Email is already verified")
	}
	if err := s.check(u, purposeEmailVerification, otp); err != nil {
		return nil, err
	}

	prefix := userrepo.EmailVerificationOTP
	if err := s.userRepo.Update(dbctx.New(ctx), u.ID, map[string]any{
		"is_email_verified":   true,
		prefix + "code":       "",
		prefix + "expires_at": nil,
	}); err != nil {
		return nil, apierr.Wrap(err, "Failed to verify email")
	}
	u.IsEmailVerified = true
	u.EmailVerificationOTP = types.OTP{}
	return u, nil
}

func (s *verificationService) ResendEmailVerification(ctx context.Context, email string) error {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if u.IsEmailVerified {
		return apierr.BadRequest("Email is already verified")
	}
	if err := s.throttle(u, purposeEmailVerification); err != nil {
		return err
	}
	return s.issue(ctx, u, purposeEmailVerification)
}

func (s *verificationService) SendPasswordReset(ctx context.Context, email string) error {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	return s.issue(ctx, u, purposePasswordReset)
}

func (s *verificationService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	if strings.TrimSpace(otp) == "" || newPassword == "" {
		return apierr.BadRequest("Email, OTP and new password are required")
	}
	if len(newPassword) < 6 {
		return apierr.BadRequest("Password must be at least 6 characters long")
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if err := s.check(u, purposePasswordReset, otp); err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return apierr.Internal("Failed to hash password", err)
	}
	prefix := userrepo.PasswordResetOTP
	if err := s.userRepo.Update(dbctx.New(ctx), u.ID, map[string]any{
		"password":            hash,
		"refresh_token":       "",
		prefix + "code":       "",
		prefix + "expires_at": nil,
	}); err != nil {
		return apierr.Wrap(err, "Failed to reset password")
	}
	s.log.Info("password reset", "userId", u.ID)
	return nil
}

func (s *verificationService) ResendPasswordReset(ctx context.Context, email string) error {
	u, err := s.lookup(ctx, email)
	if err != nil {
		return err
	}
	if err := s.throttle(u, purposePasswordReset); err != nil {
		return err
	}
	return s.issue(ctx, u, purposePasswordReset)
}
