package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	userrepo "github.com/abhayporwals/taskyn/internal/data/repos/user"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/domain/user"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/ctxutil"
	"github.com/abhayporwals/taskyn/internal/platform/dbctx"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type RegisterInput struct {
	FullName  string
	UserName  string
	Email     string
	Password  string
	Avatar    *AvatarUpload
	AvatarURL string
}

type LoginInput struct {
	Email    string
	UserName string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	Login(ctx context.Context, in LoginInput) (*types.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context) error
	// Authenticate verifies an access token and returns the caller it names.
	Authenticate(ctx context.Context, accessToken string) (*ctxutil.RequestData, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type accessClaims struct {
	Email    string `json:"email"`
	UserName string `json:"userName"`
	jwt.RegisteredClaims
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      AuthConfig
	userRepo userrepo.UserRepo
	avatars  AvatarService
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, log *logger.Logger, cfg AuthConfig, userRepo userrepo.UserRepo, avatars AvatarService) AuthService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &authService{
		db:       db,
		log:      log.With("service", "AuthService"),
		cfg:      cfg,
		userRepo: userRepo,
		avatars:  avatars,
		now:      time.Now,
	}
}

func (s *authService) AccessTTL() time.Duration  { return s.cfg.AccessTTL }
func (s *authService) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

func (s *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	fullName := strings.TrimSpace(in.FullName)
	userName := strings.ToLower(strings.TrimSpace(in.UserName))
	email := normalizeEmail(in.Email)
	password := in.Password

	if fullName == "" || userName == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, apierr.BadRequest("All fields are required")
	}
	if !isEmail(email) {
		return nil, apierr.BadRequest("Invalid email format")
	}
	if len(password) < 6 {
		return nil, apierr.BadRequest("Password must be at least 6 characters long")
	}
	if len(userName) < 3 {
		return nil, apierr.BadRequest("Username must be at least 3 characters long")
	}

	dbc := dbctx.New(ctx)
	emailTaken, nameTaken, err := s.userRepo.Taken(dbc, email, userName)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to check existing users")
	}
	if emailTaken || nameTaken {
		return nil, apierr.Conflict("User with email or username already exists")
	}

	avatarURL := strings.TrimSpace(in.AvatarURL)
	if in.Avatar == nil && avatarURL == "" {
		return nil, apierr.BadRequest("Avatar file is required")
	}
	if in.Avatar == nil && !validAvatarURL(avatarURL) {
		return nil, apierr.BadRequest("Avatar URL must be an absolute http(s) URL")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, apierr.Internal("Failed to hash password", err)
	}

	u := &types.User{
		ID:           uuid.New(),
		FullName:     fullName,
		UserName:     userName,
		Email:        email,
		Password:     hash,
		AvatarURL:    avatarURL,
		AuthProvider: user.AuthProviderLocal,
		Role:         user.RoleUser,
	}

	if in.Avatar != nil {
		key, publicURL, err := s.avatars.Store(ctx, u.ID, *in.Avatar)
		if err != nil {
			return nil, err
		}
		u.AvatarBucketKey = key
		u.AvatarURL = publicURL
	}

	if err := s.userRepo.Create(dbc, u); err != nil {
		s.avatars.Remove(ctx, u.AvatarBucketKey)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("User with email or username already exists")
		}
		return nil, apierr.Wrap(err, "Failed to create user")
	}
	s.log.Info("user registered", "userId", u.ID)
	return u, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*types.User, *TokenPair, error) {
	identifier := normalizeEmail(in.Email)
	if identifier == "" {
		identifier = strings.ToLower(strings.TrimSpace(in.UserName))
	}
	if identifier == "" {
		return nil, nil, apierr.BadRequest("Username or email is required")
	}
	if in.Password == "" {
		return nil, nil, apierr.BadRequest("Password is required")
	}

	dbc := dbctx.New(ctx)
	u, err := s.userRepo.GetByIdentifier(dbc, identifier)
	if err != nil {
		return nil, nil, apierr.Wrap(err, "Failed to load user")
	}
	if u == nil {
		return nil, nil, apierr.NotFound("User does not exist")
	}
	if !passwordMatches(u.Password, in.Password) {
		return nil, nil, apierr.Unauthorized("Invalid user credentials")
	}

	pair, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	if err := s.userRepo.SetRefreshToken(dbc, u.ID, pair.RefreshToken); err != nil {
		return nil, nil, apierr.Wrap(err, "Failed to generate tokens")
	}
	u.RefreshToken = pair.RefreshToken
	return u, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, apierr.Unauthorized("Unauthorised request")
	}
	claims := &jwt.RegisteredClaims{}
	if _, err := s.parse(refreshToken, s.cfg.RefreshSecret, claims); err != nil {
		return nil, apierr.Unauthorized("Invalid refresh token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.Unauthorized("Invalid refresh token")
	}

	dbc := dbctx.New(ctx)
	u, err := s.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to load user")
	}
	if u == nil {
		return nil, apierr.Unauthorized("Invalid refresh token")
	}

	pair, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	rotated, err := s.userRepo.RotateRefreshToken(dbc, u.ID, refreshToken, pair.RefreshToken)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to rotate refresh token")
	}
	if !rotated {
		return nil, apierr.Unauthorized("Refresh token is expired or used")
	}
	return pair, nil
}

func (s *authService) Logout(ctx context.Context) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetRefreshToken(dbctx.New(ctx), userID, ""); err != nil {
		return apierr.Wrap(err, "Failed to log out")
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*ctxutil.RequestData, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, apierr.Unauthorized("Unauthorised request")
	}
	claims := &accessClaims{}
	if _, err := s.parse(accessToken, s.cfg.AccessSecret, claims); err != nil {
		return nil, apierr.Unauthorized("Invalid access token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.Unauthorized("Invalid access token")
	}
	u, err := s.userRepo.GetByID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Wrap(err, "Failed to load user")
	}
	if u == nil {
		return nil, apierr.Unauthorized("Invalid Access Token")
	}
	return &ctxutil.RequestData{UserID: u.ID, Email: u.Email, UserName: u.UserName}, nil
}

func (s *authService) parse(token, secret string, claims jwt.Claims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
}

func (s *authService) issue(u *types.User) (*TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.cfg.AccessTTL)
	refreshExp := now.Add(s.cfg.RefreshTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		Email:    u.Email,
		UserName: u.UserName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExp),
		},
	}).SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return nil, apierr.Internal("Failed to generate tokens", err)
	}

	// jti keeps two refresh tokens minted in the same second distinct
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   u.ID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(refreshExp),
	}).SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return nil, apierr.Internal("Failed to generate tokens", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
