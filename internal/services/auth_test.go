package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	svc := e.authService(t)
	ctx := context.Background()

	valid := RegisterInput{FullName: "Ada", UserName: "ada", Email: "ada@example.com", Password: "secret1", AvatarURL: "https://img.test/a.png"}
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		msg    string
	}{
		{"missing field", func(in *RegisterInput) { in.FullName = " " }, "All fields are required"},
		{"bad email", func(in *RegisterInput) { in.Email = "ada@example" }, "Invalid email format"},
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, "Password must be at least 6 characters long"},
		{"short username", func(in *RegisterInput) { in.UserName = "ad" }, "Username must be at least 3 characters long"},
		{"no avatar", func(in *RegisterInput) { in.AvatarURL = "" }, "Avatar file is required"},
		{"relative avatar url", func(in *RegisterInput) { in.AvatarURL = "/a.png" }, "Avatar URL must be an absolute http(s) URL"},
		{"wrong avatar type", func(in *RegisterInput) {
			in.AvatarURL = ""
			in.Avatar = &AvatarUpload{Data: []byte("GIF89a........"), ContentType: "image/gif"}
		}, "Only JPEG, PNG and WebP images are allowed"},
		{"oversized avatar", func(in *RegisterInput) {
			in.AvatarURL = ""
			in.Avatar = &AvatarUpload{Data: make([]byte, MaxAvatarBytes+1), ContentType: "image/png"}
		}, "Avatar file must be 5MB or smaller"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			requireStatus(t, err, http.StatusBadRequest)
			require.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestRegisterUploadsAvatarAndLowercasesIdentity(t *testing.T) {
	e := newEnv(t)
	svc := e.authService(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		FullName: "Grace Hopper",
		UserName: "  GraceH ",
		Email:    "Grace@Example.com",
		Password: "cobol1959",
		Avatar:   &AvatarUpload{Data: pngBytes(t, 40, 20), ContentType: "image/png"},
	})
	require.NoError(t, err)
	require.Equal(t, "graceh", u.UserName)
	require.Equal(t, "grace@example.com", u.Email)
	require.True(t, strings.HasPrefix(u.AvatarBucketKey, "user_avatar/"+u.ID.String()+"/"))
	require.Equal(t, "https://cdn.test/"+u.AvatarBucketKey, u.AvatarURL)
	require.Contains(t, e.store.objects, u.AvatarBucketKey)
	require.NotEqual(t, "cobol1959", e.reloadUser(t, u.ID).Password)

	_, err = svc.Register(context.Background(), RegisterInput{
		FullName: "Other", UserName: "graceh", Email: "other@example.com", Password: "secret1", AvatarURL: "https://img.test/a.png",
	})
	requireStatus(t, err, http.StatusConflict)
}

func TestRegisterUndecodableAvatar(t *testing.T) {
	e := newEnv(t)
	svc := e.authService(t)
	// valid PNG signature, garbage body
	data := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	_, err := svc.Register(context.Background(), RegisterInput{
		FullName: "X", UserName: "xxx", Email: "x@example.com", Password: "secret1",
		Avatar: &AvatarUpload{Data: data, ContentType: "image/png"},
	})
	requireStatus(t, err, http.StatusBadRequest)
	require.Empty(t, e.store.objects)
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	svc := e.authService(t)
	u, _ := e.seedUser(t)
	ctx := context.Background()

	_, _, err := svc.Login(ctx, LoginInput{Password: "secret123"})
	requireStatus(t, err, http.StatusBadRequest)

	_, _, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	requireStatus(t, err, http.StatusNotFound)

	_, _, err = svc.Login(ctx, LoginInput{UserName: u.UserName, Password: "wrong-password"})
	requireStatus(t, err, http.StatusUnauthorized)

	got, pair, err := svc.Login(ctx, LoginInput{UserName: strings.ToUpper(u.UserName), Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	require.Equal(t, pair.RefreshToken, e.reloadUser(t, u.ID).RefreshToken)

	rd, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, rd.UserID)
	require.Equal(t, u.Email, rd.Email)

	// a refresh token is signed with the other secret
	_, err = svc.Authenticate(ctx, pair.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	e := newEnv(t)
	svc := e.authService(t)
	u, _ := e.seedUser(t)

	_, pair, err := svc.Login(context.Background(), LoginInput{Email: u.Email, Password: "secret123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.Authenticate(context.Background(), pair.AccessToken)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRefreshRotatesAndRejectsSupersededToken(t *testing.T) {
	e := newEnv(t)
	svc := e.authService(t)
	u, _ := e.seedUser(t)
	ctx := context.Background()

	_, first, err := svc.Login(ctx, LoginInput{Email: u.Email, Password: "secret123"})
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Equal(t, second.RefreshToken, e.reloadUser(t, u.ID).RefreshToken)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = svc.Refresh(ctx, "not-a-jwt")
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLogoutClearsRefreshToken(t *testing.T) {
	e := newEnv(t)
	svc := e.authService(t)
	u, ctx := e.seedUser(t)

	_, pair, err := svc.Login(context.Background(), LoginInput{Email: u.Email, Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	require.Empty(t, e.reloadUser(t, u.ID).RefreshToken)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	requireStatus(t, err, http.StatusUnauthorized)

	requireStatus(t, svc.Logout(context.Background()), http.StatusUnauthorized)
}
