package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhayporwals/taskyn/internal/http/middleware"
	"github.com/abhayporwals/taskyn/internal/http/response"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/services"
)

const (
	accessCookie  = middleware.AccessTokenCookie
	refreshCookie = "refreshToken"
)

type AuthHandler struct {
	authService  services.AuthService
	verification services.VerificationService
	secureCookie bool
}

func NewAuthHandler(authService services.AuthService, verification services.VerificationService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, verification: verification, secureCookie: secureCookie}
}

// POST /auth/register (multipart/form-data or JSON)
// file field: "avatar" or "avatarUrl"; text field "avatarUrl" is taken as a hosted image URL
func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		FullName  string `json:"fullName" form:"fullName" binding:"required"`
		UserName  string `json:"userName" form:"userName" binding:"required"`
		Email     string `json:"email" form:"email" binding:"required,email"`
		Password  string `json:"password" form:"password" binding:"required,min=6"`
		AvatarURL string `json:"avatarUrl" form:"avatarUrl"`
	}
	avatar, err := formAvatar(c, "avatar", "avatarUrl")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	in := services.RegisterInput{
		FullName: req.FullName,
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   avatar,
	}
	if avatar == nil {
		in.AvatarURL = req.AvatarURL
	}
	u, err := ah.authService.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "User registered successfully", u)
}

// POST /auth/login
// body: { "email" | "userName", "password" }
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"omitempty,email"`
		UserName string `json:"userName"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	u, pair, err := ah.authService.Login(c.Request.Context(), services.LoginInput{
		Email:    req.Email,
		UserName: req.UserName,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	setAuthCookies(c, ah.secureCookie, pair)
	response.OK(c, "User logged in successfully", gin.H{
		"user":         u,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// POST /auth/refresh-token
// token from the refreshToken cookie, else body { "refreshToken" }
func (ah *AuthHandler) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshCookie)
	if strings.TrimSpace(token) == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if strings.TrimSpace(token) == "" {
		response.Error(c, apierr.Unauthorized("Unauthorised request"))
		return
	}
	pair, err := ah.authService.Refresh(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		response.Error(c, err)
		return
	}
	setAuthCookies(c, ah.secureCookie, pair)
	response.OK(c, "Access token refreshed", pair)
}

// POST /auth/logout (protected)
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	clearAuthCookies(c, ah.secureCookie)
	response.OK(c, "User logged out successfully", gin.H{})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (ah *AuthHandler) SendEmailVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := ah.verification.SendEmailVerification(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Verification OTP sent to your email", gin.H{})
}

func (ah *AuthHandler) ResendEmailVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := ah.verification.ResendEmailVerification(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Verification OTP resent to your email", gin.H{})
}

// POST /auth/verify-email
// body: { "email", "otp" }
func (ah *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required,len=6,numeric"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	u, err := ah.verification.VerifyEmail(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Email verified successfully", u)
}

func (ah *AuthHandler) SendPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := ah.verification.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Password reset OTP sent to your email", gin.H{})
}

func (ah *AuthHandler) ResendPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := ah.verification.ResendPasswordReset(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Password reset OTP resent to your email", gin.H{})
}

// POST /auth/reset-password
// body: { "email", "otp", "newPassword" }
func (ah *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required,len=6,numeric"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := ah.verification.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Password reset successfully", gin.H{})
}
