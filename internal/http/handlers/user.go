package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/abhayporwals/taskyn/internal/http/response"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/services"
)

type UserHandler struct {
	userService  services.UserService
	secureCookie bool
}

func NewUserHandler(userService services.UserService, secureCookie bool) *UserHandler {
	return &UserHandler{userService: userService, secureCookie: secureCookie}
}

// GET /users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.Me(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Current user fetched successfully", me)
}

// PATCH /users/update-account
// body: { "fullName", "email" }
func (uh *UserHandler) UpdateAccount(c *gin.Context) {
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	u, err := uh.userService.UpdateAccount(c.Request.Context(), services.UpdateAccountInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Account details updated successfully", u)
}

// PATCH /users/update-avatar (multipart/form-data)
// field: "avatar"
func (uh *UserHandler) UpdateAvatar(c *gin.Context) {
	up, err := formAvatar(c, "avatar")
	if err != nil {
		response.Error(c, err)
		return
	}
	if up == nil {
		response.Error(c, apierr.BadRequest("Avatar file is missing"))
		return
	}
	u, err := uh.userService.UpdateAvatar(c.Request.Context(), *up)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Avatar updated successfully", u)
}

// PATCH /users/change-password
// body: { "currentPassword", "newPassword" }
func (uh *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := uh.userService.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Password changed successfully", gin.H{})
}

// DELETE /users/delete-account
// body: { "password" }
func (uh *UserHandler) DeleteAccount(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := uh.userService.DeleteAccount(c.Request.Context(), req.Password); err != nil {
		response.Error(c, err)
		return
	}
	clearAuthCookies(c, uh.secureCookie)
	response.OK(c, "Account deleted successfully", gin.H{})
}
