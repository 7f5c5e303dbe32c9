package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abhayporwals/taskyn/internal/http/response"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/ctxutil"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
	"github.com/abhayporwals/taskyn/internal/services"
)

// AccessTokenCookie is the cookie the login handler sets for browser clients.
const AccessTokenCookie = "accessToken"

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, apierr.Unauthorized("Unauthorised request"))
			return
		}
		rd, err := am.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			am.log.Debug("Access token rejected", "path", c.FullPath(), "error", err)
			response.Error(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// extractToken prefers the accessToken cookie, then an Authorization bearer header.
func extractToken(c *gin.Context) string {
	if v, err := c.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
