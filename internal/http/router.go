package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/abhayporwals/taskyn/internal/http/handlers"
	httpMW "github.com/abhayporwals/taskyn/internal/http/middleware"
	"github.com/abhayporwals/taskyn/internal/http/response"
	"github.com/abhayporwals/taskyn/internal/observability"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// ServiceName enables otelgin spans when non-empty.
	ServiceName string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	PreferencesHandler *httpH.PreferencesHandler
	TrackHandler       *httpH.TrackHandler
	AssignmentHandler  *httpH.AssignmentHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	response.UseJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Ops
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	requireAuth := func(c *gin.Context) {
		response.Error(c, apierr.Unauthorized("Unauthorised request"))
	}
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	}

	api := r.Group("/api/v1")

	// Auth
	if h := cfg.AuthHandler; h != nil {
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh-token", h.Refresh)

		auth.POST("/send-email-verification", h.SendEmailVerification)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/resend-email-verification", h.ResendEmailVerification)

		auth.POST("/send-password-reset", h.SendPasswordReset)
		auth.POST("/reset-password", h.ResetPassword)
		auth.POST("/resend-password-reset", h.ResendPasswordReset)

		auth.POST("/logout", requireAuth, h.Logout)
	}

	protected := api.Group("/", requireAuth)

	// Users
	if h := cfg.UserHandler; h != nil {
		users := protected.Group("/users")
		users.GET("/me", h.GetMe)
		users.PATCH("/update-account", h.UpdateAccount)
		users.PATCH("/update-avatar", h.UpdateAvatar)
		users.PATCH("/change-password", h.ChangePassword)
		users.DELETE("/delete-account", h.DeleteAccount)
	}

	// Preferences (onboarding answers)
	if h := cfg.PreferencesHandler; h != nil {
		protected.GET("/preferences", h.Get)
		protected.PATCH("/preferences", h.Upsert)
		protected.GET("/onboarding/me", h.Get)
		protected.PATCH("/onboarding/update-onboarding", h.Upsert)
	}

	// Tracks
	if h := cfg.TrackHandler; h != nil {
		tracks := protected.Group("/tracks")
		tracks.POST("", h.Generate)
		tracks.GET("", h.List)
		tracks.GET("/:trackId", h.Get)
		tracks.PATCH("/:trackId", h.Update)
		tracks.DELETE("/:trackId", h.Delete)
		tracks.GET("/:trackId/progress", h.Progress)
		tracks.PATCH("/:trackId/archive", h.Archive)
		tracks.PATCH("/:trackId/reactivate", h.Reactivate)
	}

	// Assignments
	if h := cfg.AssignmentHandler; h != nil {
		assignments := protected.Group("/assignments")
		assignments.GET("", h.List)
		assignments.GET("/stats", h.Stats)
		assignments.POST("/track/:trackId", h.Generate)
		assignments.GET("/track/:trackId", h.ListByTrack)
		assignments.GET("/:assignmentId", h.Get)
		assignments.PATCH("/:assignmentId", h.Update)
		assignments.DELETE("/:assignmentId", h.Delete)
		assignments.POST("/:assignmentId/submit", h.Submit)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apierr.NotFound("Route not found"))
	})

	return r
}
