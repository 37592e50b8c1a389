package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/handler"
	"github.com/iliyamo/feedback-board/internal/middleware"
	"github.com/iliyamo/feedback-board/internal/repository"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Feedback      *handler.FeedbackHandler
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	AdminAuth     *handler.AdminAuthHandler
	AdminFeedback *handler.AdminFeedbackHandler
	AdminPanel    *handler.AdminPanelHandler
	Blog          *handler.BlogHandler
	FileManager   *handler.FileManagerHandler
	GitHubSync    *handler.GitHubSyncHandler
}

// Register wires all routes onto the Echo instance.  Redis backs the
// response cache on the public listing and the per-scope rate limiters;
// when rdb is nil both degrade to pass-through.
func Register(e *echo.Echo, cfg config.Config, h Handlers, visits *repository.VisitRepo, rdb *redis.Client) {
	e.Validator = newRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.VisitLogger(visits))

	e.GET("/healthz", handler.Health)

	// Scoped limiters follow the original deployment's budgets: auth
	// endpoints are throttled hard, submissions moderately, votes lightly.
	authLimit := middleware.NewTokenBucket(config.LoadRouteRateLimitConfig("auth", 20, 45*time.Second), rdb)
	submitLimit := middleware.NewTokenBucket(config.LoadRouteRateLimitConfig("submit", 10, 6*time.Second), rdb)
	voteLimit := middleware.NewTokenBucket(config.LoadRouteRateLimitConfig("vote", 30, 2*time.Second), rdb)

	listCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	api := e.Group("/api")

	// Public board.
	api.GET("/feedbacks", h.Feedback.List, listCache)
	api.POST("/feedback", h.Feedback.Submit, submitLimit, middleware.OptionalUserAuth(cfg.JWTSecret))
	api.PUT("/feedback/:id", h.Feedback.Edit, middleware.OptionalUserAuth(cfg.JWTSecret))
	api.POST("/feedback/:id/vote", h.Feedback.Vote, voteLimit, middleware.OptionalUserAuth(cfg.JWTSecret))
	api.GET("/blogs", h.Blog.List)
	api.GET("/vapid-public-key", h.User.VAPIDPublicKey)

	// Account lifecycle.
	auth := api.Group("/auth", authLimit)
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/google-signin", h.Auth.GoogleSignIn)
	auth.POST("/verify-email", h.Auth.VerifyEmail)
	auth.POST("/request-password-reset", h.Auth.RequestPasswordReset)
	auth.POST("/reset-password", h.Auth.ResetPassword)
	auth.GET("/me", h.Auth.Me, middleware.UserAuth(cfg.JWTSecret))
	auth.POST("/request-email-verification", h.Auth.RequestEmailVerification, middleware.UserAuth(cfg.JWTSecret))

	// Signed-in profile routes.
	user := api.Group("/user", middleware.UserAuth(cfg.JWTSecret))
	user.PUT("/profile", h.User.UpdateProfile, middleware.RequireVerified())
	user.POST("/change-password", h.User.ChangePassword)
	user.POST("/upload-avatar", h.User.UploadAvatar, middleware.RequireVerified())
	user.POST("/subscribe-notifications", h.User.SubscribeNotifications)

	// Admin login is the only unauthenticated admin surface.
	api.POST("/admin/login", h.AdminAuth.Login, authLimit)
	api.POST("/admin/verify-otp", h.AdminAuth.VerifyOTP, authLimit)

	admin := api.Group("/admin", middleware.AdminAuth(cfg.AdminJWTSecret))
	admin.DELETE("/feedback/:id", h.AdminFeedback.Delete)
	admin.DELETE("/feedbacks/batch-delete", h.AdminFeedback.BatchDelete)
	admin.POST("/feedback/:id/reply", h.AdminFeedback.Reply)
	admin.PUT("/feedback/:feedbackId/reply/:replyId", h.AdminFeedback.UpdateReply)
	admin.DELETE("/feedback/:feedbackId/reply/:replyId", h.AdminFeedback.DeleteReply)
	admin.PUT("/feedback/:id/pin", h.AdminFeedback.Pin)
	admin.PUT("/feedback/:feedbackId/change-avatar", h.AdminFeedback.ChangeAvatar)
	admin.PATCH("/feedbacks/:id/mark-read", h.AdminFeedback.MarkRead)

	admin.POST("/blogs", h.Blog.Create)
	admin.PUT("/blog/:id", h.Blog.Update)
	admin.DELETE("/blog/:id", h.Blog.Delete)

	admin.GET("/notifications", h.AdminPanel.Notifications)
	admin.POST("/notifications/mark-seen", h.AdminPanel.MarkSeen)
	admin.GET("/analytics", h.AdminPanel.Analytics)

	admin.POST("/push-to-github", h.GitHubSync.Push)
	admin.POST("/pull-from-github", h.GitHubSync.Pull)

	// The file manager predates the /api/admin prefix; its paths are kept
	// for panel compatibility but still sit behind the admin token.
	fm := api.Group("/file-manager", middleware.AdminAuth(cfg.AdminJWTSecret))
	fm.GET("", h.FileManager.List)
	fm.POST("/folder", h.FileManager.CreateFolder)
	fm.POST("/file", h.FileManager.CreateFile)
	fm.GET("/file", h.FileManager.ReadFile)
	fm.PUT("/file", h.FileManager.WriteFile)
	fm.DELETE("", h.FileManager.Delete)
}
