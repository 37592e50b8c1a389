package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/database"
	"github.com/iliyamo/feedback-board/internal/handler"
	"github.com/iliyamo/feedback-board/internal/queue"
	"github.com/iliyamo/feedback-board/internal/repository"
	"github.com/iliyamo/feedback-board/internal/router"
	"github.com/iliyamo/feedback-board/internal/scheduler"
	"github.com/iliyamo/feedback-board/internal/service"
)

func main() {
	// .env is optional; in production configuration comes from the host.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	feedbacks := repository.NewFeedbackRepo(db)
	replies := repository.NewReplyRepo(db)
	votes := repository.NewVoteRepo(db)
	admins := repository.NewAdminRepo(db)
	blogs := repository.NewBlogRepo(db)
	avatars := repository.NewAvatarRepo(db, config.AvatarPool())
	subs := repository.NewSubscriptionRepo(db)
	visits := repository.NewVisitRepo(db)

	// Optional integrations stay nil when their credentials are absent;
	// the owning endpoints report that instead of the process failing.
	email, err := service.NewEmailClient(&cfg)
	if err != nil {
		logrus.WithError(err).Info("email relay disabled")
	}
	google, err := service.NewGoogleVerifier(&cfg)
	if err != nil {
		logrus.WithError(err).Info("Google sign-in disabled")
	}
	cloudinary, err := service.NewCloudinaryUploader(&cfg)
	if err != nil {
		logrus.WithError(err).Info("avatar uploads disabled")
	}
	githubSync, err := service.NewGitHubSync(&cfg)
	if err != nil {
		logrus.WithError(err).Info("GitHub sync disabled")
	}
	gemini, err := service.NewGeminiClient(&cfg)
	if err != nil {
		logrus.WithError(err).Info("auto-responder disabled")
	}

	push := &service.PushNotifier{Subs: subs}

	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			logrus.WithError(err).Error("event consumer stopped")
		}
	}()

	responder := &scheduler.AutoResponder{
		Cfg: cfg, Feedback: feedbacks, Replies: replies, Users: users,
		Gemini: gemini, Email: email,
	}
	responder.Start(context.Background())

	h := router.Handlers{
		Feedback: &handler.FeedbackHandler{
			Cfg: cfg, Feedback: feedbacks, Replies: replies, Votes: votes,
			Users: users, Avatars: avatars, Push: push,
		},
		Auth: &handler.AuthHandler{
			Cfg: cfg, Users: users, Feedback: feedbacks, Avatars: avatars,
			Email: email, Google: google,
		},
		User: &handler.UserHandler{
			Cfg: cfg, Users: users, Feedback: feedbacks, Avatars: avatars,
			Subs: subs, Cloudinary: cloudinary,
		},
		AdminAuth: &handler.AdminAuthHandler{Cfg: cfg, Admins: admins, Email: email},
		AdminFeedback: &handler.AdminFeedbackHandler{
			Cfg: cfg, Feedback: feedbacks, Replies: replies, Users: users,
			Avatars: avatars, Push: push, Email: email,
		},
		AdminPanel:  &handler.AdminPanelHandler{Admins: admins, Feedback: feedbacks, Visits: visits},
		Blog:        &handler.BlogHandler{Cfg: cfg, Blogs: blogs},
		FileManager: &handler.FileManagerHandler{Cfg: cfg},
		GitHubSync:  &handler.GitHubSyncHandler{Cfg: cfg, Sync: githubSync},
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, h, visits, rdb)

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
