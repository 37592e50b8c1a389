package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/feedback-board/internal/config"
	"github.com/iliyamo/feedback-board/internal/service"
)

// GitHubSyncHandler drives whole-tree push and pull between the managed
// directory and the configured GitHub repository.
type GitHubSyncHandler struct {
	Cfg  config.Config
	Sync *service.GitHubSync // nil when GITHUB_TOKEN is not configured
}

type pushReq struct {
	Message string `json:"message"`
}

// Push uploads every file under the managed directory to the remote branch.
// Individual file failures are reported, not fatal.
func (h *GitHubSyncHandler) Push(c echo.Context) error {
	if h.Sync == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "GitHub sync is not configured."})
	}
	var req pushReq
	_ = c.Bind(&req)
	if req.Message == "" {
		req.Message = "Sync from file manager"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Minute)
	defer cancel()

	results, err := h.Sync.Push(ctx, h.Cfg.FileManagerRoot, req.Message)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "GitHub push failed."})
	}

	failed := make([]service.FileResult, 0)
	pushed := 0
	for _, r := range results {
		if r.Status == "failed" {
			failed = append(failed, r)
		} else {
			pushed++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":          len(failed) == 0,
		"totalFilesPushed": pushed,
		"failedFiles":      failed,
		"message":          "Push to GitHub finished.",
	})
}

// Pull downloads the remote branch into the managed directory, overwriting
// local files.
func (h *GitHubSyncHandler) Pull(c echo.Context) error {
	if h.Sync == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "GitHub sync is not configured."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Minute)
	defer cancel()

	results, err := h.Sync.Pull(ctx, h.Cfg.FileManagerRoot)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "GitHub pull failed."})
	}

	failed := make([]service.FileResult, 0)
	pulled := 0
	for _, r := range results {
		if r.Status == "failed" {
			failed = append(failed, r)
		} else {
			pulled++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":          len(failed) == 0,
		"totalFilesPulled": pulled,
		"failedFiles":      failed,
		"message":          "Pull from GitHub finished.",
	})
}
